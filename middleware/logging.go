package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs mutation start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, m *Mutation, next Handler) error {
		logger.Debug("mutation started",
			slog.String("op", m.Op),
			slog.String("collection", m.Collection),
			slog.String("record_id", m.RecordID),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("mutation failed",
				slog.String("op", m.Op),
				slog.String("collection", m.Collection),
				slog.String("record_id", m.RecordID),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("mutation completed",
				slog.String("op", m.Op),
				slog.String("collection", m.Collection),
				slog.String("record_id", m.RecordID),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
