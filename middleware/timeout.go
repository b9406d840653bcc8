package middleware

import (
	"context"
	"time"
)

// Timeout returns middleware that bounds the local commit of a mutation.
// A zero duration disables the deadline. The background remote write is
// bounded separately by the coordinator.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, m *Mutation, next Handler) error {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return next(ctx)
	}
}
