package diag

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Table statuses reported by Check.
const (
	StatusSynced = "synced"
	StatusDiff   = "diff"
	StatusError  = "error"
)

// Counter is the count-only slice of the remote gateway.
type Counter interface {
	Count(ctx context.Context, table string) (int64, error)
}

// Table names one collection to check: its operator-facing label, its
// remote table name, and the current local record count.
type Table struct {
	Label string
	Name  string
	Local int64
}

// Result is the outcome of one table check. Remote is meaningful only
// when Status is not StatusError.
type Result struct {
	Label  string `json:"label"`
	Local  int64  `json:"local"`
	Remote int64  `json:"remote"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Check queries the remote count for every table and classifies each
// against its local count. All queries run concurrently; a failed count
// marks only its own row as StatusError. Results come back in input
// order.
func Check(ctx context.Context, counter Counter, tables []Table, logger *slog.Logger) []Result {
	results := make([]Result, len(tables))

	var g errgroup.Group
	for i, tbl := range tables {
		g.Go(func() error {
			r := Result{Label: tbl.Label, Local: tbl.Local}
			remote, err := counter.Count(ctx, tbl.Name)
			switch {
			case err != nil:
				r.Status = StatusError
				r.Detail = err.Error()
				logger.Warn("diagnostics count failed",
					slog.String("table", tbl.Name),
					slog.Any("error", err))
			case remote == tbl.Local:
				r.Remote = remote
				r.Status = StatusSynced
			default:
				r.Remote = remote
				r.Status = StatusDiff
			}
			results[i] = r
			return nil
		})
	}
	g.Wait()

	return results
}
