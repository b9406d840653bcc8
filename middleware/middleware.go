package middleware

import (
	"context"
)

// Mutation describes one record write flowing through the pipeline.
type Mutation struct {
	// Op is the mutation verb: "create", "update", or "delete".
	Op string

	// Collection is the collection being mutated.
	Collection string

	// RecordID is the id of the affected record.
	RecordID string

	// OrgID is the organization the record belongs to.
	OrgID string
}

// Handler is the terminal function that applies the mutation.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic.
// It receives the current context, the mutation being applied, and the
// next handler to call. Middleware MUST call next to continue the chain
// (unless short-circuiting on error).
type Middleware func(ctx context.Context, m *Mutation, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover, authorize) executes as:
//
//	logging → recover → authorize → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, m *Mutation, next Handler) error {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, m, prev)
			}
		}
		return h(ctx)
	}
}
