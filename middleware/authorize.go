package middleware

import (
	"context"
	"fmt"

	"github.com/syncline/syncline"
	"github.com/syncline/syncline/authz"
	"github.com/syncline/syncline/scope"
)

// Authorize returns middleware that asks the Decider whether the acting
// role from the context may apply the mutation. A denied mutation
// short-circuits the chain with ErrPermissionDenied before any state
// changes.
func Authorize(decider authz.Decider) Middleware {
	return func(ctx context.Context, m *Mutation, next Handler) error {
		role := scope.RoleFrom(ctx)
		if !decider.CanPerform(role, m.Collection, m.Op) {
			return fmt.Errorf("%w: role %q may not %s %s",
				syncline.ErrPermissionDenied, role, m.Op, m.Collection)
		}
		return next(ctx)
	}
}
