// Package scope carries multi-tenant session identity (organization and
// acting role) on a context.Context.
//
// The mutation coordinator uses it to stamp records with the session's
// organization before they are sent to the remote gateway, and to resolve
// the acting role for authorization checks.
package scope

import "context"

type ctxKey int

const (
	orgKey ctxKey = iota
	roleKey
)

// WithOrg attaches the acting organization id to the context.
func WithOrg(ctx context.Context, orgID string) context.Context {
	if orgID == "" {
		return ctx
	}
	return context.WithValue(ctx, orgKey, orgID)
}

// OrgFrom returns the acting organization id, or "" if none is set.
func OrgFrom(ctx context.Context) string {
	if v, ok := ctx.Value(orgKey).(string); ok {
		return v
	}
	return ""
}

// WithRole attaches the acting role to the context.
func WithRole(ctx context.Context, role string) context.Context {
	if role == "" {
		return ctx
	}
	return context.WithValue(ctx, roleKey, role)
}

// RoleFrom returns the acting role, or "" if none is set.
func RoleFrom(ctx context.Context) string {
	if v, ok := ctx.Value(roleKey).(string); ok {
		return v
	}
	return ""
}
