package scope_test

import (
	"context"
	"testing"

	"github.com/syncline/syncline/scope"
)

func TestOrgRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		org  string
		want string
	}{
		{"set and read", "org_123", "org_123"},
		{"empty is a no-op", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := scope.WithOrg(context.Background(), tt.org)
			if got := scope.OrgFrom(ctx); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoleRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := scope.WithRole(context.Background(), "admin")
	if got := scope.RoleFrom(ctx); got != "admin" {
		t.Errorf("got %q, want %q", got, "admin")
	}

	if got := scope.RoleFrom(context.Background()); got != "" {
		t.Errorf("unset role should be empty, got %q", got)
	}
}
