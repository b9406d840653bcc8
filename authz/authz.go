// Package authz defines the authorization predicate consumed by the
// mutation coordinator. Enforcement policy itself lives outside this
// module; syncline only asks the predicate before applying a mutation.
package authz

// Common mutation actions checked against a Decider.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Decider answers whether a role may perform an action on a module
// (collection). Implementations are expected to be cheap and safe for
// concurrent use.
type Decider interface {
	CanPerform(role, module, action string) bool
}

// AllowAll permits every action. It is the default when no Decider is
// configured.
type AllowAll struct{}

// CanPerform implements Decider.
func (AllowAll) CanPerform(_, _, _ string) bool { return true }

// DeciderFunc adapts a plain function to the Decider interface.
type DeciderFunc func(role, module, action string) bool

// CanPerform implements Decider.
func (f DeciderFunc) CanPerform(role, module, action string) bool {
	return f(role, module, action)
}
