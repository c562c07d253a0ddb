package common

import "context"

type ctxKey string

const (
	waiterIDKey   ctxKey = "auth/waiter-id"
	waiterRoleKey ctxKey = "auth/waiter-role"
)

// WithWaiter stores the authenticated waiter identity on the context.
func WithWaiter(ctx context.Context, id, role string) context.Context {
	ctx = context.WithValue(ctx, waiterIDKey, id)
	return context.WithValue(ctx, waiterRoleKey, role)
}

// WaiterID extracts the authenticated waiter identifier from the context.
func WaiterID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(waiterIDKey).(string)
	return id, ok && id != ""
}

// WaiterRole extracts the authenticated waiter role from the context.
func WaiterRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(waiterRoleKey).(string)
	return role, ok && role != ""
}
