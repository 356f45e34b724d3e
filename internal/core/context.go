package core

import "context"

type contextKey string

const ctxKeyIdentity contextKey = "caller_identity"

// Identity is the caller as asserted by the upstream identity provider.
type Identity struct {
	UserID string
	Roles  []string
}

// ContextWithIdentity attaches the caller identity to ctx.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns the caller identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok
}

// UserIDFromContext returns the caller's user id or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}
