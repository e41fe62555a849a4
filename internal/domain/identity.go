package domain

import "context"

type contextKey string

const contextKeyIdentity = contextKey("identity")

// Identity is the authenticated caller, produced only by token verification
type Identity struct {
	UserID string
	Email  string
}

// WithIdentity returns a context carrying the caller identity
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, id)
}

// IdentityFromContext extracts the caller identity.
// Returns false when the request was not authenticated.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKeyIdentity).(Identity)
	return id, ok
}
