package shared

import "context"

type userContextKey struct{}

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	UserID  int64
	Name    string
	Email   string
	TokenID string
}

// ContextWithUser stores the caller identity in context.
func ContextWithUser(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, userContextKey{}, id)
}

// UserFromContext extracts the caller identity from context.
func UserFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(userContextKey{}).(*Identity)
	return id
}
