package guard

import (
	"context"

	"github.com/kingsocial/authkit/pkg/authstate"
)

type userContextKey struct{}

// SetUser stores the authenticated user in the context for downstream
// handlers.
func SetUser(ctx context.Context, user *authstate.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the authenticated user stored by the guard.
// Returns nil when the request was not authenticated.
func UserFromContext(ctx context.Context) *authstate.User {
	user, _ := ctx.Value(userContextKey{}).(*authstate.User)
	return user
}
