package context

import (
	"context"

	"github.com/Roma7-7-7/love-dialect/internal/dal"
)

type (
	sessionIDKey struct{}
	userKey      struct{}
)

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDKey{}).(string)
	return sessionID, ok
}

func MustSessionIDFromContext(ctx context.Context) string {
	sessionID, ok := SessionIDFromContext(ctx)
	if !ok {
		panic("session id not found in context")
	}
	return sessionID
}

// WithUser stores the user resolved for the current request.
func WithUser(ctx context.Context, user *dal.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func UserFromContext(ctx context.Context) (*dal.User, bool) {
	user, ok := ctx.Value(userKey{}).(*dal.User)
	return user, ok && user != nil
}

func MustUserFromContext(ctx context.Context) *dal.User {
	user, ok := UserFromContext(ctx)
	if !ok {
		panic("user not found in context")
	}
	return user
}
