package handlers

import (
	"context"

	"github.com/codedojo/codedojo/internal/domain"
)

type contextKey string

// ContextKeyUser carries the authenticated *domain.User, set by the
// router's auth wrappers.
const ContextKeyUser contextKey = "user"

// UserFrom returns the authenticated user from the request context, or
// nil for anonymous requests.
func UserFrom(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(ContextKeyUser).(*domain.User); ok {
		return user
	}
	return nil
}
