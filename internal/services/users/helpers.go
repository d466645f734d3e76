package users

import (
	"context"

	"github.com/Jidetireni/sanctuary-access/pkg/token"
)

type contextKey struct {
	name string
}

var (
	userCtxKey   = &contextKey{"user"}
	holderCtxKey = &contextKey{"user_holder"}
)

type UserContextValue struct {
	// User Identifiers
	Email    string
	Name     string
	Provider token.Provider
	Roles    []string

	TokenID string
	// Auth
	IsAuthenticatedAsAdmin bool
}

// NewContextWithUser stores the session. When an outer middleware installed a holder,
// the session is copied into it as well.
func NewContextWithUser(ctx context.Context, user *UserContextValue) context.Context {
	if holder, ok := ctx.Value(holderCtxKey).(*UserContextValue); ok && holder != nil && user != nil {
		*holder = *user
	}
	return context.WithValue(ctx, userCtxKey, user)
}

// NewContextWithHolder lets middleware that runs before authentication observe the
// session once it is known.
func NewContextWithHolder(ctx context.Context, holder *UserContextValue) context.Context {
	return context.WithValue(ctx, holderCtxKey, holder)
}

// get user from context
func FromContext(ctx context.Context) (*UserContextValue, bool) {
	raw, ok := ctx.Value(userCtxKey).(*UserContextValue)
	return raw, ok && raw != nil
}
