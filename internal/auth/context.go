package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/domain"
)

// SystemUserID identifies requests authenticated with the admin API key
var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000000")

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Role        domain.UserRole
	// IsSystem is set for API key callers, which have no profile row
	IsSystem bool
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// ActorID returns the profile ID to record as creator or updater, or nil
// for anonymous and system callers
func ActorID(ctx context.Context) *uuid.UUID {
	user, ok := FromContext(ctx)
	if !ok || user.IsSystem || user.UserID == uuid.Nil {
		return nil
	}
	id := user.UserID
	return &id
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRole) bool {
	return u.Role == role
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRole) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user may manage settings and other users
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// CanModify reports whether the user may create or edit lab records
func (u *UserContext) CanModify() bool {
	return u.Role.CanModify()
}
