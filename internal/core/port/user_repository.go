package port

import (
	"context"

	"github.com/arklim/checkout-registration/internal/core/domain"
)

// UserRepository exposes persistence behavior for shopper accounts.
type UserRepository interface {
	// Create inserts a new user row. Uniqueness violations surface as
	// domain.ValidationErrors.
	Create(ctx context.Context, user domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RoleRepository manages account group membership.
type RoleRepository interface {
	// AssignDefault places the user into the configured default customer group.
	AssignDefault(ctx context.Context, userID string) error
}
