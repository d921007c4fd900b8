package port

import (
	"context"

	"github.com/arklim/checkout-registration/internal/core/domain"
)

// SessionStore establishes and resolves authenticated storefront sessions.
type SessionStore interface {
	Login(ctx context.Context, userID string) (domain.LoginSession, error)
	Get(ctx context.Context, sessionID string) (*domain.LoginSession, error)
}
