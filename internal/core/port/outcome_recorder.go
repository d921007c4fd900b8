package port

import (
	"context"

	"github.com/arklim/checkout-registration/internal/core/domain"
)

// OutcomeRecorder is the flash-style side channel the storefront reads to
// learn whether registration happened for a checkout session. Records are
// short-lived and never block order completion.
type OutcomeRecorder interface {
	Record(ctx context.Context, checkoutSessionID string, outcome domain.Outcome) error
	Get(ctx context.Context, checkoutSessionID string) (*domain.Outcome, error)
}
