package port

import (
	"context"
	"time"

	"github.com/arklim/checkout-registration/internal/core/domain"
)

// StagingRepository persists encrypted checkout credentials keyed by order number.
type StagingRepository interface {
	// Upsert writes the staged registration, replacing any prior record for
	// the same order number in a single atomic statement.
	Upsert(ctx context.Context, staged domain.StagedRegistration) error
	// Consume deletes the record for the order number and returns it. Exactly
	// one caller observes the record under concurrent completion; everyone
	// else gets repository.ErrNotFound.
	Consume(ctx context.Context, orderID string) (*domain.StagedRegistration, error)
	// PurgeOlderThan deletes staged records not updated since the cutoff and
	// returns the number of rows removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
