package port

import (
	"context"

	"github.com/arklim/checkout-registration/internal/core/domain"
)

// EventPublisher publishes registration lifecycle events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishRegistrationFailed(ctx context.Context, event domain.RegistrationFailedEvent) error
}
