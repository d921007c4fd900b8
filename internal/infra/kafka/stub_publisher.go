package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/checkout-registration/internal/core/domain"
	"github.com/arklim/checkout-registration/internal/core/port"
	"github.com/arklim/checkout-registration/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, orderID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("order_id", orderID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs commerce.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"order_id":      event.OrderID,
		"email":         logger.MaskEmail(event.Email),
		"first_name":    event.FirstName,
		"last_name":     event.LastName,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("commerce.user.registered", event.OrderID, event.RegisteredAt, payload)
	return nil
}

// PublishRegistrationFailed logs commerce.registration.failed events.
func (p *StubPublisher) PublishRegistrationFailed(_ context.Context, event domain.RegistrationFailedEvent) error {
	payload := map[string]any{
		"order_id":  event.OrderID,
		"email":     logger.MaskEmail(event.Email),
		"reason":    event.Reason,
		"details":   event.Details,
		"failed_at": event.FailedAt,
		"metadata":  event.Metadata,
	}
	p.logEvent("commerce.registration.failed", event.OrderID, event.FailedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
