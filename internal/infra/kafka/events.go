package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/checkout-registration/internal/core/domain"
	"github.com/arklim/checkout-registration/internal/core/port"
	"github.com/arklim/checkout-registration/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	OrderID   string           `json:"order_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, orderID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		OrderID:   orderID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(orderID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes commerce.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		OrderID      string         `json:"order_id"`
		Username     string         `json:"username"`
		Email        string         `json:"email"`
		FirstName    string         `json:"first_name,omitempty"`
		LastName     string         `json:"last_name,omitempty"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		OrderID:      event.OrderID,
		Username:     event.Username,
		Email:        event.Email,
		FirstName:    event.FirstName,
		LastName:     event.LastName,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "commerce.user.registered", event.OrderID, event.RegisteredAt, payload)
}

// PublishRegistrationFailed publishes commerce.registration.failed events.
func (p *EventPublisher) PublishRegistrationFailed(ctx context.Context, event domain.RegistrationFailedEvent) error {
	payload := struct {
		OrderID  string         `json:"order_id"`
		Email    string         `json:"email,omitempty"`
		Reason   string         `json:"reason"`
		Details  []string       `json:"details,omitempty"`
		FailedAt time.Time      `json:"failed_at"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}{
		OrderID:  event.OrderID,
		Email:    event.Email,
		Reason:   string(event.Reason),
		Details:  event.Details,
		FailedAt: event.FailedAt.UTC(),
		Metadata: event.Metadata,
	}

	return p.publish(ctx, event.EventID, "commerce.registration.failed", event.OrderID, event.FailedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
