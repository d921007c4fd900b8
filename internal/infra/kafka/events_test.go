package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/checkout-registration/internal/core/domain"
	"github.com/arklim/checkout-registration/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T, asyncProducer sarama.AsyncProducer) *EventPublisher {
	t.Helper()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "commerce",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	return NewEventPublisher(producer, config.AppSettings{
		Name: "checkout-registration",
		Env:  "test",
	}, zaptest.NewLogger(t))
}

func TestPublishUserRegistered(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	registeredAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	event := domain.UserRegisteredEvent{
		EventID:      "event-123",
		UserID:       "user-456",
		OrderID:      "order-1001",
		Username:     "shopper@example.com",
		Email:        "shopper@example.com",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		RegisteredAt: registeredAt,
	}

	if err := publisher.PublishUserRegistered(context.Background(), event); err != nil {
		t.Fatalf("PublishUserRegistered returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "commerce.user.registered" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		key, err := msg.Key.Encode()
		if err != nil {
			t.Fatalf("Key.Encode returned error: %v", err)
		}
		if string(key) != event.OrderID {
			t.Fatalf("expected message keyed by order id, got %s", key)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "commerce.user.registered" {
			t.Fatalf("unexpected event_type: %v", got)
		}
		if got := envelope["order_id"]; got != event.OrderID {
			t.Fatalf("unexpected order_id: %v", got)
		}
		if got := envelope["version"]; got != "1.0" {
			t.Fatalf("unexpected version: %v", got)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}
		if got := payload["user_id"]; got != event.UserID {
			t.Fatalf("unexpected user_id: %v", got)
		}
		if got := payload["email"]; got != event.Email {
			t.Fatalf("unexpected email: %v", got)
		}
		if got := payload["first_name"]; got != event.FirstName {
			t.Fatalf("unexpected first_name: %v", got)
		}

		registered, ok := payload["registered_at"].(string)
		if !ok {
			t.Fatalf("registered_at not a string: %T", payload["registered_at"])
		}
		if registered != registeredAt.Format(time.RFC3339Nano) {
			t.Fatalf("unexpected registered_at: %s", registered)
		}

		metadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("envelope metadata not a map: %T", envelope["metadata"])
		}
		if metadata["service"] != "checkout-registration" {
			t.Fatalf("unexpected metadata service: %v", metadata["service"])
		}
		if metadata["environment"] != "test" {
			t.Fatalf("unexpected metadata environment: %v", metadata["environment"])
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}

func TestPublishRegistrationFailed(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	failedAt := time.Date(2026, 3, 14, 10, 5, 0, 0, time.UTC)
	event := domain.RegistrationFailedEvent{
		EventID:  "event-456",
		OrderID:  "order-1001",
		Email:    "shopper@example.com",
		Reason:   domain.FailureAccountCreation,
		Details:  []string{"email already registered"},
		FailedAt: failedAt,
	}

	if err := publisher.PublishRegistrationFailed(context.Background(), event); err != nil {
		t.Fatalf("PublishRegistrationFailed returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "commerce.registration.failed" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "commerce.registration.failed" {
			t.Fatalf("unexpected event_type: %v", got)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}
		if got := payload["reason"]; got != string(domain.FailureAccountCreation) {
			t.Fatalf("unexpected reason: %v", got)
		}

		details, ok := payload["details"].([]any)
		if !ok || len(details) != 1 || details[0] != "email already registered" {
			t.Fatalf("unexpected details: %v", payload["details"])
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}

func TestTopicNamePrefixing(t *testing.T) {
	producer := &Producer{cfg: config.KafkaSettings{TopicPrefix: "commerce"}}

	if got := producer.TopicName("commerce.user.registered"); got != "commerce.user.registered" {
		t.Fatalf("expected already-prefixed topic unchanged, got %s", got)
	}
	if got := producer.TopicName("user.registered"); got != "commerce.user.registered" {
		t.Fatalf("expected prefix applied, got %s", got)
	}

	bare := &Producer{cfg: config.KafkaSettings{}}
	if got := bare.TopicName("user.registered"); got != "user.registered" {
		t.Fatalf("expected no prefix without configuration, got %s", got)
	}
}
