package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/checkout-registration/internal/core/domain"
	"github.com/arklim/checkout-registration/internal/core/port"
	"github.com/arklim/checkout-registration/internal/repository"
)

const (
	defaultOutcomePrefix = "commerce:registration:outcome"

	fieldStatus     = "status"
	fieldReason     = "reason"
	fieldUserID     = "user_id"
	fieldDetails    = "details"
	fieldRecordedAt = "recorded_at"

	detailSeparator = "\x1f"
)

// OutcomeRepository stores flash-style registration outcomes per checkout
// session with a bounded lifetime. The storefront reads the flag once after
// order completion to render the result.
type OutcomeRepository struct {
	client *red.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewOutcomeRepository constructs an outcome repository with the provided key prefix and TTL.
func NewOutcomeRepository(client *red.Client, keyPrefix string, ttl time.Duration) *OutcomeRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultOutcomePrefix
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &OutcomeRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *OutcomeRepository) key(checkoutSessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, checkoutSessionID)
}

// Record persists the outcome for a checkout session, replacing any prior value.
func (r *OutcomeRepository) Record(ctx context.Context, checkoutSessionID string, outcome domain.Outcome) error {
	checkoutSessionID = strings.TrimSpace(checkoutSessionID)
	if checkoutSessionID == "" {
		return fmt.Errorf("checkout session id is required")
	}

	key := r.key(checkoutSessionID)
	fields := map[string]any{
		fieldStatus:     string(outcome.Status),
		fieldReason:     string(outcome.Reason),
		fieldUserID:     outcome.UserID,
		fieldDetails:    strings.Join(outcome.Details, detailSeparator),
		fieldRecordedAt: r.now().UTC().Format(time.RFC3339Nano),
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record registration outcome: %w", err)
	}

	return nil
}

// Get returns the recorded outcome for a checkout session, or repository.ErrNotFound.
func (r *OutcomeRepository) Get(ctx context.Context, checkoutSessionID string) (*domain.Outcome, error) {
	checkoutSessionID = strings.TrimSpace(checkoutSessionID)
	if checkoutSessionID == "" {
		return nil, fmt.Errorf("checkout session id is required")
	}

	values, err := r.client.HGetAll(ctx, r.key(checkoutSessionID)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get registration outcome: %w", err)
	}
	if len(values) == 0 {
		return nil, repository.ErrNotFound
	}

	outcome := domain.Outcome{
		Status: domain.OutcomeStatus(values[fieldStatus]),
		Reason: domain.FailureReason(values[fieldReason]),
		UserID: values[fieldUserID],
	}
	if raw := values[fieldDetails]; raw != "" {
		outcome.Details = strings.Split(raw, detailSeparator)
	}

	return &outcome, nil
}

var _ port.OutcomeRecorder = (*OutcomeRepository)(nil)
