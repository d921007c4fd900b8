package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	red "github.com/redis/go-redis/v9"

	"github.com/arklim/checkout-registration/internal/core/domain"
	"github.com/arklim/checkout-registration/internal/core/port"
	"github.com/arklim/checkout-registration/internal/repository"
)

const (
	defaultSessionPrefix = "commerce:registration:session"

	fieldSessionUserID    = "user_id"
	fieldSessionCreatedAt = "created_at"
	fieldSessionExpiresAt = "expires_at"
)

// SessionRepository establishes authenticated storefront sessions in Redis.
// The session created here is the login-on-success side effect of checkout
// registration; the storefront carries the session id in its cookie.
type SessionRepository struct {
	client *red.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionRepository constructs a session repository with the provided key prefix and TTL.
func NewSessionRepository(client *red.Client, keyPrefix string, ttl time.Duration) *SessionRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultSessionPrefix
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &SessionRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *SessionRepository) key(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

// Login creates a fresh authenticated session for the user.
func (r *SessionRepository) Login(ctx context.Context, userID string) (domain.LoginSession, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.LoginSession{}, fmt.Errorf("user id is required")
	}

	now := r.now().UTC()
	session := domain.LoginSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}

	fields := map[string]any{
		fieldSessionUserID:    session.UserID,
		fieldSessionCreatedAt: session.CreatedAt.Format(time.RFC3339Nano),
		fieldSessionExpiresAt: session.ExpiresAt.Format(time.RFC3339Nano),
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.key(session.ID), fields)
	pipe.Expire(ctx, r.key(session.ID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.LoginSession{}, fmt.Errorf("create login session: %w", err)
	}

	return session, nil
}

// Get resolves an existing session by identifier.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.LoginSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	values, err := r.client.HGetAll(ctx, r.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get login session: %w", err)
	}
	if len(values) == 0 {
		return nil, repository.ErrNotFound
	}

	session := domain.LoginSession{
		ID:     sessionID,
		UserID: values[fieldSessionUserID],
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339Nano, values[fieldSessionCreatedAt]); err != nil {
		return nil, fmt.Errorf("parse session created_at: %w", err)
	}
	if session.ExpiresAt, err = time.Parse(time.RFC3339Nano, values[fieldSessionExpiresAt]); err != nil {
		return nil, fmt.Errorf("parse session expires_at: %w", err)
	}

	return &session, nil
}

var _ port.SessionStore = (*SessionRepository)(nil)
