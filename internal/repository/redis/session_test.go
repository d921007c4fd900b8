package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklim/checkout-registration/internal/repository"
)

func TestSessionRepository_LoginAndGet(t *testing.T) {
	client, server := newTestRedis(t)
	ttl := 24 * time.Hour
	repo := NewSessionRepository(client, "session", ttl)

	ctx := context.Background()

	created, err := repo.Login(ctx, "user-42")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected a generated session id")
	}
	if created.UserID != "user-42" {
		t.Fatalf("expected user-42, got %s", created.UserID)
	}
	if !created.ExpiresAt.After(created.CreatedAt) {
		t.Fatalf("expected expiry after creation: %+v", created)
	}

	fetched, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if fetched.UserID != "user-42" {
		t.Fatalf("expected user-42, got %s", fetched.UserID)
	}
	if !fetched.IsActive(time.Now().UTC()) {
		t.Fatalf("expected freshly created session to be active")
	}

	remaining := server.TTL("session:" + created.ID)
	if remaining <= 0 || remaining > ttl {
		t.Fatalf("expected ttl within (0, %v], got %v", ttl, remaining)
	}
}

func TestSessionRepository_LoginsAreDistinct(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSessionRepository(client, "session", time.Hour)

	ctx := context.Background()

	first, err := repo.Login(ctx, "user-42")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	second, err := repo.Login(ctx, "user-42")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct session ids, got %s twice", first.ID)
	}
}

func TestSessionRepository_GetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSessionRepository(client, "session", time.Hour)

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_InvalidInput(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewSessionRepository(client, "session", time.Hour)

	if _, err := repo.Login(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty user id")
	}
	if _, err := repo.Get(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty session id")
	}
}
