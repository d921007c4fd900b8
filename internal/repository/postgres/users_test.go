package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/checkout-registration/internal/core/domain"
	"github.com/arklim/checkout-registration/internal/repository"
)

func sampleUser() domain.User {
	return domain.User{
		ID:           "user-1",
		Username:     "shopper@example.com",
		Email:        "shopper@example.com",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "argon2id$v=19$m=65536,t=3,p=2$salt$hash",
		PasswordAlgo: "argon2id",
		Status:       domain.UserStatusActive,
		RegisteredAt: time.Now().UTC(),
	}
}

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	user := sampleUser()

	mock.ExpectExec(`INSERT INTO commerce\.users`).
		WithArgs(
			user.ID,
			user.Username,
			user.Email,
			user.FirstName,
			user.LastName,
			user.PasswordHash,
			user.PasswordAlgo,
			user.Status,
			user.RegisteredAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	user := sampleUser()

	mock.ExpectExec(`INSERT INTO commerce\.users`).
		WithArgs(
			user.ID,
			user.Username,
			user.Email,
			user.FirstName,
			user.LastName,
			user.PasswordHash,
			user.PasswordAlgo,
			user.Status,
			user.RegisteredAt,
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err = repo.Create(context.Background(), user)

	var validation domain.ValidationErrors
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(validation) != 1 || validation[0].Field != "email" {
		t.Fatalf("expected email violation, got %+v", validation)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	registeredAt := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"id", "username", "email", "first_name", "last_name", "password_hash", "password_algo", "status", "registered_at",
	}).AddRow(
		"user-1", "shopper@example.com", "shopper@example.com", "Ada", "Lovelace", "hash", "argon2id", domain.UserStatusActive, registeredAt,
	)

	mock.ExpectQuery(`SELECT .*FROM commerce\.users`).
		WithArgs("shopper@example.com").
		WillReturnRows(rows)

	user, err := repo.GetByEmail(context.Background(), "shopper@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if user.ID != "user-1" || user.Username != user.Email {
		t.Fatalf("unexpected user: %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	rows := pgxmock.NewRows([]string{
		"id", "username", "email", "first_name", "last_name", "password_hash", "password_algo", "status", "registered_at",
	})

	mock.ExpectQuery(`SELECT .*FROM commerce\.users`).
		WithArgs("nobody@example.com").
		WillReturnRows(rows)

	if _, err := repo.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
