package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/checkout-registration/internal/core/domain"
	"github.com/arklim/checkout-registration/internal/repository"
)

func TestStagingRepository_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewStagingRepository(mock)

	staged := domain.StagedRegistration{
		OrderID:           "order-1001",
		EncryptedPassword: "bm9uY2UtYW5kLWNpcGhlcnRleHQ=",
		UpdatedAt:         time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO commerce\.staged_registrations`).
		WithArgs(staged.OrderID, staged.EncryptedPassword, staged.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Upsert(context.Background(), staged); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStagingRepository_UpsertReplacesExisting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewStagingRepository(mock)

	staged := domain.StagedRegistration{
		OrderID:           "order-1001",
		EncryptedPassword: "c2Vjb25kLXdyaXRl",
		UpdatedAt:         time.Now().UTC(),
	}

	mock.ExpectExec(`ON CONFLICT \(order_id\) DO UPDATE`).
		WithArgs(staged.OrderID, staged.EncryptedPassword, staged.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Upsert(context.Background(), staged); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStagingRepository_Consume(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewStagingRepository(mock)

	updatedAt := time.Now().UTC()

	rows := pgxmock.NewRows([]string{"order_id", "encrypted_password", "updated_at"}).
		AddRow("order-1001", "Y2lwaGVydGV4dA==", updatedAt)

	mock.ExpectQuery(`DELETE FROM commerce\.staged_registrations`).
		WithArgs("order-1001").
		WillReturnRows(rows)

	staged, err := repo.Consume(context.Background(), "order-1001")
	if err != nil {
		t.Fatalf("Consume returned error: %v", err)
	}
	if staged.OrderID != "order-1001" {
		t.Fatalf("expected order-1001, got %s", staged.OrderID)
	}
	if staged.EncryptedPassword != "Y2lwaGVydGV4dA==" {
		t.Fatalf("unexpected password payload: %s", staged.EncryptedPassword)
	}
	if !staged.UpdatedAt.Equal(updatedAt) {
		t.Fatalf("expected updated_at %v, got %v", updatedAt, staged.UpdatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStagingRepository_ConsumeNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewStagingRepository(mock)

	rows := pgxmock.NewRows([]string{"order_id", "encrypted_password", "updated_at"})

	mock.ExpectQuery(`DELETE FROM commerce\.staged_registrations`).
		WithArgs("order-missing").
		WillReturnRows(rows)

	if _, err := repo.Consume(context.Background(), "order-missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStagingRepository_PurgeOlderThan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewStagingRepository(mock)

	cutoff := time.Now().UTC().Add(-90 * 24 * time.Hour)

	mock.ExpectExec(`DELETE FROM commerce\.staged_registrations`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	purged, err := repo.PurgeOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("PurgeOlderThan returned error: %v", err)
	}
	if purged != 3 {
		t.Fatalf("expected 3 purged rows, got %d", purged)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
