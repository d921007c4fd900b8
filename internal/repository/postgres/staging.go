package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/checkout-registration/internal/core/domain"
	"github.com/arklim/checkout-registration/internal/core/port"
	"github.com/arklim/checkout-registration/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StagingRepository implements port.StagingRepository using PostgreSQL.
type StagingRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewStagingRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewStagingRepository(exec pgExecutor) *StagingRepository {
	repo := &StagingRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Upsert writes the staged registration, replacing any existing record for the
// same order number. Checkout save fires repeatedly per order; last write wins.
func (r *StagingRepository) Upsert(ctx context.Context, staged domain.StagedRegistration) error {
	query := r.builder.Insert("commerce.staged_registrations").
		Columns("order_id", "encrypted_password", "updated_at").
		Values(staged.OrderID, staged.EncryptedPassword, staged.UpdatedAt).
		Suffix("ON CONFLICT (order_id) DO UPDATE SET encrypted_password = EXCLUDED.encrypted_password, updated_at = EXCLUDED.updated_at")

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert staged registration sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert staged registration: %w", err)
	}

	return nil
}

// Consume deletes the record for the order number and returns it in one
// round trip. DELETE ... RETURNING guarantees exactly one caller observes the
// secret when completion events race.
func (r *StagingRepository) Consume(ctx context.Context, orderID string) (*domain.StagedRegistration, error) {
	stmt, args, err := r.builder.Delete("commerce.staged_registrations").
		Where(squirrel.Eq{"order_id": orderID}).
		Suffix("RETURNING order_id, encrypted_password, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build consume staged registration sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var staged domain.StagedRegistration
	if err := row.Scan(&staged.OrderID, &staged.EncryptedPassword, &staged.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan staged registration: %w", err)
	}

	return &staged, nil
}

// PurgeOlderThan removes staged records last touched before the cutoff.
func (r *StagingRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	stmt, args, err := r.builder.Delete("commerce.staged_registrations").
		Where(squirrel.LtOrEq{"updated_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge staged registrations sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("purge staged registrations: %w", err)
	}

	return ct.RowsAffected(), nil
}

var _ port.StagingRepository = (*StagingRepository)(nil)
