package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/arklim/checkout-registration/internal/core/port"
)

// RoleRepository implements port.RoleRepository using PostgreSQL.
type RoleRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	// defaultRoleID is the customer group self-registering shoppers join.
	defaultRoleID string
}

// NewRoleRepository wires a PostgreSQL-backed role repository.
func NewRoleRepository(exec pgExecutor, defaultRoleID string) *RoleRepository {
	return &RoleRepository{
		exec:          exec,
		builder:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		defaultRoleID: defaultRoleID,
	}
}

// AssignDefault links the user to the configured default customer group.
func (r *RoleRepository) AssignDefault(ctx context.Context, userID string) error {
	if r.defaultRoleID == "" {
		return fmt.Errorf("default role not configured")
	}

	stmt, args, err := r.builder.Insert("commerce.user_roles").
		Columns("user_id", "role_id", "assigned_at").
		Values(userID, r.defaultRoleID, time.Now().UTC()).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build assign default role sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("assign default role: %w", err)
	}

	return nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
