package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Staging *StagingRepository
	Users   *UserRepository
	Roles   *RoleRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool, defaultRoleID string) *Repositories {
	return &Repositories{
		Staging: NewStagingRepository(pool),
		Users:   NewUserRepository(pool),
		Roles:   NewRoleRepository(pool, defaultRoleID),
	}
}
