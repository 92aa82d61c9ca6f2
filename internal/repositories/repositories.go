package repositories

import (
	"database/sql"
	"fmt"
)

// Repositories bundles every repository over one connection.
type Repositories struct {
	Sessions    *SessionRepository
	Resolutions *ResolutionRepository
	Mutations   *MutationLogRepository
}

// New creates all repositories backed by db.
func New(db *sql.DB) *Repositories {
	return &Repositories{
		Sessions:    NewSessionRepository(db),
		Resolutions: NewResolutionRepository(db),
		Mutations:   NewMutationLogRepository(db),
	}
}

// rowsAffected returns the affected row count or an error naming the operation.
func rowsAffected(result sql.Result, op string) (int64, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows for %s: %w", op, err)
	}
	return rows, nil
}
