package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/timeline"
)

// PGStore implements timeline.Store using PostgreSQL via pgx.
// Every record lives in one JSONB keyed table; relations are answered
// through the owner_id column.
type PGStore struct {
	db *pgxpool.Pool
}

var _ timeline.Store = (*PGStore)(nil)

// New creates a new PGStore backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}
