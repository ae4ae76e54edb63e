package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store exposes catalog persistence over a pgx pool. The reconciler,
// orchestrator, and linker consume it through their own narrow interfaces so
// tests can substitute fakes.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store over the given pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
