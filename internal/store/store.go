// Package store provides the PostgreSQL persistence layer. Every accessor is
// a thin hand-written pgx query; missing rows surface as the owning domain
// package's not-found sentinel so consumers never import this package's errors.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/garsonhq/backend-garson/internal/obs"
)

// ErrUnavailable indicates the store dependency is not configured.
var ErrUnavailable = errors.New("store: unavailable")

// Store bundles all persistence accessors behind one pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store backed by the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// NewPool opens a pgx pool against databaseURL with the query tracer attached.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.Tracer = obs.PGXTracer{}
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (s *Store) ready() error {
	if s == nil || s.pool == nil {
		return ErrUnavailable
	}
	return nil
}
