// Package database owns the PostgreSQL connection pool and the execution
// layer that runs rendered SQL with bound parameters.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool tuning for the query workload: every statement is a short read, so
// connections are recycled on a fixed schedule rather than exposed as knobs.
const (
	defaultMaxConns = 25
	connLifetime    = time.Hour
	connIdleTime    = 30 * time.Minute
)

// DB wraps the pgx pool shared by the executor and the migration runner.
type DB struct {
	*pgxpool.Pool
}

// Config holds the connection settings the service exposes.
type Config struct {
	URL            string
	MaxConnections int32
}

// NewConnection opens the pool and verifies it with a ping, so a bad
// connection string or unreachable database fails startup instead of the
// first query.
func NewConnection(ctx context.Context, cfg *Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = defaultMaxConns
	}
	poolConfig.MaxConnLifetime = connLifetime
	poolConfig.MaxConnIdleTime = connIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases every pooled connection.
func (db *DB) Close() {
	db.Pool.Close()
}
