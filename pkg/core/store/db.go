package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OpenPool connects to Postgres at databaseURL and verifies the connection.
func OpenPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL not set")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return pool, nil
}

// Open returns a Postgres-backed store with its schema in place when
// databaseURL is set, and a file store in dir otherwise.
func Open(ctx context.Context, databaseURL, dir string) (*RunStore, error) {
	if databaseURL == "" {
		return NewRunStore(nil, dir)
	}

	pool, err := OpenPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	runs, err := NewRunStore(pool, "")
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := runs.EnsureSchema(ctx); err != nil {
		runs.Close()
		return nil, err
	}
	return runs, nil
}
