package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const createSnapshotsTable = `
	CREATE TABLE IF NOT EXISTS store_snapshots (
		name       TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// PostgresSnapshotter keeps each store's snapshot as one row of store_snapshots
type PostgresSnapshotter struct {
	db   *sqlx.DB
	name string
}

// NewPostgresSnapshotter connects to the database and ensures the snapshot table exists
func NewPostgresSnapshotter(ctx context.Context, databaseURL, name string) (*PostgresSnapshotter, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, createSnapshotsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot table: %w", err)
	}

	return &PostgresSnapshotter{db: db, name: name}, nil
}

func (p *PostgresSnapshotter) Load(ctx context.Context) ([]byte, error) {
	var payload string
	err := p.db.GetContext(ctx, &payload, "SELECT payload FROM store_snapshots WHERE name = $1", p.name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", p.name, err)
	}
	return []byte(payload), nil
}

func (p *PostgresSnapshotter) Save(ctx context.Context, data []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO store_snapshots (name, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`,
		p.name, string(data))
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", p.name, err)
	}
	return nil
}

// Close closes the database connection
func (p *PostgresSnapshotter) Close() error {
	return p.db.Close()
}

// Ping checks the database connection
func (p *PostgresSnapshotter) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
