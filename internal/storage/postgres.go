package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Values are kept as TEXT rather than JSONB so that corrupted state can still
// be read back and reported by the loader.
const createSlotsTable = `
CREATE TABLE IF NOT EXISTS profile_slots (
    slot       TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type pgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// PostgresStore implements Store on a single pgx table.
type PostgresStore struct {
	pool pgxPool
}

// NewPostgresStore wires a pgx backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the slots table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createSlotsTable); err != nil {
		return fmt.Errorf("create profile_slots: %w", err)
	}
	return nil
}

// Get fetches a slot value.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM profile_slots WHERE slot = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query slot %s: %w", key, err)
	}
	return []byte(value), nil
}

// Put upserts a slot value.
func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
        INSERT INTO profile_slots (slot, value)
        VALUES ($1, $2)
        ON CONFLICT (slot) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
    `, key, string(value))
	if err != nil {
		return fmt.Errorf("upsert slot %s: %w", key, err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
