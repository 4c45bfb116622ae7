package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StateStore holds scraper cursors and one-shot markers as plain key/value
// pairs, so restarts do not replay work the previous process finished.
type StateStore struct {
	pool *pgxpool.Pool
}

func NewStateStore(pool *pgxpool.Pool) *StateStore {
	return &StateStore{pool: pool}
}

// Get returns the stored value and whether the key exists.
func (s *StateStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM scraper_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("state get %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes a key, overwriting any previous value.
func (s *StateStore) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO scraper_state (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	if err != nil {
		return fmt.Errorf("state set %q: %w", key, err)
	}
	return nil
}
