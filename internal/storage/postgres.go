package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/liamwears/moviefinder/internal/database"
)

// PostgresStorage stores values in the collection_entries table created by the migrator
type PostgresStorage struct {
	db *database.DB
}

// NewPostgresStorage creates a postgres backend
func NewPostgresStorage(db *database.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// Get reads the value stored under key
func (s *PostgresStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM collection_entries WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", key, err)
	}
	return []byte(value), nil
}

// Set upserts the value stored under key
func (s *PostgresStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO collection_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key
func (s *PostgresStorage) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM collection_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Health pings postgres
func (s *PostgresStorage) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
