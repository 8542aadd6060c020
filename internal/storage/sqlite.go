package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLStorage stores values in the collection_entries table of a sqlite database
type SQLStorage struct {
	db *sql.DB
}

// NewSQLStorage wraps an open sqlite handle whose schema is already in place
func NewSQLStorage(db *sql.DB) *SQLStorage {
	return &SQLStorage{db: db}
}

// Get reads the value stored under key
func (s *SQLStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM collection_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}
	return []byte(value), nil
}

// Set upserts the value stored under key
func (s *SQLStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collection_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key
func (s *SQLStorage) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM collection_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Health pings the database
func (s *SQLStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
