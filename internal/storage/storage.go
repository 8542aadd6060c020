// Package storage provides the durable key/value backends that persist user collections.
package storage

import (
	"context"
	"errors"
	"regexp"
)

var (
	// ErrKeyNotFound is returned when a key has never been written
	ErrKeyNotFound = errors.New("storage key not found")
	// ErrInvalidKey is returned for keys that are empty or contain unsafe characters
	ErrInvalidKey = errors.New("invalid storage key")
)

// Storage is a durable string-keyed blob store, one value per key.
// Writes replace the whole value; the last write wins.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

// ValidateKey checks that a key is usable by every backend
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}
	return nil
}
