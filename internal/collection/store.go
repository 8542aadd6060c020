// Package collection implements the persisted, insertion-ordered, identifier-keyed
// collections behind favorites and the watchlist.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/liamwears/moviefinder/internal/storage"
)

// Storage keys for the two collections
const (
	FavoritesKey = "movieFavorites"
	WatchlistKey = "movieWatchlist"
)

// ErrStorageCorrupt marks persisted data that could not be decoded.
// It is logged and recovered as an empty collection, never returned to callers.
var ErrStorageCorrupt = errors.New("persisted collection is corrupt")

// Keyed is implemented by elements whose identity is a single string key
type Keyed interface {
	Key() string
}

// Store is an ordered set of elements keyed by identity and persisted under one storage key.
// Every mutation is written through to storage.
type Store[T Keyed] struct {
	mu      sync.RWMutex
	key     string
	backend storage.Storage
	items   []T
	logger  *log.Logger
}

// NewStore creates an empty store for the given storage key. Call Load to rehydrate it.
func NewStore[T Keyed](backend storage.Storage, key string, logger *log.Logger) *Store[T] {
	return &Store[T]{
		key:     key,
		backend: backend,
		items:   []T{},
		logger:  logger,
	}
}

// Key returns the storage key of the store
func (s *Store[T]) Key() string {
	return s.key
}

// Load reads the persisted collection. Missing or unparsable data yields an empty collection.
func (s *Store[T]) Load(ctx context.Context) []T {
	items, err := s.read(ctx)
	if err != nil {
		s.logger.Printf("collection %s: %v, starting empty", s.key, err)
		items = []T{}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	return clone(items)
}

func (s *Store[T]) read(ctx context.Context) ([]T, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var decoded []T
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}

	// Drop duplicates a hand-edited file may contain, keeping first occurrence
	items := make([]T, 0, len(decoded))
	seen := make(map[string]struct{}, len(decoded))
	for _, item := range decoded {
		if _, dup := seen[item.Key()]; dup {
			continue
		}
		seen[item.Key()] = struct{}{}
		items = append(items, item)
	}
	return items, nil
}

// Save persists the full current sequence
func (s *Store[T]) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked(ctx)
}

func (s *Store[T]) saveLocked(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", s.key, err)
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save collection %s: %w", s.key, err)
	}
	return nil
}

// Items returns a copy of the collection in insertion order
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items)
}

// Len returns the number of elements
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Contains reports whether an element with the same key is present
func (s *Store[T]) Contains(item T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(item.Key()) >= 0
}

// Toggle removes the element if present, otherwise appends it, and returns the resulting sequence.
// The in-memory state is updated even when persisting fails.
func (s *Store[T]) Toggle(ctx context.Context, item T) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexLocked(item.Key()); idx >= 0 {
		s.removeAtLocked(idx)
	} else {
		s.items = append(s.items, item)
	}

	return clone(s.items), s.saveLocked(ctx)
}

// Add appends the element unless one with the same key exists
func (s *Store[T]) Add(ctx context.Context, item T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(item.Key()) >= 0 {
		return false, nil
	}
	s.items = append(s.items, item)
	return true, s.saveLocked(ctx)
}

// Remove deletes the element with the same key, if any
func (s *Store[T]) Remove(ctx context.Context, item T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(item.Key())
	if idx < 0 {
		return false, nil
	}
	s.removeAtLocked(idx)
	return true, s.saveLocked(ctx)
}

// Clear empties the collection. Confirmation is the caller's responsibility.
func (s *Store[T]) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []T{}
	return s.saveLocked(ctx)
}

func (s *Store[T]) indexLocked(key string) int {
	for i, existing := range s.items {
		if existing.Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store[T]) removeAtLocked(idx int) {
	next := make([]T, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	s.items = next
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
