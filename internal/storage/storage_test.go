package storage_test

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamwears/moviefinder/internal/database"
	"github.com/liamwears/moviefinder/internal/storage"
)

// exerciseBackend runs the shared contract every backend must satisfy
func exerciseBackend(t *testing.T, s storage.Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "movieFavorites")
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "movieFavorites", []byte(`[{"imdbID":"tt1"}]`)))
	got, err := s.Get(ctx, "movieFavorites")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"imdbID":"tt1"}]`, string(got))

	// last write wins
	require.NoError(t, s.Set(ctx, "movieFavorites", []byte(`[]`)))
	got, err = s.Get(ctx, "movieFavorites")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	// keys are independent
	_, err = s.Get(ctx, "movieWatchlist")
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	require.NoError(t, s.Delete(ctx, "movieFavorites"))
	_, err = s.Get(ctx, "movieFavorites")
	require.ErrorIs(t, err, storage.ErrKeyNotFound)
	require.NoError(t, s.Delete(ctx, "movieFavorites"))

	require.ErrorIs(t, s.Set(ctx, "../escape", []byte(`x`)), storage.ErrInvalidKey)
	require.NoError(t, s.Health(ctx))
}

func TestFileStorageMemory(t *testing.T) {
	s, err := storage.NewFileStorage(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	exerciseBackend(t, s)
}

func TestFileStorageDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewFileStorage(afero.NewOsFs(), filepath.Join(dir, "collections"))
	require.NoError(t, err)
	exerciseBackend(t, s)
}

func TestFileStorageRequiresDir(t *testing.T) {
	_, err := storage.NewFileStorage(afero.NewMemMapFs(), "")
	require.Error(t, err)
}

func TestSQLStorage(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "moviefinder.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	exerciseBackend(t, storage.NewSQLStorage(db))
}
