//go:build integration

package storage_test

import (
	"context"
	"io"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/liamwears/moviefinder/internal/database"
	"github.com/liamwears/moviefinder/internal/storage"
)

// Run with: go test -tags integration ./internal/storage
// against the database named by MOVIEFINDER_TEST_DATABASE_URL.
func TestPostgresStorage(t *testing.T) {
	url := os.Getenv("MOVIEFINDER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MOVIEFINDER_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)

	db, err := database.New(ctx, database.Config{URL: url}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.NewMigrator(db.Pool, logger).Up(ctx))
	_, err = db.Exec(ctx, `DELETE FROM collection_entries`)
	require.NoError(t, err)

	exerciseBackend(t, storage.NewPostgresStorage(db))
}
