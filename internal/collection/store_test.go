package collection_test

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamwears/moviefinder/internal/collection"
	"github.com/liamwears/moviefinder/internal/models"
	"github.com/liamwears/moviefinder/internal/storage"
)

var (
	inception = models.Item{ID: "tt1375666", Title: "Inception", Year: "2010", Type: models.KindMovie}
	matrix    = models.Item{ID: "tt0133093", Title: "The Matrix", Year: "1999", Type: models.KindMovie}
	office    = models.Item{ID: "tt0386676", Title: "The Office", Year: "2005–2013", Type: models.KindSeries}
)

func newBackend(t *testing.T) storage.Storage {
	t.Helper()
	backend, err := storage.NewFileStorage(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	return backend
}

func newStore(t *testing.T, backend storage.Storage, key string) *collection.Store[models.Item] {
	t.Helper()
	store := collection.NewStore[models.Item](backend, key, log.New(io.Discard, "", 0))
	store.Load(context.Background())
	return store
}

func TestToggleFavoriteScenario(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, newBackend(t), collection.FavoritesKey)

	items, err := store.Toggle(ctx, models.Item{ID: "tt1375666", Title: "Inception"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "tt1375666", items[0].ID)
	assert.True(t, store.Contains(inception))

	items, err = store.Toggle(ctx, inception)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, store.Contains(inception))
}

func TestToggleIsSelfInverse(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, newBackend(t), collection.FavoritesKey)
	_, _ = store.Toggle(ctx, matrix)
	_, _ = store.Toggle(ctx, office)
	before := store.Items()

	for _, item := range []models.Item{inception, matrix, office} {
		_, err := store.Toggle(ctx, item)
		require.NoError(t, err)
		_, err = store.Toggle(ctx, item)
		require.NoError(t, err)
		assert.Equal(t, before, store.Items(), "toggle twice on %s", item.ID)
	}
}

func TestToggleMatchesByIdentifierOnly(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, newBackend(t), collection.WatchlistKey)
	_, _ = store.Toggle(ctx, inception)

	renamed := inception
	renamed.Title = "Inception (2010)"
	assert.True(t, store.Contains(renamed))

	items, err := store.Toggle(ctx, renamed)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestInsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, newBackend(t), collection.FavoritesKey)
	_, _ = store.Toggle(ctx, office)
	_, _ = store.Toggle(ctx, inception)
	_, _ = store.Toggle(ctx, matrix)
	_, _ = store.Toggle(ctx, inception)

	ids := []string{}
	for _, item := range store.Items() {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{office.ID, matrix.ID}, ids)
}

func TestPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)

	store := newStore(t, backend, collection.FavoritesKey)
	_, _ = store.Toggle(ctx, inception)
	_, _ = store.Toggle(ctx, matrix)

	reloaded := newStore(t, backend, collection.FavoritesKey)
	assert.Equal(t, store.Items(), reloaded.Items())

	// Watchlist shares the backend but not the key
	watchlist := newStore(t, backend, collection.WatchlistKey)
	assert.Equal(t, 0, watchlist.Len())
}

func TestLoadMalformedIsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	require.NoError(t, backend.Set(ctx, collection.FavoritesKey, []byte(`{not json`)))

	store := collection.NewStore[models.Item](backend, collection.FavoritesKey, log.New(io.Discard, "", 0))
	items := store.Load(ctx)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	// The store stays usable and overwrites the corrupt entry
	_, err := store.Toggle(ctx, inception)
	require.NoError(t, err)
	assert.Len(t, newStore(t, backend, collection.FavoritesKey).Items(), 1)
}

func TestLoadDropsDuplicateIdentifiers(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	require.NoError(t, backend.Set(ctx, collection.WatchlistKey,
		[]byte(`[{"imdbID":"tt1","Title":"A"},{"imdbID":"tt2","Title":"B"},{"imdbID":"tt1","Title":"A again"}]`)))

	items := newStore(t, backend, collection.WatchlistKey).Items()
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Title)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	backend := newBackend(t)
	store := newStore(t, backend, collection.FavoritesKey)
	_, _ = store.Toggle(ctx, inception)
	_, _ = store.Toggle(ctx, matrix)

	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, newStore(t, backend, collection.FavoritesKey).Len())
}

func TestAddAndRemove(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, newBackend(t), collection.FavoritesKey)

	added, err := store.Add(ctx, inception)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = store.Add(ctx, inception)
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := store.Remove(ctx, inception)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = store.Remove(ctx, inception)
	require.NoError(t, err)
	assert.False(t, removed)
}

type failingStorage struct {
	storage.Storage
}

func (failingStorage) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestToggleKeepsStateWhenSaveFails(t *testing.T) {
	store := newStore(t, failingStorage{Storage: newBackend(t)}, collection.FavoritesKey)

	items, err := store.Toggle(context.Background(), inception)
	require.Error(t, err)
	assert.Len(t, items, 1)
	assert.True(t, store.Contains(inception))
}
