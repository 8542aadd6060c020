package search_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamwears/moviefinder/internal/models"
	"github.com/liamwears/moviefinder/internal/search"
	"github.com/liamwears/moviefinder/internal/services"
)

type call struct {
	query string
	page  int
}

// fakeDirectory answers from a function and records every call
type fakeDirectory struct {
	mu      sync.Mutex
	calls   []call
	respond func(query string, page int) (*models.SearchPage, error)
}

func (f *fakeDirectory) Search(_ context.Context, query string, page int) (*models.SearchPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{query, page})
	respond := f.respond
	f.mu.Unlock()
	return respond(query, page)
}

func (f *fakeDirectory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func makePage(prefix string, page, count, total int) *models.SearchPage {
	items := make([]models.Item, count)
	for i := range items {
		items[i] = models.Item{
			ID:    fmt.Sprintf("%s-%d-%d", prefix, page, i),
			Title: fmt.Sprintf("%s %d", prefix, (page-1)*search.PageSize+i),
			Type:  models.KindMovie,
		}
	}
	return &models.SearchPage{Items: items, TotalResults: total, Page: page}
}

func notFoundErr(message string) error {
	return &services.DirectoryError{Kind: services.ErrNotFound, Message: message}
}

func newController(dir search.Directory) *search.Controller {
	return search.NewController(dir, log.New(io.Discard, "", 0))
}

func TestInitialStateIsIdle(t *testing.T) {
	ctrl := newController(&fakeDirectory{})
	state := ctrl.Snapshot()
	assert.Equal(t, search.StatusIdle, state.Status)
	assert.False(t, state.HasSearched)
	assert.Empty(t, state.Results)
}

func TestAvengersPagination(t *testing.T) {
	dir := &fakeDirectory{respond: func(q string, page int) (*models.SearchPage, error) {
		return makePage(q, page, 10, 905), nil
	}}
	ctrl := newController(dir)
	ctx := context.Background()

	require.NoError(t, ctrl.SubmitQuery(ctx, "avengers"))
	state := ctrl.Snapshot()
	assert.Equal(t, search.StatusReady, state.Status)
	assert.Equal(t, 1, state.Page)
	assert.Len(t, state.Results, 10)
	assert.Equal(t, 905, state.TotalResults)
	assert.True(t, state.HasMore)
	assert.True(t, state.HasSearched)

	first := state.Results
	require.NoError(t, ctrl.LoadMore(ctx))
	state = ctrl.Snapshot()
	assert.Equal(t, search.StatusReady, state.Status)
	assert.Equal(t, 2, state.Page)
	require.Len(t, state.Results, 20)
	assert.Equal(t, first, state.Results[:10])
	assert.Equal(t, makePage("avengers", 2, 10, 905).Items, state.Results[10:])
	assert.Equal(t, []call{{"avengers", 1}, {"avengers", 2}}, dir.calls)
}

func TestNotFoundScenario(t *testing.T) {
	dir := &fakeDirectory{respond: func(string, int) (*models.SearchPage, error) {
		return nil, notFoundErr("Movie not found!")
	}}
	ctrl := newController(dir)

	err := ctrl.SubmitQuery(context.Background(), "zzxynonexistent")
	require.ErrorIs(t, err, services.ErrNotFound)

	state := ctrl.Snapshot()
	assert.Equal(t, search.StatusFailed, state.Status)
	assert.Equal(t, "Movie not found!", state.Error)
	assert.Empty(t, state.Results)
	assert.True(t, state.HasSearched)
}

func TestBlankQueryIsIgnored(t *testing.T) {
	dir := &fakeDirectory{respond: func(q string, page int) (*models.SearchPage, error) {
		return makePage(q, page, 3, 3), nil
	}}
	ctrl := newController(dir)
	ctx := context.Background()

	for _, text := range []string{"", "   ", "\t\n"} {
		require.ErrorIs(t, ctrl.SubmitQuery(ctx, text), search.ErrEmptyQuery)
	}
	assert.Equal(t, 0, dir.callCount())
	assert.Equal(t, search.StatusIdle, ctrl.Snapshot().Status)

	require.NoError(t, ctrl.SubmitQuery(ctx, "alien"))
	before := ctrl.Snapshot()
	require.ErrorIs(t, ctrl.SubmitQuery(ctx, " "), search.ErrEmptyQuery)
	assert.Equal(t, before, ctrl.Snapshot())
}

func TestSubmitTrimsQuery(t *testing.T) {
	dir := &fakeDirectory{respond: func(q string, page int) (*models.SearchPage, error) {
		return makePage(q, page, 1, 1), nil
	}}
	ctrl := newController(dir)
	require.NoError(t, ctrl.SubmitQuery(context.Background(), "  alien  "))
	assert.Equal(t, "alien", ctrl.Snapshot().Query)
}

func TestNewQueryDiscardsPreviousResults(t *testing.T) {
	dir := &fakeDirectory{respond: func(q string, page int) (*models.SearchPage, error) {
		return makePage(q, page, 10, 40), nil
	}}
	ctrl := newController(dir)
	ctx := context.Background()

	require.NoError(t, ctrl.SubmitQuery(ctx, "alien"))
	require.NoError(t, ctrl.LoadMore(ctx))
	require.Len(t, ctrl.Snapshot().Results, 20)

	require.NoError(t, ctrl.SubmitQuery(ctx, "batman"))
	state := ctrl.Snapshot()
	assert.Equal(t, 1, state.Page)
	require.Len(t, state.Results, 10)
	assert.Equal(t, "batman-1-0", state.Results[0].ID)
}

func TestLoadMoreNoOpConditions(t *testing.T) {
	ctx := context.Background()

	t.Run("idle", func(t *testing.T) {
		dir := &fakeDirectory{}
		require.NoError(t, newController(dir).LoadMore(ctx))
		assert.Equal(t, 0, dir.callCount())
	})

	t.Run("exhausted", func(t *testing.T) {
		dir := &fakeDirectory{respond: func(q string, page int) (*models.SearchPage, error) {
			return makePage(q, page, 10, 10), nil
		}}
		ctrl := newController(dir)
		require.NoError(t, ctrl.SubmitQuery(ctx, "alien"))
		assert.False(t, ctrl.Snapshot().HasMore)
		require.NoError(t, ctrl.LoadMore(ctx))
		assert.Equal(t, 1, dir.callCount())
	})

	t.Run("failed", func(t *testing.T) {
		dir := &fakeDirectory{respond: func(string, int) (*models.SearchPage, error) {
			return nil, notFoundErr("Movie not found!")
		}}
		ctrl := newController(dir)
		_ = ctrl.SubmitQuery(ctx, "alien")
		require.NoError(t, ctrl.LoadMore(ctx))
		assert.Equal(t, 1, dir.callCount())
	})
}

func TestLoadMoreFailureKeepsResults(t *testing.T) {
	transportErr := &services.DirectoryError{Kind: services.ErrTransport, Message: services.TransportMessage}
	dir := &fakeDirectory{respond: func(q string, page int) (*models.SearchPage, error) {
		if page == 2 {
			return nil, transportErr
		}
		return makePage(q, page, 10, 30), nil
	}}
	ctrl := newController(dir)
	ctx := context.Background()

	require.NoError(t, ctrl.SubmitQuery(ctx, "alien"))
	require.ErrorIs(t, ctrl.LoadMore(ctx), services.ErrTransport)

	state := ctrl.Snapshot()
	assert.Equal(t, search.StatusFailed, state.Status)
	assert.Len(t, state.Results, 10)
	assert.Equal(t, services.TransportMessage, state.Error)

	// Retrying re-requests the failed page and appends it
	dir.respond = func(q string, page int) (*models.SearchPage, error) {
		return makePage(q, page, 10, 30), nil
	}
	require.NoError(t, ctrl.Retry(ctx))
	state = ctrl.Snapshot()
	assert.Equal(t, search.StatusReady, state.Status)
	assert.Equal(t, 2, state.Page)
	assert.Len(t, state.Results, 20)
	assert.Empty(t, state.Error)
}

func TestRetryAfterFreshQueryFailure(t *testing.T) {
	fail := true
	dir := &fakeDirectory{respond: func(q string, page int) (*models.SearchPage, error) {
		if fail {
			return nil, errors.New("connection reset")
		}
		return makePage(q, page, 5, 5), nil
	}}
	ctrl := newController(dir)
	ctx := context.Background()

	require.Error(t, ctrl.SubmitQuery(ctx, "alien"))
	assert.Equal(t, services.TransportMessage, ctrl.Snapshot().Error)

	fail = false
	require.NoError(t, ctrl.Retry(ctx))
	state := ctrl.Snapshot()
	assert.Equal(t, search.StatusReady, state.Status)
	assert.Equal(t, "alien", state.Query)
	assert.Len(t, state.Results, 5)

	// Nothing left to retry
	require.NoError(t, ctrl.Retry(ctx))
	assert.Equal(t, 2, dir.callCount())
}

func TestBootstrapDoesNotMarkSearched(t *testing.T) {
	dir := &fakeDirectory{respond: func(q string, page int) (*models.SearchPage, error) {
		return makePage(q, page, 10, 905), nil
	}}
	ctrl := newController(dir)
	ctx := context.Background()

	require.NoError(t, ctrl.Bootstrap(ctx, "avengers"))
	state := ctrl.Snapshot()
	assert.Equal(t, search.StatusReady, state.Status)
	assert.False(t, state.HasSearched)
	assert.Len(t, state.Results, 10)

	require.NoError(t, ctrl.SubmitQuery(ctx, "alien"))
	assert.True(t, ctrl.Snapshot().HasSearched)
}

func TestEmptyPageClampsTotal(t *testing.T) {
	dir := &fakeDirectory{respond: func(q string, page int) (*models.SearchPage, error) {
		if page == 1 {
			return makePage(q, page, 10, 50), nil
		}
		return &models.SearchPage{Items: []models.Item{}, TotalResults: 50, Page: page}, nil
	}}
	ctrl := newController(dir)
	ctx := context.Background()

	require.NoError(t, ctrl.SubmitQuery(ctx, "alien"))
	require.NoError(t, ctrl.LoadMore(ctx))

	state := ctrl.Snapshot()
	assert.Equal(t, 10, state.TotalResults)
	assert.False(t, state.HasMore)
	require.NoError(t, ctrl.LoadMore(ctx))
	assert.Equal(t, 2, dir.callCount())
}

func TestStaleResponseIsDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	dir := &fakeDirectory{respond: func(q string, page int) (*models.SearchPage, error) {
		if q == "slow" {
			close(started)
			<-release
		}
		return makePage(q, page, 10, 100), nil
	}}
	ctrl := newController(dir)
	ctx := context.Background()

	errs := make(chan error, 1)
	go func() { errs <- ctrl.SubmitQuery(ctx, "slow") }()
	<-started

	require.NoError(t, ctrl.SubmitQuery(ctx, "fast"))
	close(release)
	require.ErrorIs(t, <-errs, search.ErrStale)

	state := ctrl.Snapshot()
	assert.Equal(t, "fast", state.Query)
	assert.Equal(t, search.StatusReady, state.Status)
	assert.Equal(t, "fast-1-0", state.Results[0].ID)
}

func TestLoadMoreWhileLoadingIsNoOp(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	dir := &fakeDirectory{respond: func(q string, page int) (*models.SearchPage, error) {
		if page == 2 {
			started <- struct{}{}
			<-release
		}
		return makePage(q, page, 10, 100), nil
	}}
	ctrl := newController(dir)
	ctx := context.Background()
	require.NoError(t, ctrl.SubmitQuery(ctx, "alien"))

	done := make(chan error, 1)
	go func() { done <- ctrl.LoadMore(ctx) }()
	<-started

	assert.Equal(t, search.StatusLoading, ctrl.Snapshot().Status)
	require.NoError(t, ctrl.LoadMore(ctx))
	close(release)
	require.NoError(t, <-done)

	state := ctrl.Snapshot()
	assert.Equal(t, 2, state.Page)
	assert.Len(t, state.Results, 20)
	assert.Equal(t, 2, dir.callCount())
}
