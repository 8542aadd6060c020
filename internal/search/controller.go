// Package search owns the search session: query, pagination and the accumulated result list.
package search

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/liamwears/moviefinder/internal/models"
	"github.com/liamwears/moviefinder/internal/services"
)

// PageSize is the fixed number of results the directory returns per page
const PageSize = 10

var (
	// ErrEmptyQuery is returned for blank query text; state is left untouched
	ErrEmptyQuery = errors.New("empty query")
	// ErrStale is returned when a response arrived after a newer request superseded it
	ErrStale = errors.New("stale search response dropped")
)

// Status is the state of the search session
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Directory is the search half of the directory client
type Directory interface {
	Search(ctx context.Context, query string, page int) (*models.SearchPage, error)
}

// State is a snapshot of the search session
type State struct {
	Status       Status        `json:"status"`
	Query        string        `json:"query"`
	Page         int           `json:"page"`
	Results      []models.Item `json:"results"`
	TotalResults int           `json:"totalResults"`
	HasSearched  bool          `json:"hasSearched"`
	HasMore      bool          `json:"hasMore"`
	Error        string        `json:"error,omitempty"`
}

// request identifies one in-flight search. A response is applied only while
// its generation is still the controller's current one.
type request struct {
	generation    uint64
	query         string
	page          int
	appendResults bool
	userInitiated bool
}

// Controller drives searches and "load more" pagination against a Directory
type Controller struct {
	mu     sync.Mutex
	dir    Directory
	logger *log.Logger

	status      Status
	query       string
	page        int
	results     []models.Item
	total       int
	hasSearched bool
	errMsg      string

	generation uint64
	failed     *request
}

// NewController creates an idle search controller
func NewController(dir Directory, logger *log.Logger) *Controller {
	return &Controller{
		dir:     dir,
		logger:  logger,
		status:  StatusIdle,
		results: []models.Item{},
	}
}

// SubmitQuery starts a fresh user search, discarding previously accumulated results.
// It blocks until the directory answers.
func (c *Controller) SubmitQuery(ctx context.Context, text string) error {
	return c.submit(ctx, text, true)
}

// Bootstrap runs the initial landing query. It behaves like SubmitQuery but
// leaves HasSearched false so the zero-state view can still be shown.
func (c *Controller) Bootstrap(ctx context.Context, text string) error {
	return c.submit(ctx, text, false)
}

func (c *Controller) submit(ctx context.Context, text string, userInitiated bool) error {
	query := strings.TrimSpace(text)
	if query == "" {
		return ErrEmptyQuery
	}

	c.mu.Lock()
	req := c.beginLocked(request{query: query, page: 1, userInitiated: userInitiated})
	c.mu.Unlock()

	return c.execute(ctx, req)
}

// LoadMore fetches the next page of the current query and appends it.
// It is a no-op unless the session is ready and more results exist.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.status != StatusReady || !c.hasMoreLocked() {
		c.mu.Unlock()
		return nil
	}
	req := c.beginLocked(request{
		query:         c.query,
		page:          c.page + 1,
		appendResults: true,
		userInitiated: c.hasSearched,
	})
	c.mu.Unlock()

	return c.execute(ctx, req)
}

// Retry re-issues the request that last failed. It is a no-op unless the session failed.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.status != StatusFailed || c.failed == nil {
		c.mu.Unlock()
		return nil
	}
	req := c.beginLocked(*c.failed)
	c.mu.Unlock()

	return c.execute(ctx, req)
}

// beginLocked moves the session into Loading for req and tags it with a new generation
func (c *Controller) beginLocked(req request) request {
	c.generation++
	req.generation = c.generation

	c.status = StatusLoading
	c.query = req.query
	c.page = req.page
	c.errMsg = ""
	if !req.appendResults {
		c.results = []models.Item{}
		c.total = 0
	}
	if req.userInitiated {
		c.hasSearched = true
	}
	return req
}

func (c *Controller) execute(ctx context.Context, req request) error {
	page, err := c.dir.Search(ctx, req.query, req.page)

	c.mu.Lock()
	defer c.mu.Unlock()

	if req.generation != c.generation {
		c.logger.Printf("Dropping stale search response for %q page %d", req.query, req.page)
		return ErrStale
	}

	if err != nil {
		c.status = StatusFailed
		c.errMsg = services.UserMessage(err)
		if !req.appendResults {
			c.results = []models.Item{}
		}
		failed := req
		c.failed = &failed
		c.logger.Printf("Search %q page %d failed: %v", req.query, req.page, err)
		return err
	}

	if req.appendResults {
		c.results = append(c.results, page.Items...)
		// An empty page means the declared total overstated what the directory will return
		if len(page.Items) == 0 {
			c.total = len(c.results)
		} else {
			c.total = page.TotalResults
		}
	} else {
		c.results = append([]models.Item{}, page.Items...)
		c.total = page.TotalResults
	}
	c.status = StatusReady
	c.failed = nil
	return nil
}

func (c *Controller) hasMoreLocked() bool {
	return c.page*PageSize < c.total
}

// Snapshot returns a copy of the current session state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make([]models.Item, len(c.results))
	copy(results, c.results)

	return State{
		Status:       c.status,
		Query:        c.query,
		Page:         c.page,
		Results:      results,
		TotalResults: c.total,
		HasSearched:  c.hasSearched,
		HasMore:      c.hasMoreLocked(),
		Error:        c.errMsg,
	}
}
