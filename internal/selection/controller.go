// Package selection tracks the item open in the detail view and its lazily fetched detail record.
package selection

import (
	"context"
	"log"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/liamwears/moviefinder/internal/models"
	"github.com/liamwears/moviefinder/internal/services"
)

// Status is the state of the detail fetch for the open item
type Status string

const (
	StatusClosed  Status = "closed"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Directory is the detail half of the directory client
type Directory interface {
	FetchDetail(ctx context.Context, id string) (*models.ItemDetail, error)
}

// State is a snapshot of the detail view
type State struct {
	Open   bool               `json:"open"`
	Item   *models.Item       `json:"item,omitempty"`
	Status Status             `json:"status"`
	Detail *models.ItemDetail `json:"detail,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Controller holds at most one selected item. Selecting starts a background
// detail fetch; results for an item that is no longer selected are discarded.
type Controller struct {
	mu     sync.Mutex
	base   context.Context
	dir    Directory
	logger *log.Logger
	wg     conc.WaitGroup

	selected   *models.Item
	status     Status
	detail     *models.ItemDetail
	errMsg     string
	generation uint64
	cancel     context.CancelFunc
}

// NewController creates a closed selection controller. Fetches are derived from base,
// so cancelling base aborts any fetch still in flight.
func NewController(base context.Context, dir Directory, logger *log.Logger) *Controller {
	return &Controller{
		base:   base,
		dir:    dir,
		logger: logger,
		status: StatusClosed,
	}
}

// Select opens item in the detail view and starts fetching its detail record
func (c *Controller) Select(item models.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.generation++
	gen := c.generation

	selected := item
	c.selected = &selected
	c.status = StatusLoading
	c.detail = nil
	c.errMsg = ""

	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel

	c.wg.Go(func() {
		defer cancel()
		detail, err := c.dir.FetchDetail(ctx, item.ID)
		c.resolve(gen, item.ID, detail, err)
	})
}

// resolve applies a fetch result if its tag still matches the current selection
func (c *Controller) resolve(gen uint64, id string, detail *models.ItemDetail, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.selected == nil || c.selected.ID != id {
		c.logger.Printf("Dropping stale detail response for %s", id)
		return
	}

	if err != nil {
		c.status = StatusFailed
		c.errMsg = services.UserMessage(err)
		c.logger.Printf("Detail fetch for %s failed: %v", id, err)
		return
	}

	c.status = StatusReady
	c.detail = detail
}

// Close closes the detail view and discards the detail record
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.generation++
	c.selected = nil
	c.status = StatusClosed
	c.detail = nil
	c.errMsg = ""
}

func (c *Controller) cancelLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Snapshot returns a copy of the current detail view state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := State{
		Open:   c.selected != nil,
		Status: c.status,
		Error:  c.errMsg,
	}
	if c.selected != nil {
		item := *c.selected
		state.Item = &item
	}
	if c.detail != nil {
		detail := *c.detail
		state.Detail = &detail
	}
	return state
}

// Wait blocks until every detail fetch started so far has resolved
func (c *Controller) Wait() {
	c.wg.Wait()
}
