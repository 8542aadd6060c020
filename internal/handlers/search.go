package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/liamwears/moviefinder/internal/search"
	"github.com/liamwears/moviefinder/internal/services"
	"github.com/liamwears/moviefinder/internal/session"
)

// SearchHandler handles search and result list requests
type SearchHandler struct {
	session *session.Session
	logger  *log.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(s *session.Session, logger *log.Logger) *SearchHandler {
	return &SearchHandler{
		session: s,
		logger:  logger,
	}
}

type submitQueryRequest struct {
	Query string `json:"query"`
}

// State handles GET /api/state
func (h *SearchHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// Submit handles POST /api/search
func (h *SearchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input submitQueryRequest
	if err := readJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.session.SubmitQuery(detach(r), input.Query)
	h.respond(w, err)
}

// LoadMore handles POST /api/search/more
func (h *SearchHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.session.LoadMore(detach(r)))
}

// Retry handles POST /api/search/retry
func (h *SearchHandler) Retry(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.session.Retry(detach(r)))
}

// Results handles GET /api/results
func (h *SearchHandler) Results(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Displayed())
}

// Featured handles GET /api/featured
func (h *SearchHandler) Featured(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Featured())
}

// respond writes the search state. The failure itself lives in the state, so only
// transport failures change the status code.
func (h *SearchHandler) respond(w http.ResponseWriter, err error) {
	status := http.StatusOK
	switch {
	case err == nil, errors.Is(err, search.ErrEmptyQuery), errors.Is(err, search.ErrStale):
	case errors.Is(err, services.ErrNotFound):
	default:
		h.logger.Printf("Search request failed: %v", err)
		status = http.StatusBadGateway
	}
	writeJSON(w, status, h.session.Search())
}
