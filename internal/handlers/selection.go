package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/liamwears/moviefinder/internal/models"
	"github.com/liamwears/moviefinder/internal/session"
)

// SelectionHandler handles the detail view requests
type SelectionHandler struct {
	session *session.Session
	logger  *log.Logger
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(s *session.Session, logger *log.Logger) *SelectionHandler {
	return &SelectionHandler{
		session: s,
		logger:  logger,
	}
}

// Select handles POST /api/selection
func (h *SelectionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var item models.Item
	if err := readJSON(w, r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(item.ID) == "" {
		writeError(w, http.StatusBadRequest, "imdbID is required")
		return
	}

	h.session.Select(item)

	// The detail fetch continues in the background
	writeJSON(w, http.StatusAccepted, h.session.Selection())
}

// Get handles GET /api/selection
func (h *SelectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Selection())
}

// Close handles DELETE /api/selection
func (h *SelectionHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.session.CloseDetail()
	w.WriteHeader(http.StatusNoContent)
}
