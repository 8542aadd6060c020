package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/liamwears/moviefinder/internal/models"
	"github.com/liamwears/moviefinder/internal/session"
)

// CollectionHandler handles favorites and watchlist requests
type CollectionHandler struct {
	session *session.Session
	logger  *log.Logger
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(s *session.Session, logger *log.Logger) *CollectionHandler {
	return &CollectionHandler{
		session: s,
		logger:  logger,
	}
}

type toggleResponse struct {
	Member bool              `json:"member"`
	Panel  session.PanelView `json:"panel"`
}

// Get handles GET /api/collections/{name}
func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	panel, err := h.session.Panel(r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Collection not found")
		return
	}

	writeJSON(w, http.StatusOK, panel.View())
}

// Toggle handles POST /api/collections/{name}/toggle
func (h *CollectionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, (*session.Panel).Toggle)
}

// ToggleSecondary handles POST /api/collections/{name}/secondary/toggle.
// It toggles the other collection from within this panel.
func (h *CollectionHandler) ToggleSecondary(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, (*session.Panel).ToggleSecondary)
}

func (h *CollectionHandler) toggle(w http.ResponseWriter, r *http.Request, fn func(*session.Panel, context.Context, models.Item) (bool, error)) {
	panel, err := h.session.Panel(r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Collection not found")
		return
	}

	var item models.Item
	if err := readJSON(w, r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(item.ID) == "" {
		writeError(w, http.StatusBadRequest, "imdbID is required")
		return
	}

	member, err := fn(panel, detach(r), item)
	if err != nil {
		// Membership already changed in memory; only persisting failed
		h.logger.Printf("Failed to persist toggle from %s panel: %v", panel.Name, err)
		writeError(w, http.StatusInternalServerError, "Failed to save collection")
		return
	}

	writeJSON(w, http.StatusOK, toggleResponse{Member: member, Panel: panel.View()})
}

// Clear handles DELETE /api/collections/{name}?confirm=true
func (h *CollectionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	confirmed := r.URL.Query().Get("confirm") == "true"

	err := h.session.ClearCollection(detach(r), name, confirmed)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, session.ErrUnknownCollection):
		writeError(w, http.StatusNotFound, "Collection not found")
	case errors.Is(err, session.ErrConfirmationRequired):
		writeError(w, http.StatusPreconditionRequired, "Confirm clearing with ?confirm=true")
	default:
		h.logger.Printf("Failed to clear %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "Failed to clear collection")
	}
}
