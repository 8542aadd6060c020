package handlers

import (
	"errors"
	"net/http"

	"github.com/liamwears/moviefinder/internal/models"
	"github.com/liamwears/moviefinder/internal/session"
)

// ViewHandler handles display setting requests
type ViewHandler struct {
	session *session.Session
}

// NewViewHandler creates a new view handler
func NewViewHandler(s *session.Session) *ViewHandler {
	return &ViewHandler{session: s}
}

type viewResponse struct {
	Settings  session.Settings  `json:"settings"`
	Displayed []models.ItemView `json:"displayed"`
}

// Get handles GET /api/view
func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewResponse{
		Settings:  h.session.Settings(),
		Displayed: h.session.Displayed(),
	})
}

// Update handles PATCH /api/view
func (h *ViewHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input session.SettingsUpdate
	if err := readJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.session.UpdateSettings(input)
	if errors.Is(err, session.ErrInvalidSetting) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, viewResponse{
		Settings:  settings,
		Displayed: h.session.Displayed(),
	})
}
