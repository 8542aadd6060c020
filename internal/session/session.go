// Package session composes the search, selection and collection components into the
// single-user surface the HTTP handlers expose.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/text/language"

	"github.com/liamwears/moviefinder/internal/collection"
	"github.com/liamwears/moviefinder/internal/models"
	"github.com/liamwears/moviefinder/internal/search"
	"github.com/liamwears/moviefinder/internal/selection"
	"github.com/liamwears/moviefinder/internal/view"
)

var (
	ErrUnknownCollection    = errors.New("unknown collection")
	ErrConfirmationRequired = errors.New("clearing a collection requires confirmation")
	ErrInvalidSetting       = errors.New("invalid view setting")
)

// Directory is the full directory client used by the session
type Directory interface {
	search.Directory
	selection.Directory
}

// Config holds session configuration
type Config struct {
	BootstrapQuery string
	Locale         language.Tag
}

// Settings are the user's display preferences for the result list
type Settings struct {
	Filter  view.TypeFilter `json:"filter"`
	Sort    view.SortKey    `json:"sort"`
	Density view.Density    `json:"density"`
}

// SettingsUpdate carries a partial settings change; nil fields are left as they are
type SettingsUpdate struct {
	Filter  *view.TypeFilter `json:"filter,omitempty"`
	Sort    *view.SortKey    `json:"sort,omitempty"`
	Density *view.Density    `json:"density,omitempty"`
}

// Stats are the counters shown above the result list
type Stats struct {
	Favorites int `json:"favorites"`
	Watchlist int `json:"watchlist"`
	Results   int `json:"results"`
}

// Snapshot is the complete state needed to render the application
type Snapshot struct {
	Search    search.State      `json:"search"`
	Displayed []models.ItemView `json:"displayed"`
	Settings  Settings          `json:"settings"`
	Stats     Stats             `json:"stats"`
	Selection selection.State   `json:"selection"`
}

// Session is the application root for one user
type Session struct {
	mu       sync.RWMutex
	settings Settings

	cfg       Config
	search    *search.Controller
	selection *selection.Controller
	favorites *collection.Store[models.Item]
	watchlist *collection.Store[models.Item]
	panels    map[string]*Panel
	logger    *log.Logger
}

// New creates a session around already loaded collection stores
func New(ctx context.Context, dir Directory, favorites, watchlist *collection.Store[models.Item], cfg Config, logger *log.Logger) *Session {
	s := &Session{
		settings: Settings{
			Filter:  view.FilterAll,
			Sort:    view.SortRelevance,
			Density: view.DensityGrid,
		},
		cfg:       cfg,
		search:    search.NewController(dir, logger),
		selection: selection.NewController(ctx, dir, logger),
		favorites: favorites,
		watchlist: watchlist,
		logger:    logger,
	}

	s.panels = map[string]*Panel{
		PanelFavorites: {
			Name:             PanelFavorites,
			Title:            "My Favorites",
			EmptyMessage:     "No favorites yet",
			EmptyDescription: "Start adding movies to your favorites by clicking the heart icon",
			primary:          favorites,
			secondary:        watchlist,
			annotate:         s.annotate,
		},
		PanelWatchlist: {
			Name:             PanelWatchlist,
			Title:            "My Watchlist",
			EmptyMessage:     "Your watchlist is empty",
			EmptyDescription: "Add movies to your watchlist to keep track of what you want to watch",
			primary:          watchlist,
			secondary:        favorites,
			annotate:         s.annotate,
		},
	}

	return s
}

// Bootstrap runs the configured landing query, if any
func (s *Session) Bootstrap(ctx context.Context) error {
	if s.cfg.BootstrapQuery == "" {
		return nil
	}
	return s.search.Bootstrap(ctx, s.cfg.BootstrapQuery)
}

// SubmitQuery starts a new user search
func (s *Session) SubmitQuery(ctx context.Context, text string) error {
	return s.search.SubmitQuery(ctx, text)
}

// LoadMore fetches the next page of the current search
func (s *Session) LoadMore(ctx context.Context) error {
	return s.search.LoadMore(ctx)
}

// Retry re-issues the last failed search request
func (s *Session) Retry(ctx context.Context) error {
	return s.search.Retry(ctx)
}

// Search returns the raw search session state
func (s *Session) Search() search.State {
	return s.search.Snapshot()
}

// ToggleFavorite toggles favorite membership and reports whether the item is now a favorite
func (s *Session) ToggleFavorite(ctx context.Context, item models.Item) (bool, error) {
	return s.panels[PanelFavorites].Toggle(ctx, item)
}

// ToggleWatchlist toggles watchlist membership and reports whether the item is now listed
func (s *Session) ToggleWatchlist(ctx context.Context, item models.Item) (bool, error) {
	return s.panels[PanelWatchlist].Toggle(ctx, item)
}

// Panel returns the collection panel with the given name
func (s *Session) Panel(name string) (*Panel, error) {
	panel, ok := s.panels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return panel, nil
}

// ClearCollection empties a collection once the user has confirmed
func (s *Session) ClearCollection(ctx context.Context, name string, confirmed bool) error {
	panel, err := s.Panel(name)
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := panel.Clear(ctx); err != nil {
		return err
	}
	s.logger.Printf("Cleared collection %s", name)
	return nil
}

// Select opens item in the detail view
func (s *Session) Select(item models.Item) {
	s.selection.Select(item)
}

// CloseDetail closes the detail view
func (s *Session) CloseDetail() {
	s.selection.Close()
}

// Selection returns the detail view state
func (s *Session) Selection() selection.State {
	return s.selection.Snapshot()
}

// Settings returns the current display settings
func (s *Session) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings validates and applies a partial settings change atomically
func (s *Session) UpdateSettings(update SettingsUpdate) (Settings, error) {
	if update.Filter != nil && !update.Filter.IsValid() {
		return Settings{}, fmt.Errorf("%w: filter %q", ErrInvalidSetting, *update.Filter)
	}
	if update.Sort != nil && !update.Sort.IsValid() {
		return Settings{}, fmt.Errorf("%w: sort %q", ErrInvalidSetting, *update.Sort)
	}
	if update.Density != nil && !update.Density.IsValid() {
		return Settings{}, fmt.Errorf("%w: density %q", ErrInvalidSetting, *update.Density)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if update.Filter != nil {
		s.settings.Filter = *update.Filter
	}
	if update.Sort != nil {
		s.settings.Sort = *update.Sort
	}
	if update.Density != nil {
		s.settings.Density = *update.Density
	}
	return s.settings, nil
}

// Displayed returns the filtered and sorted result list annotated with membership
func (s *Session) Displayed() []models.ItemView {
	return s.project(s.search.Snapshot().Results, s.Settings())
}

func (s *Session) project(results []models.Item, settings Settings) []models.ItemView {
	return s.annotate(view.Project(results, view.Options{
		Filter: settings.Filter,
		Sort:   settings.Sort,
		Locale: s.cfg.Locale,
	}))
}

// Featured returns the curated landing items annotated with membership
func (s *Session) Featured() []models.ItemView {
	return s.annotate(models.FeaturedItems())
}

// Stats returns the collection and result counters
func (s *Session) Stats() Stats {
	return Stats{
		Favorites: s.favorites.Len(),
		Watchlist: s.watchlist.Len(),
		Results:   len(s.search.Snapshot().Results),
	}
}

// Snapshot returns the complete application state
func (s *Session) Snapshot() Snapshot {
	state := s.search.Snapshot()
	settings := s.Settings()

	return Snapshot{
		Search:    state,
		Displayed: s.project(state.Results, settings),
		Settings:  settings,
		Stats: Stats{
			Favorites: s.favorites.Len(),
			Watchlist: s.watchlist.Len(),
			Results:   len(state.Results),
		},
		Selection: s.selection.Snapshot(),
	}
}

// Wait blocks until background detail fetches have finished
func (s *Session) Wait() {
	s.selection.Wait()
}

func (s *Session) annotate(items []models.Item) []models.ItemView {
	out := make([]models.ItemView, len(items))
	for i, item := range items {
		out[i] = models.ItemView{
			Item:      item,
			Favorite:  s.favorites.Contains(item),
			Watchlist: s.watchlist.Contains(item),
		}
	}
	return out
}
