package session

import (
	"context"

	"github.com/liamwears/moviefinder/internal/collection"
	"github.com/liamwears/moviefinder/internal/models"
)

// Collection panel names
const (
	PanelFavorites = "favorites"
	PanelWatchlist = "watchlist"
)

// Panel presents one collection as primary, with the other collection as secondary.
// The favorites and watchlist panels are the same component with the stores swapped.
type Panel struct {
	Name             string
	Title            string
	EmptyMessage     string
	EmptyDescription string

	primary   *collection.Store[models.Item]
	secondary *collection.Store[models.Item]
	annotate  func([]models.Item) []models.ItemView
}

// PanelView is the rendered state of a panel
type PanelView struct {
	Name             string            `json:"name"`
	Title            string            `json:"title"`
	Count            int               `json:"count"`
	Items            []models.ItemView `json:"items"`
	Empty            bool              `json:"empty"`
	EmptyMessage     string            `json:"emptyMessage,omitempty"`
	EmptyDescription string            `json:"emptyDescription,omitempty"`
}

// View returns the panel contents in insertion order
func (p *Panel) View() PanelView {
	items := p.annotate(p.primary.Items())
	v := PanelView{
		Name:  p.Name,
		Title: p.Title,
		Count: len(items),
		Items: items,
		Empty: len(items) == 0,
	}
	if v.Empty {
		v.EmptyMessage = p.EmptyMessage
		v.EmptyDescription = p.EmptyDescription
	}
	return v
}

// Toggle toggles membership in the panel's own collection
func (p *Panel) Toggle(ctx context.Context, item models.Item) (bool, error) {
	_, err := p.primary.Toggle(ctx, item)
	return p.primary.Contains(item), err
}

// ToggleSecondary toggles membership in the other collection from within this panel
func (p *Panel) ToggleSecondary(ctx context.Context, item models.Item) (bool, error) {
	_, err := p.secondary.Toggle(ctx, item)
	return p.secondary.Contains(item), err
}

// Clear empties the panel's own collection
func (p *Panel) Clear(ctx context.Context) error {
	return p.primary.Clear(ctx)
}

// Len returns the size of the panel's own collection
func (p *Panel) Len() int {
	return p.primary.Len()
}
