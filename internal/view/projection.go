// Package view derives the displayed result list from the accumulated search results.
package view

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/liamwears/moviefinder/internal/models"
)

// TypeFilter restricts the displayed list to one media kind
type TypeFilter string

const (
	FilterAll     TypeFilter = "all"
	FilterMovie   TypeFilter = TypeFilter(models.KindMovie)
	FilterSeries  TypeFilter = TypeFilter(models.KindSeries)
	FilterEpisode TypeFilter = TypeFilter(models.KindEpisode)
)

// IsValid checks if the filter is a known value
func (f TypeFilter) IsValid() bool {
	return f == FilterAll || models.MediaKind(f).IsValid()
}

// SortKey orders the displayed list
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortYear      SortKey = "year"
	SortTitle     SortKey = "title"
)

// IsValid checks if the sort key is a known value
func (k SortKey) IsValid() bool {
	return k == SortRelevance || k == SortYear || k == SortTitle
}

// Density is the display layout of result lists
type Density string

const (
	DensityGrid Density = "grid"
	DensityList Density = "list"
)

// IsValid checks if the density is a known value
func (d Density) IsValid() bool {
	return d == DensityGrid || d == DensityList
}

// Options selects the filter and ordering of a projection
type Options struct {
	Filter TypeFilter
	Sort   SortKey
	// Locale drives title collation; language.Und falls back to root collation
	Locale language.Tag
}

// Project returns the displayed list for items. The input slice is never modified.
func Project(items []models.Item, opts Options) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if opts.Filter == "" || opts.Filter == FilterAll || item.Type == models.MediaKind(opts.Filter) {
			out = append(out, item)
		}
	}

	switch opts.Sort {
	case SortYear:
		// Unknown years count as zero and sink to the bottom
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ReleaseYear() > out[j].ReleaseYear()
		})
	case SortTitle:
		// collate.Collator keeps internal buffers, so each projection gets its own
		c := collate.New(opts.Locale)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Title, out[j].Title) < 0
		})
	}

	return out
}
