package models

import (
	"strconv"
	"strings"
)

// MediaKind is the catalog entry type reported by the directory
type MediaKind string

const (
	KindMovie   MediaKind = "movie"
	KindSeries  MediaKind = "series"
	KindEpisode MediaKind = "episode"
)

// NotAvailable is the directory's sentinel for missing fields
const NotAvailable = "N/A"

// IsValid checks if the kind is one of the known media kinds
func (k MediaKind) IsValid() bool {
	return k == KindMovie || k == KindSeries || k == KindEpisode
}

// Item represents a catalog entry summary as returned by search
type Item struct {
	ID     string    `json:"imdbID"`
	Title  string    `json:"Title"`
	Year   string    `json:"Year"`
	Poster string    `json:"Poster"`
	Type   MediaKind `json:"Type"`
	Rating string    `json:"imdbRating,omitempty"`
}

// Key returns the identity of the item. Two items with the same key are the same entity.
func (i Item) Key() string {
	return i.ID
}

// HasPoster reports whether the item carries a usable poster URL
func (i Item) HasPoster() bool {
	return i.Poster != "" && i.Poster != NotAvailable
}

// ReleaseYear returns the numeric release year, or 0 when unknown.
// Series ranges such as "2008–2013" resolve to their start year.
func (i Item) ReleaseYear() int {
	year := strings.TrimSpace(i.Year)
	end := 0
	for end < len(year) && year[end] >= '0' && year[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(year[:end])
	if err != nil {
		return 0
	}
	return n
}

// ItemView is an item annotated with its collection membership for display
type ItemView struct {
	Item
	Favorite  bool `json:"favorite"`
	Watchlist bool `json:"watchlist"`
}

// SearchPage represents one page of search results from the directory
type SearchPage struct {
	Items        []Item `json:"items"`
	TotalResults int    `json:"totalResults"`
	Page         int    `json:"page"`
}
