// Package catalog holds the read-side computations over a user's movie
// list: filter views, search and statistics.  Everything here works on an
// in-memory slice and never touches a store.
package catalog

import (
	"strings"

	"github.com/iliyamo/movie-manager/internal/model"
)

// Filter selects one of the list views.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterFavorites Filter = "favorites"
	FilterWatchlist Filter = "watchlist"
)

// ParseFilter maps a query value onto a Filter.  Unknown or empty values
// fall back to FilterAll.
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterFavorites:
		return FilterFavorites
	case FilterWatchlist:
		return FilterWatchlist
	default:
		return FilterAll
	}
}

// Title is the heading shown for the view.
func (f Filter) Title() string {
	switch f {
	case FilterFavorites:
		return "Favorites"
	case FilterWatchlist:
		return "Watchlist"
	default:
		return "All Movies"
	}
}

// Apply returns the movies visible under f, preserving order.  The result
// is a fresh slice; movies is not modified.
func Apply(movies []model.Movie, f Filter) []model.Movie {
	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		switch f {
		case FilterFavorites:
			if !m.IsFavorite {
				continue
			}
		case FilterWatchlist:
			if !m.IsWatchlist {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// Search narrows the view selected by f to movies whose title, director or
// genre contains query, ignoring case.  An empty query returns the whole
// view.
func Search(movies []model.Movie, f Filter, query string) []model.Movie {
	base := Apply(movies, f)
	q := strings.ToLower(query)
	if q == "" {
		return base
	}
	out := base[:0]
	for _, m := range base {
		if strings.Contains(strings.ToLower(m.Title), q) ||
			strings.Contains(strings.ToLower(m.Director), q) ||
			strings.Contains(strings.ToLower(m.Genre), q) {
			out = append(out, m)
		}
	}
	return out
}
