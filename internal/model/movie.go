package model

import (
	"errors"
	"net/url"
	"strings"
)

// GenrePlaceholder is the value the genre picker reports when the user
// never chose a genre.  It is stored verbatim but ignored by statistics.
const GenrePlaceholder = "Select Genre"

// ErrTitleRequired is returned by Validate when a movie has no title.
var ErrTitleRequired = errors.New("title is required")

// Movie is a single tracked movie.  The JSON field names match the
// movies.json layout written by the mobile client so existing files load
// unchanged.
//
// Fields:
//  ID            – random non-zero identifier assigned by the store.
//  Title         – required before the movie is persisted.
//  Rating        – free text; usually "1".."10", empty for watchlist items.
//  Cinema        – name of the cinema the movie was watched at.
//  IsFavorite    – favorite flag; exclusive with IsWatchlist by convention.
//  IsWatchlist   – watchlist flag; exclusive with IsFavorite by convention.
//  Image         – poster image reference.
//  Lat/Lng/Zoom  – map position of the cinema; Zoom == 0 means unset.
type Movie struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Director      string   `json:"director"`
	Genre         string   `json:"genre"`
	ReleaseYear   string   `json:"releaseYear"`
	Rating        string   `json:"rating"`
	Cinema        string   `json:"cinema"`
	CinemaAddress string   `json:"cinemaAddress"`
	Description   string   `json:"description"`
	IsFavorite    bool     `json:"isFavorite"`
	IsWatchlist   bool     `json:"isWatchlist"`
	Image         ImageRef `json:"image"`
	Lat           float64  `json:"lat"`
	Lng           float64  `json:"lng"`
	Zoom          float32  `json:"zoom"`
}

// Validate checks the invariants the API enforces before a movie reaches a
// store.  Stores themselves accept any movie.
func (m *Movie) Validate() error {
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return ErrTitleRequired
	}
	return nil
}

// ToggleFavorite flips the favorite flag.  Marking a movie as favorite
// takes it off the watchlist.
func (m *Movie) ToggleFavorite() {
	m.IsFavorite = !m.IsFavorite
	if m.IsFavorite {
		m.IsWatchlist = false
	}
}

// ToggleWatchlist flips the watchlist flag.  Putting a movie on the
// watchlist clears the favorite flag and the fields that only make sense
// for a movie that was already watched.
func (m *Movie) ToggleWatchlist() {
	m.IsWatchlist = !m.IsWatchlist
	if m.IsWatchlist {
		m.IsFavorite = false
	}
	m.Normalize()
}

// Normalize clears rating and cinema details on watchlist movies.
func (m *Movie) Normalize() {
	if m.IsWatchlist {
		m.Rating = ""
		m.Cinema = ""
		m.CinemaAddress = ""
	}
}

// ImageRef is a poster image URI.  It is serialized as a bare string in
// both the JSON file and remote documents.
type ImageRef struct {
	u *url.URL
}

// ParseImageRef parses raw into an ImageRef.  An empty string yields the
// empty reference.
func ParseImageRef(raw string) (ImageRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ImageRef{}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ImageRef{}, err
	}
	return ImageRef{u: u}, nil
}

// IsEmpty reports whether no image has been attached.
func (r ImageRef) IsEmpty() bool { return r.u == nil }

// String returns the URI, or "" for the empty reference.
func (r ImageRef) String() string {
	if r.u == nil {
		return ""
	}
	return r.u.String()
}

// MarshalText implements encoding.TextMarshaler.
func (r ImageRef) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ImageRef) UnmarshalText(b []byte) error {
	parsed, err := ParseImageRef(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
