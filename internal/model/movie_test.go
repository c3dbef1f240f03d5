package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFavoriteClearsWatchlist(t *testing.T) {
	m := Movie{Title: "Alien", IsWatchlist: true}

	m.ToggleFavorite()
	assert.True(t, m.IsFavorite)
	assert.False(t, m.IsWatchlist)

	m.ToggleFavorite()
	assert.False(t, m.IsFavorite)
	assert.False(t, m.IsWatchlist)
}

func TestToggleWatchlistClearsWatchedFields(t *testing.T) {
	m := Movie{
		Title:         "Heat",
		IsFavorite:    true,
		Rating:        "8",
		Cinema:        "Omniplex",
		CinemaAddress: "Waterford",
	}

	m.ToggleWatchlist()
	assert.True(t, m.IsWatchlist)
	assert.False(t, m.IsFavorite)
	assert.Empty(t, m.Rating)
	assert.Empty(t, m.Cinema)
	assert.Empty(t, m.CinemaAddress)

	m.ToggleWatchlist()
	assert.False(t, m.IsWatchlist)
	assert.False(t, m.IsFavorite)
}

func TestValidate(t *testing.T) {
	m := Movie{Title: "   "}
	assert.ErrorIs(t, m.Validate(), ErrTitleRequired)

	m.Title = "  Jaws "
	require.NoError(t, m.Validate())
	assert.Equal(t, "Jaws", m.Title)
}

func TestLocationDefaultsUntilSet(t *testing.T) {
	m := Movie{Cinema: "Old"}
	assert.Equal(t, DefaultLocation, m.Location())

	m.SetLocation(Location{Lat: 53.3, Lng: -6.2, Zoom: 12}, "", "")
	assert.Equal(t, Location{Lat: 53.3, Lng: -6.2, Zoom: 12}, m.Location())
	assert.Equal(t, "Old", m.Cinema, "empty picker values keep the current cinema")

	m.SetLocation(Location{Lat: 1, Lng: 2, Zoom: 3}, "Savoy", "O'Connell St")
	assert.Equal(t, "Savoy", m.Cinema)
	assert.Equal(t, "O'Connell St", m.CinemaAddress)
}

func TestImageRefSerializesAsString(t *testing.T) {
	img, err := ParseImageRef("content://media/external/images/42")
	require.NoError(t, err)

	out, err := json.Marshal(Movie{ID: 7, Title: "Up", Image: img})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.Equal(t, "content://media/external/images/42", raw["image"])
	assert.Equal(t, "Up", raw["title"])
	assert.Contains(t, raw, "isFavorite")
	assert.Contains(t, raw, "releaseYear")

	var back Movie
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, img.String(), back.Image.String())
}

func TestEmptyImageRef(t *testing.T) {
	var m Movie
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","image":""}`), &m))
	assert.True(t, m.Image.IsEmpty())
	assert.Equal(t, "", m.Image.String())
}
