package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-manager/internal/model"
)

func sample() []model.Movie {
	return []model.Movie{
		{ID: 1, Title: "Alien", Director: "Ridley Scott", Genre: "Horror", IsFavorite: true, Rating: "9", Cinema: "Omniplex"},
		{ID: 2, Title: "Blade Runner", Director: "Ridley Scott", Genre: "Sci-Fi", IsWatchlist: true},
		{ID: 3, Title: "Heat", Director: "Michael Mann", Genre: "Crime", Rating: "7", Cinema: "Savoy"},
		{ID: 4, Title: "Thief", Director: "Michael Mann", Genre: "Crime", IsFavorite: true, Rating: "N/A", Cinema: "Savoy"},
	}
}

func ids(ms []model.Movie) []int64 {
	out := make([]int64, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{name: "all", filter: FilterAll, want: []int64{1, 2, 3, 4}},
		{name: "favorites", filter: FilterFavorites, want: []int64{1, 4}},
		{name: "watchlist", filter: FilterWatchlist, want: []int64{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(sample(), tt.filter)))
		})
	}
}

func TestParseFilter(t *testing.T) {
	assert.Equal(t, FilterFavorites, ParseFilter(" Favorites "))
	assert.Equal(t, FilterWatchlist, ParseFilter("watchlist"))
	assert.Equal(t, FilterAll, ParseFilter(""))
	assert.Equal(t, FilterAll, ParseFilter("bogus"))
	assert.Equal(t, "All Movies", FilterAll.Title())
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		query  string
		want   []int64
	}{
		{name: "empty query keeps view", filter: FilterFavorites, query: "", want: []int64{1, 4}},
		{name: "director any case", filter: FilterAll, query: "RIDLEY", want: []int64{1, 2}},
		{name: "genre", filter: FilterAll, query: "crim", want: []int64{3, 4}},
		{name: "narrows current filter", filter: FilterFavorites, query: "mann", want: []int64{4}},
		{name: "no match", filter: FilterWatchlist, query: "heat", want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Search(sample(), tt.filter, tt.query)))
		})
	}
}

func TestSearchDoesNotModifyInput(t *testing.T) {
	in := sample()
	_ = Search(in, FilterAll, "heat")
	assert.Equal(t, sample(), in)
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(sample())
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Favorites)
	assert.Equal(t, 1, s.Watchlist)
	assert.Equal(t, "8.0", s.AverageRating)
	assert.Equal(t, "Crime", s.MostCommonGenre)
	assert.Equal(t, "Savoy", s.MostVisitedCinema)
}

func TestAverageRating(t *testing.T) {
	avg, ok := AverageRating([]model.Movie{{Rating: "3"}, {Rating: "7"}, {Rating: "N/A"}})
	require.True(t, ok)
	assert.InDelta(t, 5.0, avg, 1e-9)

	_, ok = AverageRating([]model.Movie{{Rating: "N/A"}, {Rating: ""}, {Rating: "NaN"}})
	assert.False(t, ok)
	assert.Equal(t, NotAvailable, ComputeStats([]model.Movie{{Rating: "great"}}).AverageRating)
}

func TestAverageRatingCountsIntegersOnly(t *testing.T) {
	assert.Equal(t, "8.0", ComputeStats([]model.Movie{{Rating: "7.5"}, {Rating: "8"}}).AverageRating)

	s := ComputeStats([]model.Movie{
		{Rating: "7.5"}, {Rating: "8"}, {Rating: " 9 "}, {Rating: "1e1"}, {Rating: "0x10"},
	})
	assert.Equal(t, "8.0", s.AverageRating)

	avg, ok := AverageRating([]model.Movie{{Rating: "-2"}, {Rating: "+4"}})
	require.True(t, ok)
	assert.InDelta(t, 1.0, avg, 1e-9)
}

func TestMostCommonGenre(t *testing.T) {
	s := ComputeStats([]model.Movie{{Genre: "A"}, {Genre: "A"}, {Genre: "B"}})
	assert.Equal(t, "A", s.MostCommonGenre)

	s = ComputeStats(nil)
	assert.Equal(t, NotAvailable, s.MostCommonGenre)
	assert.Equal(t, NotAvailable, s.MostVisitedCinema)
	assert.Equal(t, NotAvailable, s.AverageRating)
	assert.Equal(t, 0, s.Total)
}

func TestStatsIgnorePlaceholdersAndBreakTiesInOrder(t *testing.T) {
	s := ComputeStats([]model.Movie{
		{Genre: model.GenrePlaceholder},
		{Genre: model.GenrePlaceholder},
		{Genre: "Drama", Cinema: "Lighthouse"},
		{Genre: "Comedy", Cinema: "IFI"},
		{Cinema: "IFI"},
		{Cinema: "Lighthouse"},
	})
	assert.Equal(t, "Drama", s.MostCommonGenre)
	assert.Equal(t, "Lighthouse", s.MostVisitedCinema)
}

func TestMostCommonTieGoesToFirstSeen(t *testing.T) {
	s := ComputeStats([]model.Movie{
		{Genre: "B", Cinema: "Savoy"},
		{Genre: "A", Cinema: "IFI"},
		{Genre: "A", Cinema: "IFI"},
		{Genre: "B", Cinema: "Savoy"},
	})
	assert.Equal(t, "B", s.MostCommonGenre)
	assert.Equal(t, "Savoy", s.MostVisitedCinema)
}
