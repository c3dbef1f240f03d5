package catalog

import (
	"fmt"
	"strconv"

	"github.com/iliyamo/movie-manager/internal/model"
)

// NotAvailable is reported for a statistic that has no data.
const NotAvailable = "N/A"

// Stats summarises a movie list.
type Stats struct {
	Total             int      `json:"total"`
	Favorites         int      `json:"favorites"`
	Watchlist         int      `json:"watchlist"`
	AverageRating     string   `json:"average_rating"`
	AverageRatingNum  *float64 `json:"average_rating_value,omitempty"`
	MostCommonGenre   string   `json:"most_common_genre"`
	MostVisitedCinema string   `json:"most_visited_cinema"`
}

// ComputeStats derives the statistics screen from movies.  Only ratings
// that are plain integers count towards the average.  Genre and cinema
// ties go to the value that first appears in list order.
func ComputeStats(movies []model.Movie) Stats {
	s := Stats{
		Total:             len(movies),
		AverageRating:     NotAvailable,
		MostCommonGenre:   NotAvailable,
		MostVisitedCinema: NotAvailable,
	}

	var sum float64
	var rated int
	for _, m := range movies {
		if m.IsFavorite {
			s.Favorites++
		}
		if m.IsWatchlist {
			s.Watchlist++
		}
		if r, ok := parseRating(m.Rating); ok {
			sum += r
			rated++
		}
	}
	if rated > 0 {
		avg := sum / float64(rated)
		s.AverageRatingNum = &avg
		s.AverageRating = fmt.Sprintf("%.1f", avg)
	}

	if g, ok := mostFrequent(movies, func(m model.Movie) string {
		if m.Genre == model.GenrePlaceholder {
			return ""
		}
		return m.Genre
	}); ok {
		s.MostCommonGenre = g
	}
	if c, ok := mostFrequent(movies, func(m model.Movie) string { return m.Cinema }); ok {
		s.MostVisitedCinema = c
	}
	return s
}

// AverageRating returns the mean of the numeric ratings in movies.  ok is
// false when none parse.
func AverageRating(movies []model.Movie) (avg float64, ok bool) {
	s := ComputeStats(movies)
	if s.AverageRatingNum == nil {
		return 0, false
	}
	return *s.AverageRatingNum, true
}

// parseRating accepts a base-10 integer with an optional sign.  Fractions,
// exponents and surrounding spaces are rejected.
func parseRating(raw string) (float64, bool) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return float64(v), true
}

// mostFrequent counts the non-empty keys produced by key and returns the
// most common one.  Counting keeps first-seen order so the earliest key
// wins a tie.
func mostFrequent(movies []model.Movie, key func(model.Movie) string) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for _, m := range movies {
		k := key(m)
		if k == "" {
			continue
		}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}
	best, bestN := "", 0
	for _, k := range order {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best, bestN > 0
}
