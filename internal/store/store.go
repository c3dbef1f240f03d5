// Package store persists a user's movie collection.  Two implementations
// share the MovieStore contract: JSONStore keeps the whole list in a local
// JSON file and RemoteStore mirrors a remote per-user document collection
// behind a local copy.  Both are last-write-wins; neither offers
// transactions or conflict resolution.
package store

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/iliyamo/movie-manager/internal/model"
)

// ErrMovieNotFound is returned when an update or delete names an id the
// store does not hold.
var ErrMovieNotFound = errors.New("movie not found")

// MovieStore is the persistence contract shared by every backend.
// FindAll returns a snapshot; callers re-fetch after mutating.
type MovieStore interface {
	FindAll() []model.Movie
	FindByID(id int64) (model.Movie, error)
	// Create assigns m a fresh id and persists it.
	Create(m *model.Movie) error
	// Update overwrites the stored record whose id matches m.ID.
	Update(m model.Movie) error
	Delete(m model.Movie) error
}

// Reloader is implemented by stores that can re-read their backing data.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Loader is implemented by stores that fill themselves in the background.
type Loader interface {
	Loaded() bool
}

// newID returns a random non-zero id not already present in movies.
func newID(movies []model.Movie) int64 {
	for {
		id := rand.Int64()
		if id == 0 {
			continue
		}
		if indexOf(movies, id) < 0 {
			return id
		}
	}
}

func indexOf(movies []model.Movie, id int64) int {
	for i := range movies {
		if movies[i].ID == id {
			return i
		}
	}
	return -1
}

func snapshot(movies []model.Movie) []model.Movie {
	out := make([]model.Movie, len(movies))
	copy(out, movies)
	return out
}
