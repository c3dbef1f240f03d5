package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-manager/internal/model"
)

// DefaultRemoteTimeout bounds a single remote call when RemoteOptions
// leaves Timeout unset.
const DefaultRemoteTimeout = 10 * time.Second

// RemoteOptions tunes a RemoteStore.
type RemoteOptions struct {
	Timeout time.Duration // per remote call
	Logger  *zerolog.Logger
}

// RemoteStore serves reads from a local copy of a remote document
// collection.  Mutations change the local copy synchronously and are then
// pushed to the collection in the background.  Remote failures are logged
// and otherwise ignored: there is no retry, so a failed push leaves the
// local copy and the collection diverged until the next write of that
// movie or a Reload.
type RemoteStore struct {
	mu     sync.Mutex
	coll   DocumentCollection
	movies []model.Movie

	timeout time.Duration
	logger  zerolog.Logger

	pending  sync.WaitGroup
	loaded   chan struct{}
	loadOnce sync.Once
}

// NewRemoteStore returns a store over coll and starts loading the
// collection in the background.  Use WaitLoaded to block until the first
// load attempt has finished.
func NewRemoteStore(coll DocumentCollection, opts RemoteOptions) *RemoteStore {
	s := &RemoteStore{
		coll:    coll,
		movies:  []model.Movie{},
		timeout: opts.Timeout,
		logger:  log.Logger,
		loaded:  make(chan struct{}),
	}
	if s.timeout <= 0 {
		s.timeout = DefaultRemoteTimeout
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer s.loadOnce.Do(func() { close(s.loaded) })
		if err := s.load(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("error loading movies")
		}
	}()
	return s
}

// WaitLoaded blocks until the initial load has finished, successfully or
// not, or ctx is done.
func (s *RemoteStore) WaitLoaded(ctx context.Context) error {
	select {
	case <-s.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Loaded reports whether the initial load has finished.  Until then
// FindAll may return a partial view of the collection.
func (s *RemoteStore) Loaded() bool {
	select {
	case <-s.loaded:
		return true
	default:
		return false
	}
}

// Reload replaces the local copy with the current remote collection.
func (s *RemoteStore) Reload(ctx context.Context) error {
	if err := s.load(ctx); err != nil {
		s.logger.Error().Err(err).Msg("error reloading movies")
		return err
	}
	return nil
}

func (s *RemoteStore) load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	docs, err := s.coll.List(ctx)
	if err != nil {
		return err
	}
	movies := make([]model.Movie, 0, len(docs))
	for _, d := range docs {
		movies = append(movies, FromDocument(d))
	}
	s.mu.Lock()
	s.movies = movies
	s.mu.Unlock()
	s.logger.Info().Int("count", len(movies)).Msg("movies loaded from remote collection")
	return nil
}

func (s *RemoteStore) FindAll() []model.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.movies)
}

func (s *RemoteStore) FindByID(id int64) (model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.movies, id); i >= 0 {
		return s.movies[i], nil
	}
	return model.Movie{}, ErrMovieNotFound
}

func (s *RemoteStore) Create(m *model.Movie) error {
	s.mu.Lock()
	m.ID = newID(s.movies)
	s.movies = append(s.movies, *m)
	s.mu.Unlock()

	s.push(*m, "movie synced to remote collection", "error syncing movie")
	return nil
}

func (s *RemoteStore) Update(m model.Movie) error {
	s.mu.Lock()
	i := indexOf(s.movies, m.ID)
	if i < 0 {
		s.mu.Unlock()
		return ErrMovieNotFound
	}
	s.movies[i] = m
	s.mu.Unlock()

	s.push(m, "movie updated in remote collection", "error updating movie")
	return nil
}

func (s *RemoteStore) Delete(m model.Movie) error {
	s.mu.Lock()
	i := indexOf(s.movies, m.ID)
	if i < 0 {
		s.mu.Unlock()
		return ErrMovieNotFound
	}
	s.movies = append(s.movies[:i:i], s.movies[i+1:]...)
	s.mu.Unlock()

	s.async(func(ctx context.Context) error {
		return s.coll.Delete(ctx, DocumentKey(m.ID))
	}, m, "movie deleted from remote collection", "error deleting movie")
	return nil
}

// Wait blocks until every background remote call has returned.
func (s *RemoteStore) Wait() { s.pending.Wait() }

func (s *RemoteStore) push(m model.Movie, okMsg, failMsg string) {
	doc := ToDocument(m)
	s.async(func(ctx context.Context) error {
		return s.coll.Set(ctx, DocumentKey(m.ID), doc)
	}, m, okMsg, failMsg)
}

func (s *RemoteStore) async(call func(context.Context) error, m model.Movie, okMsg, failMsg string) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := call(ctx); err != nil {
			s.logger.Error().Err(err).Int64("movie_id", m.ID).Str("title", m.Title).Msg(failMsg)
			return
		}
		s.logger.Info().Int64("movie_id", m.ID).Str("title", m.Title).Msg(okMsg)
	}()
}
