package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-manager/internal/model"
)

// JSONFileName is the name of the file a JSONStore writes.
const JSONFileName = "movies.json"

// JSONStore keeps the complete movie list in memory and rewrites the whole
// backing file after every mutation.
type JSONStore struct {
	mu     sync.Mutex
	path   string
	movies []model.Movie
}

// NewJSONStore opens the store backed by path.  A missing file starts an
// empty collection; an unreadable or malformed file is an error.
func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file location.
func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) load() error {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.movies = []model.Movie{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	var movies []model.Movie
	if err := json.Unmarshal(b, &movies); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	if movies == nil {
		movies = []model.Movie{}
	}
	s.movies = movies
	log.Info().Str("path", s.path).Int("count", len(movies)).Msg("movies loaded from JSON")
	return nil
}

// Reload discards the in-memory list and reads the file again.
func (s *JSONStore) Reload(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *JSONStore) FindAll() []model.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.movies)
}

func (s *JSONStore) FindByID(id int64) (model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.movies, id); i >= 0 {
		return s.movies[i], nil
	}
	return model.Movie{}, ErrMovieNotFound
}

func (s *JSONStore) Create(m *model.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = newID(s.movies)
	prev := s.movies
	s.movies = append(snapshot(prev), *m)
	if err := s.commit(prev); err != nil {
		m.ID = 0
		return err
	}
	return nil
}

func (s *JSONStore) Update(m model.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.movies, m.ID)
	if i < 0 {
		return ErrMovieNotFound
	}
	prev := s.movies
	s.movies = snapshot(prev)
	s.movies[i] = m
	return s.commit(prev)
}

func (s *JSONStore) Delete(m model.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.movies, m.ID)
	if i < 0 {
		return ErrMovieNotFound
	}
	prev := s.movies
	next := make([]model.Movie, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)
	s.movies = next
	return s.commit(prev)
}

// commit writes the current list, restoring prev in memory if the write
// fails so the list never runs ahead of the file.
func (s *JSONStore) commit(prev []model.Movie) error {
	if err := s.serialize(); err != nil {
		s.movies = prev
		log.Error().Err(err).Str("path", s.path).Msg("saving movies to JSON failed")
		return err
	}
	log.Info().Str("path", s.path).Int("count", len(s.movies)).Msg("movies saved to JSON")
	return nil
}

func (s *JSONStore) serialize() error {
	b, err := json.MarshalIndent(s.movies, "", "  ")
	if err != nil {
		return fmt.Errorf("encode movies: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(s.path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), JSONFileName+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
