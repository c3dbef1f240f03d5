package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-manager/internal/catalog"
	"github.com/iliyamo/movie-manager/internal/middleware"
	"github.com/iliyamo/movie-manager/internal/model"
	"github.com/iliyamo/movie-manager/internal/queue"
	"github.com/iliyamo/movie-manager/internal/store"
)

// Stores hands out the movie store of a user.  *store.Provider implements it.
type Stores interface {
	ForUser(ctx context.Context, userID uint64) (store.MovieStore, error)
}

// EventEmitter receives movie events after successful changes.
type EventEmitter interface {
	Emit(ev queue.MovieEvent)
}

// CacheInvalidator forgets cached responses of a user.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID uint64) error
}

// MovieHandler serves a signed-in user's movie collection.  Events and
// Cache are optional.
type MovieHandler struct {
	Stores Stores
	Events EventEmitter
	Cache  CacheInvalidator
}

func NewMovieHandler(s Stores, ev EventEmitter, cache CacheInvalidator) *MovieHandler {
	return &MovieHandler{Stores: s, Events: ev, Cache: cache}
}

type listResp struct {
	Filter catalog.Filter `json:"filter"`
	Title  string         `json:"title"`
	Query  string         `json:"q,omitempty"`
	Count  int            `json:"count"`
	Movies []model.Movie  `json:"movies"`
}

type locationReq struct {
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Zoom          float32 `json:"zoom"`
	Cinema        string  `json:"cinema"`
	CinemaAddress string  `json:"cinemaAddress"`
}

// List returns the movies under ?filter= narrowed by ?q=.
func (h *MovieHandler) List(c echo.Context) error {
	_, s, err := h.storeFor(c)
	if err != nil {
		return err
	}
	f := catalog.ParseFilter(c.QueryParam("filter"))
	q := c.QueryParam("q")
	movies := catalog.Search(s.FindAll(), f, q)
	return c.JSON(http.StatusOK, listResp{Filter: f, Title: f.Title(), Query: q, Count: len(movies), Movies: movies})
}

// Get returns one movie.
func (h *MovieHandler) Get(c echo.Context) error {
	_, _, m, err := h.movieFor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// Create adds a movie; the id in the body is ignored.
func (h *MovieHandler) Create(c echo.Context) error {
	uid, s, err := h.storeFor(c)
	if err != nil {
		return err
	}
	var m model.Movie
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	m.ID = 0
	if err := m.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if m.IsFavorite && m.IsWatchlist {
		m.IsWatchlist = false
	}
	m.Normalize()
	if err := s.Create(&m); err != nil {
		return storeError(err)
	}
	h.changed(c.Request().Context(), queue.MovieCreated, uid, m)
	return c.JSON(http.StatusCreated, m)
}

// Update replaces every field of the movie named in the path.
func (h *MovieHandler) Update(c echo.Context) error {
	uid, s, err := h.storeFor(c)
	if err != nil {
		return err
	}
	id, err := movieID(c)
	if err != nil {
		return err
	}
	var m model.Movie
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	m.ID = id
	if err := m.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if m.IsFavorite && m.IsWatchlist {
		m.IsWatchlist = false
	}
	m.Normalize()
	if err := s.Update(m); err != nil {
		return storeError(err)
	}
	h.changed(c.Request().Context(), queue.MovieUpdated, uid, m)
	return c.JSON(http.StatusOK, m)
}

// Delete removes a movie.
func (h *MovieHandler) Delete(c echo.Context) error {
	uid, s, m, err := h.movieFor(c)
	if err != nil {
		return err
	}
	if err := s.Delete(m); err != nil {
		return storeError(err)
	}
	h.changed(c.Request().Context(), queue.MovieDeleted, uid, m)
	return c.NoContent(http.StatusNoContent)
}

// ToggleFavorite flips the favorite flag; turning it on leaves the watchlist.
func (h *MovieHandler) ToggleFavorite(c echo.Context) error {
	return h.modify(c, func(m *model.Movie) error {
		m.ToggleFavorite()
		return nil
	})
}

// ToggleWatchlist flips the watchlist flag; turning it on clears favorite
// and the rating and cinema fields.
func (h *MovieHandler) ToggleWatchlist(c echo.Context) error {
	return h.modify(c, func(m *model.Movie) error {
		m.ToggleWatchlist()
		return nil
	})
}

// SetLocation stores the cinema position picked for a movie.
func (h *MovieHandler) SetLocation(c echo.Context) error {
	var req locationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 || req.Zoom <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location"})
	}
	return h.modify(c, func(m *model.Movie) error {
		m.SetLocation(model.Location{Lat: req.Lat, Lng: req.Lng, Zoom: req.Zoom}, req.Cinema, req.CinemaAddress)
		return nil
	})
}

// DefaultLocation is where the cinema picker starts for a movie without one.
func (h *MovieHandler) DefaultLocation(c echo.Context) error {
	return c.JSON(http.StatusOK, model.DefaultLocation)
}

// Reload re-reads the user's collection from its backing storage.
func (h *MovieHandler) Reload(c echo.Context) error {
	uid, s, err := h.storeFor(c)
	if err != nil {
		return err
	}
	if r, ok := s.(store.Reloader); ok {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
		defer cancel()
		if err := r.Reload(ctx); err != nil {
			log.Error().Err(err).Uint64("user_id", uid).Msg("reload failed")
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "reload failed"})
		}
	}
	h.invalidate(c.Request().Context(), uid)
	return c.JSON(http.StatusOK, echo.Map{"count": len(s.FindAll())})
}

// Stats returns the statistics of the whole collection.
func (h *MovieHandler) Stats(c echo.Context) error {
	_, s, err := h.storeFor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, catalog.ComputeStats(s.FindAll()))
}

// modify loads the movie named in the path, applies fn and saves it.
func (h *MovieHandler) modify(c echo.Context, fn func(*model.Movie) error) error {
	uid, s, m, err := h.movieFor(c)
	if err != nil {
		return err
	}
	if err := fn(&m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := s.Update(m); err != nil {
		return storeError(err)
	}
	h.changed(c.Request().Context(), queue.MovieUpdated, uid, m)
	return c.JSON(http.StatusOK, m)
}

func (h *MovieHandler) storeFor(c echo.Context) (uint64, store.MovieStore, error) {
	uid, ok := middleware.UserID(c)
	if !ok {
		return 0, nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	s, err := h.Stores.ForUser(c.Request().Context(), uid)
	if err != nil {
		return 0, nil, storeError(err)
	}
	if l, ok := s.(store.Loader); ok && !l.Loaded() {
		middleware.SkipCache(c)
	}
	return uid, s, nil
}

func (h *MovieHandler) movieFor(c echo.Context) (uint64, store.MovieStore, model.Movie, error) {
	uid, s, err := h.storeFor(c)
	if err != nil {
		return 0, nil, model.Movie{}, err
	}
	id, err := movieID(c)
	if err != nil {
		return 0, nil, model.Movie{}, err
	}
	m, err := s.FindByID(id)
	if err != nil {
		return 0, nil, model.Movie{}, storeError(err)
	}
	return uid, s, m, nil
}

func (h *MovieHandler) changed(ctx context.Context, t queue.EventType, uid uint64, m model.Movie) {
	log.Info().Str("event", string(t)).Uint64("user_id", uid).Int64("movie_id", m.ID).Str("title", m.Title).Msg("movie changed")
	h.invalidate(ctx, uid)
	if h.Events != nil {
		h.Events.Emit(queue.NewMovieEvent(t, uid, m))
	}
}

func (h *MovieHandler) invalidate(ctx context.Context, uid uint64) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(ctx, uid); err != nil {
		log.Warn().Err(err).Uint64("user_id", uid).Msg("cache invalidation failed")
	}
}

func movieID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid movie id")
	}
	return id, nil
}

func storeError(err error) error {
	if errors.Is(err, store.ErrMovieNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "movie not found")
	}
	log.Error().Err(err).Msg("movie store failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "storage failed")
}
