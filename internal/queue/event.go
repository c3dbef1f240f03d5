// Package queue carries movie activity over RabbitMQ: the event payload
// and the consumer that turns events into an activity log.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-manager/internal/model"
)

// DefaultQueue is the durable queue movie events are published to.
const DefaultQueue = "movie.events"

// EventType names what happened to a movie.
type EventType string

const (
	MovieCreated EventType = "movie.created"
	MovieUpdated EventType = "movie.updated"
	MovieDeleted EventType = "movie.deleted"
)

// MovieEvent is published after every successful change to a user's
// collection.
type MovieEvent struct {
	EventID    string    `json:"event_id"`
	Type       EventType `json:"type"`
	UserID     uint64    `json:"user_id"`
	MovieID    int64     `json:"movie_id"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMovieEvent stamps an event for m with a fresh id and the current time.
func NewMovieEvent(t EventType, userID uint64, m model.Movie) MovieEvent {
	return MovieEvent{
		EventID:    uuid.NewString(),
		Type:       t,
		UserID:     userID,
		MovieID:    m.ID,
		Title:      m.Title,
		OccurredAt: time.Now().UTC(),
	}
}
