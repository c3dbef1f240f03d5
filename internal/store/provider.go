package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CollectionFunc returns the remote collection for a user.
type CollectionFunc func(userID uint64) DocumentCollection

// Provider hands out one MovieStore per user, creating it on first use.
// Opening a store never holds the registry lock, so a slow first load only
// delays requests of the same user.
type Provider struct {
	mu      sync.Mutex
	stores  map[uint64]MovieStore
	opening map[uint64]*openCall
	open    func(ctx context.Context, userID uint64) (MovieStore, error)
}

// openCall is an in-flight open shared by concurrent requests of one user.
type openCall struct {
	done  chan struct{}
	store MovieStore
	err   error
}

// NewJSONProvider keeps each user's movies in
// <dataDir>/users/<userID>/movies.json.
func NewJSONProvider(dataDir string) *Provider {
	return &Provider{
		stores:  make(map[uint64]MovieStore),
		opening: make(map[uint64]*openCall),
		open: func(_ context.Context, userID uint64) (MovieStore, error) {
			path := filepath.Join(dataDir, "users", strconv.FormatUint(userID, 10), JSONFileName)
			s, err := NewJSONStore(path)
			if err != nil {
				return nil, fmt.Errorf("open json store for user %d: %w", userID, err)
			}
			return s, nil
		},
	}
}

// NewRemoteProvider mirrors each user's remote collection.  A newly opened
// store is returned once its first load finished or loadWait elapsed,
// whichever comes first; a slow load keeps filling the store afterwards.
func NewRemoteProvider(collections CollectionFunc, opts RemoteOptions, loadWait time.Duration) *Provider {
	return &Provider{
		stores:  make(map[uint64]MovieStore),
		opening: make(map[uint64]*openCall),
		open: func(ctx context.Context, userID uint64) (MovieStore, error) {
			l := log.With().Uint64("user_id", userID).Logger()
			o := opts
			o.Logger = &l
			s := NewRemoteStore(collections(userID), o)
			if loadWait > 0 {
				wctx, cancel := context.WithTimeout(ctx, loadWait)
				defer cancel()
				if err := s.WaitLoaded(wctx); err != nil {
					l.Warn().Err(err).Msg("remote collection still loading")
				}
			}
			return s, nil
		},
	}
}

// ForUser returns the store for userID.  Concurrent first requests of a
// user share a single open.
func (p *Provider) ForUser(ctx context.Context, userID uint64) (MovieStore, error) {
	p.mu.Lock()
	if s, ok := p.stores[userID]; ok {
		p.mu.Unlock()
		return s, nil
	}
	if call, ok := p.opening[userID]; ok {
		p.mu.Unlock()
		select {
		case <-call.done:
			return call.store, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &openCall{done: make(chan struct{})}
	p.opening[userID] = call
	p.mu.Unlock()

	call.store, call.err = p.open(ctx, userID)

	p.mu.Lock()
	delete(p.opening, userID)
	if call.err == nil {
		p.stores[userID] = call.store
	}
	p.mu.Unlock()
	close(call.done)
	return call.store, call.err
}

// Close waits for background remote calls of every open store.
func (p *Provider) Close() {
	p.mu.Lock()
	stores := make([]MovieStore, 0, len(p.stores))
	for _, s := range p.stores {
		stores = append(stores, s)
	}
	p.mu.Unlock()
	for _, s := range stores {
		if w, ok := s.(interface{ Wait() }); ok {
			w.Wait()
		}
	}
}
