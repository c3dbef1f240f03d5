package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-manager/internal/model"
)

func TestJSONProviderKeepsOneFilePerUser(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p := NewJSONProvider(dir)

	s1, err := p.ForUser(ctx, 1)
	require.NoError(t, err)
	again, err := p.ForUser(ctx, 1)
	require.NoError(t, err)
	assert.Same(t, s1, again)

	m := model.Movie{Title: "Alien"}
	require.NoError(t, s1.Create(&m))
	_, err = os.Stat(filepath.Join(dir, "users", "1", JSONFileName))
	require.NoError(t, err)

	s2, err := p.ForUser(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, s2.FindAll())
}

func TestRemoteProviderWaitsForInitialLoad(t *testing.T) {
	colls := map[uint64]*memCollection{1: newMemCollection()}
	colls[1].docs["8"] = Document{Movie: model.Movie{Title: "Jaws"}}

	p := NewRemoteProvider(func(uid uint64) DocumentCollection { return colls[uid] },
		RemoteOptions{Timeout: time.Second}, time.Second)

	s, err := p.ForUser(context.Background(), 1)
	require.NoError(t, err)
	all := s.FindAll()
	require.Len(t, all, 1)
	assert.Equal(t, int64(8), all[0].ID)

	m := model.Movie{Title: "Up"}
	require.NoError(t, s.Create(&m))
	p.Close()
	_, ok := colls[1].get(DocumentKey(m.ID))
	assert.True(t, ok)
}

func TestRemoteProviderSlowUserDoesNotBlockOthers(t *testing.T) {
	ctx := context.Background()
	colls := map[uint64]*memCollection{1: newMemCollection(), 2: newMemCollection(), 3: newMemCollection()}
	gate := make(chan struct{})
	colls[1].listGate = gate
	colls[1].docs["8"] = Document{Movie: model.Movie{Title: "Jaws"}}

	p := NewRemoteProvider(func(uid uint64) DocumentCollection { return colls[uid] },
		RemoteOptions{Timeout: 10 * time.Second}, 5*time.Second)

	s2, err := p.ForUser(ctx, 2)
	require.NoError(t, err)

	type result struct {
		s   MovieStore
		err error
	}
	first := make(chan result, 2)
	for range 2 {
		go func() {
			s, err := p.ForUser(ctx, 1)
			first <- result{s, err}
		}()
	}
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		_, ok := p.opening[1]
		return ok
	}, time.Second, 5*time.Millisecond)

	start := time.Now()
	again, err := p.ForUser(ctx, 2)
	require.NoError(t, err)
	assert.Same(t, s2, again)
	_, err = p.ForUser(ctx, 3)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	close(gate)
	a, b := <-first, <-first
	require.NoError(t, a.err)
	require.NoError(t, b.err)
	assert.Same(t, a.s, b.s)
	assert.True(t, a.s.(Loader).Loaded())
	assert.Len(t, a.s.FindAll(), 1)
	p.Close()
}
