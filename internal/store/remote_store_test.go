package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-manager/internal/model"
)

// memCollection is an in-memory DocumentCollection with switchable
// failures.
type memCollection struct {
	mu       sync.Mutex
	docs     map[string]Document
	failOps  bool
	failErr  error
	listGate chan struct{}
}

func newMemCollection() *memCollection {
	return &memCollection{docs: make(map[string]Document), failErr: errors.New("unavailable")}
}

func (c *memCollection) List(ctx context.Context) ([]KeyedDocument, error) {
	if c.listGate != nil {
		select {
		case <-c.listGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failOps {
		return nil, c.failErr
	}
	out := make([]KeyedDocument, 0, len(c.docs))
	for k, d := range c.docs {
		out = append(out, KeyedDocument{Key: k, Doc: d})
	}
	return out, nil
}

func (c *memCollection) Set(_ context.Context, key string, doc Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failOps {
		return c.failErr
	}
	c.docs[key] = doc
	return nil
}

func (c *memCollection) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failOps {
		return c.failErr
	}
	delete(c.docs, key)
	return nil
}

func (c *memCollection) get(key string) (Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[key]
	return d, ok
}

func (c *memCollection) setFailing(v bool) {
	c.mu.Lock()
	c.failOps = v
	c.mu.Unlock()
}

func loadedRemote(t *testing.T, coll DocumentCollection) *RemoteStore {
	t.Helper()
	s := NewRemoteStore(coll, RemoteOptions{Timeout: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.WaitLoaded(ctx))
	return s
}

func TestRemoteStoreLoadsExistingDocuments(t *testing.T) {
	coll := newMemCollection()
	coll.docs["17"] = Document{Movie: model.Movie{ID: 999, Title: "Alien"}, ImageURL: "content://posters/17"}
	coll.docs["bogus"] = Document{Movie: model.Movie{Title: "Orphan"}}

	s := loadedRemote(t, coll)
	all := s.FindAll()
	require.Len(t, all, 2)

	got, err := s.FindByID(17)
	require.NoError(t, err, "the document key wins over the embedded id")
	assert.Equal(t, "Alien", got.Title)
	assert.Equal(t, "content://posters/17", got.Image.String())

	orphan, err := s.FindByID(0)
	require.NoError(t, err)
	assert.Equal(t, "Orphan", orphan.Title)
}

func TestRemoteStoreCreatePushesDocument(t *testing.T) {
	coll := newMemCollection()
	s := loadedRemote(t, coll)

	img, err := model.ParseImageRef("content://posters/3")
	require.NoError(t, err)
	m := model.Movie{Title: "Heat", Image: img}
	require.NoError(t, s.Create(&m))
	assert.NotZero(t, m.ID)
	assert.Len(t, s.FindAll(), 1, "local copy changes before the remote write returns")

	s.Wait()
	doc, ok := coll.get(DocumentKey(m.ID))
	require.True(t, ok)
	assert.Equal(t, "Heat", doc.Title)
	assert.Equal(t, "content://posters/3", doc.ImageURL)
}

func TestRemoteStoreUpdateAndDelete(t *testing.T) {
	coll := newMemCollection()
	s := loadedRemote(t, coll)

	a := model.Movie{Title: "Alien"}
	b := model.Movie{Title: "Heat"}
	require.NoError(t, s.Create(&a))
	require.NoError(t, s.Create(&b))
	s.Wait()

	a.Rating = "9"
	a.IsFavorite = true
	require.NoError(t, s.Update(a))
	s.Wait()

	doc, ok := coll.get(DocumentKey(a.ID))
	require.True(t, ok)
	assert.Equal(t, "9", doc.Rating)
	assert.True(t, doc.IsFavorite)
	gotB, err := s.FindByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, gotB)

	require.NoError(t, s.Delete(a))
	s.Wait()
	_, ok = coll.get(DocumentKey(a.ID))
	assert.False(t, ok)
	_, err = s.FindByID(a.ID)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestRemoteStoreFailureLeavesLocalChange(t *testing.T) {
	coll := newMemCollection()
	s := loadedRemote(t, coll)
	coll.setFailing(true)

	m := model.Movie{Title: "Jaws"}
	require.NoError(t, s.Create(&m))
	s.Wait()

	_, ok := coll.get(DocumentKey(m.ID))
	assert.False(t, ok, "remote write failed and is not retried")
	got, err := s.FindByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jaws", got.Title)
}

func TestRemoteStoreLoadFailureIsNotFatal(t *testing.T) {
	coll := newMemCollection()
	coll.failOps = true
	s := loadedRemote(t, coll)
	assert.Empty(t, s.FindAll())

	coll.setFailing(false)
	coll.docs["5"] = Document{Movie: model.Movie{Title: "Up"}}
	require.NoError(t, s.Reload(context.Background()))
	assert.Len(t, s.FindAll(), 1)
}

func TestRemoteStoreUnknownID(t *testing.T) {
	s := loadedRemote(t, newMemCollection())
	assert.ErrorIs(t, s.Update(model.Movie{ID: 1}), ErrMovieNotFound)
	assert.ErrorIs(t, s.Delete(model.Movie{ID: 1}), ErrMovieNotFound)
}

func TestRemoteStoreWaitLoadedHonoursContext(t *testing.T) {
	coll := newMemCollection()
	coll.listGate = make(chan struct{})
	s := NewRemoteStore(coll, RemoteOptions{Timeout: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.WaitLoaded(ctx), context.DeadlineExceeded)
	assert.False(t, s.Loaded())

	close(coll.listGate)
	s.Wait()
	require.NoError(t, s.WaitLoaded(context.Background()))
	assert.True(t, s.Loaded())
}
