package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-manager/internal/model"
)

func newMiniRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb := newMiniRedis(t)
	coll := NewRedisCollection(rdb, "", 7)
	assert.Equal(t, "users:7:movies", coll.Key())

	require.NoError(t, coll.Set(ctx, "20", ToDocument(model.Movie{ID: 20, Title: "Heat"})))
	require.NoError(t, coll.Set(ctx, "10", ToDocument(model.Movie{ID: 10, Title: "Alien"})))

	docs, err := coll.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "10", docs[0].Key)
	assert.Equal(t, "Alien", docs[0].Doc.Title)

	require.NoError(t, coll.Delete(ctx, "10"))
	docs, err = coll.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "20", docs[0].Key)
}

func TestRedisCollectionsAreIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	rdb := newMiniRedis(t)
	require.NoError(t, NewRedisCollection(rdb, "mm", 1).Set(ctx, "1", ToDocument(model.Movie{Title: "A"})))

	docs, err := NewRedisCollection(rdb, "mm", 2).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRemoteStoreOverRedis(t *testing.T) {
	rdb := newMiniRedis(t)
	coll := NewRedisCollection(rdb, "users", 3)
	s := loadedRemote(t, coll)

	m := model.Movie{Title: "Up", Genre: "Animation"}
	require.NoError(t, s.Create(&m))
	s.Wait()

	fresh := NewRemoteStore(coll, RemoteOptions{Timeout: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, fresh.WaitLoaded(ctx))

	got, err := fresh.FindByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Animation", got.Genre)
}
