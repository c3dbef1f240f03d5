package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisCollection stores one user's documents as fields of a single Redis
// hash, keyed <prefix>:<userID>:movies.
type RedisCollection struct {
	rdb *redis.Client
	key string
}

// NewRedisCollection returns the collection for userID.
func NewRedisCollection(rdb *redis.Client, prefix string, userID uint64) *RedisCollection {
	if prefix == "" {
		prefix = "users"
	}
	return &RedisCollection{rdb: rdb, key: fmt.Sprintf("%s:%d:movies", prefix, userID)}
}

// Key returns the Redis hash holding the collection.
func (c *RedisCollection) Key() string { return c.key }

func (c *RedisCollection) List(ctx context.Context) ([]KeyedDocument, error) {
	fields, err := c.rdb.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", c.key, err)
	}
	out := make([]KeyedDocument, 0, len(fields))
	for k, v := range fields {
		var doc Document
		if err := json.Unmarshal([]byte(v), &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", k, err)
		}
		out = append(out, KeyedDocument{Key: k, Doc: doc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (c *RedisCollection) Set(ctx context.Context, key string, doc Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", key, err)
	}
	return c.rdb.HSet(ctx, c.key, key, b).Err()
}

func (c *RedisCollection) Delete(ctx context.Context, key string) error {
	return c.rdb.HDel(ctx, c.key, key).Err()
}
