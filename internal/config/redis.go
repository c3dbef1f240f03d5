package config

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisOptions builds client options from the environment:
//
//	REDIS_ADDR      host:port, overridden by REDIS_HOST + REDIS_PORT
//	REDIS_PASSWORD  optional
//	REDIS_DB        database number, default 0
//	REDIS_TLS       "true" or "1" enables TLS
func RedisOptions() *redis.Options {
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
		addr = host + ":" + port
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
	}
	if envBool("REDIS_TLS", false) {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return opts
}

// NewRedisClient connects with RedisOptions.  It returns nil when the
// server does not answer a ping; callers then run without the response
// cache and rate limiter, and cannot use the redis document backend.
func NewRedisClient(ctx context.Context) *redis.Client {
	opts := RedisOptions()
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", opts.Addr).Msg("redis unavailable")
		_ = client.Close()
		return nil
	}
	return client
}
