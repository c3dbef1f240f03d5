package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-manager/internal/config"
)

// ResponseCache keeps successful responses in Redis, one namespace per
// user: <prefix>:u:<uid>:<sha1(route?query)>.  A user's namespace is
// dropped whenever their movie collection changes.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewResponseCache returns a cache that is a pass-through when caching is
// disabled or rdb is nil.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &ResponseCache{cfg: cfg, rdb: rdb}
}

const skipCacheKey = "cache_skip"

// SkipCache keeps the current response out of the cache.  Handlers call it
// when they answer from data that is still being loaded.
func SkipCache(c echo.Context) { c.Set(skipCacheKey, true) }

func skipped(c echo.Context) bool {
	v, _ := c.Get(skipCacheKey).(bool)
	return v
}

// replayed reports whether a stored header is written back on a hit.
func replayed(name string) bool {
	return !strings.EqualFold(name, echo.HeaderContentLength) &&
		!strings.EqualFold(name, echo.HeaderXRequestID) &&
		!strings.EqualFold(name, "X-Cache")
}

func (rc *ResponseCache) enabled() bool { return rc.cfg.Enabled && rc.rdb != nil }

func (rc *ResponseCache) userPrefix(uid string) string {
	return fmt.Sprintf("%s:u:%s:", rc.cfg.Prefix, uid)
}

func (rc *ResponseCache) key(c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s%x", rc.userPrefix(userLabel(c)), sum[:])
}

// Invalidate removes every cached response of userID.
func (rc *ResponseCache) Invalidate(ctx context.Context, userID uint64) error {
	if !rc.enabled() {
		return nil
	}
	pattern := rc.userPrefix(fmt.Sprint(userID)) + "*"
	iter := rc.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rc.rdb.Del(ctx, keys...).Err()
}

// Middleware serves hits from Redis and records 200 responses on a miss.
// Unauthenticated requests are never cached.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	if !rc.enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	maxBody := int64(rc.cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := UserID(c); !ok || !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := rc.key(c)

			if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if !replayed(k) {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, err := c.Response().Write(body)
					return err
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated || skipped(c) {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			hdr.Del(echo.HeaderXRequestID)
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := rc.rdb.SetEx(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("cache store failed")
			}
			return nil
		}
	}
}

// captureWriter copies up to limit bytes of the body while forwarding it.
type captureWriter struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.truncated {
		if cw.limit > 0 && int64(cw.buf.Len()+len(b)) > cw.limit {
			cw.truncated = true
			cw.buf.Reset()
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

// encodePayload packs [4 bytes status][4 bytes header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}
