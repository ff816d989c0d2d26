package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/mrjaketay/timeApp-sub001/internal/config"
)

// responseStore is the part of Redis the search cache uses.
type responseStore interface {
    Get(ctx context.Context, key string) ([]byte, error)
    Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type redisStore struct{ rdb *redis.Client }

func (s redisStore) Get(ctx context.Context, key string) ([]byte, error) {
    return s.rdb.Get(ctx, key).Bytes()
}

func (s redisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
    return s.rdb.SetEx(ctx, key, val, ttl).Err()
}

// cachedResponse is what a HIT replays.  Headers are not stored: request
// id and rate limit headers belong to the request that produced them.
type cachedResponse struct {
    Status      int    `json:"status"`
    ContentType string `json:"content_type"`
    Body        []byte `json:"body"`
}

// bodyRecorder tees the response body.  Once the body passes limit it
// stops recording and marks the response as not cacheable.
type bodyRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (w *bodyRecorder) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
    if !w.overflow {
        if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
            w.overflow = true
            w.buf.Reset()
        } else {
            w.buf.Write(b)
        }
    }
    return w.ResponseWriter.Write(b)
}

// searchCacheKey keys a search response on the caller, the search type and
// the normalized term, matching how the search service reads them.
func searchCacheKey(prefix string, c echo.Context) string {
    term := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
    tail := strings.Join([]string{"user", userID(c), "type", c.Param("type"), "q", term}, ":")
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// NewRedisCache caches successful search responses in Redis.  It is a
// passthrough when caching is disabled or Redis is unavailable.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passthrough
    }
    return newResponseCache(cfg, redisStore{rdb: rdb})
}

func newResponseCache(cfg config.CacheConfig, store responseStore) echo.MiddlewareFunc {
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 15 * time.Second
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := searchCacheKey(cfg.Prefix, c)

            if bs, err := store.Get(ctx, key); err == nil {
                var hit cachedResponse
                if json.Unmarshal(bs, &hit) == nil && hit.Status != 0 {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(hit.Status, hit.ContentType, hit.Body)
                }
            }

            res := c.Response()
            orig := res.Writer
            rec := &bodyRecorder{ResponseWriter: orig, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            res.Writer = rec
            defer func() { res.Writer = orig }()
            res.Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK || rec.overflow {
                return nil
            }
            payload, err := json.Marshal(cachedResponse{
                Status:      rec.status,
                ContentType: res.Header().Get(echo.HeaderContentType),
                Body:        rec.buf.Bytes(),
            })
            if err != nil {
                return nil
            }
            sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
            defer cancel()
            _ = store.Set(sctx, key, payload, ttl)
            return nil
        }
    }
}
