package apiclient

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/admindash/internal/metrics"
	"github.com/JonMunkholm/admindash/internal/store"
)

// generationTTL keeps invalidation markers around longer than any cached
// response they guard.
const generationTTL = 24 * time.Hour

// prefetchTimeout bounds a background prefetch.
const prefetchTimeout = 15 * time.Second

// fillTimeout bounds a shared upstream call. The call outlives the caller
// that started it so other waiters on the same key are not cancelled.
const fillTimeout = 30 * time.Second

// QueryCache caches raw GET responses per session scope. Keys embed a
// per-resource generation; Invalidate bumps it so every cached page of
// that resource is bypassed after a mutation.
type QueryCache struct {
	store   store.Store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
}

// NewQueryCache caches responses in s for ttl.
func NewQueryCache(s store.Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{store: s, ttl: ttl, metrics: m}
}

// Resource returns the first path segment below /api/admin/ of rawURL,
// e.g. "users" for /api/admin/users/7/role.
func Resource(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimPrefix(path, "api/admin/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}

func (q *QueryCache) generation(ctx context.Context, scope, resource string) string {
	data, err := q.store.Get(ctx, store.Key("qgen", scope, resource))
	if err != nil {
		return "0"
	}
	return string(data)
}

func (q *QueryCache) key(ctx context.Context, scope, rawURL string) string {
	resource := Resource(rawURL)
	return store.Key("query", scope, resource, q.generation(ctx, scope, resource), rawURL)
}

// Get returns a cached response without loading.
func (q *QueryCache) Get(ctx context.Context, scope, rawURL string) ([]byte, bool) {
	data, err := q.store.Get(ctx, q.key(ctx, scope, rawURL))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Load returns the cached response for rawURL or calls fetch to fill it.
// Concurrent loads of the same key share one upstream call; a caller whose
// ctx ends stops waiting without cancelling the call for the others.
func (q *QueryCache) Load(ctx context.Context, scope, rawURL string, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	key := q.key(ctx, scope, rawURL)
	if data, err := q.store.Get(ctx, key); err == nil {
		q.metrics.CacheHit()
		return data, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		slog.Warn("query cache read failed", "key", key, "error", err)
	}
	q.metrics.CacheMiss()

	ch := q.group.DoChan(key, func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()

		data, err := fetch(fillCtx)
		if err != nil {
			return nil, err
		}
		if err := q.store.Set(fillCtx, key, data, q.ttl); err != nil {
			slog.Warn("query cache write failed", "key", key, "error", err)
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Invalidate drops every cached response of resource for scope.
func (q *QueryCache) Invalidate(ctx context.Context, scope, resource string) error {
	gen := strconv.FormatInt(time.Now().UnixNano(), 36)
	return q.store.Set(ctx, store.Key("qgen", scope, resource), []byte(gen), generationTTL)
}

// Prefetch warms the cache for rawURL in the background.
func (q *QueryCache) Prefetch(scope, rawURL string, fetch func(context.Context) ([]byte, error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
		defer cancel()
		if _, err := q.Load(ctx, scope, rawURL, fetch); err != nil {
			slog.Debug("prefetch failed", "url", rawURL, "error", err)
		}
	}()
}
