package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "props_cache_requests_total",
		Help: "Cache lookups by result (hit, miss, stale)",
	}, []string{"result"})

	cacheBackendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "props_cache_backend_errors_total",
		Help: "Cache backend failures by operation",
	}, []string{"op"})
)

// TTLClass groups cached values by how quickly their inputs change.
type TTLClass int

const (
	TTLShort TTLClass = iota
	TTLMedium
	TTLLong
)

// TTLs maps each class to a concrete duration.
type TTLs struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

var DefaultTTLs = TTLs{
	Short:  5 * time.Minute,
	Medium: time.Hour,
	Long:   24 * time.Hour,
}

// Entry is the stored form of a cached value.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Store is a cache backend. keepFor is how long the backend must retain
// the entry, which covers the TTL plus the stale retention period.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry, keepFor time.Duration) error
}

type Cache struct {
	store     Store
	ttls      TTLs
	retention time.Duration
	logger    *zap.SugaredLogger
	group     singleflight.Group
	now       func() time.Time
}

// New creates a cache over store. Expired entries stay readable through
// GetStale for retention after they expire.
func New(store Store, ttls TTLs, retention time.Duration, logger *zap.Logger) *Cache {
	if ttls.Short <= 0 {
		ttls.Short = DefaultTTLs.Short
	}
	if ttls.Medium <= 0 {
		ttls.Medium = DefaultTTLs.Medium
	}
	if ttls.Long <= 0 {
		ttls.Long = DefaultTTLs.Long
	}
	return &Cache{
		store:     store,
		ttls:      ttls,
		retention: retention,
		logger:    logger.Sugar(),
		now:       time.Now,
	}
}

// TTL resolves a class to its configured duration.
func (c *Cache) TTL(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return c.ttls.Short
	case TTLLong:
		return c.ttls.Long
	default:
		return c.ttls.Medium
	}
}

// GetOrSet returns the unexpired value cached under key, or runs compute,
// stores its result for ttl and returns it. Concurrent misses on the same
// key share one compute call. compute is not canceled when ctx is, so a
// result is still cached for the next caller.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if entry, ok := c.lookup(ctx, key); ok && c.now().Before(entry.ExpiresAt) {
		var v T
		err := json.Unmarshal(entry.Data, &v)
		if err == nil {
			cacheRequests.WithLabelValues("hit").Inc()
			return v, nil
		}
		c.logger.Warnw("Discarding undecodable cache entry", "key", key, "error", err)
	}
	cacheRequests.WithLabelValues("miss").Inc()

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := compute(detached)
		if err != nil {
			return nil, err
		}
		c.put(detached, key, v, ttl)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			// another caller shared this key with a different type
			return compute(ctx)
		}
		return v, nil
	}
}

// GetStale returns the value under key even if it has expired, as long as
// the backend still retains it.
func GetStale[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var zero T
	entry, ok := c.lookup(ctx, key)
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(entry.Data, &v); err != nil {
		c.logger.Warnw("Discarding undecodable stale entry", "key", key, "error", err)
		return zero, false
	}
	cacheRequests.WithLabelValues("stale").Inc()
	return v, true
}

func (c *Cache) lookup(ctx context.Context, key string) (Entry, bool) {
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		cacheBackendErrors.WithLabelValues("get").Inc()
		c.logger.Warnw("Cache read failed", "key", key, "error", err)
		return Entry{}, false
	}
	return entry, ok
}

func (c *Cache) put(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Errorw("Failed to encode cache value", "key", key, "error", err)
		return
	}
	entry := Entry{Data: data, ExpiresAt: c.now().Add(ttl)}
	if err := c.store.Set(ctx, key, entry, ttl+c.retention); err != nil {
		cacheBackendErrors.WithLabelValues("set").Inc()
		c.logger.Warnw("Cache write failed", "key", key, "error", err)
	}
}
