// Package cache provides a best-effort cache-aside layer over a key-value store.
// Entries expire by TTL only; nothing invalidates them on write.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"
)

// Store is the key-value collaborator. Get reports a miss with found=false
// and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache couples a Store with the logger and metrics used to report failures.
type Cache struct {
	store   Store
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New builds a Cache. A nil store disables caching; every call computes.
func New(store Store, log *logger.Logger, m *metrics.Metrics) *Cache {
	if log == nil {
		log = logger.Discard()
	}
	return &Cache{store: store, log: log, metrics: m}
}

// Key builds the deterministic dashboard key
// dashboard:<name>:vendor:<vendorID>:admin or dashboard:<name>:vendor:<vendorID>:user:<userID>.
func Key(name string, vendorID int64, userID int64, admin bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "dashboard:%s:vendor:%d:", name, vendorID)
	if admin {
		b.WriteString("admin")
	} else {
		fmt.Fprintf(&b, "user:%d", userID)
	}
	return b.String()
}

// GetOrCompute returns the cached value for key or runs compute and stores the
// JSON encoding of its result for ttl. Store failures are logged and the value
// is computed live; only compute errors are returned.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	aggregate := aggregateName(key)

	if c != nil && c.store != nil {
		raw, found, err := c.store.Get(ctx, key)
		switch {
		case err != nil:
			c.failed(ctx, "get", key, err)
		case found:
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				c.hit(aggregate)
				return cached, nil
			} else {
				c.failed(ctx, "decode", key, err)
			}
		}
		c.miss(aggregate)
	}

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if c != nil && c.store != nil {
		raw, err := json.Marshal(value)
		if err != nil {
			c.failed(ctx, "encode", key, err)
			return value, nil
		}
		if err := c.store.Set(ctx, key, raw, ttl); err != nil {
			c.failed(ctx, "set", key, err)
		}
	}

	return value, nil
}

func (c *Cache) hit(aggregate string) {
	if c.metrics != nil {
		c.metrics.CacheHits.WithLabelValues(aggregate).Inc()
	}
}

func (c *Cache) miss(aggregate string) {
	if c.metrics != nil {
		c.metrics.CacheMisses.WithLabelValues(aggregate).Inc()
	}
}

func (c *Cache) failed(ctx context.Context, op, key string, err error) {
	c.log.WithContext(ctx).CacheEvent(op, key, err)
	if c.metrics != nil {
		c.metrics.CacheErrors.WithLabelValues(op).Inc()
	}
}

// aggregateName extracts <name> from dashboard keys for metric labels.
func aggregateName(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) >= 2 && parts[0] == "dashboard" {
		return parts[1]
	}
	return "other"
}
