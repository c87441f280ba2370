package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadflow_backend/platform/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counts struct {
	Open    int `json:"open"`
	Overdue int `json:"overdue"`
}

// setupTestRedis creates a cache backed by miniredis
func setupTestRedis(t *testing.T) (*Cache, *miniredis.Miniredis, *metrics.Metrics) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := metrics.New()
	return New(NewRedisStoreFromClient(client), nil, m), mr, m
}

func TestKey(t *testing.T) {
	assert.Equal(t, "dashboard:task-stats:vendor:7:admin", Key("task-stats", 7, 42, true))
	assert.Equal(t, "dashboard:task-stats:vendor:7:user:42", Key("task-stats", 7, 42, false))
}

func TestGetOrCompute_CachesWithinTTLAndRecomputesAfterExpiry(t *testing.T) {
	c, mr, m := setupTestRedis(t)
	ctx := context.Background()
	key := Key("task-stats", 1, 0, true)

	calls := 0
	compute := func(ctx context.Context) (counts, error) {
		calls++
		return counts{Open: calls, Overdue: 2}, nil
	}

	first, err := GetOrCompute(ctx, c, key, 5*time.Minute, compute)
	require.NoError(t, err)
	second, err := GetOrCompute(ctx, c, key, 5*time.Minute, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHits.WithLabelValues("task-stats")))

	mr.FastForward(5*time.Minute + time.Second)

	third, err := GetOrCompute(ctx, c, key, 5*time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, third.Open)
}

func TestGetOrCompute_StoresJSON(t *testing.T) {
	c, mr, _ := setupTestRedis(t)
	key := Key("status-counts", 3, 9, false)

	_, err := GetOrCompute(context.Background(), c, key, 10*time.Minute, func(ctx context.Context) (counts, error) {
		return counts{Open: 4}, nil
	})
	require.NoError(t, err)

	raw, err := mr.Get(key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"open":4,"overdue":0}`, raw)
	assert.Equal(t, 10*time.Minute, mr.TTL(key))
}

func TestGetOrCompute_ComputeErrorIsNotCached(t *testing.T) {
	c, mr, _ := setupTestRedis(t)
	key := Key("performance", 1, 0, true)
	boom := errors.New("db down")

	_, err := GetOrCompute(context.Background(), c, key, time.Minute, func(ctx context.Context) (counts, error) {
		return counts{}, boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(key))
}

func TestGetOrCompute_FallsBackWhenStoreUnavailable(t *testing.T) {
	c, mr, m := setupTestRedis(t)
	mr.Close()

	calls := 0
	for i := 0; i < 2; i++ {
		v, err := GetOrCompute(context.Background(), c, Key("task-stats", 1, 0, true), time.Minute, func(ctx context.Context) (counts, error) {
			calls++
			return counts{Open: 1}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, v.Open)
	}
	assert.Equal(t, 2, calls)
	assert.Greater(t, testutil.ToFloat64(m.CacheErrors.WithLabelValues("get")), float64(0))
}

func TestGetOrCompute_NilCacheComputes(t *testing.T) {
	v, err := GetOrCompute(context.Background(), nil, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 5, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}
