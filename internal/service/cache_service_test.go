package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func (brokenCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (brokenCache) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("connection refused")
}

func TestRememberCachesLoads(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCache(), metrics, time.Minute, nil)
	calls := 0
	load := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"m1", "m2"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Remember(context.Background(), cache, "mentors", 0, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"m1", "m2"}, got)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil)
	calls := 0
	load := func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("db down")
		}
		return 7, nil
	}

	_, err := Remember(context.Background(), cache, "count", 0, load)
	require.EqualError(t, err, "db down")
	got, err := Remember(context.Background(), cache, "count", 0, load)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 2, calls)
}

func TestRememberWithoutCacheAlwaysLoads(t *testing.T) {
	var calls int32
	load := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "fresh", nil
	}

	var nilCache *CacheService
	disabled := NewCacheService(nil, nil, 0, nil)
	broken := NewCacheService(brokenCache{}, nil, 0, nil)
	for _, cache := range []*CacheService{nilCache, disabled, broken} {
		got, err := Remember(context.Background(), cache, "k", 0, load)
		require.NoError(t, err)
		assert.Equal(t, "fresh", got)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Error(t, broken.Invalidate(context.Background(), "k*"))
	assert.NoError(t, disabled.Invalidate(context.Background(), "k*"))
}

func TestRememberSharesConcurrentLoads(t *testing.T) {
	cache := NewCacheService(brokenCache{}, nil, time.Minute, nil)
	release := make(chan struct{})
	var calls int32
	load := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	const callers = 5
	var started, done sync.WaitGroup
	results := make([]int, callers)
	for i := 0; i < callers; i++ {
		started.Add(1)
		done.Add(1)
		go func(i int) {
			defer done.Done()
			started.Done()
			results[i], _ = Remember(context.Background(), cache, "slow", 0, load)
		}(i)
	}
	started.Wait()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}
