package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetCachesWithinTTL(t *testing.T) {
	var computes int32
	c := New("test", time.Minute, func(ctx context.Context) int {
		return int(atomic.AddInt32(&computes, 1))
	})

	assert.Equal(t, 1, c.Get(context.Background()))
	assert.Equal(t, 1, c.Get(context.Background()))
	assert.EqualValues(t, 1, atomic.LoadInt32(&computes))
}

func TestGetRecomputesAfterTTL(t *testing.T) {
	var computes int32
	c := New("test", 10*time.Millisecond, func(ctx context.Context) int {
		return int(atomic.AddInt32(&computes, 1))
	})

	assert.Equal(t, 1, c.Get(context.Background()))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, c.Get(context.Background()))
}

func TestGetCollapsesConcurrentMisses(t *testing.T) {
	var computes int32
	release := make(chan struct{})
	c := New("test", time.Minute, func(ctx context.Context) int {
		<-release
		return int(atomic.AddInt32(&computes, 1))
	})

	const callers = 10
	results := make([]int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Get(context.Background())
		}(i)
	}

	// Give every goroutine time to reach the cache before releasing.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&computes), "concurrent misses must share one compute")
	for _, result := range results {
		assert.Equal(t, 1, result)
	}
}

func TestInvalidateForcesRecompute(t *testing.T) {
	var computes int32
	c := New("test", time.Hour, func(ctx context.Context) int {
		return int(atomic.AddInt32(&computes, 1))
	})

	assert.Equal(t, 1, c.Get(context.Background()))
	c.Invalidate()
	assert.Equal(t, 2, c.Get(context.Background()))
}
