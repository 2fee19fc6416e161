package strava

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mattbolanos/portfolio-api/internal/cache"
)

func TestServiceCachesAggregation(t *testing.T) {
	var pageCalls int32
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&pageCalls, 1)
		writePage(w, []Activity{makeRun(1, "2026-01-05", 1000)})
	})

	service := NewService(env.client, time.Minute)

	first := service.Activities(context.Background())
	second := service.Activities(context.Background())

	assert.EqualValues(t, 1, atomic.LoadInt32(&pageCalls), "second call must hit the cache")
	assert.Equal(t, first, second)
}

func TestServiceWarmRefreshesCache(t *testing.T) {
	var pageCalls int32
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&pageCalls, 1)
		writePage(w, []Activity{makeRun(1, "2026-01-05", 1000)})
	})

	service := NewService(env.client, time.Hour)

	service.Activities(context.Background())
	service.Warm(context.Background())

	assert.EqualValues(t, 2, atomic.LoadInt32(&pageCalls), "warm must bypass the TTL")
}

func TestServiceRecoversToEmptyResult(t *testing.T) {
	service := &Service{
		cached: cache.New("boom", time.Minute, func(ctx context.Context) ActivitiesResult {
			panic("upstream exploded")
		}),
	}

	result := service.Activities(context.Background())
	assert.Equal(t, EmptyActivitiesResult(), result)
}
