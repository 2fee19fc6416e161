package strava

import (
	"context"
	"log"
	"time"

	"github.com/mattbolanos/portfolio-api/internal/cache"
)

// Service is the accessor the presentation layer consumes. It layers the TTL
// cache over the aggregation and guarantees a renderable result: no error and
// no panic ever crosses this boundary.
type Service struct {
	cached *cache.Cached[ActivitiesResult]
}

// NewService wraps the client's aggregation in a TTL cache.
func NewService(client *Client, ttl time.Duration) *Service {
	return &Service{
		cached: cache.New("strava_activities", ttl, func(ctx context.Context) ActivitiesResult {
			return client.GetActivities(ctx, Options{})
		}),
	}
}

// Activities returns the cached aggregation, degrading to the empty result on
// any internal failure.
func (s *Service) Activities(ctx context.Context) (result ActivitiesResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Activities aggregation panicked: %v", r)
			result = EmptyActivitiesResult()
		}
	}()
	return s.cached.Get(ctx)
}

// Warm refreshes the cache ahead of demand; the cron scheduler calls this so
// page views rarely pay the multi-page fetch.
func (s *Service) Warm(ctx context.Context) {
	s.cached.Invalidate()
	s.Activities(ctx)
}
