package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddress)
	assert.Equal(t, 8, cfg.MaxPages)
	assert.Equal(t, 100, cfg.PerPage)
	assert.Equal(t, 5*time.Minute, cfg.ActivitiesCacheTTL)
	assert.Equal(t, []string{"Run", "TrailRun", "VirtualRun"}, cfg.RunSportTypes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STRAVA_MAX_PAGES", "3")
	t.Setenv("ACTIVITIES_CACHE_TTL", "30s")
	t.Setenv("RUN_SPORT_TYPES", "Run, TrailRun ,")

	cfg := Load()

	assert.Equal(t, 3, cfg.MaxPages)
	assert.Equal(t, 30*time.Second, cfg.ActivitiesCacheTTL)
	assert.Equal(t, []string{"Run", "TrailRun"}, cfg.RunSportTypes)
}

func TestLoadIgnoresUnparseableValues(t *testing.T) {
	t.Setenv("STRAVA_PER_PAGE", "lots")
	t.Setenv("TRACKS_CACHE_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 100, cfg.PerPage)
	assert.Equal(t, time.Minute, cfg.TracksCacheTTL)
}

func TestHasStravaCredentials(t *testing.T) {
	cfg := Config{StravaClientID: "id", StravaClientSecret: "secret"}
	assert.False(t, cfg.HasStravaCredentials())

	cfg.StravaRefreshToken = "refresh"
	assert.True(t, cfg.HasStravaCredentials())
}
