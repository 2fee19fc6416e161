// Package config centralises environment configuration for the portfolio API.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration values. Strava credentials are
// optional: when any of them is missing the activities feed runs in a
// disabled mode that serves an empty result instead of failing.
type Config struct {
	HTTPAddress string

	StravaClientID     string
	StravaClientSecret string
	StravaRefreshToken string
	StravaBaseURL      string
	StravaTokenURL     string

	LastFmAPIKey  string
	LastFmUser    string
	LastFmBaseURL string

	MaxPages     int
	PerPage      int
	FetchRetries int

	ActivitiesCacheTTL time.Duration
	TracksCacheTTL     time.Duration
	WarmSchedule       string

	// RunSportTypes lists the upstream sport_type values that count as runs.
	RunSportTypes []string
}

// Load reads environment variables into Config, applying defaults suitable
// for running the daemon locally.
func Load() Config {
	cfg := Config{
		HTTPAddress:        getEnv("HTTP_ADDRESS", ":8080"),
		StravaClientID:     getEnv("STRAVA_CLIENT_ID", ""),
		StravaClientSecret: getEnv("STRAVA_CLIENT_SECRET", ""),
		StravaRefreshToken: getEnv("STRAVA_REFRESH_TOKEN", ""),
		StravaBaseURL:      getEnv("STRAVA_BASE_URL", "https://www.strava.com/api/v3"),
		StravaTokenURL:     getEnv("STRAVA_TOKEN_URL", "https://www.strava.com/oauth/token"),
		LastFmAPIKey:       getEnv("LASTFM_API_KEY", ""),
		LastFmUser:         getEnv("LASTFM_USER", "mattbolanos"),
		LastFmBaseURL:      getEnv("LASTFM_BASE_URL", "https://ws.audioscrobbler.com/2.0/"),
		MaxPages:           getIntEnv("STRAVA_MAX_PAGES", 8),
		PerPage:            getIntEnv("STRAVA_PER_PAGE", 100),
		FetchRetries:       getIntEnv("FETCH_RETRIES", 3),
		ActivitiesCacheTTL: getDurationEnv("ACTIVITIES_CACHE_TTL", 5*time.Minute),
		TracksCacheTTL:     getDurationEnv("TRACKS_CACHE_TTL", time.Minute),
		WarmSchedule:       getEnv("WARM_SCHEDULE", "@every 10m"),
	}

	cfg.RunSportTypes = splitAndTrim(getEnv("RUN_SPORT_TYPES", "Run,TrailRun,VirtualRun"))
	return cfg
}

// HasStravaCredentials reports whether all three Strava credential values are
// present.
func (c Config) HasStravaCredentials() bool {
	return c.StravaClientID != "" && c.StravaClientSecret != "" && c.StravaRefreshToken != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
