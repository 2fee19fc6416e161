// Package lastfm fetches the recent-scrobbles widget data. It is a strict
// subset of the Strava client's fetch/parse/cache shape: one request, no
// retries, nil on any failure.
package lastfm

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mattbolanos/portfolio-api/internal/cache"
	"github.com/mattbolanos/portfolio-api/internal/httpx"
)

const defaultLimit = 3

// Track is one scrobbled track from the recent-tracks endpoint.
type Track struct {
	Name   string        `json:"name"`
	URL    string        `json:"url"`
	Artist Attribution   `json:"artist"`
	Album  Attribution   `json:"album"`
	Images []Image       `json:"image"`
	Date   *ScrobbleDate `json:"date,omitempty"`
}

// Attribution is Last.fm's "#text" wrapper for artist and album names.
type Attribution struct {
	Text string `json:"#text"`
	MBID string `json:"mbid"`
}

// Image is one artwork rendition.
type Image struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

// ScrobbleDate is present only for finished scrobbles; a currently-playing
// track has none and is filtered out.
type ScrobbleDate struct {
	Text string `json:"#text"`
	UTS  string `json:"uts"`
}

type recentTracksResponse struct {
	RecentTracks struct {
		Track []Track `json:"track"`
	} `json:"recenttracks"`
}

// Client fetches recent tracks for one Last.fm user.
type Client struct {
	http    *httpx.Client
	baseURL string
	apiKey  string
	user    string
}

// NewClient creates a Client. An empty API key disables the feed.
func NewClient(httpClient *httpx.Client, baseURL, apiKey, user string) *Client {
	return &Client{http: httpClient, baseURL: baseURL, apiKey: apiKey, user: user}
}

// RecentTracks returns up to limit finished scrobbles, or nil when the feed
// is disabled or the upstream call fails.
func (c *Client) RecentTracks(ctx context.Context, limit int) []Track {
	if c.apiKey == "" {
		return nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	params := url.Values{}
	params.Set("method", "user.getrecenttracks")
	params.Set("user", c.user)
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))

	resp, err := c.http.FetchJSON(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "?" + params.Encode(),
	}, 0)
	if err != nil {
		log.Printf("Last.fm request failed: %v", err)
		return nil
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return nil
	}

	var payload recentTracksResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil
	}

	tracks := make([]Track, 0, len(payload.RecentTracks.Track))
	for _, track := range payload.RecentTracks.Track {
		if track.Date == nil || track.Date.UTS == "" {
			continue
		}
		tracks = append(tracks, track)
	}
	return tracks
}

// Service caches the default-limit recent tracks for a short window.
type Service struct {
	cached *cache.Cached[[]Track]
}

// NewService wraps the client in a TTL cache.
func NewService(client *Client, ttl time.Duration) *Service {
	return &Service{
		cached: cache.New("lastfm_tracks", ttl, func(ctx context.Context) []Track {
			return client.RecentTracks(ctx, defaultLimit)
		}),
	}
}

// Recent returns the cached recent tracks; never nil for callers that need a
// renderable value.
func (s *Service) Recent(ctx context.Context) []Track {
	tracks := s.cached.Get(ctx)
	if tracks == nil {
		return []Track{}
	}
	return tracks
}
