package strava

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mattbolanos/portfolio-api/internal/httpx"
)

const (
	tokenFetchRetries = 3
	// Refresh when the cached token is within this margin of expiry.
	tokenExpiryMargin = 5 * time.Minute
)

// TokenManager owns the OAuth token state for the Strava API. It is the only
// component that mutates that state, and it serialises concurrent refresh
// attempts into a single in-flight token exchange.
type TokenManager struct {
	http         *httpx.Client
	tokenURL     string
	clientID     string
	clientSecret string
	// configured is the refresh token supplied by the environment at startup.
	configured string

	group singleflight.Group

	mu           sync.Mutex
	accessToken  string
	expiresAt    time.Time
	refreshToken string
}

// NewTokenManager creates a TokenManager for the given credentials. Any empty
// credential puts the manager in a disabled mode where AccessToken always
// returns "".
func NewTokenManager(httpClient *httpx.Client, tokenURL, clientID, clientSecret, refreshToken string) *TokenManager {
	return &TokenManager{
		http:         httpClient,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		configured:   refreshToken,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// AccessToken returns a valid access token or "" when none can be obtained.
// A cached token is returned immediately unless force is set or the token is
// near expiry. Concurrent callers needing a refresh all await the result of
// one token exchange.
func (m *TokenManager) AccessToken(ctx context.Context, force bool) string {
	if m.clientID == "" || m.clientSecret == "" || m.configured == "" {
		return ""
	}

	if !force {
		m.mu.Lock()
		if m.accessToken != "" && time.Now().Add(tokenExpiryMargin).Before(m.expiresAt) {
			token := m.accessToken
			m.mu.Unlock()
			return token
		}
		m.mu.Unlock()
	}

	token, _, _ := m.group.Do("refresh", func() (interface{}, error) {
		return m.refresh(ctx), nil
	})
	return token.(string)
}

// refresh walks the candidate refresh tokens in order: the rotated in-memory
// token first (when it differs from the configured one), then the configured
// token. The first successful exchange wins; if every candidate fails the
// token state is cleared so the next call starts from scratch.
func (m *TokenManager) refresh(ctx context.Context) string {
	m.mu.Lock()
	current := m.refreshToken
	m.mu.Unlock()

	var candidates []string
	if current != "" && current != m.configured {
		candidates = append(candidates, current)
	}
	candidates = append(candidates, m.configured)

	for _, candidate := range candidates {
		token, ok := m.exchange(ctx, candidate)
		if ok {
			tokenRefreshes.WithLabelValues("success").Inc()
			return token
		}
	}

	m.mu.Lock()
	m.accessToken = ""
	m.expiresAt = time.Time{}
	m.mu.Unlock()

	tokenRefreshes.WithLabelValues("failure").Inc()
	return ""
}

// exchange performs one refresh-token grant and commits the result.
func (m *TokenManager) exchange(ctx context.Context, refreshToken string) (string, bool) {
	body, err := json.Marshal(map[string]string{
		"client_id":     m.clientID,
		"client_secret": m.clientSecret,
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
	if err != nil {
		return "", false
	}

	resp, err := m.http.FetchJSON(ctx, httpx.Request{
		Method: http.MethodPost,
		URL:    m.tokenURL,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	}, tokenFetchRetries)
	if err != nil {
		log.Printf("Token exchange failed: %v", err)
		return "", false
	}
	if resp.Status < 200 || resp.Status >= 300 {
		log.Printf("Token endpoint returned %d", resp.Status)
		return "", false
	}

	var payload tokenResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil || payload.AccessToken == "" {
		return "", false
	}

	m.mu.Lock()
	m.accessToken = payload.AccessToken
	m.expiresAt = time.Unix(payload.ExpiresAt, 0)
	if payload.RefreshToken != "" {
		m.refreshToken = payload.RefreshToken
	}
	rotated := m.refreshToken
	m.mu.Unlock()

	// Best-effort propagation of a rotated refresh token back into the
	// environment, so externally persisted configuration can pick it up.
	if rotated != "" && rotated != m.configured {
		if err := os.Setenv("STRAVA_REFRESH_TOKEN", rotated); err != nil {
			log.Printf("Failed to propagate rotated refresh token: %v", err)
		}
	}

	return payload.AccessToken, true
}
