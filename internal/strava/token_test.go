package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattbolanos/portfolio-api/internal/httpx"
)

type tokenExchange struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

func decodeExchange(t *testing.T, r *http.Request) tokenExchange {
	t.Helper()
	var body tokenExchange
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func writeTokens(w http.ResponseWriter, accessToken, refreshToken string) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_at":    time.Now().Add(time.Hour).Unix(),
	})
}

func TestAccessTokenNoCredentials(t *testing.T) {
	m := NewTokenManager(httpx.NewClient(http.DefaultClient), "http://token.invalid", "", "", "")
	assert.Equal(t, "", m.AccessToken(context.Background(), false))
	assert.Equal(t, "", m.AccessToken(context.Background(), true))
}

func TestAccessTokenCachedAfterRefresh(t *testing.T) {
	var exchanges int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&exchanges, 1)
		body := decodeExchange(t, r)
		assert.Equal(t, "refresh_token", body.GrantType)
		assert.Equal(t, "rt1", body.RefreshToken)
		writeTokens(w, "tok", "rt1")
	}))
	defer srv.Close()

	m := NewTokenManager(httpx.NewClient(srv.Client()), srv.URL, "id", "secret", "rt1")

	assert.Equal(t, "tok", m.AccessToken(context.Background(), false))
	assert.Equal(t, "tok", m.AccessToken(context.Background(), false))
	assert.EqualValues(t, 1, atomic.LoadInt32(&exchanges), "second call must use the cached token")
}

func TestAccessTokenConcurrentRefreshDeduped(t *testing.T) {
	var exchanges int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&exchanges, 1)
		time.Sleep(100 * time.Millisecond)
		writeTokens(w, "tok", "rt1")
	}))
	defer srv.Close()

	m := NewTokenManager(httpx.NewClient(srv.Client()), srv.URL, "id", "secret", "rt1")

	const callers = 8
	tokens := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i] = m.AccessToken(context.Background(), false)
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&exchanges), "concurrent callers must share one exchange")
	for _, token := range tokens {
		assert.Equal(t, "tok", token)
	}
}

func TestRefreshTriesRotatedTokenBeforeConfigured(t *testing.T) {
	var sequence []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := decodeExchange(t, r)
		mu.Lock()
		sequence = append(sequence, body.RefreshToken)
		call := len(sequence)
		mu.Unlock()

		switch call {
		case 1:
			// Initial exchange rotates the refresh token.
			writeTokens(w, "tok1", "rt2")
		case 2:
			// Reject the rotated token so the configured one is tried.
			w.WriteHeader(http.StatusBadRequest)
		default:
			writeTokens(w, "tok2", "rt2")
		}
	}))
	defer srv.Close()

	t.Setenv("STRAVA_REFRESH_TOKEN", "rt1")
	m := NewTokenManager(httpx.NewClient(srv.Client()), srv.URL, "id", "secret", "rt1")

	assert.Equal(t, "tok1", m.AccessToken(context.Background(), false))
	assert.Equal(t, "tok2", m.AccessToken(context.Background(), true))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"rt1", "rt2", "rt1"}, sequence)
}

func TestRotatedRefreshTokenPropagatesToEnvironment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeTokens(w, "tok", "rt2")
	}))
	defer srv.Close()

	t.Setenv("STRAVA_REFRESH_TOKEN", "rt1")
	m := NewTokenManager(httpx.NewClient(srv.Client()), srv.URL, "id", "secret", "rt1")

	require.Equal(t, "tok", m.AccessToken(context.Background(), false))
	assert.Equal(t, "rt2", getenv(t, "STRAVA_REFRESH_TOKEN"))
}

func TestRefreshFailureClearsStateWithoutLockout(t *testing.T) {
	var exchanges int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&exchanges, 1) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeTokens(w, "tok", "rt1")
	}))
	defer srv.Close()

	m := NewTokenManager(httpx.NewClient(srv.Client()), srv.URL, "id", "secret", "rt1")

	assert.Equal(t, "", m.AccessToken(context.Background(), false), "failed refresh must return empty token")
	assert.Equal(t, "tok", m.AccessToken(context.Background(), false), "next call must retry from scratch")
}

func TestRefreshIgnoresPayloadWithoutAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":"ok"}`)
	}))
	defer srv.Close()

	m := NewTokenManager(httpx.NewClient(srv.Client()), srv.URL, "id", "secret", "rt1")
	assert.Equal(t, "", m.AccessToken(context.Background(), false))
}

func getenv(t *testing.T, key string) string {
	t.Helper()
	value, ok := os.LookupEnv(key)
	require.True(t, ok, "expected %s to be set", key)
	return value
}
