// Package httpx implements the retrying JSON fetch used by every upstream
// call. It knows nothing about payload shapes; callers interpret the body.
package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxDelay = 8 * time.Second
	defaultBackoff  = 250 * time.Millisecond
)

// Doer abstracts *http.Client so tests can inject fake transports.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request describes a single JSON request to an upstream API.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response carries the raw body and status of a completed request. A non-2xx
// status is not an error here; the caller decides how to interpret it.
type Response struct {
	Body   []byte
	Status int

	retryAfter string
}

// Client wraps a Doer with per-attempt timeouts and retry-with-backoff on
// transient failures.
type Client struct {
	doer     Doer
	timeout  time.Duration
	maxDelay time.Duration
	backoff  time.Duration
}

// NewClient creates a Client with production timeouts (10s per attempt,
// exponential backoff from 250ms capped at 8s).
func NewClient(doer Doer) *Client {
	return &Client{
		doer:     doer,
		timeout:  defaultTimeout,
		maxDelay: defaultMaxDelay,
		backoff:  defaultBackoff,
	}
}

// FetchJSON performs the request with at most maxRetries+1 attempts.
//
// Retriable statuses (408, 429, 5xx) are retried after the upstream's
// Retry-After delay when present, otherwise exponential backoff, both capped
// at the delay ceiling. Network-level failures and per-attempt timeouts are
// retried with plain backoff. Any other status returns immediately with the
// body and status. Exhausting all attempts returns a nil Response and an
// error.
func (c *Client) FetchJSON(ctx context.Context, req Request, maxRetries int) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := c.do(ctx, req)
		if err != nil {
			requestAttempts.WithLabelValues(outcomeNetworkError).Inc()
			lastErr = err
			if attempt >= maxRetries {
				break
			}
			if err := sleep(ctx, c.backoffDelay(attempt)); err != nil {
				return nil, err
			}
			requestRetries.Inc()
			continue
		}

		if resp.Status >= 200 && resp.Status < 300 {
			requestAttempts.WithLabelValues(outcomeOK).Inc()
			return resp, nil
		}

		if !isRetriableStatus(resp.Status) {
			requestAttempts.WithLabelValues(outcomeHTTPError).Inc()
			return resp, nil
		}

		requestAttempts.WithLabelValues(outcomeHTTPError).Inc()
		lastErr = fmt.Errorf("upstream returned %d for %s", resp.Status, req.URL)
		if attempt >= maxRetries {
			break
		}

		delay, ok := parseRetryAfter(resp.retryAfter, time.Now(), c.maxDelay)
		if !ok {
			delay = c.backoffDelay(attempt)
		}
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
		requestRetries.Inc()
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries+1, lastErr)
}

// do executes one attempt bounded by the per-attempt timeout.
func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	httpResp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		Body:       respBody,
		Status:     httpResp.StatusCode,
		retryAfter: httpResp.Header.Get("Retry-After"),
	}, nil
}

func isRetriableStatus(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests ||
		(status >= 500 && status <= 599)
}

// backoffDelay returns 250ms * 2^attempt capped at the delay ceiling.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.backoff << uint(attempt)
	if delay > c.maxDelay || delay <= 0 {
		return c.maxDelay
	}
	return delay
}

// parseRetryAfter interprets a Retry-After header as either delay seconds or
// an HTTP date, clamped to [0, ceiling]. Returns false when absent or
// unparseable.
func parseRetryAfter(header string, now time.Time, ceiling time.Duration) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}

	if seconds, err := strconv.ParseFloat(header, 64); err == nil {
		if seconds < 0 {
			return 0, false
		}
		delay := time.Duration(seconds * float64(time.Second))
		if delay > ceiling {
			delay = ceiling
		}
		return delay, true
	}

	when, err := http.ParseTime(header)
	if err != nil {
		return 0, false
	}
	delay := when.Sub(now)
	if delay < 0 {
		delay = 0
	}
	if delay > ceiling {
		delay = ceiling
	}
	return delay, true
}

// sleep blocks for the given delay or until ctx is cancelled.
func sleep(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
