package strava

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mattbolanos/portfolio-api/internal/httpx"
)

const (
	defaultMaxPages = 8
	defaultPerPage  = 100
	// Activities older than this trailing window are excluded upstream.
	trailingWindowDays = 366
)

// Options bounds one aggregation. Zero values fall back to the defaults
// (8 pages of 100).
type Options struct {
	MaxPages int
	PerPage  int
}

// Client fetches and aggregates Strava activities. Pages are fetched
// strictly sequentially: the short-page termination signal depends on the
// previous page, and the upstream rate limit favours serialisation.
type Client struct {
	http     *httpx.Client
	tokens   *TokenManager
	baseURL  string
	retries  int
	runTypes map[string]struct{}
}

// NewClient creates an activities Client. runSportTypes lists the sport_type
// values that qualify as runs.
func NewClient(httpClient *httpx.Client, tokens *TokenManager, baseURL string, retries int, runSportTypes []string) *Client {
	runTypes := make(map[string]struct{}, len(runSportTypes))
	for _, t := range runSportTypes {
		runTypes[t] = struct{}{}
	}
	return &Client{
		http:     httpClient,
		tokens:   tokens,
		baseURL:  baseURL,
		retries:  retries,
		runTypes: runTypes,
	}
}

// GetActivities aggregates the trailing year of run activities into the
// heatmap result. It never returns an error: missing credentials or a failed
// first page produce the empty result, and a failure on a later page returns
// whatever was accumulated before it.
func (c *Client) GetActivities(ctx context.Context, opts Options) ActivitiesResult {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	token := c.tokens.AccessToken(ctx, false)
	if token == "" {
		return EmptyActivitiesResult()
	}

	after := time.Now().AddDate(0, 0, -trailingWindowDays).Unix()

	var runs []Activity
	seen := make(map[int64]struct{})

	for page := 1; page <= maxPages; page++ {
		resp, err := c.fetchPage(ctx, token, after, page, perPage)

		// One forced refresh per page on auth expiry; a second 401 is
		// fatal for this aggregation.
		if err == nil && resp.Status == http.StatusUnauthorized {
			token = c.tokens.AccessToken(ctx, true)
			if token == "" {
				if page == 1 && len(runs) == 0 {
					return EmptyActivitiesResult()
				}
				break
			}
			resp, err = c.fetchPage(ctx, token, after, page, perPage)
			if err == nil && resp.Status == http.StatusUnauthorized {
				break
			}
		}

		if err != nil || resp.Status < 200 || resp.Status >= 300 {
			if page == 1 && len(runs) == 0 {
				return EmptyActivitiesResult()
			}
			break
		}

		activities, rawLen, ok := parseActivitiesPage(resp.Body)
		if !ok {
			if page == 1 && len(runs) == 0 {
				return EmptyActivitiesResult()
			}
			break
		}
		pagesFetched.Inc()

		for _, activity := range activities {
			if !c.qualifiesAsRun(activity) {
				continue
			}
			if _, dup := seen[activity.ID]; dup {
				continue
			}
			seen[activity.ID] = struct{}{}
			runs = append(runs, activity)
		}

		// A short raw page means the upstream has no more data.
		if rawLen < perPage {
			break
		}
	}

	aggregationRuns.Set(float64(len(runs)))
	return buildResult(runs)
}

func (c *Client) qualifiesAsRun(activity Activity) bool {
	sportType := activity.SportType
	if sportType == "" {
		sportType = activity.Type
	}
	_, ok := c.runTypes[sportType]
	return ok
}

func (c *Client) fetchPage(ctx context.Context, token string, after int64, page, perPage int) (*httpx.Response, error) {
	params := url.Values{}
	params.Set("after", strconv.FormatInt(after, 10))
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	return c.http.FetchJSON(ctx, httpx.Request{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/athlete/activities?%s", c.baseURL, params.Encode()),
		Header: http.Header{"Authorization": []string{"Bearer " + token}},
	}, c.retries)
}
