package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.jikan.moe/v4"

	// Admission gate: at most 3 requests in flight across all call sites.
	maxInFlight = 3

	// Jikan allows ~3 requests per second
	rateLimit = 3
	rateBurst = 3

	// Retry configuration
	maxRetries   = 5
	initialDelay = 1 * time.Second
	maxDelay     = 32 * time.Second

	searchPageSize     = 20
	maxRecommendations = 3
)

// Client handles Jikan API requests with a shared concurrency ceiling,
// rate limiting and retry on 429/5xx responses.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	gate        chan struct{}
	logger      *slog.Logger
}

// NewClient creates a new Jikan API client. The admission gate is owned by
// the client, so every caller sharing the client shares the same ceiling.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		gate:        make(chan struct{}, maxInFlight),
		logger:      logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// GetAnimeByID fetches full metadata for a single anime.
func (c *Client) GetAnimeByID(ctx context.Context, id int64) (*Anime, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid anime id: %d", id)
	}

	var resp envelope
	if err := c.doRequest(ctx, fmt.Sprintf("/anime/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetTopAnime fetches a page of the top-anime listing.
func (c *Client) GetTopAnime(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var resp Page
	if err := c.doRequest(ctx, "/top/anime", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchAnime searches the upstream catalog by free-text query.
func (c *Client) SearchAnime(ctx context.Context, query string, page int) (*Page, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(searchPageSize))

	var resp Page
	if err := c.doRequest(ctx, "/anime", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRecommendations fetches related titles for an anime. Unlike the other
// operations it degrades to an empty list on any failure: recommendations
// back a secondary UI section and must never break the primary page.
// Callers must not assume success.
func (c *Client) GetRecommendations(ctx context.Context, id int64) ([]Anime, error) {
	if id <= 0 {
		return []Anime{}, nil
	}

	var resp recommendationsResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/anime/%d/recommendations", id), nil, &resp); err != nil {
		c.logger.Warn("recommendations fetch failed, serving empty list", "anime_id", id, "error", err)
		return []Anime{}, nil
	}

	out := make([]Anime, 0, maxRecommendations)
	for _, entry := range resp.Data {
		out = append(out, entry.Entry)
		if len(out) == maxRecommendations {
			break
		}
	}
	return out, nil
}

// GetSeasonalAnime fetches the listing for a season. Zero year or empty
// season default to the current ones.
func (c *Client) GetSeasonalAnime(ctx context.Context, year int, season string) (*Page, error) {
	if year <= 0 {
		year = time.Now().Year()
	}
	if season == "" {
		season = CurrentSeason(time.Now())
	}

	var resp Page
	if err := c.doRequest(ctx, fmt.Sprintf("/seasons/%d/%s", year, season), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentSeason maps a point in time to its anime season name.
func CurrentSeason(t time.Time) string {
	switch m := t.Month(); {
	case m <= 3:
		return "winter"
	case m <= 6:
		return "spring"
	case m <= 9:
		return "summer"
	default:
		return "fall"
	}
}

// doRequest performs an HTTP request while holding an admission-gate slot.
// The slot is held across the whole retry loop so retries cannot let more
// than maxInFlight requests hit the upstream at once, and is released
// unconditionally on return.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	select {
	case c.gate <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-c.gate }()

	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", "AniHub/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				c.logger.Warn("upstream request failed, retrying",
					"url", endpoint, "attempt", attempt+1, "delay", delay, "error", err)
				if err := sleepCtx(ctx, delay); err != nil {
					return err
				}
				delay = minDuration(delay*2, maxDelay)
				continue
			}
			return &Error{Body: lastErr.Error()}
		}

		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			if shouldRetry(resp.StatusCode) && attempt < maxRetries {
				lastErr = &Error{StatusCode: resp.StatusCode, Body: string(bodyBytes)}

				if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
					if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
						delay = time.Duration(secs) * time.Second
					}
				}

				c.logger.Warn("upstream rate limited or unavailable, retrying",
					"url", endpoint, "status", resp.StatusCode, "attempt", attempt+1, "delay", delay)
				if err := sleepCtx(ctx, delay); err != nil {
					return err
				}
				delay = minDuration(delay*2, maxDelay)
				continue
			}

			return &Error{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
		}

		err = json.NewDecoder(resp.Body).Decode(result)
		resp.Body.Close()
		if err != nil {
			return &Error{Body: fmt.Sprintf("parse response: %v", err)}
		}
		return nil
	}

	if e, ok := lastErr.(*Error); ok {
		return e
	}
	return &Error{Body: fmt.Sprintf("request failed after %d attempts: %v", maxRetries, lastErr)}
}

// shouldRetry determines if an HTTP status code warrants a retry
func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || // 429
		statusCode >= 500 // 500-504
}

// sleepCtx waits for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// minDuration returns the smaller of two durations
func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
