package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"endurance-planner/internal/metrics"
)

const BaseURL = "https://www.strava.com/api/v3"

// maximum page size Strava allows
const perPage = 100

// Client is a Strava API client
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *RateLimiter
}

// NewClient creates a new Strava API client
func NewClient(ctx context.Context, tokenSource oauth2.TokenSource) *Client {
	return NewClientWithHTTP(oauth2.NewClient(ctx, tokenSource), BaseURL)
}

// NewClientWithHTTP creates a client against any base URL. Tests point it
// at an httptest server.
func NewClientWithHTTP(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		rateLimiter: NewRateLimiter(),
	}
}

// GetAthlete fetches the authenticated athlete
func (c *Client) GetAthlete(ctx context.Context) (*Athlete, error) {
	var athlete Athlete
	if err := c.getJSON(ctx, "/athlete", nil, &athlete); err != nil {
		return nil, fmt.Errorf("fetching athlete: %w", err)
	}
	return &athlete, nil
}

// GetActivities fetches one page of activities started after 'after'
func (c *Client) GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]Activity, error) {
	params := url.Values{}
	if !after.IsZero() {
		params.Set("after", strconv.FormatInt(after.Unix(), 10))
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	var activities []Activity
	if err := c.getJSON(ctx, "/athlete/activities", params, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// GetAllActivities fetches all activities after a given time
// It handles pagination automatically and respects rate limits
func (c *Client) GetAllActivities(ctx context.Context, after time.Time, onProgress func(fetched int)) ([]Activity, error) {
	var all []Activity

	for page := 1; ; page++ {
		activities, err := c.GetActivities(ctx, after, page, perPage)
		if err != nil {
			return all, fmt.Errorf("fetching page %d: %w", page, err)
		}
		all = append(all, activities...)

		if onProgress != nil && len(activities) > 0 {
			onProgress(len(all))
		}
		if len(activities) < perPage {
			return all, nil
		}
	}
}

// RateLimitStatus returns the current rate limit status
func (c *Client) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return c.rateLimiter.Status()
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.StravaRequests.WithLabelValues("error").Inc()
		return err
	}
	defer resp.Body.Close()

	metrics.StravaRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	c.rateLimiter.UpdateFromHeaders(resp.Header)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
