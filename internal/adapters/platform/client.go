// Package platform implements the read-only client for the external
// challenge platform's JSON API.
//
// The platform enforces request rate limits; every call goes through a
// local limiter so polling loops cannot trip them.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Default client configuration constants.
const (
	defaultRequestsPerSecond = 5
	defaultBurst             = 10
	defaultTimeout           = 30 * time.Second
	defaultLang              = "en"
)

// Client fetches challenge and auteur snapshots from the platform API.
type Client struct {
	baseURL    string
	apiKey     string
	lang       string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a platform client for the given API base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		lang:       defaultLang,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurst),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetLang selects the language used for titles and search results.
func (c *Client) SetLang(lang string) {
	c.lang = lang
}

// Challenges fetches the full current challenge catalog, following
// pagination until the last page.
func (c *Client) Challenges(ctx context.Context) ([]ChallengeSnapshot, error) {
	var all []ChallengeSnapshot
	start := 0
	for {
		var page challengesPage
		query := url.Values{"start": {strconv.Itoa(start)}}
		if err := c.get(ctx, "/challenges", query, &page); err != nil {
			return nil, fmt.Errorf("fetch challenges page %d: %w", start, err)
		}
		all = append(all, page.Challenges...)
		if page.NextStart == 0 {
			return all, nil
		}
		start = page.NextStart
	}
}

// Auteur fetches one user's current snapshot including solve history.
func (c *Client) Auteur(ctx context.Context, id int) (AuteurSnapshot, error) {
	var snap AuteurSnapshot
	if err := c.get(ctx, "/auteurs/"+strconv.Itoa(id), nil, &snap); err != nil {
		return AuteurSnapshot{}, fmt.Errorf("fetch auteur %d: %w", id, err)
	}
	return snap, nil
}

// SearchAuteurs looks users up by display name. Names are not unique; the
// result may hold several candidates.
func (c *Client) SearchAuteurs(ctx context.Context, name string) ([]AuteurSnapshot, error) {
	var result auteurSearchResult
	query := url.Values{"name": {name}}
	if err := c.get(ctx, "/auteurs", query, &result); err != nil {
		return nil, fmt.Errorf("search auteurs %q: %w", name, err)
	}
	return result.Auteurs, nil
}

// get performs one rate-limited request and decodes the JSON body.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("lang", c.lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" {
		req.AddCookie(&http.Cookie{Name: "api_key", Value: c.apiKey})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
