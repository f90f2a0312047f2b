// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/smerlo/addrgrade/spatial"
)

// ClientOptions configuration for the search client.
type ClientOptions struct {
	// BaseURL of the provider's text-search endpoint, e.g.
	// https://nominatim.openstreetmap.org
	BaseURL string

	// UserAgent identifies the caller to the provider. Public Nominatim
	// instances refuse anonymous clients.
	UserAgent string

	// Timeout bounds each individual HTTP call.
	Timeout time.Duration

	// RequestsPerSecond caps the sustained call rate. Public geocoders
	// effectively allow 1 req/s.
	RequestsPerSecond float64

	// MaxAttempts is the total number of tries per query. Only timeouts
	// and rate-limit rejections are retried.
	MaxAttempts int

	// Backoff is the base wait between retries; attempt n waits n×Backoff.
	Backoff time.Duration

	// MaxResults limits how many matches the provider is asked for.
	MaxResults int

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

func (o *ClientOptions) withDefaults() *ClientOptions {
	out := *o

	if out.BaseURL == "" {
		out.BaseURL = "https://nominatim.openstreetmap.org"
	}

	if out.UserAgent == "" {
		out.UserAgent = "addrgrade/unknown"
	}

	if out.Timeout == 0 {
		out.Timeout = 4 * time.Second
	}

	if out.RequestsPerSecond == 0 {
		out.RequestsPerSecond = 1
	}

	if out.MaxAttempts == 0 {
		out.MaxAttempts = 3
	}

	if out.Backoff == 0 {
		out.Backoff = 500 * time.Millisecond
	}

	if out.MaxResults == 0 {
		out.MaxResults = 10
	}

	return &out
}

// Client queries a Nominatim-style text-search endpoint through a shared
// rate limiter and an optional response cache. Construct once and share: the
// limiter is what keeps the process polite.
type Client struct {
	options *ClientOptions
	client  *http.Client
	limiter *rate.Limiter
	cache   Cache
}

// NewClient builds the search client. cache may be nil to disable caching.
func NewClient(options *ClientOptions, cache Cache) *Client {
	if options == nil {
		options = &ClientOptions{}
	}

	options = options.withDefaults()

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace {
		httpLogWriter = os.Stderr
	}

	transport := &http.Transport{
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   2,
		MaxConnsPerHost:       2,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: options.Timeout,
	}

	loggingTransport := &loggingRoundTripper{
		Writer:    httpLogWriter,
		DumpBody:  options.EnableHTTPBodyTrace,
		Transport: transport,
	}

	headerTransport := &headerRoundTripper{
		Headers: map[string]string{
			"User-Agent": options.UserAgent,
			"Accept":     "application/json",
		},
		Transport: loggingTransport,
	}

	return &Client{
		options: options,
		client: &http.Client{
			Timeout:   options.Timeout,
			Transport: headerTransport,
		},
		limiter: rate.NewLimiter(rate.Limit(options.RequestsPerSecond), 1),
		cache:   cache,
	}
}

// nominatimPlace is the jsonv2 wire shape of one match. boundingbox comes as
// four string-encoded floats: south, north, west, east.
type nominatimPlace struct {
	PlaceRank   int      `json:"place_rank"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"`
}

func (p *nominatimPlace) toMatch() (Match, error) {
	m := Match{
		PlaceRank:   p.PlaceRank,
		Name:        p.Name,
		DisplayName: p.DisplayName,
	}

	if len(p.BoundingBox) != 4 {
		return m, fmt.Errorf("boundingbox has %d values, want 4", len(p.BoundingBox))
	}

	coords := make([]float64, 4)

	for i, s := range p.BoundingBox {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return m, fmt.Errorf("parsing boundingbox value %q: %w", s, err)
		}

		coords[i] = v
	}

	m.BoundingBox = spatial.BoundingBox{
		South: coords[0],
		North: coords[1],
		West:  coords[2],
		East:  coords[3],
	}

	return m, nil
}

// Search resolves a free-text query to matches. Cache hits return without
// touching the network or the rate limiter. Timeouts and rate-limit
// rejections are retried up to MaxAttempts with increasing backoff; any
// other error fails immediately.
func (c *Client) Search(ctx context.Context, query string) ([]Match, error) {
	key := CanonicalKey(query)

	if c.cache != nil {
		if matches, ok := c.cache.Get(key); ok {
			return matches, nil
		}
	}

	var matches []Match

	var err error

	for attempt := 1; attempt <= c.options.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt-1) * c.options.Backoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		matches, err = c.search(ctx, query)
		if err == nil {
			break
		}

		if !IsTimeoutError(err) && !IsRateLimitError(err) {
			return nil, err
		}
	}

	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if cacheErr := c.cache.Put(key, matches); cacheErr != nil {
			// A broken cache must not take down a successful lookup.
			return matches, nil
		}
	}

	return matches, nil
}

func (c *Client) search(ctx context.Context, query string) ([]Match, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(c.options.MaxResults))

	reqURL := c.options.BaseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if IsTimeoutError(err) {
			return nil, &ProviderError{Type: ErrorTypeTimeout, Message: "search timed out", Err: err}
		}

		return nil, &ProviderError{Type: ErrorTypeNetwork, Message: "search request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, &ProviderError{Type: ErrorTypeParse, Message: "decoding search response", Err: err}
	}

	matches := make([]Match, 0, len(places))

	for i := range places {
		m, err := places[i].toMatch()
		if err != nil {
			return nil, &ProviderError{Type: ErrorTypeParse, Message: "normalizing search response", Err: err}
		}

		matches = append(matches, m)
	}

	return matches, nil
}
