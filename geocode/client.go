package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hamishapps/transitsync-routing/config"
)

// ErrNoMatch indicates the geocoder returned no result for the address.
// It is a user-facing outcome, not a transport failure.
var ErrNoMatch = errors.New("no geocoding match")

// Result is a resolved geocoordinate.
type Result struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Client geocodes addresses against a Nominatim endpoint. Results are cached
// per normalized address for the lifetime of the client, and live calls are
// spaced out to respect the Nominatim usage policy.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	city       string
	country    string
	rateLimit  time.Duration

	cache    map[string]Result
	lastCall time.Time
}

// NewClient creates a geocoding client from configuration.
func NewClient(cfg config.GeocoderConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond},
		baseURL:    cfg.URL,
		userAgent:  cfg.UserAgent,
		city:       cfg.City,
		country:    cfg.Country,
		rateLimit:  time.Duration(cfg.RateLimitMS) * time.Millisecond,
		cache:      map[string]Result{},
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves a free-text address to coordinates. The address is
// normalized first; repeated lookups for the same normalized address hit the
// in-memory cache and skip the network entirely.
func (c *Client) Geocode(ctx context.Context, address string) (Result, error) {
	normalized := Normalize(address, c.city, c.country)
	if normalized == "" {
		return Result{}, fmt.Errorf("empty address")
	}

	if r, ok := c.cache[normalized]; ok {
		log.Printf("geocode cache hit for %q", normalized)
		return r, nil
	}

	c.throttle(ctx)

	q := url.Values{}
	q.Set("q", normalized)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("HTTP %d from nominatim", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Result{}, fmt.Errorf("decoding nominatim response: %w", err)
	}
	if len(results) == 0 {
		return Result{}, fmt.Errorf("%q: %w", normalized, ErrNoMatch)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("bad latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("bad longitude %q: %w", results[0].Lon, err)
	}

	r := Result{Lat: lat, Lon: lon, DisplayName: results[0].DisplayName}
	c.cache[normalized] = r
	log.Printf("geocoded %q to (%f, %f)", normalized, lat, lon)
	return r, nil
}

// throttle sleeps until the rate-limit window since the last live call has
// passed, or the context is cancelled.
func (c *Client) throttle(ctx context.Context) {
	if c.rateLimit <= 0 || c.lastCall.IsZero() {
		c.lastCall = time.Now()
		return
	}
	wait := c.rateLimit - time.Since(c.lastCall)
	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
		}
	}
	c.lastCall = time.Now()
}
