package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hamishapps/transitsync-routing/config"
)

// ErrNoItinerary indicates OTP answered but found no viable itinerary.
var ErrNoItinerary = errors.New("no itinerary found")

// ErrUnreachable indicates no candidate GraphQL endpoint could be reached.
// Callers use this to trigger the offline fallback.
var ErrUnreachable = errors.New("otp server unreachable")

// graphqlError marks an answer from a reachable server that could not be
// used. These are final: the offline fallback must not trigger for them.
type graphqlError struct {
	msg string
}

func (e *graphqlError) Error() string { return e.msg }

const planQuery = `
query PlanRoute($fromLat: Float!, $fromLon: Float!, $toLat: Float!, $toLon: Float!, $date: String!, $time: String!, $arriveBy: Boolean!) {
  plan(
    from: {lat: $fromLat, lon: $fromLon}
    to: {lat: $toLat, lon: $toLon}
    date: $date
    time: $time
    arriveBy: $arriveBy
    numItineraries: 1
  ) {
    itineraries {
      duration
      legs {
        mode
        startTime
        endTime
        from { name }
        to { name }
        route
        distance
      }
    }
  }
}`

// Client plans trips against an OpenTripPlanner GraphQL server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	paths      []string
	loc        *time.Location

	// First path that answered a query successfully; tried first afterwards.
	workingPath string
}

// NewClient creates an OTP client from configuration.
func NewClient(cfg config.OTPConfig, loc *time.Location) *Client {
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		paths:      cfg.EndpointPaths,
		loc:        loc,
	}
}

// Plan executes a trip-planning query, trying each candidate GraphQL path
// until one answers. Returns ErrNoItinerary when the server has no route and
// ErrUnreachable when no endpoint could be reached at all.
func (c *Client) Plan(ctx context.Context, req PlanRequest) (*Itinerary, error) {
	arriveBy := req.ArriveBy.In(c.loc)
	variables := map[string]any{
		"fromLat":  req.FromLat,
		"fromLon":  req.FromLon,
		"toLat":    req.ToLat,
		"toLon":    req.ToLon,
		"date":     arriveBy.Format("2006-01-02"),
		"time":     strings.ToLower(arriveBy.Format("03:04pm")),
		"arriveBy": true,
	}

	paths := make([]string, 0, len(c.paths)+1)
	if c.workingPath != "" {
		paths = append(paths, c.workingPath)
	}
	for _, p := range c.paths {
		if p != c.workingPath {
			paths = append(paths, p)
		}
	}

	var lastErr, answeredErr error
	for _, path := range paths {
		itin, err := c.planVia(ctx, path, variables)
		var gqlErr *graphqlError
		switch {
		case err == nil:
			c.workingPath = path
			return itin, nil
		case errors.Is(err, ErrNoItinerary):
			// The endpoint works; the answer is just empty.
			c.workingPath = path
			return nil, err
		case errors.As(err, &gqlErr):
			// The server decoded and answered the query; it is reachable.
			log.Printf("otp endpoint %s answered with an error: %v", path, err)
			answeredErr = err
		default:
			log.Printf("otp endpoint %s failed: %v", path, err)
			lastErr = err
		}
	}
	if answeredErr != nil {
		return nil, fmt.Errorf("otp query failed: %w", answeredErr)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnreachable, lastErr)
}

func (c *Client) planVia(ctx context.Context, path string, variables map[string]any) (*Itinerary, error) {
	body, err := json.Marshal(map[string]any{"query": planQuery, "variables": variables})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, path)
	}

	var pr planResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decoding plan response: %w", err)
	}
	if len(pr.Errors) > 0 {
		return nil, &graphqlError{msg: "graphql error: " + pr.Errors[0].Message}
	}
	if pr.Data == nil || pr.Data.Plan == nil {
		return nil, &graphqlError{msg: "plan response missing data"}
	}
	if len(pr.Data.Plan.Itineraries) == 0 {
		return nil, ErrNoItinerary
	}

	chosen := pr.Data.Plan.Itineraries[0]
	if len(chosen.Legs) == 0 {
		return nil, ErrNoItinerary
	}

	itin := &Itinerary{Duration: time.Duration(chosen.Duration * float64(time.Second))}
	for _, l := range chosen.Legs {
		itin.Legs = append(itin.Legs, Leg{
			Mode:     l.Mode,
			Start:    time.UnixMilli(l.StartTime).In(c.loc),
			End:      time.UnixMilli(l.EndTime).In(c.loc),
			FromName: l.From.Name,
			ToName:   l.To.Name,
			Route:    l.Route,
			Distance: l.Distance,
		})
	}
	return itin, nil
}
