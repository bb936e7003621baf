package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hamishapps/transitsync-routing/config"
)

const itineraryJSON = `{
  "data": {
    "plan": {
      "itineraries": [
        {
          "duration": 600,
          "legs": [
            {
              "mode": "WALK",
              "startTime": 1748750400000,
              "endTime": 1748750700000,
              "from": {"name": "Origin"},
              "to": {"name": "Courtenay Place"},
              "distance": 300
            },
            {
              "mode": "BUS",
              "startTime": 1748750700000,
              "endTime": 1748751000000,
              "from": {"name": "Courtenay Place"},
              "to": {"name": "Wellington Zoo"},
              "route": "1",
              "distance": 4000
            }
          ]
        }
      ]
    }
  }
}`

func testRequest() PlanRequest {
	return PlanRequest{
		FromLat:  -41.2889,
		FromLon:  174.7772,
		ToLat:    -41.3196,
		ToLon:    174.7844,
		ArriveBy: time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
	}
}

func newTestClient(baseURL string, paths []string) *Client {
	return NewClient(config.OTPConfig{
		BaseURL:       baseURL,
		EndpointPaths: paths,
		TimeoutMS:     2000,
	}, time.UTC)
}

func TestPlan_EndpointProbing(t *testing.T) {
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		if r.URL.Path != "/otp/index/graphql" {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if body.Variables["date"] != "2025-06-01" {
			t.Errorf("unexpected date %v", body.Variables["date"])
		}
		if body.Variables["time"] != "02:30pm" {
			t.Errorf("unexpected time %v", body.Variables["time"])
		}
		fmt.Fprint(w, itineraryJSON)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, []string{"/otp/routers/default/index/graphql", "/otp/index/graphql"})

	itin, err := c.Plan(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(itin.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(itin.Legs))
	}
	if itin.Duration != 10*time.Minute {
		t.Errorf("expected 10m duration, got %v", itin.Duration)
	}
	if itin.Legs[1].Mode != "BUS" || itin.Legs[1].Route != "1" {
		t.Errorf("unexpected transit leg: %+v", itin.Legs[1])
	}

	// Second plan goes straight to the remembered endpoint.
	hits = nil
	if _, err := c.Plan(context.Background(), testRequest()); err != nil {
		t.Fatalf("unexpected error on second plan: %v", err)
	}
	if len(hits) != 1 || hits[0] != "/otp/index/graphql" {
		t.Errorf("expected single hit on working endpoint, got %v", hits)
	}
}

func TestPlan_NoItinerary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"plan":{"itineraries":[]}}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, []string{"/graphql"})
	_, err := c.Plan(context.Background(), testRequest())
	if !errors.Is(err, ErrNoItinerary) {
		t.Errorf("expected ErrNoItinerary, got %v", err)
	}
}

func TestPlan_GraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"something broke"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, []string{"/otp/index/graphql", "/graphql"})
	_, err := c.Plan(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNoItinerary) {
		t.Error("graphql errors must not be reported as an empty plan")
	}
	// The server decoded and answered every query; it is reachable, so the
	// error must not activate the offline fallback.
	if errors.Is(err, ErrUnreachable) {
		t.Error("graphql errors from a reachable server must not be reported as unreachable")
	}
}

func TestPlan_GraphQLErrorBehindBadPaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphql" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"errors":[{"message":"unknown field"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, []string{"/otp/index/graphql", "/graphql"})
	_, err := c.Plan(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrUnreachable) {
		t.Error("one answering endpoint is enough to rule out unreachability")
	}
}

func TestPlan_FailedWorkingPathTriedOnce(t *testing.T) {
	working := "/otp/index/graphql"
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		if r.URL.Path != working {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, itineraryJSON)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, []string{"/otp/routers/default/index/graphql", "/otp/index/graphql"})
	if _, err := c.Plan(context.Background(), testRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The remembered endpoint moves; probing must not try it twice.
	working = "/otp/routers/default/index/graphql"
	hits = nil
	if _, err := c.Plan(context.Background(), testRequest()); err != nil {
		t.Fatalf("unexpected error after endpoint moved: %v", err)
	}
	stale := 0
	for _, h := range hits {
		if h == "/otp/index/graphql" {
			stale++
		}
	}
	if stale != 1 {
		t.Errorf("stale remembered endpoint should be tried once, got %d hits (%v)", stale, hits)
	}
	if hits[len(hits)-1] != working {
		t.Errorf("expected the new endpoint to answer last, got %v", hits)
	}
}

func TestPlan_Unreachable(t *testing.T) {
	// Server that is already closed: connection refused on every path.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestClient(srv.URL, []string{"/otp/index/graphql", "/graphql"})
	_, err := c.Plan(context.Background(), testRequest())
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("expected ErrUnreachable, got %v", err)
	}
}
