package transitsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hamishapps/transitsync-routing/geocode"
	"github.com/hamishapps/transitsync-routing/otp"
)

type stubGeocoder struct {
	coords map[string]geocode.Result
}

func (s *stubGeocoder) Geocode(ctx context.Context, address string) (geocode.Result, error) {
	if r, ok := s.coords[address]; ok {
		return r, nil
	}
	return geocode.Result{}, fmt.Errorf("%q: %w", address, geocode.ErrNoMatch)
}

type stubTrips struct {
	requests []otp.PlanRequest
	plan     func(req otp.PlanRequest) (*otp.Itinerary, error)
}

func (s *stubTrips) Plan(ctx context.Context, req otp.PlanRequest) (*otp.Itinerary, error) {
	s.requests = append(s.requests, req)
	return s.plan(req)
}

// busItinerary fabricates a single-leg ride ending at the requested deadline.
func busItinerary(req otp.PlanRequest) (*otp.Itinerary, error) {
	return &otp.Itinerary{
		Duration: 30 * time.Minute,
		Legs: []otp.Leg{{
			Mode:     "BUS",
			Route:    "1",
			FromName: "Origin Stop",
			ToName:   "Destination Stop",
			Start:    req.ArriveBy.Add(-30 * time.Minute),
			End:      req.ArriveBy,
		}},
	}, nil
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
}

func TestIsSuitable(t *testing.T) {
	p := &Planner{HorizonDays: 30, Now: fixedClock}
	soon := fixedClock().Add(2 * time.Hour)

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{
			name:  "normal event",
			event: Event{Summary: "Dentist", Location: "1 Willis Street", Start: soon},
			want:  true,
		},
		{
			name:  "no location",
			event: Event{Summary: "Dentist", Start: soon},
			want:  false,
		},
		{
			name:  "no start time",
			event: Event{Summary: "Dentist", Location: "1 Willis Street"},
			want:  false,
		},
		{
			name:  "previously generated transit block",
			event: Event{Summary: "Transit: Home to Work", Location: "1 Willis Street", Start: soon},
			want:  false,
		},
		{
			name:  "previously generated walking block",
			event: Event{Summary: "Walking: Home to Work", Location: "1 Willis Street", Start: soon},
			want:  false,
		},
		{
			name:  "tagged bot event",
			event: Event{Summary: "[TransitBot] reminder", Location: "1 Willis Street", Start: soon},
			want:  false,
		},
		{
			name:  "zoom meeting",
			event: Event{Summary: "Standup", Location: "https://zoom.us/j/123", Start: soon},
			want:  false,
		},
		{
			name:  "online meeting",
			event: Event{Summary: "Review", Location: "Online", Start: soon},
			want:  false,
		},
		{
			name:  "beyond planning horizon",
			event: Event{Summary: "Conference", Location: "1 Willis Street", Start: fixedClock().AddDate(0, 0, 45)},
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsSuitable(tt.event); got != tt.want {
				t.Errorf("IsSuitable(%q) = %v, want %v", tt.event.Summary, got, tt.want)
			}
		})
	}
}

func TestPlanBetween(t *testing.T) {
	trips := &stubTrips{plan: busItinerary}
	p := &Planner{
		Geocoder: &stubGeocoder{coords: map[string]geocode.Result{
			"Wellington Station": {Lat: -41.2790, Lon: 174.7803},
			"Wellington Zoo":     {Lat: -41.3196, Lon: 174.7844},
		}},
		Trips: trips,
		Now:   fixedClock,
	}

	start := fixedClock().Add(2 * time.Hour)
	from := Event{Summary: "Coffee", Location: "Wellington Station"}
	to := Event{Summary: "Zoo visit", Location: "Wellington Zoo", Start: start}

	route, err := p.PlanBetween(context.Background(), from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips.requests) != 1 {
		t.Fatalf("expected 1 plan request, got %d", len(trips.requests))
	}
	req := trips.requests[0]
	if !req.ArriveBy.Equal(start) {
		t.Errorf("arrive-by should be the next event's start, got %v", req.ArriveBy)
	}
	if req.FromLat != -41.2790 || req.ToLat != -41.3196 {
		t.Errorf("unexpected coordinates in request: %+v", req)
	}
	if route.Itinerary.Source != SourceOTP {
		t.Errorf("expected otp itinerary, got %q", route.Itinerary.Source)
	}
	if !route.Itinerary.Arrival().Equal(start) {
		t.Errorf("unexpected arrival %v", route.Itinerary.Arrival())
	}
}

func TestPlanBetween_ArriveByFallsBackToEventEnd(t *testing.T) {
	trips := &stubTrips{plan: busItinerary}
	p := &Planner{
		Geocoder: &stubGeocoder{coords: map[string]geocode.Result{
			"A": {Lat: 1, Lon: 2},
			"B": {Lat: 3, Lon: 4},
		}},
		Trips: trips,
		Now:   fixedClock,
	}

	end := fixedClock().Add(time.Hour)
	from := Event{Summary: "First", Location: "A", End: end}
	to := Event{Summary: "Second", Location: "B"}

	if _, err := p.PlanBetween(context.Background(), from, to); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !trips.requests[0].ArriveBy.Equal(end) {
		t.Errorf("arrive-by should fall back to the first event's end, got %v", trips.requests[0].ArriveBy)
	}
}

func TestPlanBetween_GeocodeFailure(t *testing.T) {
	p := &Planner{
		Geocoder: &stubGeocoder{coords: map[string]geocode.Result{}},
		Trips:    &stubTrips{plan: busItinerary},
		Now:      fixedClock,
	}
	_, err := p.PlanBetween(context.Background(),
		Event{Summary: "A", Location: "nowhere"},
		Event{Summary: "B", Location: "also nowhere", Start: fixedClock().Add(time.Hour)})
	if !errors.Is(err, geocode.ErrNoMatch) {
		t.Errorf("expected ErrNoMatch, got %v", err)
	}
}

func TestPlanLeg_NoItineraryDoesNotFallBack(t *testing.T) {
	trips := &stubTrips{plan: func(otp.PlanRequest) (*otp.Itinerary, error) {
		return nil, otp.ErrNoItinerary
	}}
	p := &Planner{
		Trips:    trips,
		Fallback: &OfflinePlanner{Index: newTestIndex(t), WalkingSpeedKMH: 4.5},
		Now:      fixedClock,
	}

	_, err := p.planLeg(context.Background(), otp.PlanRequest{ArriveBy: mondayAt(9, 0)})
	if !errors.Is(err, otp.ErrNoItinerary) {
		t.Errorf("an empty answer from a healthy server must not trigger the fallback, got %v", err)
	}
}

func TestPlanLeg_UnreachableFallsBack(t *testing.T) {
	trips := &stubTrips{plan: func(otp.PlanRequest) (*otp.Itinerary, error) {
		return nil, fmt.Errorf("%w: connection refused", otp.ErrUnreachable)
	}}
	p := &Planner{
		Trips:    trips,
		Fallback: &OfflinePlanner{Index: newTestIndex(t), WalkingSpeedKMH: 4.5},
		Now:      fixedClock,
	}

	itin, err := p.planLeg(context.Background(), otp.PlanRequest{
		FromLat: -41.2795, FromLon: 174.7800,
		ToLat: -41.3190, ToLon: 174.7840,
		ArriveBy: mondayAt(9, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if itin.Source != SourceTimetable {
		t.Errorf("expected timetable fallback, got source %q", itin.Source)
	}
}

func TestPlanLeg_UnreachableWithoutFallback(t *testing.T) {
	trips := &stubTrips{plan: func(otp.PlanRequest) (*otp.Itinerary, error) {
		return nil, otp.ErrUnreachable
	}}
	p := &Planner{Trips: trips, Now: fixedClock}

	_, err := p.planLeg(context.Background(), otp.PlanRequest{ArriveBy: mondayAt(9, 0)})
	if !errors.Is(err, otp.ErrUnreachable) {
		t.Errorf("expected ErrUnreachable, got %v", err)
	}
}

func TestProcessEvents(t *testing.T) {
	home := "10 Home Street"
	trips := &stubTrips{plan: busItinerary}
	p := &Planner{
		Geocoder: &stubGeocoder{coords: map[string]geocode.Result{
			home:                 {Lat: -41.30, Lon: 174.78},
			"Wellington Station": {Lat: -41.2790, Lon: 174.7803},
			"Wellington Zoo":     {Lat: -41.3196, Lon: 174.7844},
		}},
		Trips:       trips,
		HomeAddress: home,
		HorizonDays: 30,
		Now:         fixedClock,
	}

	events := []Event{
		// Out of order on purpose; deduped against the lowercase repeat below.
		{Summary: "Zoo visit", Location: "Wellington Zoo", Start: fixedClock().Add(5 * time.Hour)},
		{Summary: "Coffee", Location: "Wellington Station", Start: fixedClock().Add(2 * time.Hour)},
		{Summary: "Second coffee", Location: "wellington station", Start: fixedClock().Add(3 * time.Hour)},
		{Summary: "Standup", Location: "https://zoom.us/j/123", Start: fixedClock().Add(time.Hour)},
	}

	entries, err := p.ProcessEvents(context.Background(), events, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Home -> Station, then Station -> Zoo.
	if len(entries) != 2 {
		t.Fatalf("expected 2 calendar entries, got %d", len(entries))
	}
	if want := "Transit: " + home + " to Wellington Station"; entries[0].Summary != want {
		t.Errorf("unexpected first entry summary %q", entries[0].Summary)
	}
	if want := "Transit: Wellington Station to Wellington Zoo"; entries[1].Summary != want {
		t.Errorf("unexpected second entry summary %q", entries[1].Summary)
	}
	if !entries[0].End.Equal(fixedClock().Add(2 * time.Hour)) {
		t.Errorf("first leg should arrive at the coffee start time, got %v", entries[0].End)
	}
	if !strings.Contains(entries[1].Description, "PUBLIC TRANSIT INFORMATION") {
		t.Errorf("unexpected description: %q", entries[1].Description)
	}
}

func TestProcessEvents_EmptyLocationBecomesHome(t *testing.T) {
	home := "10 Home Street"
	trips := &stubTrips{plan: busItinerary}
	p := &Planner{
		Geocoder: &stubGeocoder{coords: map[string]geocode.Result{
			home:             {Lat: -41.30, Lon: 174.78},
			"Wellington Zoo": {Lat: -41.3196, Lon: 174.7844},
		}},
		Trips:       trips,
		HomeAddress: home,
		HorizonDays: 30,
		Now:         fixedClock,
	}

	events := []Event{
		{Summary: "Breakfast", Start: fixedClock().Add(time.Hour)},
		{Summary: "Zoo visit", Location: "Wellington Zoo", Start: fixedClock().Add(3 * time.Hour)},
	}

	entries, err := p.ProcessEvents(context.Background(), events, home)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Breakfast is at home, so no home event is injected; one route remains.
	if len(entries) != 1 {
		t.Fatalf("expected 1 calendar entry, got %d", len(entries))
	}
	if want := "Transit: " + home + " to Wellington Zoo"; entries[0].Summary != want {
		t.Errorf("unexpected entry summary %q", entries[0].Summary)
	}
}

func TestProcessEvents_NoEvents(t *testing.T) {
	p := &Planner{Now: fixedClock}
	entries, err := p.ProcessEvents(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries != nil {
		t.Errorf("expected no entries, got %+v", entries)
	}
}
