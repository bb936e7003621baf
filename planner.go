package transitsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/hamishapps/transitsync-routing/geocode"
	"github.com/hamishapps/transitsync-routing/otp"
)

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geocode.Result, error)
}

// TripPlanner plans a transit itinerary for a request.
type TripPlanner interface {
	Plan(ctx context.Context, req otp.PlanRequest) (*otp.Itinerary, error)
}

// Planner orchestrates geocoding and trip planning between events, falling
// back to the offline timetable planner when the OTP server is unreachable.
type Planner struct {
	Geocoder Geocoder
	Trips    TripPlanner     // nil in offline mode
	Fallback *OfflinePlanner // nil when no GTFS data is available

	Loc         *time.Location
	HomeAddress string
	HorizonDays int

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

func (p *Planner) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Planner) location() *time.Location {
	if p.Loc != nil {
		return p.Loc
	}
	return time.Local
}

var virtualIndicators = []string{
	"online", "virtual", "zoom", "meet.google", "teams", "webex", "skype", "phone",
}

var generatedPrefixes = []string{"Transit:", "Walking:", "[TransitBot]"}

// IsSuitable reports whether an event should be considered for transit
// planning. Events without a location or start time, virtual meetings,
// previously generated transit blocks, and events beyond the planning horizon
// are all skipped.
func (p *Planner) IsSuitable(e Event) bool {
	if strings.TrimSpace(e.Location) == "" {
		Debugf("skipping %q: no location", e.Summary)
		return false
	}
	for _, prefix := range generatedPrefixes {
		if strings.Contains(e.Summary, prefix) {
			Debugf("skipping generated event %q", e.Summary)
			return false
		}
	}
	lowerLoc := strings.ToLower(e.Location)
	for _, ind := range virtualIndicators {
		if strings.Contains(lowerLoc, ind) {
			Debugf("skipping virtual event %q at %q", e.Summary, e.Location)
			return false
		}
	}
	if e.Start.IsZero() {
		Debugf("skipping %q: no start time", e.Summary)
		return false
	}
	horizon := p.HorizonDays
	if horizon <= 0 {
		horizon = 30
	}
	if e.Start.Sub(p.now()) > time.Duration(horizon)*24*time.Hour {
		Debugf("skipping %q: beyond planning horizon", e.Summary)
		return false
	}
	return true
}

// PlanBetween plans a route from one event to the next, arriving by the
// second event's start time.
func (p *Planner) PlanBetween(ctx context.Context, from, to Event) (*RouteResult, error) {
	if strings.TrimSpace(from.Location) == "" {
		return nil, fmt.Errorf("event %q has no location", from.Summary)
	}
	if strings.TrimSpace(to.Location) == "" {
		return nil, fmt.Errorf("event %q has no location", to.Summary)
	}

	arriveBy := to.Start
	if arriveBy.IsZero() {
		arriveBy = from.End
	}
	if arriveBy.IsZero() {
		arriveBy = p.now()
	}

	log.Printf("planning route from %q (%s) to %q (%s), arrive by %s",
		from.Summary, from.Location, to.Summary, to.Location, arriveBy.Format(time.RFC3339))

	origin, err := p.Geocoder.Geocode(ctx, from.Location)
	if err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", from.Location, err)
	}
	dest, err := p.Geocoder.Geocode(ctx, to.Location)
	if err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", to.Location, err)
	}

	itin, err := p.planLeg(ctx, otp.PlanRequest{
		FromLat:  origin.Lat,
		FromLon:  origin.Lon,
		ToLat:    dest.Lat,
		ToLon:    dest.Lon,
		ArriveBy: arriveBy,
	})
	if err != nil {
		return nil, err
	}

	return &RouteResult{
		FromSummary:  from.Summary,
		ToSummary:    to.Summary,
		FromLocation: from.Location,
		ToLocation:   to.Location,
		FromLat:      origin.Lat,
		FromLon:      origin.Lon,
		ToLat:        dest.Lat,
		ToLon:        dest.Lon,
		Itinerary:    *itin,
	}, nil
}

// planLeg tries the OTP server first and falls back to the offline timetable
// planner only when the server is unreachable. An empty answer from a healthy
// server is final.
func (p *Planner) planLeg(ctx context.Context, req otp.PlanRequest) (*Itinerary, error) {
	if p.Trips != nil {
		itin, err := p.Trips.Plan(ctx, req)
		if err == nil {
			return fromOTPItinerary(itin), nil
		}
		if !errors.Is(err, otp.ErrUnreachable) || p.Fallback == nil {
			return nil, err
		}
		log.Printf("otp unreachable, falling back to timetable planner: %v", err)
	}
	if p.Fallback == nil {
		return nil, fmt.Errorf("no trip planner available")
	}
	return p.Fallback.PlanLeg(req)
}

func fromOTPItinerary(itin *otp.Itinerary) *Itinerary {
	out := &Itinerary{Source: SourceOTP}
	for _, l := range itin.Legs {
		out.Legs = append(out.Legs, Leg{
			Mode:     l.Mode,
			FromName: l.FromName,
			ToName:   l.ToName,
			Start:    l.Start,
			End:      l.End,
			Route:    l.Route,
			Distance: l.Distance,
		})
	}
	return out
}

var homeIndicators = []string{"home", "house", "apartment", "flat"}

// ProcessEvents filters and orders the day's events, plans routes between
// consecutive ones (starting from home when the first event is elsewhere),
// and synthesizes calendar entries for each planned route.
func (p *Planner) ProcessEvents(ctx context.Context, events []Event, homeAddress string) ([]CalendarEntry, error) {
	if len(events) == 0 {
		log.Printf("no events to process")
		return nil, nil
	}

	if homeAddress == "" {
		homeAddress = p.HomeAddress
		log.Printf("no home address provided, using default %q", homeAddress)
	}

	// Events without a location are assumed to happen at home.
	for i := range events {
		if strings.TrimSpace(events[i].Location) == "" {
			events[i].Location = homeAddress
		}
	}

	var filtered []Event
	for _, e := range events {
		if p.IsSuitable(e) {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		log.Printf("no suitable events after filtering")
		return nil, nil
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Start.Before(filtered[j].Start)
	})

	// Drop consecutive events at the same location; there is nothing to plan.
	unique := filtered[:1]
	for _, e := range filtered[1:] {
		last := unique[len(unique)-1]
		if !strings.EqualFold(strings.TrimSpace(e.Location), strings.TrimSpace(last.Location)) {
			unique = append(unique, e)
		}
	}
	log.Printf("processing %d unique events (from %d total)", len(unique), len(events))

	var routes []*RouteResult

	first := unique[0]
	if !strings.EqualFold(strings.TrimSpace(first.Location), strings.TrimSpace(homeAddress)) &&
		!containsAny(strings.ToLower(first.Location), homeIndicators) {
		homeEvent := Event{
			Summary:  "Home",
			Location: homeAddress,
			Start:    first.Start.Add(-time.Hour),
		}
		if route, err := p.PlanBetween(ctx, homeEvent, first); err != nil {
			log.Printf("could not plan route from home to %q: %v", first.Summary, err)
		} else {
			routes = append(routes, route)
		}
	}

	for i := 0; i < len(unique)-1; i++ {
		route, err := p.PlanBetween(ctx, unique[i], unique[i+1])
		if err != nil {
			log.Printf("could not plan route %q -> %q: %v", unique[i].Summary, unique[i+1].Summary, err)
			continue
		}
		routes = append(routes, route)
	}
	log.Printf("planned %d routes", len(routes))

	entries := make([]CalendarEntry, 0, len(routes))
	for _, r := range routes {
		if len(r.Itinerary.Legs) == 0 {
			continue
		}
		entries = append(entries, r.CalendarEntry())
	}
	return entries, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
