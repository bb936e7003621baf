package transitsync

import (
	"fmt"
	"strings"
	"time"
)

// Itinerary sources.
const (
	SourceOTP       = "otp"       // planned by the OpenTripPlanner server
	SourceTimetable = "timetable" // offline direct-trip lookup over GTFS static
	SourceWalk      = "walk"      // walking estimate only
)

// Leg is one segment of an itinerary.
type Leg struct {
	Mode     string // WALK, BUS, RAIL, ...
	FromName string
	ToName   string
	Start    time.Time
	End      time.Time
	Route    string
	Distance float64 // meters
}

// Itinerary is a planned journey between two locations.
type Itinerary struct {
	Legs   []Leg
	Source string
}

// Departure is the start time of the first leg.
func (it *Itinerary) Departure() time.Time {
	if len(it.Legs) == 0 {
		return time.Time{}
	}
	return it.Legs[0].Start
}

// Arrival is the end time of the last leg.
func (it *Itinerary) Arrival() time.Time {
	if len(it.Legs) == 0 {
		return time.Time{}
	}
	return it.Legs[len(it.Legs)-1].End
}

// TravelTime is the elapsed time from departure to arrival.
func (it *Itinerary) TravelTime() time.Duration {
	if len(it.Legs) == 0 {
		return 0
	}
	return it.Arrival().Sub(it.Departure())
}

// WalkOnly reports whether every leg is a walking leg.
func (it *Itinerary) WalkOnly() bool {
	for _, l := range it.Legs {
		if l.Mode != "WALK" {
			return false
		}
	}
	return len(it.Legs) > 0
}

// Summary renders a one-line-per-leg description of the itinerary.
func (it *Itinerary) Summary() string {
	var b strings.Builder
	for i, l := range it.Legs {
		label := l.Mode
		if l.Route != "" {
			label = fmt.Sprintf("%s %s", l.Mode, l.Route)
		}
		fmt.Fprintf(&b, "  Leg %d: %s from %s to %s (%s - %s)\n",
			i+1, label, l.FromName, l.ToName,
			l.Start.Format("15:04"), l.End.Format("15:04"))
	}
	return b.String()
}

// RouteResult couples a planned itinerary with the geocoded endpoints it was
// planned between.
type RouteResult struct {
	FromSummary  string
	ToSummary    string
	FromLocation string
	ToLocation   string
	FromLat      float64
	FromLon      float64
	ToLat        float64
	ToLon        float64
	Itinerary    Itinerary
}

// CalendarEntry is a transit or walking block to insert between two events.
type CalendarEntry struct {
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
}

// CalendarEntry synthesizes a calendar block from the planned route. Walking
// itineraries get a "Walking:" summary, everything else "Transit:".
func (r *RouteResult) CalendarEntry() CalendarEntry {
	it := &r.Itinerary
	minutes := it.TravelTime().Minutes()
	if it.WalkOnly() {
		return CalendarEntry{
			Summary:  fmt.Sprintf("Walking: %s to %s", r.FromLocation, r.ToLocation),
			Location: fmt.Sprintf("Walk from %s to %s", r.FromLocation, r.ToLocation),
			Description: fmt.Sprintf(
				"WALKING DIRECTIONS\n\nFrom: %s (%s)\nTo: %s (%s)\n\nEstimated walking time: %.1f minutes\n",
				r.FromSummary, r.FromLocation, r.ToSummary, r.ToLocation, minutes),
			Start: it.Departure(),
			End:   it.Arrival(),
		}
	}
	return CalendarEntry{
		Summary:  fmt.Sprintf("Transit: %s to %s", r.FromLocation, r.ToLocation),
		Location: fmt.Sprintf("Transit from %s to %s", r.FromLocation, r.ToLocation),
		Description: fmt.Sprintf(
			"PUBLIC TRANSIT INFORMATION\n\nFrom: %s (%s)\nTo: %s (%s)\n\nTravel time: %.1f minutes\nDepart at: %s\nArrive by: %s\n",
			r.FromSummary, r.FromLocation, r.ToSummary, r.ToLocation, minutes,
			it.Departure().Format("03:04 PM"), it.Arrival().Format("03:04 PM")),
		Start: it.Departure(),
		End:   it.Arrival(),
	}
}
