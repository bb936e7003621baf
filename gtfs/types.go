package gtfs

import "time"

// Stop is a transit stop from stops.txt.
type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// Departure is a single scheduled (or realtime-adjusted) departure at a stop.
type Departure struct {
	TripID         string
	RouteID        string
	RouteShortName string
	Headsign       string
	StopID         string
	Departure      time.Time
	Realtime       bool
}

// TripOption is a direct trip serving an origin and destination stop in order.
type TripOption struct {
	TripID         string
	RouteID        string
	RouteShortName string
	Headsign       string
	FromStop       Stop
	ToStop         Stop
	Departure      time.Time
	Arrival        time.Time
}
