package gtfs

import (
	"github.com/hamishapps/transitsync-routing/config"
)

// Index stores GTFS static data in memory for fast lookups
type Index struct {
	agencyID   string
	agencyTZ   string
	agencyName string

	routeShortNames map[string]string         // route_id -> short_name
	routeTypes      map[string]int            // route_id -> route_type (GTFS enum)
	tripToRoute     map[string]string         // trip_id -> route_id
	tripHeadsign    map[string]string         // trip_id -> headsign
	tripService     map[string]string         // trip_id -> service_id
	TripStopSeq     map[string][]string       // trip_id -> ordered stop_ids
	tripStopIdx     map[string]map[string]int // trip_id -> stop_id -> index
	stopNames       map[string]string         // stop_id -> name
	stopCoord       map[string][2]float64     // stop_id -> [lon,lat]
	stopTrips       map[string][]string       // stop_id -> trip_ids serving it

	stopTimeArrival   map[string]map[string]string // trip_id -> stop_id -> arrival_time (HH:MM:SS)
	stopTimeDeparture map[string]map[string]string // trip_id -> stop_id -> departure_time (HH:MM:SS)

	serviceWeekday map[string][7]bool // service_id -> active per weekday (Sun..Sat)
	serviceStart   map[string]string  // service_id -> start_date (YYYYMMDD)
	serviceEnd     map[string]string  // service_id -> end_date (YYYYMMDD)
}

// NewIndex creates a new empty GTFS index
func NewIndex() *Index {
	return &Index{
		routeShortNames:   map[string]string{},
		routeTypes:        map[string]int{},
		tripToRoute:       map[string]string{},
		tripHeadsign:      map[string]string{},
		tripService:       map[string]string{},
		TripStopSeq:       map[string][]string{},
		tripStopIdx:       map[string]map[string]int{},
		stopNames:         map[string]string{},
		stopCoord:         map[string][2]float64{},
		stopTrips:         map[string][]string{},
		stopTimeArrival:   map[string]map[string]string{},
		stopTimeDeparture: map[string]map[string]string{},
		serviceWeekday:    map[string][7]bool{},
		serviceStart:      map[string]string{},
		serviceEnd:        map[string]string{},
	}
}

// NewIndexFromConfig creates and loads a GTFS index from configuration.
// A local path takes precedence over the static URL.
func NewIndexFromConfig(cfg config.GTFSConfig) (*Index, error) {
	g := NewIndex()
	g.agencyID = cfg.AgencyID
	if cfg.StaticPath != "" {
		if err := g.loadFromLocalZip(cfg.StaticPath); err != nil {
			return g, err
		}
		return g, nil
	}
	if cfg.StaticURL != "" {
		if err := g.loadFromStaticZip(cfg.StaticURL); err != nil {
			return g, err
		}
	}
	return g, nil
}

// Accessor methods

func (g *Index) GetAgencyTimezone() string {
	if g.agencyTZ != "" {
		return g.agencyTZ
	}
	return "Pacific/Auckland"
}

func (g *Index) GetAgencyName() string { return g.agencyName }

func (g *Index) GetRouteShortName(routeID string) string { return g.routeShortNames[routeID] }

func (g *Index) GetRouteType(routeID string) int { return g.routeTypes[routeID] }

func (g *Index) GetRouteIDForTrip(tripID string) string { return g.tripToRoute[tripID] }

func (g *Index) GetTripHeadsign(tripID string) string { return g.tripHeadsign[tripID] }

func (g *Index) GetStopName(stopID string) string { return g.stopNames[stopID] }

// GetStop returns the full stop record, or false when the id is unknown.
func (g *Index) GetStop(stopID string) (Stop, bool) {
	coord, ok := g.stopCoord[stopID]
	if !ok {
		return Stop{}, false
	}
	return Stop{ID: stopID, Name: g.stopNames[stopID], Lon: coord[0], Lat: coord[1]}, true
}

func (g *Index) GetArrivalTime(tripID, stopID string) string {
	if m, ok := g.stopTimeArrival[tripID]; ok {
		return m[stopID]
	}
	return ""
}

func (g *Index) GetDepartureTime(tripID, stopID string) string {
	if m, ok := g.stopTimeDeparture[tripID]; ok {
		return m[stopID]
	}
	return ""
}

func (g *Index) GetAllStops() []string {
	keys := make([]string, 0, len(g.stopNames))
	for k := range g.stopNames {
		keys = append(keys, k)
	}
	return keys
}

func (g *Index) GetAllRoutes() []string {
	keys := make([]string, 0, len(g.routeShortNames))
	for k := range g.routeShortNames {
		keys = append(keys, k)
	}
	return keys
}

// HasStops reports whether any stop data was loaded. The offline planner is
// useless without it.
func (g *Index) HasStops() bool { return len(g.stopCoord) > 0 }

// StopIndexInTrip returns the position of a stop in a trip's sequence, or -1.
func (g *Index) StopIndexInTrip(tripID, stopID string) int {
	if m, ok := g.tripStopIdx[tripID]; ok {
		if idx, ok2 := m[stopID]; ok2 {
			return idx
		}
	}
	return -1
}
