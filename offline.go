package transitsync

import (
	"context"
	"fmt"
	"log"

	"github.com/hamishapps/transitsync-routing/geocode"
	"github.com/hamishapps/transitsync-routing/gtfs"
	"github.com/hamishapps/transitsync-routing/otp"
	"github.com/hamishapps/transitsync-routing/utils"
)

// Destinations closer than this walk the whole way; no timetable lookup.
const walkOnlyThresholdKM = 0.8

// OfflinePlanner estimates itineraries from GTFS static data when the OTP
// server cannot be reached: nearest stops at both ends, a direct trip from
// the timetable, and walking legs to and from the stops.
type OfflinePlanner struct {
	Index           *gtfs.Index
	WalkingSpeedKMH float64
}

// PlanLeg produces a timetable-based itinerary. When no direct trip serves
// the stop pair in time, a pure walking estimate is returned instead.
func (p *OfflinePlanner) PlanLeg(req otp.PlanRequest) (*Itinerary, error) {
	if p.Index == nil || !p.Index.HasStops() {
		return nil, fmt.Errorf("offline planner has no GTFS data")
	}

	directKM := utils.HaversineKM(req.FromLat, req.FromLon, req.ToLat, req.ToLon)
	if directKM < walkOnlyThresholdKM {
		return p.walkingItinerary(req, directKM), nil
	}

	fromStop, fromKM, err := p.Index.NearestStop(req.FromLat, req.FromLon)
	if err != nil {
		return nil, err
	}
	toStop, toKM, err := p.Index.NearestStop(req.ToLat, req.ToLon)
	if err != nil {
		return nil, err
	}
	if fromStop.ID == toStop.ID {
		return p.walkingItinerary(req, directKM), nil
	}

	walkIn := utils.WalkingDuration(fromKM, p.WalkingSpeedKMH)
	walkOut := utils.WalkingDuration(toKM, p.WalkingSpeedKMH)

	trip, err := p.Index.DirectTrip(fromStop.ID, toStop.ID, req.ArriveBy.Add(-walkOut), req.ArriveBy.Location())
	if err != nil {
		log.Printf("no direct trip %s -> %s, estimating a walk: %v", fromStop.ID, toStop.ID, err)
		return p.walkingItinerary(req, directKM), nil
	}

	mode := transitModeForRouteType(p.Index.GetRouteType(trip.RouteID))
	itin := &Itinerary{Source: SourceTimetable}
	itin.Legs = append(itin.Legs, Leg{
		Mode:     "WALK",
		FromName: "Origin",
		ToName:   fromStop.Name,
		Start:    trip.Departure.Add(-walkIn),
		End:      trip.Departure,
		Distance: fromKM * 1000,
	})
	itin.Legs = append(itin.Legs, Leg{
		Mode:     mode,
		FromName: fromStop.Name,
		ToName:   toStop.Name,
		Start:    trip.Departure,
		End:      trip.Arrival,
		Route:    trip.RouteShortName,
	})
	itin.Legs = append(itin.Legs, Leg{
		Mode:     "WALK",
		FromName: toStop.Name,
		ToName:   "Destination",
		Start:    trip.Arrival,
		End:      trip.Arrival.Add(walkOut),
		Distance: toKM * 1000,
	})
	return itin, nil
}

func (p *OfflinePlanner) walkingItinerary(req otp.PlanRequest, distKM float64) *Itinerary {
	dur := utils.WalkingDuration(distKM, p.WalkingSpeedKMH)
	return &Itinerary{
		Source: SourceWalk,
		Legs: []Leg{{
			Mode:     "WALK",
			FromName: "Origin",
			ToName:   "Destination",
			Start:    req.ArriveBy.Add(-dur),
			End:      req.ArriveBy,
			Distance: distKM * 1000,
		}},
	}
}

// GTFS route_type enum, mapped to the mode names OTP uses.
func transitModeForRouteType(routeType int) string {
	switch routeType {
	case 0:
		return "TRAM"
	case 1:
		return "SUBWAY"
	case 2:
		return "RAIL"
	case 4:
		return "FERRY"
	case 5, 6, 7:
		return "CABLE_CAR"
	default:
		return "BUS"
	}
}

// StopGeocoder resolves addresses against GTFS stop names. It stands in for
// the Nominatim client when running offline; only locations that happen to
// match a stop name (or stop id) can be resolved.
type StopGeocoder struct {
	Index *gtfs.Index
}

func (s *StopGeocoder) Geocode(ctx context.Context, address string) (geocode.Result, error) {
	if s.Index == nil {
		return geocode.Result{}, fmt.Errorf("no GTFS data for offline geocoding")
	}
	if stop, ok := s.Index.GetStop(address); ok {
		return geocode.Result{Lat: stop.Lat, Lon: stop.Lon, DisplayName: stop.Name}, nil
	}
	matches := s.Index.FindStopsByName(address)
	if len(matches) == 0 {
		return geocode.Result{}, fmt.Errorf("%q (offline): %w", address, geocode.ErrNoMatch)
	}
	stop := matches[0]
	Debugf("offline geocode %q -> stop %s (%s)", address, stop.ID, stop.Name)
	return geocode.Result{Lat: stop.Lat, Lon: stop.Lon, DisplayName: stop.Name}, nil
}
