package gtfs

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/hamishapps/transitsync-routing/utils"
)

// ErrNoStops indicates the index holds no stop data.
var ErrNoStops = errors.New("no stops loaded")

// ErrNoTrip indicates no direct trip serves the requested stop pair in time.
var ErrNoTrip = errors.New("no direct trip found")

// NearestStop returns the stop closest to the coordinate and its distance in km.
func (g *Index) NearestStop(lat, lon float64) (Stop, float64, error) {
	if len(g.stopCoord) == 0 {
		return Stop{}, 0, ErrNoStops
	}
	best := Stop{}
	bestKM := -1.0
	for id, coord := range g.stopCoord {
		d := utils.HaversineKM(lat, lon, coord[1], coord[0])
		if bestKM < 0 || d < bestKM {
			bestKM = d
			best = Stop{ID: id, Name: g.stopNames[id], Lon: coord[0], Lat: coord[1]}
		}
	}
	return best, bestKM, nil
}

// FindStopsByName returns stops whose name contains the query, case-insensitive.
func (g *Index) FindStopsByName(query string) []Stop {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Stop
	for id, name := range g.stopNames {
		if strings.Contains(strings.ToLower(name), q) {
			if s, ok := g.GetStop(id); ok {
				out = append(out, s)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// serviceActiveOn reports whether a service id runs on the given day.
// Services missing from calendar.txt are assumed active; many regional feeds
// only ship calendar_dates.txt, which we do not parse.
func (g *Index) serviceActiveOn(serviceID string, day time.Time) bool {
	active, ok := g.serviceWeekday[serviceID]
	if !ok {
		return true
	}
	if !active[int(day.Weekday())] {
		return false
	}
	ymd := day.Format("20060102")
	if start := g.serviceStart[serviceID]; start != "" && ymd < start {
		return false
	}
	if end := g.serviceEnd[serviceID]; end != "" && ymd > end {
		return false
	}
	return true
}

func (g *Index) tripActiveOn(tripID string, day time.Time) bool {
	svc, ok := g.tripService[tripID]
	if !ok {
		return true
	}
	return g.serviceActiveOn(svc, day)
}

// ScheduledDepartures returns up to n departures at a stop after the given
// time, ordered by departure time. Only the service day of `after` is
// considered.
func (g *Index) ScheduledDepartures(stopID string, after time.Time, n int, loc *time.Location) []Departure {
	if loc == nil {
		loc = after.Location()
	}
	var out []Departure
	for _, trip := range g.stopTrips[stopID] {
		if !g.tripActiveOn(trip, after) {
			continue
		}
		// Departures at a trip's final stop are meaningless.
		if idx := g.StopIndexInTrip(trip, stopID); idx < 0 || idx == len(g.TripStopSeq[trip])-1 {
			continue
		}
		depStr := g.GetDepartureTime(trip, stopID)
		if depStr == "" {
			depStr = g.GetArrivalTime(trip, stopID)
		}
		if depStr == "" {
			continue
		}
		dep, err := utils.ParseGTFSTime(depStr, after, loc)
		if err != nil || dep.Before(after) {
			continue
		}
		routeID := g.GetRouteIDForTrip(trip)
		out = append(out, Departure{
			TripID:         trip,
			RouteID:        routeID,
			RouteShortName: g.GetRouteShortName(routeID),
			Headsign:       g.tripHeadsign[trip],
			StopID:         stopID,
			Departure:      dep,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Departure.Before(out[j].Departure) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DirectTrip finds a single trip serving both stops in order whose arrival at
// the destination is the latest one at or before arriveBy. Returns ErrNoTrip
// when nothing qualifies on that service day.
func (g *Index) DirectTrip(fromStopID, toStopID string, arriveBy time.Time, loc *time.Location) (*TripOption, error) {
	if loc == nil {
		loc = arriveBy.Location()
	}
	var best *TripOption
	for _, trip := range g.stopTrips[fromStopID] {
		fromIdx := g.StopIndexInTrip(trip, fromStopID)
		toIdx := g.StopIndexInTrip(trip, toStopID)
		if fromIdx < 0 || toIdx < 0 || fromIdx >= toIdx {
			continue
		}
		if !g.tripActiveOn(trip, arriveBy) {
			continue
		}
		depStr := g.GetDepartureTime(trip, fromStopID)
		arrStr := g.GetArrivalTime(trip, toStopID)
		if arrStr == "" {
			arrStr = g.GetDepartureTime(trip, toStopID)
		}
		if depStr == "" || arrStr == "" {
			continue
		}
		dep, err := utils.ParseGTFSTime(depStr, arriveBy, loc)
		if err != nil {
			continue
		}
		arr, err := utils.ParseGTFSTime(arrStr, arriveBy, loc)
		if err != nil || arr.After(arriveBy) {
			continue
		}
		if best == nil || arr.After(best.Arrival) {
			fromStop, _ := g.GetStop(fromStopID)
			toStop, _ := g.GetStop(toStopID)
			routeID := g.GetRouteIDForTrip(trip)
			best = &TripOption{
				TripID:         trip,
				RouteID:        routeID,
				RouteShortName: g.GetRouteShortName(routeID),
				Headsign:       g.tripHeadsign[trip],
				FromStop:       fromStop,
				ToStop:         toStop,
				Departure:      dep,
				Arrival:        arr,
			}
		}
	}
	if best == nil {
		return nil, ErrNoTrip
	}
	return best, nil
}
