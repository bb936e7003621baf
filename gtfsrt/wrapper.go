package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/hamishapps/transitsync-routing/gtfs"
	"github.com/hamishapps/transitsync-routing/utils"
)

// Wrapper stores GTFS-Realtime trip update data in memory for fast lookups
type Wrapper struct {
	tripUpdatesURL string
	httpClient     *http.Client

	headerTimestamp int64

	trips       map[string]struct{}
	tripRoute   map[string]string           // trip_id -> route_id
	etaByStop   map[string]map[string]int64 // trip_id -> stop_id -> arrival epoch
	etdByStop   map[string]map[string]int64 // trip_id -> stop_id -> departure epoch
	tripsByStop map[string][]string         // stop_id -> trip_ids with an update there
}

// NewWrapper creates a wrapper for a GTFS-RT trip updates feed
func NewWrapper(tripUpdatesURL string, timeout time.Duration) *Wrapper {
	return &Wrapper{
		tripUpdatesURL: tripUpdatesURL,
		httpClient:     &http.Client{Timeout: timeout},
		trips:          map[string]struct{}{},
		tripRoute:      map[string]string{},
		etaByStop:      map[string]map[string]int64{},
		etdByStop:      map[string]map[string]int64{},
		tripsByStop:    map[string][]string{},
	}
}

// Refresh fetches and parses the trip updates feed, replacing previous state.
func (w *Wrapper) Refresh(ctx context.Context) error {
	w.trips = map[string]struct{}{}
	w.tripRoute = map[string]string{}
	w.etaByStop = map[string]map[string]int64{}
	w.etdByStop = map[string]map[string]int64{}
	w.tripsByStop = map[string][]string{}
	w.headerTimestamp = 0

	if w.tripUpdatesURL == "" {
		return nil
	}
	fm, err := w.fetchFeed(ctx, w.tripUpdatesURL)
	if err != nil {
		return fmt.Errorf("trip updates: %w", err)
	}
	if fm.Header != nil && fm.Header.Timestamp != nil {
		w.headerTimestamp = int64(*fm.Header.Timestamp)
	}
	for _, e := range fm.Entity {
		if e.TripUpdate == nil || e.TripUpdate.Trip == nil || e.TripUpdate.Trip.TripId == nil {
			continue
		}
		tripID := *e.TripUpdate.Trip.TripId
		w.trips[tripID] = struct{}{}
		if e.TripUpdate.Trip.RouteId != nil {
			w.tripRoute[tripID] = *e.TripUpdate.Trip.RouteId
		}
		if len(e.TripUpdate.StopTimeUpdate) == 0 {
			continue
		}
		w.etaByStop[tripID] = map[string]int64{}
		w.etdByStop[tripID] = map[string]int64{}
		for _, stu := range e.TripUpdate.StopTimeUpdate {
			if stu.StopId == nil {
				continue
			}
			sid := *stu.StopId
			w.tripsByStop[sid] = append(w.tripsByStop[sid], tripID)
			if stu.Arrival != nil && stu.Arrival.Time != nil {
				w.etaByStop[tripID][sid] = *stu.Arrival.Time
			}
			if stu.Departure != nil && stu.Departure.Time != nil {
				w.etdByStop[tripID][sid] = *stu.Departure.Time
			}
		}
	}
	if w.headerTimestamp == 0 {
		w.headerTimestamp = time.Now().Unix()
	}
	return nil
}

func (w *Wrapper) fetchFeed(ctx context.Context, url string) (*gtfsrtpb.FeedMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return nil, err
	}
	return &fm, nil
}

// GetExpectedDepartureTimeAtStopForTrip returns the expected departure epoch
// for a trip at a stop, falling back to the expected arrival, or 0.
func (w *Wrapper) GetExpectedDepartureTimeAtStopForTrip(tripID, stopID string) int64 {
	if m := w.etdByStop[tripID]; m != nil {
		if t := m[stopID]; t != 0 {
			return t
		}
	}
	if m := w.etaByStop[tripID]; m != nil {
		return m[stopID]
	}
	return 0
}

func (w *Wrapper) GetRouteIDForTrip(tripID string) string { return w.tripRoute[tripID] }

func (w *Wrapper) GetTripsAtStop(stopID string) []string { return w.tripsByStop[stopID] }

func (w *Wrapper) GetTimestampForFeedMessage() int64 { return w.headerTimestamp }

// HasData reports whether the last Refresh produced any trip updates.
func (w *Wrapper) HasData() bool { return len(w.trips) > 0 }

// OverlayDepartures replaces scheduled departure times with the expected
// times from the feed where an update exists, marks those rows as realtime,
// and re-sorts by departure time.
func (w *Wrapper) OverlayDepartures(departures []gtfs.Departure, loc *time.Location) []gtfs.Departure {
	overlaid := 0
	for i := range departures {
		epoch := w.GetExpectedDepartureTimeAtStopForTrip(departures[i].TripID, departures[i].StopID)
		if epoch == 0 {
			continue
		}
		departures[i].Departure = time.Unix(epoch, 0).In(loc)
		departures[i].Realtime = true
		overlaid++
	}
	if overlaid > 0 {
		sort.Slice(departures, func(i, j int) bool {
			return departures[i].Departure.Before(departures[j].Departure)
		})
		log.Printf("overlaid %d realtime departures (feed timestamp %s)",
			overlaid, utils.Iso8601FromUnixSeconds(w.headerTimestamp))
	}
	return departures
}
