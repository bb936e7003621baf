package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamishapps/transitsync-routing/geocode"
	"github.com/hamishapps/transitsync-routing/gtfs"
	"github.com/hamishapps/transitsync-routing/gtfsrt"
)

var departuresCmd = &cobra.Command{
	Use:   "departures <stop-id|address>",
	Short: "Show upcoming departures for a stop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireIndex(); err != nil {
			return err
		}

		stopID, err := a.resolveStop(cmd, args[0])
		if errors.Is(err, geocode.ErrNoMatch) {
			fmt.Printf("Stop not found: %s\n", args[0])
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("Departures for stop %s (%s):\n", stopID, a.index.GetStopName(stopID))
		departures := a.departuresAt(cmd, stopID, time.Now().In(a.loc), 10)
		if len(departures) == 0 {
			fmt.Println("No upcoming departures found.")
			return nil
		}
		for i, d := range departures {
			printDeparture(i, d)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(departuresCmd)
}

// resolveStop accepts a literal stop id, or an address geocoded to its
// nearest stop.
func (a *app) resolveStop(cmd *cobra.Command, arg string) (string, error) {
	if _, ok := a.index.GetStop(arg); ok {
		return arg, nil
	}
	result, err := a.planner.Geocoder.Geocode(cmd.Context(), arg)
	if err != nil {
		return "", err
	}
	stop, _, err := a.index.NearestStop(result.Lat, result.Lon)
	if err != nil {
		return "", err
	}
	return stop.ID, nil
}

// departuresAt returns scheduled departures, overlaid with realtime expected
// times when a trip updates feed is configured and reachable.
func (a *app) departuresAt(cmd *cobra.Command, stopID string, after time.Time, n int) []gtfs.Departure {
	departures := a.index.ScheduledDepartures(stopID, after, n, a.loc)
	if a.offline || a.cfg.GTFSRT.TripUpdatesURL == "" {
		return departures
	}

	rt := gtfsrt.NewWrapper(a.cfg.GTFSRT.TripUpdatesURL, time.Duration(a.cfg.GTFSRT.TimeoutMS)*time.Millisecond)
	if err := rt.Refresh(cmd.Context()); err != nil {
		fmt.Printf("Realtime feed unavailable, showing scheduled times: %v\n", err)
		return departures
	}
	return rt.OverlayDepartures(departures, a.loc)
}

func printDeparture(i int, d gtfs.Departure) {
	route := d.RouteShortName
	if route == "" {
		route = d.RouteID
	}
	marker := ""
	if d.Realtime {
		marker = " (live)"
	}
	dest := d.Headsign
	if dest == "" {
		dest = "Unknown destination"
	}
	fmt.Printf("  %d. Route %s to %s at %s%s\n", i+1, route, dest, d.Departure.Format("15:04"), marker)
}
