package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	transitsync "github.com/hamishapps/transitsync-routing"
	"github.com/hamishapps/transitsync-routing/geocode"
	"github.com/hamishapps/transitsync-routing/otp"
	"github.com/hamishapps/transitsync-routing/utils"
)

var routeTimeFlag string

var routeCmd = &cobra.Command{
	Use:   "route <origin> <destination>",
	Short: "Plan a transit route between two locations",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}

		arriveBy := time.Now().In(a.loc).Add(30 * time.Minute)
		if routeTimeFlag != "" {
			arriveBy, err = utils.ParseArrivalTime(routeTimeFlag, a.loc)
			if err != nil {
				return fmt.Errorf("invalid arrival time %q: %w", routeTimeFlag, err)
			}
		}

		from := transitsync.Event{
			Summary:  "Start Location",
			Location: args[0],
			Start:    arriveBy.Add(-time.Hour),
			End:      arriveBy,
		}
		to := transitsync.Event{
			Summary:  "Destination",
			Location: args[1],
			Start:    arriveBy,
		}

		result, err := a.planner.PlanBetween(cmd.Context(), from, to)
		if errors.Is(err, geocode.ErrNoMatch) {
			fmt.Printf("Could not geocode one of the locations: %v\n", err)
			return nil
		}
		if errors.Is(err, otp.ErrNoItinerary) {
			fmt.Printf("No route found between %s and %s\n", args[0], args[1])
			return nil
		}
		if err != nil {
			return err
		}

		it := &result.Itinerary
		fmt.Println("Route planned:")
		fmt.Printf("  From: %s\n", result.FromLocation)
		fmt.Printf("  To: %s\n", result.ToLocation)
		fmt.Printf("  Travel time: %.1f minutes\n", it.TravelTime().Minutes())
		fmt.Printf("  Departure: %s\n", it.Departure().Format(time.RFC3339))
		fmt.Printf("  Arrival: %s\n", it.Arrival().Format(time.RFC3339))
		if it.Source != transitsync.SourceOTP {
			fmt.Println("  (estimated from the static timetable)")
		}
		fmt.Println("\nItinerary details:")
		fmt.Print(it.Summary())
		return nil
	},
}

func init() {
	routeCmd.Flags().StringVar(&routeTimeFlag, "time", "", `Arrival time (e.g. "14:30" or ISO format)`)
	rootCmd.AddCommand(routeCmd)
}
