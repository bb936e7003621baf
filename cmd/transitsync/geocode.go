package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamishapps/transitsync-routing/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <address>",
	Short: "Geocode an address and show the nearest stop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		address := args[0]

		result, err := a.planner.Geocoder.Geocode(cmd.Context(), address)
		if errors.Is(err, geocode.ErrNoMatch) {
			fmt.Printf("Address not found: %s\n", address)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Println("Address geocoded:")
		fmt.Printf("  %s\n", address)
		if result.DisplayName != "" {
			fmt.Printf("  Matched: %s\n", result.DisplayName)
		}
		fmt.Printf("  Latitude: %f\n", result.Lat)
		fmt.Printf("  Longitude: %f\n", result.Lon)

		if a.index == nil || !a.index.HasStops() {
			return nil
		}
		stop, distKM, err := a.index.NearestStop(result.Lat, result.Lon)
		if err != nil {
			return nil
		}
		fmt.Printf("\nNearest stop: %s (ID: %s), %.2f km away\n", stop.Name, stop.ID, distKM)

		departures := a.departuresAt(cmd, stop.ID, time.Now().In(a.loc), 5)
		if len(departures) == 0 {
			fmt.Println("No upcoming departures found for this stop.")
			return nil
		}
		fmt.Println("Next departures:")
		for i, d := range departures {
			printDeparture(i, d)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
