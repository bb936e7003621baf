package main

import (
	"fmt"

	"github.com/spf13/cobra"

	transitsync "github.com/hamishapps/transitsync-routing"
)

var planHomeFlag string

var planCmd = &cobra.Command{
	Use:   "plan <events-file>",
	Short: "Plan a full day of transit between events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}

		events, err := transitsync.LoadEventsFile(args[0], a.loc)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No valid events found in the provided file")
			return nil
		}

		fmt.Printf("Planning routes for %d events...\n", len(events))
		entries, err := a.planner.ProcessEvents(cmd.Context(), events, planHomeFlag)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No transit events were created")
			return nil
		}

		fmt.Printf("Created %d transit events:\n", len(entries))
		for i, e := range entries {
			fmt.Printf("\nTransit event %d:\n", i+1)
			fmt.Printf("  Summary: %s\n", e.Summary)
			fmt.Printf("  Location: %s\n", e.Location)
			fmt.Printf("  Start: %s\n", e.Start.Format("2006-01-02 15:04"))
			fmt.Printf("  End: %s\n", e.End.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planHomeFlag, "home", "", "Home address to start the day from")
	rootCmd.AddCommand(planCmd)
}
