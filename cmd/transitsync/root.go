package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	transitsync "github.com/hamishapps/transitsync-routing"
	"github.com/hamishapps/transitsync-routing/config"
	"github.com/hamishapps/transitsync-routing/geocode"
	"github.com/hamishapps/transitsync-routing/gtfs"
	"github.com/hamishapps/transitsync-routing/otp"
)

var (
	offlineFlag bool
	debugFlag   bool
	configFlag  string
)

var rootCmd = &cobra.Command{
	Use:           "transitsync",
	Short:         "Geocode addresses and plan public transit routes",
	Long:          "transitsync geocodes addresses with OpenStreetMap Nominatim and plans\ntransit routes against a local OpenTripPlanner server, falling back to\nGTFS static data when the network or the server is unreachable.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		transitsync.InitLogging()
		transitsync.SetDebug(debugFlag)
		if configFlag != "" {
			return config.LoadAppConfigFrom(configFlag)
		}
		return config.LoadAppConfig()
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&offlineFlag, "offline", false, "Force offline mode (GTFS static data only)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file")
}

// app bundles the wired collaborators for a single invocation.
type app struct {
	cfg     config.AppConfig
	loc     *time.Location
	offline bool
	index   *gtfs.Index
	planner *transitsync.Planner
}

// buildApp probes connectivity once and wires the planner accordingly. In
// offline mode geocoding degrades to GTFS stop-name matching and planning to
// the timetable fallback.
func buildApp(cmd *cobra.Command) (*app, error) {
	cfg := config.Config

	loc, err := time.LoadLocation(cfg.Planner.Timezone)
	if err != nil {
		loc = time.Local
	}

	offline := offlineFlag
	if !offline && !transitsync.ProbeConnectivity(cmd.Context(), cfg.Probe) {
		fmt.Println("Network connectivity issues detected - switching to OFFLINE mode")
		offline = true
	}
	if offline {
		fmt.Println("Running in OFFLINE mode (GTFS static data only)")
	}

	var index *gtfs.Index
	if cfg.GTFS.StaticPath != "" || (cfg.GTFS.StaticURL != "" && !offline) {
		index, err = gtfs.NewIndexFromConfig(cfg.GTFS)
		if err != nil {
			transitsync.Debugf("GTFS static load failed: %v", err)
			index = nil
		} else {
			transitsync.Debugf("loaded GTFS feed %q: %d stops, %d routes",
				index.GetAgencyName(), len(index.GetAllStops()), len(index.GetAllRoutes()))
		}
	}

	planner := &transitsync.Planner{
		Loc:         loc,
		HomeAddress: cfg.Planner.HomeAddress,
		HorizonDays: cfg.Planner.MaxHorizonDays,
	}
	if index != nil && index.HasStops() {
		planner.Fallback = &transitsync.OfflinePlanner{
			Index:           index,
			WalkingSpeedKMH: cfg.Planner.WalkingSpeedKMH,
		}
	}
	if offline {
		planner.Geocoder = &transitsync.StopGeocoder{Index: index}
	} else {
		planner.Geocoder = geocode.NewClient(cfg.Geocoder)
		planner.Trips = otp.NewClient(cfg.OTP, loc)
	}

	return &app{cfg: cfg, loc: loc, offline: offline, index: index, planner: planner}, nil
}

func (a *app) requireIndex() error {
	if a.index == nil || !a.index.HasStops() {
		return fmt.Errorf("GTFS static data required: set gtfs.staticPath or gtfs.staticURL in config")
	}
	return nil
}
