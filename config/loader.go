package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from config.yml
func LoadAppConfig() error {
	paths := []string{"config.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home+"/.config/transitsync/config.yml")
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		// No config file is fine; everything has a default.
		Config = AppConfig{}
		applyDefaults(&Config)
		return nil
	}
	return loadFromBytes(data)
}

// LoadAppConfigFrom loads configuration from an explicit path (the --config flag).
func LoadAppConfigFrom(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return loadFromBytes(data)
}

func loadFromBytes(data []byte) error {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}
	Config = cfg
	applyDefaults(&Config)
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Geocoder.URL == "" {
		cfg.Geocoder.URL = "https://nominatim.openstreetmap.org/search"
	}
	if cfg.Geocoder.UserAgent == "" {
		cfg.Geocoder.UserAgent = "TransitSync/1.0 (hamishapps@gmail.com)"
	}
	if cfg.Geocoder.City == "" {
		cfg.Geocoder.City = "Wellington"
	}
	if cfg.Geocoder.Country == "" {
		cfg.Geocoder.Country = "New Zealand"
	}
	if cfg.Geocoder.RateLimitMS == 0 {
		// Nominatim usage policy: at most one request per second.
		cfg.Geocoder.RateLimitMS = 1000
	}
	if cfg.Geocoder.TimeoutMS == 0 {
		cfg.Geocoder.TimeoutMS = 10000
	}
	if cfg.OTP.BaseURL == "" {
		cfg.OTP.BaseURL = "http://localhost:8080"
	}
	if len(cfg.OTP.EndpointPaths) == 0 {
		cfg.OTP.EndpointPaths = []string{
			"/otp/routers/default/index/graphql",
			"/otp/index/graphql",
			"/otp/graphql",
			"/graphql",
		}
	}
	if cfg.OTP.TimeoutMS == 0 {
		cfg.OTP.TimeoutMS = 30000
	}
	if cfg.GTFSRT.TimeoutMS == 0 {
		cfg.GTFSRT.TimeoutMS = 10000
	}
	if cfg.Planner.Timezone == "" {
		cfg.Planner.Timezone = "Pacific/Auckland"
	}
	if cfg.Planner.HomeAddress == "" {
		cfg.Planner.HomeAddress = "1 Willis Street, Wellington, New Zealand"
	}
	if cfg.Planner.MaxHorizonDays == 0 {
		cfg.Planner.MaxHorizonDays = 30
	}
	if cfg.Planner.WalkingSpeedKMH == 0 {
		cfg.Planner.WalkingSpeedKMH = 4.5
	}
	if len(cfg.Probe.Hosts) == 0 {
		cfg.Probe.Hosts = []string{
			"https://nominatim.openstreetmap.org",
			cfg.OTP.BaseURL,
		}
	}
	if cfg.Probe.TimeoutMS == 0 {
		cfg.Probe.TimeoutMS = 2000
	}
}
