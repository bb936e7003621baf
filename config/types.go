package config

// GeocoderConfig contains Nominatim geocoding configuration
type GeocoderConfig struct {
	URL         string `yaml:"url" validate:"omitempty,url"`
	UserAgent   string `yaml:"userAgent"`
	City        string `yaml:"city"`
	Country     string `yaml:"country"`
	RateLimitMS int    `yaml:"rateLimitMS" validate:"gte=0"`
	TimeoutMS   int    `yaml:"timeoutMS" validate:"gte=0"`
}

// OTPConfig contains OpenTripPlanner GraphQL endpoint configuration
type OTPConfig struct {
	BaseURL string `yaml:"baseURL" validate:"omitempty,url"`
	// Candidate GraphQL paths, tried in order. OTP moved the endpoint
	// between versions so we probe rather than hardcode.
	EndpointPaths []string `yaml:"endpointPaths"`
	TimeoutMS     int      `yaml:"timeoutMS" validate:"gte=0"`
}

// GTFSConfig contains GTFS static feed configuration
type GTFSConfig struct {
	StaticURL  string `yaml:"staticURL" validate:"omitempty,url"`
	StaticPath string `yaml:"staticPath"`
	AgencyID   string `yaml:"agency_id" validate:"omitempty"`
}

// GTFSRTConfig contains the optional GTFS-Realtime trip updates feed
type GTFSRTConfig struct {
	TripUpdatesURL string `yaml:"tripUpdatesURL" validate:"omitempty,url"`
	TimeoutMS      int    `yaml:"timeoutMS" validate:"gte=0"`
}

// PlannerConfig contains route planner tuning
type PlannerConfig struct {
	Timezone        string  `yaml:"timezone"`
	HomeAddress     string  `yaml:"homeAddress"`
	MaxHorizonDays  int     `yaml:"maxHorizonDays" validate:"gte=0"`
	WalkingSpeedKMH float64 `yaml:"walkingSpeedKMH" validate:"gte=0"`
}

// ProbeConfig contains connectivity probe configuration
type ProbeConfig struct {
	Hosts     []string `yaml:"hosts"`
	TimeoutMS int      `yaml:"timeoutMS" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Geocoder GeocoderConfig `yaml:"geocoder"`
	OTP      OTPConfig      `yaml:"otp"`
	GTFS     GTFSConfig     `yaml:"gtfs"`
	GTFSRT   GTFSRTConfig   `yaml:"gtfsrt"`
	Planner  PlannerConfig  `yaml:"planner"`
	Probe    ProbeConfig    `yaml:"probe"`
}
