package otp

import "time"

// PlanRequest describes a single trip-planning query.
type PlanRequest struct {
	FromLat  float64
	FromLon  float64
	ToLat    float64
	ToLon    float64
	ArriveBy time.Time
}

// Leg is one segment of a planned itinerary.
type Leg struct {
	Mode     string
	Start    time.Time
	End      time.Time
	FromName string
	ToName   string
	Route    string
	Distance float64 // meters
}

// Itinerary is a single planned journey returned by OTP.
type Itinerary struct {
	Duration time.Duration
	Legs     []Leg
}

// Wire types for the GraphQL response.

type planResponse struct {
	Data *struct {
		Plan *struct {
			Itineraries []wireItinerary `json:"itineraries"`
		} `json:"plan"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type wireItinerary struct {
	Duration float64   `json:"duration"` // seconds
	Legs     []wireLeg `json:"legs"`
}

type wireLeg struct {
	Mode      string  `json:"mode"`
	StartTime int64   `json:"startTime"` // epoch millis
	EndTime   int64   `json:"endTime"`
	From      wireEnd `json:"from"`
	To        wireEnd `json:"to"`
	Route     string  `json:"route"`
	Distance  float64 `json:"distance"`
}

type wireEnd struct {
	Name string `json:"name"`
}
