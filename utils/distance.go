package utils

import (
	"math"
	"time"
)

const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance between two points in kilometers.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	rLat1 := lat1 * (math.Pi / 180.0)
	rLat2 := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(rLat1)*math.Cos(rLat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

// WalkingDuration estimates the time to walk distKM at speedKMH.
func WalkingDuration(distKM, speedKMH float64) time.Duration {
	if speedKMH <= 0 {
		speedKMH = 4.5
	}
	hours := distKM / speedKMH
	return time.Duration(hours * float64(time.Hour))
}
