package utils

import (
	"fmt"
	"time"
)

// Iso8601FromUnixSeconds converts Unix timestamp to ISO8601 format
func Iso8601FromUnixSeconds(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// ParseArrivalTime parses a user-supplied arrival time. Accepts RFC3339,
// "2006-01-02 15:04[:05]", "02/01/2006 15:04" and bare "15:04" (today).
func ParseArrivalTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(time.RFC3339, s, loc); err == nil {
		return t, nil
	}
	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		"02/01/2006 15:04",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	// Bare clock time means today.
	if t, err := time.ParseInLocation("15:04", s, loc); err == nil {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("could not parse time %q", s)
}

// ParseGTFSTime converts a GTFS HH:MM:SS stop time (hours may exceed 24 for
// trips running past midnight) into an absolute time on the given service day.
func ParseGTFSTime(hms string, serviceDay time.Time, loc *time.Location) (time.Time, error) {
	var h, m, s int
	if _, err := fmt.Sscanf(hms, "%d:%d:%d", &h, &m, &s); err != nil {
		return time.Time{}, fmt.Errorf("bad GTFS time %q: %w", hms, err)
	}
	day := time.Date(serviceDay.Year(), serviceDay.Month(), serviceDay.Day(), 0, 0, 0, 0, loc)
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second), nil
}
