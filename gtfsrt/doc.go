// Package gtfsrt fetches and indexes a GTFS-Realtime TripUpdates feed.
//
// The wrapper is optional: when no feed URL is configured the departures
// command shows scheduled times only. When realtime data is present, expected
// departure epochs overlay the static timetable.
package gtfsrt
