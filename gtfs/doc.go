/*
Package gtfs provides GTFS static data loading and indexing.

The index is built from a GTFS zip (local path or URL) and keeps routes,
stops, trips, stop times and calendar entries in memory for fast lookups.
It backs the offline fallback planner and the departures command: nearest-stop
search, scheduled departures at a stop, and direct-trip lookup between a stop
pair constrained by an arrival deadline.

Parse the feed once per invocation and reuse the index; a regional feed loads
in well under a second and queries are map lookups.
*/
package gtfs
