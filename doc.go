/*
Package transitsync plans public transit between calendar events.

The planner geocodes event locations, asks an OpenTripPlanner server for
itineraries, and falls back to direct-trip lookups over GTFS static data when
the server is unreachable. Planned routes are synthesized into transit or
walking calendar entries that slot in between the day's events.
*/
package transitsync
