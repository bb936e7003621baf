/*
Package otp is a client for the OpenTripPlanner GraphQL API.

OTP has moved its GraphQL endpoint between releases, so the client carries a
list of candidate paths and probes them in order on the first query; the first
path that answers is remembered for the rest of the process.

All pathfinding happens on the OTP server. This package only shapes the plan
query and decodes the itinerary from the response.
*/
package otp
