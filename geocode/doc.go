/*
Package geocode resolves free-text addresses to coordinates using
OpenStreetMap Nominatim.

Addresses are normalized before lookup: campus room codes are expanded to
street addresses and the configured city/country context is appended when
missing. A per-client cache keyed on the normalized address avoids repeat API
calls, and live calls are rate limited per the Nominatim usage policy.

A lookup that succeeds at the HTTP level but finds nothing returns ErrNoMatch,
which callers are expected to surface to the user rather than treat as a
failure of the geocoder.
*/
package geocode
