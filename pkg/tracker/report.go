package tracker

import (
	"strings"
	"time"
)

// Report is a single decoded transponder message for one aircraft.
// Different message types carry different fields, so everything except
// the identity and timestamp is optional. A nil field means "not present
// in this message", not "zero".
type Report struct {
	// ICAO is the 24-bit transponder address as hex (e.g., "a12345").
	// Matching is case-insensitive; the tracker normalizes to lower case.
	ICAO string

	// Timestamp is when the message was received. Reports may arrive
	// out of order; the tracker never lets an older report overwrite
	// a newer field value.
	Timestamp time.Time

	// Callsign is the flight number or registration, if present
	Callsign *string

	// Latitude in decimal degrees (-90 to +90)
	Latitude *float64

	// Longitude in decimal degrees (-180 to +180)
	Longitude *float64

	// Altitude in feet MSL
	Altitude *float64

	// GroundSpeed in knots
	GroundSpeed *float64

	// Track is the ground track in degrees (0-359)
	Track *float64
}

// NormalizeICAO lower-cases and trims a transponder address. Returns ""
// if the input is not plausible hex.
func NormalizeICAO(icao string) string {
	s := strings.ToLower(strings.TrimSpace(icao))
	if s == "" {
		return ""
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return ""
		}
	}
	return s
}
