// Package coordinates provides the small amount of geodesy the display
// needs: great-circle distance and bearing from the observer to an
// aircraft, and the sun's position for day-phase brightness.
package coordinates

import "math"

const (
	// DegreesToRadians converts degrees to radians
	DegreesToRadians = math.Pi / 180.0

	// RadiansToDegrees converts radians to degrees
	RadiansToDegrees = 180.0 / math.Pi

	// EarthRadiusKm is the Earth's radius in kilometers (WGS84 mean radius)
	EarthRadiusKm = 6371.0

	// KmPerNauticalMile converts kilometers to nautical miles
	KmPerNauticalMile = 1.852

	// KmPerStatuteMile converts kilometers to statute miles
	KmPerStatuteMile = 1.609344
)

// Geographic represents a position on Earth's surface in the WGS84
// coordinate system (same as GPS).
type Geographic struct {
	// Latitude in decimal degrees (-90 to +90)
	// Positive = North, Negative = South
	Latitude float64

	// Longitude in decimal degrees (-180 to +180)
	// Positive = East, Negative = West
	Longitude float64
}

// Valid reports whether the position is within latitude/longitude range.
// The zero value (0, 0) is treated as valid; callers that need "no fix"
// semantics track that separately.
func (g Geographic) Valid() bool {
	return g.Latitude >= -90 && g.Latitude <= 90 &&
		g.Longitude >= -180 && g.Longitude <= 180
}

// distanceKm calculates the great-circle distance between two points using
// the Haversine formula, accurate over both short and long distances.
func distanceKm(from, to Geographic) float64 {
	lat1 := from.Latitude * DegreesToRadians
	lon1 := from.Longitude * DegreesToRadians
	lat2 := to.Latitude * DegreesToRadians
	lon2 := to.Longitude * DegreesToRadians

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DistanceNauticalMiles returns the great-circle distance in nautical miles.
func DistanceNauticalMiles(from, to Geographic) float64 {
	return distanceKm(from, to) / KmPerNauticalMile
}

// DistanceStatuteMiles returns the great-circle distance in statute miles,
// the unit shown on the display.
func DistanceStatuteMiles(from, to Geographic) float64 {
	return distanceKm(from, to) / KmPerStatuteMile
}

// Bearing calculates the initial bearing (forward azimuth) from one point
// to another along a great circle. Returns degrees in [0, 360), where
// 0/360 = North, 90 = East, 180 = South, 270 = West.
func Bearing(from, to Geographic) float64 {
	lat1 := from.Latitude * DegreesToRadians
	lon1 := from.Longitude * DegreesToRadians
	lat2 := to.Latitude * DegreesToRadians
	lon2 := to.Longitude * DegreesToRadians

	dLon := lon2 - lon1
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	bearing := math.Atan2(y, x) * RadiansToDegrees

	if bearing < 0 {
		bearing += 360
	}

	return bearing
}

// CardinalDirection maps a bearing in degrees to one of the eight compass
// points, for compact display next to the distance.
func CardinalDirection(bearing float64) string {
	points := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	idx := int(math.Mod(bearing+22.5, 360.0) / 45.0)
	return points[idx]
}

// deg2rad converts degrees to radians
func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// rad2deg converts radians to degrees
func rad2deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
