package display

import (
	"time"

	"github.com/Frostfire25/airplane-project/pkg/coordinates"
)

// Altitude band over which brightness ramps. Below the lower bound the
// panel runs at minimum brightness, above the upper bound at maximum,
// with a smooth transition through twilight in between.
const (
	nightAltitude = -9.0
	dayAltitude   = 9.0
)

// Brightness computes the panel brightness for the given observer
// location and wall-clock time, interpolated between min and max by the
// sun's altitude. The curve is continuous so dusk and dawn fade rather
// than snap.
func Brightness(observer coordinates.Geographic, now time.Time, min, max int) int {
	if min > max {
		min, max = max, min
	}
	sun := coordinates.CalculateSunPosition(observer, now)

	t := (sun.Altitude - nightAltitude) / (dayAltitude - nightAltitude)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	// Smoothstep eases in and out of the twilight band
	t = t * t * (3 - 2*t)

	return min + int(t*float64(max-min)+0.5)
}
