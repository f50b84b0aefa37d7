// Package display decides what the matrix shows. Each scheduling tick it
// polls the aircraft tracker, ranks candidates by distance, applies the
// minimum-duration and rotation rules, and emits one render request to
// the configured backend.
package display

import (
	"fmt"
	"time"

	"github.com/Frostfire25/airplane-project/pkg/config"
	"github.com/Frostfire25/airplane-project/pkg/coordinates"
	"github.com/Frostfire25/airplane-project/pkg/tracker"
)

// Field is one line of text with its display color.
type Field struct {
	Text  string
	Color config.RGB
}

// Frame is a complete render request. The backend owns pixel layout and
// fonts; the frame only carries text, colors, and brightness.
type Frame struct {
	// NoAircraft marks the "no aircraft nearby" placard; the text
	// fields other than Time and Status are empty
	NoAircraft bool

	// Time is the local wall clock
	Time Field

	// Callsign is the flight number, or the transponder address when
	// no callsign has arrived yet
	Callsign Field

	// Distance from the observer, with cardinal direction
	Distance Field

	// Altitude in feet
	Altitude Field

	// Speed over ground in knots
	Speed Field

	// Route is "ORIG-DEST", or blank while enrichment is pending/absent
	Route Field

	// Status carries the placard text when NoAircraft is set
	Status Field

	// Brightness for the whole panel (0-255)
	Brightness int
}

// Default field colors, matching a classic amber/green flight board.
var (
	defaultTimeColor       = config.RGB{R: 255, G: 191, B: 0}
	defaultCallsignColor   = config.RGB{R: 0, G: 255, B: 0}
	defaultDistanceColor   = config.RGB{R: 0, G: 191, B: 255}
	defaultAltitudeColor   = config.RGB{R: 255, G: 255, B: 255}
	defaultSpeedColor      = config.RGB{R: 255, G: 255, B: 255}
	defaultRouteColor      = config.RGB{R: 191, G: 0, B: 255}
	defaultNoAircraftColor = config.RGB{R: 128, G: 128, B: 128}
)

// buildFrame renders one candidate (or the placard) into a Frame using
// the current configuration snapshot for colors and clock zone.
func buildFrame(cfg *config.Store, candidate *tracker.Candidate, route string, brightness int, now time.Time) Frame {
	frame := Frame{
		Brightness: brightness,
		Time: Field{
			Text:  now.In(cfg.Timezone()).Format("15:04"),
			Color: cfg.GetColor(config.KeyColorTime, defaultTimeColor),
		},
	}

	if candidate == nil {
		frame.NoAircraft = true
		frame.Status = Field{
			Text:  "NO AIRCRAFT",
			Color: cfg.GetColor(config.KeyColorNoAircraft, defaultNoAircraftColor),
		}
		return frame
	}

	ac := candidate.Aircraft
	callsign := ac.Callsign
	if callsign == "" {
		callsign = ac.ICAO
	}

	frame.Callsign = Field{
		Text:  callsign,
		Color: cfg.GetColor(config.KeyColorCallsign, defaultCallsignColor),
	}
	frame.Distance = Field{
		Text: fmt.Sprintf("%.1fmi %s",
			candidate.DistanceNM*coordinates.KmPerNauticalMile/coordinates.KmPerStatuteMile,
			coordinates.CardinalDirection(candidate.Bearing)),
		Color: cfg.GetColor(config.KeyColorDistance, defaultDistanceColor),
	}
	frame.Altitude = Field{
		Text:  fmt.Sprintf("%.0fft", ac.Altitude),
		Color: cfg.GetColor(config.KeyColorAltitude, defaultAltitudeColor),
	}
	frame.Speed = Field{
		Text:  fmt.Sprintf("%.0fkt", ac.GroundSpeed),
		Color: cfg.GetColor(config.KeyColorSpeed, defaultSpeedColor),
	}
	frame.Route = Field{
		Text:  route,
		Color: cfg.GetColor(config.KeyColorRoute, defaultRouteColor),
	}
	return frame
}
