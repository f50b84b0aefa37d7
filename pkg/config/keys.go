package config

import "time"

// Recognized configuration keys. The file is flat key=value; unknown keys
// are ignored and absent keys resolve to the defaults below.
const (
	KeyLatitude  = "LATITUDE"
	KeyLongitude = "LONGITUDE"
	KeyTimezone  = "TIMEZONE"

	KeyFeedSource      = "FEED_SOURCE" // "sbs" or "api"
	KeyFeedHost        = "FEED_HOST"
	KeyFeedPort        = "FEED_PORT"
	KeyFeedURL         = "FEED_URL"
	KeyFeedPollSeconds = "FEED_POLL_SECONDS"
	KeyFeedRadiusNM    = "FEED_RADIUS_NM"

	KeyDisplayTickSeconds   = "DISPLAY_TICK_SECONDS"
	KeyDisplayMinSeconds    = "DISPLAY_MIN_SECONDS"
	KeyDisplayRotateSeconds = "DISPLAY_ROTATE_SECONDS"
	KeyStaleAfterSeconds    = "STALE_AFTER_SECONDS"
	KeySweepSeconds         = "SWEEP_SECONDS"

	KeyMatrixWidth         = "MATRIX_WIDTH"
	KeyMatrixHeight        = "MATRIX_HEIGHT"
	KeyMatrixBackend       = "MATRIX_BACKEND" // "console", "grid" or "panel"
	KeyBrightnessMin       = "MATRIX_BRIGHTNESS_MIN"
	KeyBrightnessMax       = "MATRIX_BRIGHTNESS_MAX"
	KeyColorTime           = "MATRIX_COLOR_TIME"
	KeyColorCallsign       = "MATRIX_COLOR_CALLSIGN"
	KeyColorDistance       = "MATRIX_COLOR_DISTANCE"
	KeyColorAltitude       = "MATRIX_COLOR_ALTITUDE"
	KeyColorSpeed          = "MATRIX_COLOR_SPEED"
	KeyColorRoute          = "MATRIX_COLOR_ROUTE"
	KeyColorNoAircraft     = "MATRIX_COLOR_NO_AIRCRAFT"
	KeyRouteLookupEnabled  = "ROUTE_LOOKUP_ENABLED"
	KeyRouteTTLSeconds     = "ROUTE_TTL_SECONDS"
	KeyRouteNegTTLSeconds  = "ROUTE_NEGATIVE_TTL_SECONDS"
	KeyRouteReqsPerMinute  = "ROUTE_REQUESTS_PER_MINUTE"

	KeyDBEnabled  = "DB_ENABLED"
	KeyDBHost     = "DB_HOST"
	KeyDBPort     = "DB_PORT"
	KeyDBName     = "DB_NAME"
	KeyDBUser     = "DB_USER"
	KeyDBPassword = "DB_PASSWORD"
	KeyDBSSLMode  = "DB_SSLMODE"
)

// Defaults for the keys above.
const (
	DefaultTimezone = "America/New_York"

	DefaultFeedSource      = "sbs"
	DefaultFeedHost        = "127.0.0.1"
	DefaultFeedPort        = 30003
	DefaultFeedPollSeconds = 5 * time.Second
	DefaultFeedRadiusNM    = 50.0

	DefaultDisplayTick    = 5 * time.Second
	DefaultDisplayMin     = 10 * time.Second
	DefaultDisplayRotate  = 30 * time.Second
	DefaultStaleAfter     = 60 * time.Second
	DefaultSweepInterval  = 15 * time.Second
	DefaultMatrixWidth    = 64
	DefaultMatrixHeight   = 64
	DefaultBrightnessMin  = 100
	DefaultBrightnessMax  = 255
	DefaultRouteTTL       = time.Hour
	DefaultRouteNegTTL    = 5 * time.Minute
	DefaultRouteReqPerMin = 6
)

// Location returns the configured observer position.
func (s *Store) Location() (lat, lon float64) {
	return s.GetFloat(KeyLatitude, 0.0), s.GetFloat(KeyLongitude, 0.0)
}

// StalenessWindow returns how long a tracked aircraft stays selectable
// after its last report.
func (s *Store) StalenessWindow() time.Duration {
	return s.GetSeconds(KeyStaleAfterSeconds, DefaultStaleAfter)
}

// DisplayTick returns the scheduler tick interval.
func (s *Store) DisplayTick() time.Duration {
	return s.GetSeconds(KeyDisplayTickSeconds, DefaultDisplayTick)
}

// MinDisplay returns the minimum time a subject stays on the display.
func (s *Store) MinDisplay() time.Duration {
	return s.GetSeconds(KeyDisplayMinSeconds, DefaultDisplayMin)
}

// RotateInterval returns how long a subject is shown before the scheduler
// re-evaluates which aircraft to display.
func (s *Store) RotateInterval() time.Duration {
	return s.GetSeconds(KeyDisplayRotateSeconds, DefaultDisplayRotate)
}

// SweepInterval returns the cadence of the staleness sweep job.
func (s *Store) SweepInterval() time.Duration {
	return s.GetSeconds(KeySweepSeconds, DefaultSweepInterval)
}

// BrightnessBounds returns the configured brightness range, clamped to
// 0-255 with min <= max.
func (s *Store) BrightnessBounds() (min, max int) {
	min = s.GetInt(KeyBrightnessMin, DefaultBrightnessMin)
	max = s.GetInt(KeyBrightnessMax, DefaultBrightnessMax)
	if min < 0 {
		min = 0
	}
	if max > 255 {
		max = 255
	}
	if min > max {
		min = max
	}
	return min, max
}

// Timezone returns the configured display timezone, falling back to the
// default when the name does not resolve. The resolved location is cached
// until the configured name changes, so repeated calls do not touch the
// zoneinfo database.
func (s *Store) Timezone() *time.Location {
	name := s.GetString(KeyTimezone, DefaultTimezone)

	s.tzMu.Lock()
	defer s.tzMu.Unlock()
	if s.tzLoc != nil && s.tzName == name {
		return s.tzLoc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		loc, err = time.LoadLocation(DefaultTimezone)
		if err != nil {
			loc = time.UTC
		}
	}
	// Cache under the configured name even when it failed to resolve, so a
	// bad value does not re-read zoneinfo on every call.
	s.tzName = name
	s.tzLoc = loc
	return loc
}
