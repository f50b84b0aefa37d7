// Package tracker maintains a rolling model of nearby aircraft built from
// decoded transponder reports. It merges partial reports per identity,
// serves consistent snapshots to concurrent readers, and ages out entries
// that have stopped reporting.
package tracker

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Frostfire25/airplane-project/pkg/coordinates"
)

// Aircraft is the merged state for one transponder identity.
type Aircraft struct {
	// ICAO is the normalized (lower-case hex) transponder address
	ICAO string

	// Callsign is the flight number or registration, "" until one arrives
	Callsign string

	// HasPosition reports whether a valid position fix has ever arrived.
	// Aircraft without a fix are retained but excluded from ranking.
	HasPosition bool

	// Position is the last known position, valid only when HasPosition
	Position coordinates.Geographic

	// Altitude in feet MSL
	Altitude float64

	// GroundSpeed in knots
	GroundSpeed float64

	// Track is the ground track in degrees (0-359)
	Track float64

	// FirstSeen is when the first report for this identity arrived
	FirstSeen time.Time

	// LastSeen is the newest report timestamp observed for this identity
	LastSeen time.Time
}

// record pairs the merged aircraft with per-field update timestamps so
// out-of-order reports never roll a field back to older data.
type record struct {
	aircraft   Aircraft
	callsignAt time.Time
	positionAt time.Time
	altitudeAt time.Time
	speedAt    time.Time
	trackAt    time.Time
}

// Tracker ingests decoded reports and maintains per-identity state.
// All methods are safe for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	aircraft map[string]*record
	dropped  atomic.Uint64
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{
		aircraft: make(map[string]*record),
	}
}

// Ingest merges one decoded report into the tracked state. Identity-only,
// position-only, and velocity-only reports are all valid. Malformed
// reports (bad identity, zero timestamp, out-of-range position) are
// dropped silently and counted.
func (t *Tracker) Ingest(r Report) {
	icao := NormalizeICAO(r.ICAO)
	if icao == "" || r.Timestamp.IsZero() {
		t.dropped.Add(1)
		return
	}

	// Position fields travel as a pair; a lone latitude or longitude,
	// or an out-of-range pair, makes the whole report suspect.
	hasPos := r.Latitude != nil && r.Longitude != nil
	if (r.Latitude == nil) != (r.Longitude == nil) {
		t.dropped.Add(1)
		return
	}
	if hasPos {
		pos := coordinates.Geographic{Latitude: *r.Latitude, Longitude: *r.Longitude}
		if !pos.Valid() {
			t.dropped.Add(1)
			return
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.aircraft[icao]
	if !ok {
		rec = &record{aircraft: Aircraft{ICAO: icao, FirstSeen: r.Timestamp}}
		t.aircraft[icao] = rec
	}
	if r.Timestamp.Before(rec.aircraft.FirstSeen) {
		rec.aircraft.FirstSeen = r.Timestamp
	}
	if r.Timestamp.After(rec.aircraft.LastSeen) {
		rec.aircraft.LastSeen = r.Timestamp
	}

	// Last writer wins per field, gated on the field's own timestamp
	if r.Callsign != nil && *r.Callsign != "" && !r.Timestamp.Before(rec.callsignAt) {
		rec.aircraft.Callsign = *r.Callsign
		rec.callsignAt = r.Timestamp
	}
	if hasPos && !r.Timestamp.Before(rec.positionAt) {
		rec.aircraft.Position = coordinates.Geographic{Latitude: *r.Latitude, Longitude: *r.Longitude}
		rec.aircraft.HasPosition = true
		rec.positionAt = r.Timestamp
	}
	if r.Altitude != nil && !r.Timestamp.Before(rec.altitudeAt) {
		rec.aircraft.Altitude = *r.Altitude
		rec.altitudeAt = r.Timestamp
	}
	if r.GroundSpeed != nil && !r.Timestamp.Before(rec.speedAt) {
		rec.aircraft.GroundSpeed = *r.GroundSpeed
		rec.speedAt = r.Timestamp
	}
	if r.Track != nil && !r.Timestamp.Before(rec.trackAt) {
		rec.aircraft.Track = *r.Track
		rec.trackAt = r.Timestamp
	}
}

// Snapshot returns a consistent copy of all tracked aircraft, ordered by
// identity. The returned slice is owned by the caller.
func (t *Tracker) Snapshot() []Aircraft {
	t.mu.RLock()
	out := make([]Aircraft, 0, len(t.aircraft))
	for _, rec := range t.aircraft {
		out = append(out, rec.aircraft)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ICAO < out[j].ICAO })
	return out
}

// Get returns the current state for one identity, or false if untracked.
func (t *Tracker) Get(icao string) (Aircraft, bool) {
	key := NormalizeICAO(icao)
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.aircraft[key]
	if !ok {
		return Aircraft{}, false
	}
	return rec.aircraft, true
}

// Sweep removes entries whose last-seen timestamp is older than
// now minus window, and returns how many were removed.
func (t *Tracker) Sweep(now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)

	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for icao, rec := range t.aircraft {
		if rec.aircraft.LastSeen.Before(cutoff) {
			delete(t.aircraft, icao)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked identities.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.aircraft)
}

// Dropped returns the count of malformed reports discarded since startup.
func (t *Tracker) Dropped() uint64 {
	return t.dropped.Load()
}
