package display

import (
	"fmt"
	"time"

	"github.com/Frostfire25/airplane-project/pkg/config"
	"github.com/Frostfire25/airplane-project/pkg/coordinates"
	"github.com/Frostfire25/airplane-project/pkg/routes"
	"github.com/Frostfire25/airplane-project/pkg/tracker"
)

// Sink receives render requests. Implemented by the matrix backends.
type Sink interface {
	Render(Frame) error
}

// Enricher answers cached route lookups. Implemented by routes.Enricher.
type Enricher interface {
	Lookup(callsign string) routes.Result
}

// subject is the aircraft currently on the panel.
type subject struct {
	icao  string
	since time.Time
}

// Scheduler runs the per-tick display decision: poll the tracker, rank
// candidates, hold or rotate the subject, and emit one frame. It owns
// the subject state; everything else is read through injected
// collaborators so ticks never block on network or disk.
type Scheduler struct {
	cfg      *config.Store
	tracker  *tracker.Tracker
	enricher Enricher
	sink     Sink
	now      func() time.Time

	current *subject

	// OnNewSubject, when set, is called once each time a different
	// aircraft takes over the panel. Used for sighting persistence.
	OnNewSubject func(tracker.Candidate, routes.Result)
}

// NewScheduler wires a Scheduler. enricher may be nil when route lookup
// is disabled.
func NewScheduler(cfg *config.Store, tr *tracker.Tracker, enricher Enricher, sink Sink) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		tracker:  tr,
		enricher: enricher,
		sink:     sink,
		now:      time.Now,
	}
}

// Tick runs one scheduling cycle. Errors are reported to the caller for
// logging; the scheduler's state stays valid and the next tick proceeds
// normally.
func (s *Scheduler) Tick() error {
	now := s.now()

	lat, lon := s.cfg.Location()
	reference := coordinates.Geographic{Latitude: lat, Longitude: lon}

	s.tracker.Sweep(now, s.cfg.StalenessWindow())

	ranked, err := tracker.Rank(s.tracker.Snapshot(), reference)
	if err != nil {
		// Corrupt ranking skips this cycle; the subject and panel keep
		// their previous content
		return fmt.Errorf("rank: %w", err)
	}

	candidate := s.pickSubject(ranked, now)

	route := ""
	if candidate != nil {
		if result := s.lookupRoute(candidate.Aircraft.Callsign); result.Status == routes.StatusFound {
			route = result.Route.String()
		}
	}

	min, max := s.cfg.BrightnessBounds()
	frame := buildFrame(s.cfg, candidate, route, Brightness(reference, now, min, max), now)

	if err := s.sink.Render(frame); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// pickSubject applies the subject state machine and returns the
// candidate to display, or nil for the no-aircraft placard.
func (s *Scheduler) pickSubject(ranked []tracker.Candidate, now time.Time) *tracker.Candidate {
	if len(ranked) == 0 {
		s.current = nil
		return nil
	}

	if s.current != nil {
		if held := findCandidate(ranked, s.current.icao); held != nil {
			elapsed := now.Sub(s.current.since)
			// The subject holds the panel until both the minimum
			// display duration and the rotation interval have passed
			if elapsed < s.cfg.MinDisplay() || elapsed < s.cfg.RotateInterval() {
				return held
			}
			nearest := &ranked[0]
			if nearest.Aircraft.ICAO == s.current.icao {
				return held
			}
			s.setSubject(nearest, now)
			return nearest
		}
		// Subject vanished from the tracker; fail over immediately
	}

	nearest := &ranked[0]
	s.setSubject(nearest, now)
	return nearest
}

func (s *Scheduler) setSubject(c *tracker.Candidate, now time.Time) {
	s.current = &subject{icao: c.Aircraft.ICAO, since: now}
	if s.OnNewSubject != nil {
		s.OnNewSubject(*c, s.lookupRoute(c.Aircraft.Callsign))
	}
}

func (s *Scheduler) lookupRoute(callsign string) routes.Result {
	if s.enricher == nil {
		return routes.Result{Status: routes.StatusAbsent}
	}
	return s.enricher.Lookup(callsign)
}

func findCandidate(ranked []tracker.Candidate, icao string) *tracker.Candidate {
	for i := range ranked {
		if ranked[i].Aircraft.ICAO == icao {
			return &ranked[i]
		}
	}
	return nil
}
