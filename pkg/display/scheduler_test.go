package display

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Frostfire25/airplane-project/pkg/config"
	"github.com/Frostfire25/airplane-project/pkg/routes"
	"github.com/Frostfire25/airplane-project/pkg/tracker"
)

// captureSink records every rendered frame.
type captureSink struct {
	mu     sync.Mutex
	frames []Frame
}

func (c *captureSink) Render(f Frame) error {
	c.mu.Lock()
	c.frames = append(c.frames, f)
	c.mu.Unlock()
	return nil
}

func (c *captureSink) last(t *testing.T) Frame {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		t.Fatal("no frames rendered")
	}
	return c.frames[len(c.frames)-1]
}

// stubEnricher serves fixed results without goroutines.
type stubEnricher struct {
	results map[string]routes.Result
}

func (s *stubEnricher) Lookup(callsign string) routes.Result {
	if r, ok := s.results[callsign]; ok {
		return r
	}
	return routes.Result{Status: routes.StatusPending}
}

var schedT0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig(t *testing.T, contents string) *config.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flightdisplay.conf")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return config.NewStore(path)
}

const schedulerConf = `LATITUDE=40.0
LONGITUDE=-75.0
DISPLAY_MIN_SECONDS=10
DISPLAY_ROTATE_SECONDS=30
STALE_AFTER_SECONDS=300
`

func newSchedulerForTest(t *testing.T, enricher Enricher) (*Scheduler, *tracker.Tracker, *captureSink, *time.Time) {
	t.Helper()
	cfg := testConfig(t, schedulerConf)
	tr := tracker.New()
	sink := &captureSink{}
	s := NewScheduler(cfg, tr, enricher, sink)

	clock := schedT0
	s.now = func() time.Time { return clock }
	return s, tr, sink, &clock
}

func ingestAt(tr *tracker.Tracker, icao string, lat, lon float64, ts time.Time) {
	cs := icao
	tr.Ingest(tracker.Report{
		ICAO: icao, Timestamp: ts,
		Callsign: &cs, Latitude: &lat, Longitude: &lon,
	})
}

func TestTickNoAircraftPlacard(t *testing.T) {
	s, _, sink, _ := newSchedulerForTest(t, nil)

	if err := s.Tick(); err != nil {
		t.Fatalf("Tick() error: %v", err)
	}
	frame := sink.last(t)
	if !frame.NoAircraft {
		t.Error("expected no-aircraft placard")
	}
	if frame.Status.Text != "NO AIRCRAFT" {
		t.Errorf("Status = %q", frame.Status.Text)
	}
	if frame.Time.Text == "" {
		t.Error("placard frame missing clock")
	}
}

func TestTickPicksNearest(t *testing.T) {
	s, tr, sink, clock := newSchedulerForTest(t, nil)

	ingestAt(tr, "far111", 42.0, -75.0, *clock)
	ingestAt(tr, "near22", 40.2, -75.0, *clock)

	if err := s.Tick(); err != nil {
		t.Fatalf("Tick() error: %v", err)
	}
	frame := sink.last(t)
	if frame.NoAircraft {
		t.Fatal("expected a subject, got placard")
	}
	if frame.Callsign.Text != "near22" {
		t.Errorf("Callsign = %q, want near22", frame.Callsign.Text)
	}
}

func TestSubjectHeldThroughMinimumAndRotation(t *testing.T) {
	s, tr, sink, clock := newSchedulerForTest(t, nil)

	ingestAt(tr, "first1", 40.5, -75.0, *clock)
	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}

	// A closer aircraft appears immediately
	ingestAt(tr, "closer", 40.1, -75.0, *clock)

	// Inside the minimum display duration the subject holds
	*clock = schedT0.Add(5 * time.Second)
	ingestAt(tr, "first1", 40.5, -75.0, *clock)
	ingestAt(tr, "closer", 40.1, -75.0, *clock)
	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}
	if got := sink.last(t).Callsign.Text; got != "first1" {
		t.Errorf("subject replaced inside minimum duration: %q", got)
	}

	// Past the minimum but inside the rotation interval it still holds
	*clock = schedT0.Add(20 * time.Second)
	ingestAt(tr, "first1", 40.5, -75.0, *clock)
	ingestAt(tr, "closer", 40.1, -75.0, *clock)
	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}
	if got := sink.last(t).Callsign.Text; got != "first1" {
		t.Errorf("subject replaced inside rotation interval: %q", got)
	}

	// Past both durations the nearest takes over
	*clock = schedT0.Add(31 * time.Second)
	ingestAt(tr, "first1", 40.5, -75.0, *clock)
	ingestAt(tr, "closer", 40.1, -75.0, *clock)
	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}
	if got := sink.last(t).Callsign.Text; got != "closer" {
		t.Errorf("subject not rotated after both durations: %q", got)
	}
}

func TestVanishedSubjectFailsOverImmediately(t *testing.T) {
	s, tr, sink, clock := newSchedulerForTest(t, nil)

	ingestAt(tr, "aaa111", 40.5, -75.0, *clock)
	ingestAt(tr, "bbb222", 41.0, -75.0, *clock)
	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}
	if got := sink.last(t).Callsign.Text; got != "aaa111" {
		t.Fatalf("initial subject = %q", got)
	}

	// One second later the subject has gone stale while the other
	// aircraft keeps reporting. Minimum duration does not protect it.
	*clock = schedT0.Add(time.Second)
	ingestAt(tr, "bbb222", 41.0, -75.0, schedT0.Add(10*time.Minute))
	tr.Sweep(schedT0.Add(10*time.Minute), time.Minute)

	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}
	if got := sink.last(t).Callsign.Text; got != "bbb222" {
		t.Errorf("no immediate failover, showing %q", got)
	}
}

func TestVanishedLastSubjectShowsPlacard(t *testing.T) {
	s, tr, sink, clock := newSchedulerForTest(t, nil)

	ingestAt(tr, "aaa111", 40.5, -75.0, *clock)
	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}

	*clock = schedT0.Add(time.Second)
	tr.Sweep(schedT0.Add(10*time.Minute), time.Minute)
	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}
	if !sink.last(t).NoAircraft {
		t.Error("expected placard after only subject vanished")
	}
}

func TestRouteUpgradesInPlace(t *testing.T) {
	enricher := &stubEnricher{results: map[string]routes.Result{}}
	s, tr, sink, clock := newSchedulerForTest(t, enricher)

	ingestAt(tr, "abc123", 40.5, -75.0, *clock)
	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}
	if got := sink.last(t).Route.Text; got != "" {
		t.Errorf("route shown while pending: %q", got)
	}

	// Enrichment completes while the subject is still active
	enricher.results["abc123"] = routes.Result{
		Status: routes.StatusFound,
		Route:  routes.Route{Origin: "KPHL", Destination: "KORD"},
	}
	*clock = schedT0.Add(2 * time.Second)
	ingestAt(tr, "abc123", 40.5, -75.0, *clock)
	if err := s.Tick(); err != nil {
		t.Fatal(err)
	}
	if got := sink.last(t).Route.Text; got != "KPHL-KORD" {
		t.Errorf("route not upgraded in place: %q", got)
	}
}

func TestOnNewSubjectFiresOncePerSubject(t *testing.T) {
	s, tr, _, clock := newSchedulerForTest(t, nil)

	var seen []string
	s.OnNewSubject = func(c tracker.Candidate, _ routes.Result) {
		seen = append(seen, c.Aircraft.ICAO)
	}

	ingestAt(tr, "aaa111", 40.5, -75.0, *clock)
	for i := 0; i < 3; i++ {
		*clock = schedT0.Add(time.Duration(i) * time.Second)
		ingestAt(tr, "aaa111", 40.5, -75.0, *clock)
		if err := s.Tick(); err != nil {
			t.Fatal(err)
		}
	}

	if len(seen) != 1 || seen[0] != "aaa111" {
		t.Errorf("OnNewSubject calls = %v, want one for aaa111", seen)
	}
}
