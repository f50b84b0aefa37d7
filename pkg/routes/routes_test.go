package routes

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeFetcher is a deterministic Fetcher for tests. It signals on each
// fetch so tests can wait without sleeping.
type fakeFetcher struct {
	mu      sync.Mutex
	routes  map[string]Route
	err     error
	calls   atomic.Int64
	fetched chan string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		routes:  make(map[string]Route),
		fetched: make(chan string, 16),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, callsign string) (Route, bool, error) {
	f.calls.Add(1)
	defer func() { f.fetched <- callsign }()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Route{}, false, f.err
	}
	route, ok := f.routes[callsign]
	return route, ok, nil
}

func waitForFetch(t *testing.T, f *fakeFetcher) {
	t.Helper()
	select {
	case <-f.fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for background fetch")
	}
}

// fakeClock is a settable clock for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newEnricherForTest(f Fetcher, clock *fakeClock) *Enricher {
	return NewEnricher(f, Config{
		TTL:         time.Hour,
		NegativeTTL: 5 * time.Minute,
		Now:         clock.Now,
	})
}

func TestLookupPendingThenFound(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.routes["UAL123"] = Route{Origin: "KPHL", Destination: "KORD"}
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	e := newEnricherForTest(fetcher, clock)
	defer e.Close()

	if got := e.Lookup("UAL123"); got.Status != StatusPending {
		t.Fatalf("first Lookup status = %v, want pending", got.Status)
	}

	waitForFetch(t, fetcher)

	got := e.Lookup("UAL123")
	if got.Status != StatusFound {
		t.Fatalf("Lookup after fetch status = %v, want found", got.Status)
	}
	if got.Route.Origin != "KPHL" || got.Route.Destination != "KORD" {
		t.Errorf("route = %v, want KPHL-KORD", got.Route)
	}

	// Served from cache within the TTL without a second fetch
	clock.Advance(30 * time.Minute)
	e.Lookup("UAL123")
	if n := fetcher.calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestLookupCachesFailuresBriefly(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.err = errors.New("source down")
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	e := newEnricherForTest(fetcher, clock)
	defer e.Close()

	e.Lookup("UAL123")
	waitForFetch(t, fetcher)

	if got := e.Lookup("UAL123"); got.Status != StatusAbsent {
		t.Fatalf("status after failure = %v, want absent", got.Status)
	}
	if n := fetcher.calls.Load(); n != 1 {
		t.Fatalf("fetch calls = %d, want 1 while failure is cached", n)
	}

	// After the negative TTL the lookup retries
	fetcher.mu.Lock()
	fetcher.err = nil
	fetcher.routes["UAL123"] = Route{Origin: "KJFK", Destination: "KLAX"}
	fetcher.mu.Unlock()
	clock.Advance(6 * time.Minute)

	if got := e.Lookup("UAL123"); got.Status != StatusPending {
		t.Fatalf("status after negative TTL = %v, want pending refetch", got.Status)
	}
	waitForFetch(t, fetcher)

	if got := e.Lookup("UAL123"); got.Status != StatusFound || got.Route.Origin != "KJFK" {
		t.Errorf("retry result = %+v, want found KJFK-KLAX", got)
	}
}

func TestLookupRejectsMalformedCallsigns(t *testing.T) {
	fetcher := newFakeFetcher()
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	e := newEnricherForTest(fetcher, clock)
	defer e.Close()

	for _, callsign := range []string{"", "  ", "AB", "WAYTOOLONG1", "UAL 12", "12345", "A/B12"} {
		if got := e.Lookup(callsign); got.Status != StatusAbsent {
			t.Errorf("Lookup(%q) status = %v, want absent", callsign, got.Status)
		}
	}
	if n := fetcher.calls.Load(); n != 0 {
		t.Errorf("malformed callsigns triggered %d fetches", n)
	}
}

func TestLookupDeduplicatesInflight(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.routes["UAL123"] = Route{Origin: "KPHL", Destination: "KORD"}
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	e := newEnricherForTest(fetcher, clock)
	defer e.Close()

	// Repeated lookups while the first fetch may still be running must
	// not fan out into extra fetches. Case differences normalize to the
	// same key.
	e.Lookup("UAL123")
	e.Lookup("ual123")
	e.Lookup("UAL123")
	waitForFetch(t, fetcher)
	e.Lookup("UAL123")

	if n := fetcher.calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestRouteString(t *testing.T) {
	if got := (Route{Origin: "KPHL", Destination: "KORD"}).String(); got != "KPHL-KORD" {
		t.Errorf("String() = %q", got)
	}
	if got := (Route{}).String(); got != "" {
		t.Errorf("empty route String() = %q, want empty", got)
	}
}
