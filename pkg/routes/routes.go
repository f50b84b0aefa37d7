// Package routes attaches origin/destination information to tracked
// aircraft by callsign. Lookups are best-effort: results come from an
// external source that may be slow or absent, so the enricher answers
// from cache immediately and fetches in the background.
package routes

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
)

// Route is an origin/destination pair for one flight.
type Route struct {
	// Origin is the departure airport code (e.g., "KPHL")
	Origin string

	// Destination is the arrival airport code (e.g., "KORD")
	Destination string

	// FetchedAt is when this route was retrieved
	FetchedAt time.Time
}

// Status describes the state of a cached lookup.
type Status int

const (
	// StatusPending means no result exists yet; a background fetch is
	// running or about to run
	StatusPending Status = iota

	// StatusFound means a route is cached and fresh
	StatusFound

	// StatusAbsent means the source had no route, or the callsign is
	// not lookupable; cached briefly
	StatusAbsent
)

// Result is the answer to a Lookup call.
type Result struct {
	Status Status
	Route  Route
}

// Fetcher retrieves a route from the external source. found=false with
// a nil error means the source answered but knows no route.
type Fetcher interface {
	Fetch(ctx context.Context, callsign string) (route Route, found bool, err error)
}

// Config controls the enricher's caching behavior.
type Config struct {
	// TTL is how long successful results stay cached
	TTL time.Duration

	// NegativeTTL is how long failed or absent results stay cached,
	// bounding retry pressure on the external source
	NegativeTTL time.Duration

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

type cacheEntry struct {
	status    Status
	route     Route
	fetchedAt time.Time
}

// Enricher is a non-blocking callsign-to-route cache. Lookup never
// performs I/O; misses trigger a single background fetch per callsign.
type Enricher struct {
	fetcher     Fetcher
	ttl         time.Duration
	negativeTTL time.Duration
	now         func() time.Time

	mu       sync.Mutex
	cache    map[string]cacheEntry
	inflight map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEnricher creates an Enricher around the given fetcher.
func NewEnricher(fetcher Fetcher, cfg Config) *Enricher {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Enricher{
		fetcher:     fetcher,
		ttl:         cfg.TTL,
		negativeTTL: cfg.NegativeTTL,
		now:         cfg.Now,
		cache:       make(map[string]cacheEntry),
		inflight:    make(map[string]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Lookup returns the cached route state for a callsign. On a cache miss
// it returns StatusPending immediately and starts one background fetch;
// the caller is expected to ask again on a later cycle. Empty or
// malformed callsigns are never looked up.
func (e *Enricher) Lookup(callsign string) Result {
	key := normalizeCallsign(callsign)
	if key == "" {
		return Result{Status: StatusAbsent}
	}

	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if entry, ok := e.cache[key]; ok && !e.expired(entry, now) {
		return Result{Status: entry.status, Route: entry.route}
	}

	if _, running := e.inflight[key]; !running {
		e.inflight[key] = struct{}{}
		e.wg.Add(1)
		go e.fetch(key)
	}
	return Result{Status: StatusPending}
}

// Close cancels in-flight fetches and waits for their goroutines.
// Abandoned results are harmless; the cache is advisory.
func (e *Enricher) Close() {
	e.cancel()
	e.wg.Wait()
}

func (e *Enricher) expired(entry cacheEntry, now time.Time) bool {
	ttl := e.ttl
	if entry.status != StatusFound {
		ttl = e.negativeTTL
	}
	return now.Sub(entry.fetchedAt) > ttl
}

func (e *Enricher) fetch(key string) {
	defer e.wg.Done()

	route, found, err := e.fetcher.Fetch(e.ctx, key)

	status := StatusFound
	if err != nil {
		if e.ctx.Err() != nil {
			// Shutdown; drop the result without caching a failure
			e.mu.Lock()
			delete(e.inflight, key)
			e.mu.Unlock()
			return
		}
		log.Printf("route lookup for %s failed: %v", key, err)
		status = StatusAbsent
		route = Route{}
	} else if !found {
		status = StatusAbsent
		route = Route{}
	}
	route.FetchedAt = e.now()

	e.mu.Lock()
	e.cache[key] = cacheEntry{status: status, route: route, fetchedAt: route.FetchedAt}
	delete(e.inflight, key)
	e.mu.Unlock()
}

// normalizeCallsign trims and upper-cases a callsign, returning "" for
// anything too short, too long, or containing non-alphanumerics.
func normalizeCallsign(callsign string) string {
	s := strings.ToUpper(strings.TrimSpace(callsign))
	if len(s) < 3 || len(s) > 8 {
		return ""
	}
	hasLetter := false
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
		default:
			return ""
		}
	}
	if !hasLetter {
		return ""
	}
	return s
}

// String renders a route as "KPHL-KORD" for display.
func (r Route) String() string {
	if r.Origin == "" && r.Destination == "" {
		return ""
	}
	return r.Origin + "-" + r.Destination
}
