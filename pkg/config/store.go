// Package config provides a hot-reloading view of a flat key=value
// configuration file.
//
// The file may be rewritten at any time by an external editor (the web
// configuration form, a text editor over ssh). Every read first performs a
// cheap stat of the backing file; when the modification time or size has
// changed since the last successful load, the whole file is re-parsed into a
// fresh snapshot which is swapped in atomically. Concurrent readers always
// observe either the fully-old or the fully-new snapshot, never a mix.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
)

// RGB is a color value used for matrix text fields.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Snapshot is an immutable view of the configuration file as of one
// successful load. Snapshots are never mutated after creation; the Store
// replaces them wholesale on reload.
type Snapshot struct {
	values   map[string]string
	loadedAt time.Time
}

// Lookup returns the raw string value for a key and whether it was present.
func (s *Snapshot) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// LoadedAt returns the time the snapshot was parsed.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Store reads configuration values from a key=value file, reloading it
// automatically when the file changes. All methods are safe for concurrent
// use; readers never block on a reload in progress.
type Store struct {
	path string

	// snap holds the last good snapshot. Readers load it without locking.
	snap atomic.Pointer[Snapshot]

	// reloadMu serializes reload attempts. Readers use TryLock so a reload
	// already in progress never blocks a configuration access.
	reloadMu sync.Mutex
	lastMod  time.Time
	lastSize int64

	// tzMu guards the resolved timezone cache. LoadLocation reads zoneinfo
	// from disk, so the result is cached until the configured name changes.
	tzMu   sync.Mutex
	tzName string
	tzLoc  *time.Location
}

// NewStore creates a store backed by the file at path and performs the
// initial load. A missing or malformed file is not an error: the store
// starts with an empty snapshot and every get falls back to the caller's
// default until the file becomes readable.
func NewStore(path string) *Store {
	s := &Store{path: path}
	s.snap.Store(&Snapshot{values: map[string]string{}, loadedAt: time.Now()})
	s.reloadMu.Lock()
	s.reloadLocked()
	s.reloadMu.Unlock()
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns the current immutable snapshot, checking the backing
// file for changes first.
func (s *Store) Snapshot() *Snapshot {
	s.checkReload()
	return s.snap.Load()
}

// ReloadIfChanged checks the backing file and reloads it if it has changed
// since the last successful load. Returns true when a reload occurred.
func (s *Store) ReloadIfChanged() bool {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	return s.reloadLocked()
}

// checkReload is the cheap precondition run on every access: a single stat,
// and only when the file changed a full re-parse. If another goroutine is
// already reloading, this access proceeds with the current snapshot.
func (s *Store) checkReload() {
	if !s.reloadMu.TryLock() {
		return
	}
	defer s.reloadMu.Unlock()
	s.reloadLocked()
}

// reloadLocked stats the file and, when changed, parses it into a new
// snapshot. Parse failures keep the previous snapshot in place. Callers
// must hold reloadMu.
func (s *Store) reloadLocked() bool {
	info, err := os.Stat(s.path)
	if err != nil {
		// File missing or unreadable: keep serving the last good snapshot.
		return false
	}
	if info.ModTime().Equal(s.lastMod) && info.Size() == s.lastSize {
		return false
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		log.Printf("config: read %s: %v (keeping previous values)", s.path, err)
		return false
	}
	values, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		log.Printf("config: parse %s: %v (keeping previous values)", s.path, err)
		// Record the mtime anyway so a broken file is not re-parsed on
		// every single access.
		s.lastMod = info.ModTime()
		s.lastSize = info.Size()
		return false
	}

	s.snap.Store(&Snapshot{values: values, loadedAt: time.Now()})
	s.lastMod = info.ModTime()
	s.lastSize = info.Size()
	return true
}

// GetString returns the value for key, or def when the key is absent.
func (s *Store) GetString(key, def string) string {
	if v, ok := s.Snapshot().Lookup(key); ok {
		return v
	}
	return def
}

// GetInt returns the value for key parsed as an integer. Absent or
// unparsable values yield def.
func (s *Store) GetInt(key string, def int) int {
	v, ok := s.Snapshot().Lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// GetFloat returns the value for key parsed as a float64. Absent or
// unparsable values yield def.
func (s *Store) GetFloat(key string, def float64) float64 {
	v, ok := s.Snapshot().Lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// GetBool returns the value for key interpreted as a boolean. The accepted
// true spellings are "1", "true", "yes" and "on" (case-insensitive),
// matching what the configuration editor writes. Anything else yields def.
func (s *Store) GetBool(key string, def bool) bool {
	v, ok := s.Snapshot().Lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// GetSeconds returns the value for key interpreted as a duration in seconds
// (fractional values allowed). Absent or unparsable values yield def, as do
// zero and negative values: every consumer is a periodic interval, and a
// zero interval would spin.
func (s *Store) GetSeconds(key string, def time.Duration) time.Duration {
	v, ok := s.Snapshot().Lookup(key)
	if !ok {
		return def
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || secs <= 0 {
		return def
	}
	return time.Duration(secs * float64(time.Second))
}

// GetColor returns the value for key parsed as an "R,G,B" triple with each
// component in 0-255. Malformed or out-of-range triples yield def.
func (s *Store) GetColor(key string, def RGB) RGB {
	v, ok := s.Snapshot().Lookup(key)
	if !ok {
		return def
	}
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return def
	}
	var c [3]uint8
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 255 {
			return def
		}
		c[i] = uint8(n)
	}
	return RGB{R: c[0], G: c[1], B: c[2]}
}
