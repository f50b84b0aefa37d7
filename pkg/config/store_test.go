package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"
)

// writeConfig writes contents to path and bumps the mtime so the store's
// change detection sees a distinct modification time even on coarse
// filesystem clocks.
func writeConfig(t *testing.T, path, contents string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Failed to set mtime: %v", err)
	}
}

// TestGetDefaults verifies that absent keys resolve to caller defaults.
func TestGetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.conf")
	writeConfig(t, path, "LATITUDE=40.7\n", time.Now())

	s := NewStore(path)

	if got := s.GetString("MISSING", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %s", got)
	}
	if got := s.GetInt("MISSING", 42); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
	if got := s.GetFloat("MISSING", 1.5); got != 1.5 {
		t.Errorf("Expected 1.5, got %f", got)
	}
	if got := s.GetBool("MISSING", true); !got {
		t.Error("Expected true default")
	}
	if got := s.GetSeconds("MISSING", 7*time.Second); got != 7*time.Second {
		t.Errorf("Expected 7s, got %v", got)
	}
	if got := s.GetColor("MISSING", RGB{1, 2, 3}); got != (RGB{1, 2, 3}) {
		t.Errorf("Expected default color, got %v", got)
	}
}

// TestGetTyped verifies parsing of each supported value type.
func TestGetTyped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.conf")
	writeConfig(t, path, `
LATITUDE=40.7128
FEED_PORT=30003
DB_ENABLED=yes
DISPLAY_TICK_SECONDS=2.5
MATRIX_COLOR_TIME=255, 255, 0
NAME=living room
`, time.Now())

	s := NewStore(path)

	if got := s.GetFloat("LATITUDE", 0); got != 40.7128 {
		t.Errorf("Expected 40.7128, got %f", got)
	}
	if got := s.GetInt("FEED_PORT", 0); got != 30003 {
		t.Errorf("Expected 30003, got %d", got)
	}
	if !s.GetBool("DB_ENABLED", false) {
		t.Error("Expected DB_ENABLED=yes to parse as true")
	}
	if got := s.GetSeconds("DISPLAY_TICK_SECONDS", 0); got != 2500*time.Millisecond {
		t.Errorf("Expected 2.5s, got %v", got)
	}
	if got := s.GetColor("MATRIX_COLOR_TIME", RGB{}); got != (RGB{255, 255, 0}) {
		t.Errorf("Expected yellow, got %v", got)
	}
	if got := s.GetString("NAME", ""); got != "living room" {
		t.Errorf("Expected 'living room', got %q", got)
	}
}

// TestMalformedValuesFallBack verifies that unparsable values yield the
// caller's default rather than an error.
func TestMalformedValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.conf")
	writeConfig(t, path, `
FEED_PORT=not-a-number
LATITUDE=n/a
DB_ENABLED=maybe
DISPLAY_TICK_SECONDS=-3
COLOR_A=1,2
COLOR_B=300,0,0
COLOR_C=12,x,13
`, time.Now())

	s := NewStore(path)

	if got := s.GetInt("FEED_PORT", 30003); got != 30003 {
		t.Errorf("Expected default 30003, got %d", got)
	}
	if got := s.GetFloat("LATITUDE", 1.0); got != 1.0 {
		t.Errorf("Expected default 1.0, got %f", got)
	}
	if got := s.GetBool("DB_ENABLED", true); !got {
		t.Error("Expected default true for unrecognized boolean")
	}
	if got := s.GetSeconds("DISPLAY_TICK_SECONDS", time.Second); got != time.Second {
		t.Errorf("Expected default 1s for negative duration, got %v", got)
	}
	def := RGB{9, 9, 9}
	for _, key := range []string{"COLOR_A", "COLOR_B", "COLOR_C"} {
		if got := s.GetColor(key, def); got != def {
			t.Errorf("Expected default color for %s, got %v", key, got)
		}
	}
}

// TestGetSecondsRejectsZero verifies a zero interval falls back to the
// default. Every GetSeconds consumer is a periodic job; a zero interval
// would spin it.
func TestGetSecondsRejectsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.conf")
	writeConfig(t, path, "DISPLAY_TICK_SECONDS=0\nFEED_POLL_SECONDS=0.0\n", time.Now())

	s := NewStore(path)

	if got := s.GetSeconds("DISPLAY_TICK_SECONDS", 5*time.Second); got != 5*time.Second {
		t.Errorf("Expected default 5s for zero interval, got %v", got)
	}
	if got := s.GetSeconds("FEED_POLL_SECONDS", 2*time.Second); got != 2*time.Second {
		t.Errorf("Expected default 2s for zero interval, got %v", got)
	}
}

// TestTimezoneCached verifies that repeated Timezone calls reuse one
// resolved location and that a config change invalidates the cache.
func TestTimezoneCached(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.conf")
	base := time.Now().Add(-time.Minute)
	writeConfig(t, path, "TIMEZONE=America/Chicago\n", base)

	s := NewStore(path)

	first := s.Timezone()
	if first.String() != "America/Chicago" {
		t.Fatalf("Expected America/Chicago, got %v", first)
	}
	// LoadLocation returns a fresh *Location each call, so pointer equality
	// proves the cache was hit.
	if second := s.Timezone(); second != first {
		t.Error("Expected the cached location on the second call")
	}

	writeConfig(t, path, "TIMEZONE=America/Denver\n", base.Add(10*time.Second))
	if got := s.Timezone(); got.String() != "America/Denver" {
		t.Errorf("Expected America/Denver after config change, got %v", got)
	}
}

// TestTimezoneFallsBack verifies an unresolvable name yields the default
// zone.
func TestTimezoneFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.conf")
	writeConfig(t, path, "TIMEZONE=Mars/Olympus_Mons\n", time.Now())

	s := NewStore(path)
	if got := s.Timezone(); got.String() != DefaultTimezone {
		t.Errorf("Expected %s fallback, got %v", DefaultTimezone, got)
	}
}

// TestReloadOnChange verifies that a rewritten file is picked up on the
// next access.
func TestReloadOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.conf")
	base := time.Now().Add(-time.Minute)
	writeConfig(t, path, "LATITUDE=10.0\n", base)

	s := NewStore(path)
	if got := s.GetFloat("LATITUDE", 0); got != 10.0 {
		t.Fatalf("Expected 10.0, got %f", got)
	}

	writeConfig(t, path, "LATITUDE=20.0\n", base.Add(10*time.Second))
	if got := s.GetFloat("LATITUDE", 0); got != 20.0 {
		t.Errorf("Expected reloaded value 20.0, got %f", got)
	}
}

// TestReloadIfChanged verifies the explicit reload entry point.
func TestReloadIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.conf")
	base := time.Now().Add(-time.Minute)
	writeConfig(t, path, "A=1\n", base)

	s := NewStore(path)
	if s.ReloadIfChanged() {
		t.Error("Expected no reload when file unchanged")
	}

	writeConfig(t, path, "A=2\n", base.Add(5*time.Second))
	if !s.ReloadIfChanged() {
		t.Error("Expected reload after file change")
	}
	if s.ReloadIfChanged() {
		t.Error("Expected no second reload without another change")
	}
}

// TestMalformedFileKeepsPreviousSnapshot verifies that a parse failure does
// not destroy the last good snapshot.
func TestMalformedFileKeepsPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.conf")
	base := time.Now().Add(-time.Minute)
	writeConfig(t, path, "LATITUDE=33.0\nFEED_HOST=radar.local\n", base)

	s := NewStore(path)

	// Unterminated quote makes the file unparsable.
	writeConfig(t, path, "LATITUDE=\"broken\n", base.Add(10*time.Second))

	if got := s.GetFloat("LATITUDE", 0); got != 33.0 {
		t.Errorf("Expected previous value 33.0, got %f", got)
	}
	if got := s.GetString("FEED_HOST", ""); got != "radar.local" {
		t.Errorf("Expected previous value radar.local, got %s", got)
	}
}

// TestMissingFileServesDefaults verifies that a store over a nonexistent
// file serves caller defaults without error.
func TestMissingFileServesDefaults(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "does-not-exist.conf"))
	if got := s.GetString("ANY", "d"); got != "d" {
		t.Errorf("Expected default, got %s", got)
	}
}

// TestSnapshotConsistency verifies that a reader never observes a mix of
// old and new values: the two keys below are always rewritten together and
// must always be read as a matching pair.
func TestSnapshotConsistency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.conf")
	base := time.Now().Add(-time.Hour)
	writeConfig(t, path, "GEN=0\nECHO=0\n", base)

	s := NewStore(path)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	var mu sync.Mutex
	var bad bool

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Snapshot()
				gen, _ := snap.Lookup("GEN")
				echo, _ := snap.Lookup("ECHO")
				if gen != echo {
					mu.Lock()
					bad = true
					mu.Unlock()
					return
				}
			}
		}()
	}

	for gen := 1; gen <= 20; gen++ {
		mtime := base.Add(time.Duration(gen) * time.Second)
		writeConfig(t, path, "GEN="+strconv.Itoa(gen)+"\nECHO="+strconv.Itoa(gen)+"\n", mtime)
		s.ReloadIfChanged()
	}
	close(stop)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if bad {
		t.Error("Reader observed a torn snapshot (GEN and ECHO disagree)")
	}
}
