package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestRunReturnsStartupErrors verifies that a startup failure comes back as
// an error through run, so deferred teardown (backend close, terminal
// restore) executes before the process exits.
func TestRunReturnsStartupErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flightdisplay.conf")
	if err := os.WriteFile(path, []byte("MATRIX_BACKEND=bogus\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := run(path)
	if err == nil {
		t.Fatal("Expected an error for an unknown backend")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("Error does not name the bad backend: %v", err)
	}
}
