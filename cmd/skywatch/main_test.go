package main

import (
	"strings"
	"testing"
	"time"

	"github.com/Frostfire25/airplane-project/internal/db"
	"github.com/Frostfire25/airplane-project/pkg/tracker"
)

func TestSightingsPaneRendersRecent(t *testing.T) {
	m := model{
		tracker: tracker.New(),
		repo:    db.NewSightingRepository(nil),
	}

	updated, _ := m.Update(sightingsMsg{
		recent: []db.Sighting{{
			ICAO:        "a1b2c3",
			Callsign:    "UAL123",
			Origin:      "KPHL",
			Destination: "KORD",
			DistanceNM:  12.3,
			SeenAt:      time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		}},
		day: 7,
	})
	view := updated.(model).View()

	for _, want := range []string{"RECENT SIGHTINGS (7 in 24h)", "a1b2c3", "UAL123", "KPHL-KORD"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestSightingsPaneHiddenWithoutDatabase(t *testing.T) {
	m := model{tracker: tracker.New()}
	if strings.Contains(m.View(), "RECENT SIGHTINGS") {
		t.Error("Sightings pane rendered with no database configured")
	}
}
