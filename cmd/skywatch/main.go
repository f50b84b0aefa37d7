// skywatch is a terminal viewer for the live aircraft picture: a ranked
// table of everything the tracker currently knows, nearest first. It
// consumes the same feed as the matrix daemon, so it doubles as a feed
// health check.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Frostfire25/airplane-project/internal/db"
	"github.com/Frostfire25/airplane-project/pkg/config"
	"github.com/Frostfire25/airplane-project/pkg/coordinates"
	"github.com/Frostfire25/airplane-project/pkg/feed"
	"github.com/Frostfire25/airplane-project/pkg/tracker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffbf00"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245"))

	nearestStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff00"))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type model struct {
	cfg     *config.Store
	tracker *tracker.Tracker
	repo    *db.SightingRepository

	candidates []tracker.Candidate
	rankErr    error
	tracked    int
	dropped    uint64

	sightings    []db.Sighting
	sightingsDay int
	sightingsErr error
}

type tickMsg time.Time

// sightingsMsg carries the latest display-takeover history from Postgres.
type sightingsMsg struct {
	recent []db.Sighting
	day    int
	err    error
}

func tick() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchSightings queries off the Update path so a slow database never
// stalls the UI.
func fetchSightings(repo *db.SightingRepository) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		recent, err := repo.Recent(ctx, 5)
		if err != nil {
			return sightingsMsg{err: err}
		}
		day, err := repo.CountSince(ctx, time.Now().Add(-24*time.Hour))
		return sightingsMsg{recent: recent, day: day, err: err}
	}
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	case tickMsg:
		m.tracker.Sweep(time.Time(msg), m.cfg.StalenessWindow())

		lat, lon := m.cfg.Location()
		m.candidates, m.rankErr = tracker.Rank(
			m.tracker.Snapshot(),
			coordinates.Geographic{Latitude: lat, Longitude: lon},
		)
		m.tracked = m.tracker.Len()
		m.dropped = m.tracker.Dropped()
		if m.repo != nil {
			return m, tea.Batch(tick(), fetchSightings(m.repo))
		}
		return m, tick()
	case sightingsMsg:
		m.sightings = msg.recent
		m.sightingsDay = msg.day
		m.sightingsErr = msg.err
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("SKYWATCH"))
	b.WriteString(fmt.Sprintf("  %d tracked, %d ranked", m.tracked, len(m.candidates)))
	if m.dropped > 0 {
		b.WriteString(fmt.Sprintf(", %d dropped", m.dropped))
	}
	b.WriteString("\n\n")

	if m.rankErr != nil {
		b.WriteString(fmt.Sprintf("ranking error: %v\n", m.rankErr))
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %-10s %9s %5s %9s %7s %7s",
		"ICAO", "CALLSIGN", "DIST(nm)", "DIR", "ALT(ft)", "SPD(kt)", "AGE")))
	b.WriteString("\n")

	if len(m.candidates) == 0 {
		b.WriteString(rowStyle.Render("  no aircraft with position fixes"))
		b.WriteString("\n")
	}

	now := time.Now()
	for i, c := range m.candidates {
		if i >= 20 {
			b.WriteString(footerStyle.Render(fmt.Sprintf("  ... and %d more", len(m.candidates)-20)))
			b.WriteString("\n")
			break
		}
		ac := c.Aircraft
		line := fmt.Sprintf("%-8s %-10s %9.1f %5s %9.0f %7.0f %6.0fs",
			ac.ICAO,
			ac.Callsign,
			c.DistanceNM,
			coordinates.CardinalDirection(c.Bearing),
			ac.Altitude,
			ac.GroundSpeed,
			now.Sub(ac.LastSeen).Seconds(),
		)
		if i == 0 {
			b.WriteString(nearestStyle.Render(line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.repo != nil {
		b.WriteString("\n")
		b.WriteString(m.viewSightings())
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("q: quit"))
	return b.String()
}

// viewSightings renders the recent display takeovers recorded by the
// matrix daemon.
func (m model) viewSightings() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("RECENT SIGHTINGS (%d in 24h)", m.sightingsDay)))
	b.WriteString("\n")

	if m.sightingsErr != nil {
		b.WriteString(rowStyle.Render(fmt.Sprintf("  sightings unavailable: %v", m.sightingsErr)))
		b.WriteString("\n")
		return b.String()
	}
	if len(m.sightings) == 0 {
		b.WriteString(rowStyle.Render("  none recorded yet"))
		b.WriteString("\n")
		return b.String()
	}

	for _, s := range m.sightings {
		route := ""
		if s.Origin != "" && s.Destination != "" {
			route = s.Origin + "-" + s.Destination
		}
		b.WriteString(rowStyle.Render(fmt.Sprintf("  %-8s %-10s %-10s %6.1fnm  %s",
			s.ICAO, s.Callsign, route, s.DistanceNM, s.SeenAt.Local().Format("15:04:05"))))
		b.WriteString("\n")
	}
	return b.String()
}

func main() {
	configPath := flag.String("config", "flightdisplay.conf", "Path to configuration file")
	flag.Parse()

	cfg := config.NewStore(*configPath)
	tr := tracker.New()

	source, err := feed.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open feed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The sightings pane needs the daemon's database; without it the
	// viewer runs on the live feed alone.
	var repo *db.SightingRepository
	if cfg.GetBool(config.KeyDBEnabled, false) {
		database, err := db.Connect(db.ConfigFromStore(cfg))
		if err != nil {
			log.Printf("Sightings unavailable: %v", err)
		} else {
			defer database.Close()
			repo = db.NewSightingRepository(database)
		}
	}

	go func() {
		if err := source.Run(ctx, tr.Ingest); err != nil && ctx.Err() == nil {
			log.Printf("Feed stopped: %v", err)
		}
	}()

	p := tea.NewProgram(model{cfg: cfg, tracker: tr, repo: repo}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
