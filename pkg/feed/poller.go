package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Frostfire25/airplane-project/pkg/config"
	"github.com/Frostfire25/airplane-project/pkg/tracker"
)

// DefaultFeedURL is the aggregator point-query base URL.
const DefaultFeedURL = "https://api.airplanes.live/v2"

// Poller queries an aggregator API for all aircraft around the observer
// on a fixed cadence. Location, radius, and cadence are re-read from
// configuration every cycle. Poll failures log and wait for the next
// tick; the display degrades to its placard on its own once entries
// go stale.
type Poller struct {
	cfg        *config.Store
	httpClient *http.Client
	now        func() time.Time
}

// NewPoller creates an API polling source.
func NewPoller(cfg *config.Store) *Poller {
	return &Poller{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context, sink Sink) error {
	for {
		if reports, err := p.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("api feed: %v", err)
		} else {
			for _, r := range reports {
				sink(r)
			}
		}

		interval := p.cfg.GetSeconds(config.KeyFeedPollSeconds, config.DefaultFeedPollSeconds)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// poll runs one point query and converts the response.
func (p *Poller) poll(ctx context.Context) ([]tracker.Report, error) {
	lat, lon := p.cfg.Location()
	radius := p.cfg.GetFloat(config.KeyFeedRadiusNM, config.DefaultFeedRadiusNM)
	if radius > 250 {
		radius = 250
	}
	base := p.cfg.GetString(config.KeyFeedURL, DefaultFeedURL)

	url := fmt.Sprintf("%s/point/%.4f/%.4f/%.0f", base, lat, lon, radius)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var apiResp pointResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	now := p.now()
	reports := make([]tracker.Report, 0, len(apiResp.Aircraft))
	for _, ac := range apiResp.Aircraft {
		reports = append(reports, ac.toReport(now))
	}
	return reports, nil
}

// pointResponse is the aggregator's point-query JSON shape.
type pointResponse struct {
	// Aircraft is the array of aircraft data
	Aircraft []pointAircraft `json:"ac"`

	// Total number of aircraft
	Total int `json:"total"`
}

// pointAircraft is a single aircraft in the API response. Absent fields
// stay nil and are simply not merged.
type pointAircraft struct {
	// Hex is the ICAO Mode S hex code (e.g., "a12345")
	Hex string `json:"hex"`

	// Flight is the callsign/flight number, space padded
	Flight *string `json:"flight"`

	// Lat/Lon in decimal degrees
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	// AltBaro is barometric altitude in feet; can be the string
	// "ground" instead of a number
	AltBaro interface{} `json:"alt_baro"`

	// Gs is ground speed in knots
	Gs *float64 `json:"gs"`

	// Track is ground track in degrees (0-360)
	Track *float64 `json:"track"`

	// Seen is seconds since the last message
	Seen *float64 `json:"seen"`
}

func (ac pointAircraft) toReport(now time.Time) tracker.Report {
	ts := now
	if ac.Seen != nil {
		ts = now.Add(-time.Duration(*ac.Seen * float64(time.Second)))
	}

	report := tracker.Report{
		ICAO:      ac.Hex,
		Timestamp: ts,
		Latitude:  ac.Lat,
		Longitude: ac.Lon,
		GroundSpeed: ac.Gs,
		Track:       ac.Track,
	}
	if ac.Flight != nil {
		if cs := strings.TrimSpace(*ac.Flight); cs != "" {
			report.Callsign = &cs
		}
	}
	if alt := parseAltitude(ac.AltBaro); alt != nil {
		report.Altitude = alt
	}
	return report
}

// parseAltitude extracts altitude from a field that can be a number or
// the string "ground".
func parseAltitude(val interface{}) *float64 {
	switch v := val.(type) {
	case float64:
		return &v
	case string:
		if v == "ground" {
			zero := 0.0
			return &zero
		}
	}
	return nil
}
