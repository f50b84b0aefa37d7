// display-demo feeds synthetic aircraft through the real tracking and
// scheduling pipeline at an accelerated cadence. Useful for checking a
// display setup without a receiver or network feed.
package main

import (
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Frostfire25/airplane-project/pkg/config"
	"github.com/Frostfire25/airplane-project/pkg/display"
	"github.com/Frostfire25/airplane-project/pkg/matrix"
	"github.com/Frostfire25/airplane-project/pkg/tracker"
)

// demoFlight circles the observer at a fixed radius.
type demoFlight struct {
	icao     string
	callsign string
	radiusNM float64
	altitude float64
	speed    float64
	phase    float64 // Starting angle, radians
	rate     float64 // Radians per second, negative = clockwise
}

var demoFlights = []demoFlight{
	{icao: "a1b2c3", callsign: "UAL123", radiusNM: 8, altitude: 12000, speed: 320, phase: 0, rate: 0.05},
	{icao: "d4e5f6", callsign: "DAL456", radiusNM: 15, altitude: 28000, speed: 440, phase: 2.1, rate: -0.03},
	{icao: "778899", callsign: "N5432W", radiusNM: 4, altitude: 3500, speed: 110, phase: 4.0, rate: 0.09},
}

func main() {
	configPath := flag.String("config", "flightdisplay.conf", "Path to configuration file")
	flag.Parse()

	log.Println("Flight display demo: three synthetic aircraft circling the observer")

	cfg := config.NewStore(*configPath)
	lat, lon := cfg.Location()

	backend, err := matrix.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open matrix backend: %v", err)
	}
	if err := backend.Start(); err != nil {
		log.Fatalf("Failed to start matrix backend: %v", err)
	}
	defer backend.Close()

	tr := tracker.New()
	scheduler := display.NewScheduler(cfg, tr, nil, backend)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	start := time.Now()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigChan:
			log.Printf("Received signal: %v", sig)
			return
		case now := <-ticker.C:
			elapsed := now.Sub(start).Seconds()
			for _, f := range demoFlights {
				tr.Ingest(f.report(lat, lon, elapsed, now))
			}
			if err := scheduler.Tick(); err != nil {
				log.Printf("Display tick: %v", err)
			}
		}
	}
}

// report places the flight on its circle at the given elapsed time.
func (f demoFlight) report(centerLat, centerLon, elapsed float64, now time.Time) tracker.Report {
	angle := f.phase + f.rate*elapsed

	// One degree of latitude is about 60 nm; longitude shrinks with
	// the cosine of latitude
	dLat := f.radiusNM / 60.0 * math.Cos(angle)
	dLon := f.radiusNM / 60.0 * math.Sin(angle) / math.Cos(centerLat*math.Pi/180)

	lat := centerLat + dLat
	lon := centerLon + dLon
	track := math.Mod(angle*180/math.Pi+90, 360)
	if track < 0 {
		track += 360
	}

	cs := f.callsign
	alt := f.altitude
	gs := f.speed
	return tracker.Report{
		ICAO:      f.icao,
		Timestamp: now,
		Callsign:  &cs,
		Latitude:  &lat,
		Longitude: &lon,
		Altitude:  &alt,
		GroundSpeed: &gs,
		Track:       &track,
	}
}
