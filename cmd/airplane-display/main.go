// airplane-display is the flight display daemon. It consumes decoded
// transponder reports, tracks nearby aircraft, and renders the nearest
// one to the configured matrix backend, hot-reloading its configuration
// file the whole time.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Frostfire25/airplane-project/internal/db"
	"github.com/Frostfire25/airplane-project/pkg/config"
	"github.com/Frostfire25/airplane-project/pkg/display"
	"github.com/Frostfire25/airplane-project/pkg/feed"
	"github.com/Frostfire25/airplane-project/pkg/matrix"
	"github.com/Frostfire25/airplane-project/pkg/routes"
	"github.com/Frostfire25/airplane-project/pkg/tracker"
)

func main() {
	configPath := flag.String("config", "flightdisplay.conf", "Path to configuration file")
	flag.Parse()

	// Errors surface here, after run's defers have torn the display
	// backend down and restored the terminal.
	if err := run(*configPath); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(configPath string) error {
	log.Println("===========================================")
	log.Println("  Airplane Matrix Display")
	log.Println("===========================================")

	cfg := config.NewStore(configPath)
	lat, lon := cfg.Location()
	log.Printf("Configuration: %s", configPath)
	log.Printf("Observer: %.4f, %.4f (%s)", lat, lon, cfg.Timezone())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Display backend
	backend, err := matrix.Open(cfg)
	if err != nil {
		return fmt.Errorf("open matrix backend: %w", err)
	}
	if err := backend.Start(); err != nil {
		return fmt.Errorf("start matrix backend: %w", err)
	}
	defer backend.Close()
	log.Println("✓ Matrix backend started")

	// Route enrichment
	var enricher display.Enricher
	if cfg.GetBool(config.KeyRouteLookupEnabled, true) {
		scraper := routes.NewScraper(routes.ScraperConfig{
			RequestsPerMinute: cfg.GetInt(config.KeyRouteReqsPerMinute, config.DefaultRouteReqPerMin),
		})
		e := routes.NewEnricher(scraper, routes.Config{
			TTL:         cfg.GetSeconds(config.KeyRouteTTLSeconds, config.DefaultRouteTTL),
			NegativeTTL: cfg.GetSeconds(config.KeyRouteNegTTLSeconds, config.DefaultRouteNegTTL),
		})
		defer e.Close()
		enricher = e
		log.Println("✓ Route lookup enabled")
	}

	tr := tracker.New()
	scheduler := display.NewScheduler(cfg, tr, enricher, backend)

	// Sighting persistence
	var repo *db.SightingRepository
	var database *db.DB
	if cfg.GetBool(config.KeyDBEnabled, false) {
		log.Println("Connecting to database...")
		database, err = db.ReconnectWithRetry(ctx, db.ConfigFromStore(cfg), 5, time.Second)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer database.Close()
		if err := database.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
		repo = db.NewSightingRepository(database)
		log.Println("✓ Database connected")

		scheduler.OnNewSubject = func(c tracker.Candidate, r routes.Result) {
			go recordSighting(ctx, repo, c, r)
		}
	}

	// Feed
	source, err := feed.Open(cfg)
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in feed goroutine: %v", r)
			}
		}()
		if err := source.Run(ctx, tr.Ingest); err != nil && ctx.Err() == nil {
			log.Printf("Feed stopped: %v", err)
		}
	}()
	log.Printf("✓ Feed started (%s)", cfg.GetString(config.KeyFeedSource, config.DefaultFeedSource))

	// Coarse periodic jobs. SkipIfStillRunning keeps a slow database
	// prune from stacking up behind itself.
	jobs := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	jobs.Schedule(cron.Every(cfg.SweepInterval()), cron.FuncJob(func() {
		removed := tr.Sweep(time.Now(), cfg.StalenessWindow())
		if removed > 0 {
			log.Printf("Swept %d stale aircraft (%d tracked, %d reports dropped)",
				removed, tr.Len(), tr.Dropped())
		}
	}))
	if database != nil {
		jobs.Schedule(cron.Every(time.Hour), cron.FuncJob(func() {
			if n, err := database.Prune(ctx, 30*24*time.Hour); err != nil {
				log.Printf("Failed to prune sightings: %v", err)
			} else if n > 0 {
				log.Printf("Pruned %d old sightings", n)
			}
		}))
	}
	jobs.Start()
	defer jobs.Stop()

	// Display tick loop. The interval is re-read every cycle so a
	// config edit takes effect on the next tick.
	go func() {
		for {
			runTick(scheduler)
			select {
			case <-ctx.Done():
				return
			case <-time.After(cfg.DisplayTick()):
			}
		}
	}()

	log.Println("===========================================")
	log.Println("  Display running, press Ctrl+C to stop")
	log.Println("===========================================")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if quitter, ok := backend.(matrix.Quitter); ok {
		select {
		case sig := <-sigChan:
			log.Printf("Received signal: %v", sig)
		case <-quitter.Done():
			log.Println("Quit requested from display")
		}
	} else {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
	}

	cancel()
	log.Println("✓ Display stopped")
	return nil
}

// runTick executes one scheduling cycle; a panic or error skips to the
// next tick instead of killing the daemon.
func runTick(scheduler *display.Scheduler) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in display tick: %v", r)
		}
	}()
	if err := scheduler.Tick(); err != nil {
		log.Printf("Display tick: %v", err)
	}
}

func recordSighting(ctx context.Context, repo *db.SightingRepository, c tracker.Candidate, r routes.Result) {
	sighting := db.Sighting{
		ICAO:       c.Aircraft.ICAO,
		Callsign:   c.Aircraft.Callsign,
		Latitude:   c.Aircraft.Position.Latitude,
		Longitude:  c.Aircraft.Position.Longitude,
		AltitudeFt: c.Aircraft.Altitude,
		SpeedKt:    c.Aircraft.GroundSpeed,
		DistanceNM: c.DistanceNM,
		BearingDeg: c.Bearing,
		SeenAt:     time.Now(),
	}
	if r.Status == routes.StatusFound {
		sighting.Origin = r.Route.Origin
		sighting.Destination = r.Route.Destination
	}

	err := db.WithRetry(func() error {
		_, err := repo.Record(ctx, sighting)
		return err
	}, 2)
	if err != nil {
		log.Printf("Failed to record sighting for %s: %v", sighting.ICAO, err)
	}
}
