package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the flight status page root
	DefaultBaseURL = "https://www.flightaware.com/live/flight"

	// DefaultTimeout for page fetches
	DefaultTimeout = 15 * time.Second

	// bootstrapMarker precedes the embedded JSON state on each flight page
	bootstrapMarker = "var trackpollBootstrap = "
)

// Scraper fetches origin/destination for a callsign by reading the
// public flight status page. This is a best-effort source; page layout
// changes surface as lookup failures, never as crashes.
type Scraper struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// ScraperConfig configures the scraper.
type ScraperConfig struct {
	// BaseURL overrides the flight page root, useful in tests
	BaseURL string

	// RequestsPerMinute bounds outbound page fetches (burst of 1)
	RequestsPerMinute int

	// Timeout for each page fetch
	Timeout time.Duration
}

// NewScraper creates a rate-limited page scraper.
func NewScraper(cfg ScraperConfig) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 6
	}

	perSecond := float64(cfg.RequestsPerMinute) / 60.0
	return &Scraper{
		baseURL:     cfg.BaseURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Fetch implements Fetcher. Returns found=false when the page exists but
// carries no usable origin/destination.
func (s *Scraper) Fetch(ctx context.Context, callsign string) (Route, bool, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return Route{}, false, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/%s", s.baseURL, callsign)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return Route{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Route{}, false, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return Route{}, false, nil
	}
	if resp.StatusCode != 200 {
		return Route{}, false, fmt.Errorf("page fetch %d for %s", resp.StatusCode, callsign)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Route{}, false, fmt.Errorf("parse page: %w", err)
	}

	return parseRoute(doc)
}

// parseRoute extracts the origin/destination pair from the JSON state
// block embedded in the page's scripts.
func parseRoute(doc *goquery.Document) (Route, bool, error) {
	var blob string
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		idx := strings.Index(text, bootstrapMarker)
		if idx < 0 {
			return true
		}
		rest := text[idx+len(bootstrapMarker):]
		if end := strings.Index(rest, ";"); end >= 0 {
			rest = rest[:end]
		}
		blob = strings.TrimSpace(rest)
		return false
	})
	if blob == "" {
		return Route{}, false, nil
	}

	// Only the airport codes matter; everything else in the state blob
	// is ignored.
	var state struct {
		Flights map[string]struct {
			Origin struct {
				ICAO string `json:"icao"`
			} `json:"origin"`
			Destination struct {
				ICAO string `json:"icao"`
			} `json:"destination"`
		} `json:"flights"`
	}
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return Route{}, false, fmt.Errorf("parse flight state: %w", err)
	}

	for _, flight := range state.Flights {
		if flight.Origin.ICAO != "" && flight.Destination.ICAO != "" {
			return Route{
				Origin:      flight.Origin.ICAO,
				Destination: flight.Destination.ICAO,
			}, true, nil
		}
	}
	return Route{}, false, nil
}
