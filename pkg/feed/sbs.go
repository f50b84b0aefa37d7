package feed

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Frostfire25/airplane-project/pkg/config"
	"github.com/Frostfire25/airplane-project/pkg/tracker"
)

// SBS message field indexes. One CSV line per message:
// MSG,<type>,<session>,<aircraft>,<hexident>,<flight>,<dates...>,<callsign>,
// <altitude>,<groundspeed>,<track>,<lat>,<lon>,...
const (
	sbsFieldMsgType     = 1
	sbsFieldHexIdent    = 4
	sbsFieldCallsign    = 10
	sbsFieldAltitude    = 11
	sbsFieldGroundSpeed = 12
	sbsFieldTrack       = 13
	sbsFieldLatitude    = 14
	sbsFieldLongitude   = 15
)

// SBSStream reads BaseStation formatted messages from a TCP receiver
// (dump1090 style, typically port 30003) and converts each into a
// decoded report. The connection reconnects with exponential backoff;
// host and port are re-read from configuration on every attempt so an
// endpoint change takes effect at the next reconnect.
type SBSStream struct {
	cfg     *config.Store
	backoff BackoffConfig
	now     func() time.Time
}

// NewSBSStream creates an SBS stream source.
func NewSBSStream(cfg *config.Store) *SBSStream {
	return &SBSStream{
		cfg:     cfg,
		backoff: DefaultBackoffConfig(),
		now:     time.Now,
	}
}

// Run connects and consumes messages until the context is cancelled.
func (s *SBSStream) Run(ctx context.Context, sink Sink) error {
	bo := newBackoff(s.backoff)

	for {
		addr := net.JoinHostPort(
			s.cfg.GetString(config.KeyFeedHost, config.DefaultFeedHost),
			strconv.Itoa(s.cfg.GetInt(config.KeyFeedPort, config.DefaultFeedPort)),
		)

		err := s.consume(ctx, addr, sink, bo)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("sbs feed %s: %v; reconnecting", addr, err)
		if err := bo.wait(ctx); err != nil {
			return err
		}
	}
}

// consume holds one connection open and feeds its lines to the sink.
func (s *SBSStream) consume(ctx context.Context, addr string, sink Sink, bo *backoff) error {
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	// Unblock the blocking read when the context ends. The watcher must
	// not outlive this connection attempt.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		bo.reset()
		if report, ok := s.parseLine(scanner.Text()); ok {
			sink(report)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	return fmt.Errorf("connection closed")
}

// parseLine decodes one SBS line into a report. Lines that are not MSG
// records, or carry no usable fields, are skipped (ok=false). Field
// validation beyond shape belongs to the tracker.
func (s *SBSStream) parseLine(line string) (tracker.Report, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < sbsFieldLongitude+1 || fields[0] != "MSG" {
		return tracker.Report{}, false
	}

	icao := strings.TrimSpace(fields[sbsFieldHexIdent])
	if icao == "" {
		return tracker.Report{}, false
	}

	report := tracker.Report{ICAO: icao, Timestamp: s.now()}

	if cs := strings.TrimSpace(fields[sbsFieldCallsign]); cs != "" {
		report.Callsign = &cs
	}
	if alt, ok := sbsFloat(fields[sbsFieldAltitude]); ok {
		report.Altitude = &alt
	}
	if gs, ok := sbsFloat(fields[sbsFieldGroundSpeed]); ok {
		report.GroundSpeed = &gs
	}
	if trk, ok := sbsFloat(fields[sbsFieldTrack]); ok {
		report.Track = &trk
	}
	lat, latOK := sbsFloat(fields[sbsFieldLatitude])
	lon, lonOK := sbsFloat(fields[sbsFieldLongitude])
	if latOK && lonOK {
		report.Latitude = &lat
		report.Longitude = &lon
	}

	// An identity-only message still refreshes last-seen
	return report, true
}

func sbsFloat(field string) (float64, bool) {
	s := strings.TrimSpace(field)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
