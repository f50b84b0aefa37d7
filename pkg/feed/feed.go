// Package feed supplies decoded transponder reports to the tracker.
// Two sources exist: a TCP stream of BaseStation (SBS) formatted
// messages from a local receiver, and a periodic HTTP point query
// against an aggregator API. Both push tracker.Report values into a
// caller-supplied sink and reconnect on their own.
package feed

import (
	"context"
	"fmt"

	"github.com/Frostfire25/airplane-project/pkg/config"
	"github.com/Frostfire25/airplane-project/pkg/tracker"
)

// Sink receives each decoded report. Implementations must be safe for
// concurrent use; the tracker's Ingest qualifies.
type Sink func(tracker.Report)

// Source is a running feed of decoded reports. Run blocks until the
// context is cancelled, reconnecting internally on transient failures.
type Source interface {
	Run(ctx context.Context, sink Sink) error
}

// Open creates the source named by FEED_SOURCE.
func Open(cfg *config.Store) (Source, error) {
	switch name := cfg.GetString(config.KeyFeedSource, config.DefaultFeedSource); name {
	case "sbs":
		return NewSBSStream(cfg), nil
	case "api":
		return NewPoller(cfg), nil
	default:
		return nil, fmt.Errorf("unknown feed source %q", name)
	}
}
