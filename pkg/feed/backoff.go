package feed

import (
	"context"
	"time"
)

// BackoffConfig configures reconnect behavior with exponential backoff.
type BackoffConfig struct {
	// InitialDelay is the first reconnect delay (default: 1 second)
	InitialDelay time.Duration

	// MaxDelay caps the backoff (default: 60 seconds)
	MaxDelay time.Duration

	// Multiplier grows the delay between attempts (default: 2.0)
	Multiplier float64
}

// DefaultBackoffConfig returns sensible defaults for reconnects.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		InitialDelay: time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
	}
}

// backoff tracks the current reconnect delay. Reset after a healthy
// connection so a brief outage does not inherit a long delay.
type backoff struct {
	cfg   BackoffConfig
	delay time.Duration
}

func newBackoff(cfg BackoffConfig) *backoff {
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = time.Second
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 60 * time.Second
	}
	if cfg.Multiplier == 0 {
		cfg.Multiplier = 2.0
	}
	return &backoff{cfg: cfg, delay: cfg.InitialDelay}
}

// wait sleeps for the current delay (respecting cancellation) and grows
// it for the next attempt.
func (b *backoff) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.delay):
	}

	next := time.Duration(float64(b.delay) * b.cfg.Multiplier)
	if next > b.cfg.MaxDelay {
		next = b.cfg.MaxDelay
	}
	b.delay = next
	return nil
}

func (b *backoff) reset() {
	b.delay = b.cfg.InitialDelay
}
