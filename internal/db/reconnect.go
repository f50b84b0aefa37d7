package db

import (
	"context"
	"log"
	"strings"
	"time"
)

// ReconnectWithRetry attempts to connect with exponential backoff.
// maxRetries of 0 retries forever.
func ReconnectWithRetry(ctx context.Context, cfg Config, maxRetries int, initialDelay time.Duration) (*DB, error) {
	delay := initialDelay
	attempt := 0

	for {
		attempt++

		db, err := Connect(cfg)
		if err == nil {
			return db, nil
		}

		if maxRetries > 0 && attempt >= maxRetries {
			log.Printf("Failed to connect to database after %d attempts", attempt)
			return nil, err
		}

		log.Printf("Database connection failed: %v (retry in %v)", err, delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > 60*time.Second {
			delay = 60 * time.Second
		}
	}
}

// WithRetry executes a database operation, retrying on connection-class
// failures. Non-connection errors return immediately.
func WithRetry(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isConnectionError(err) {
			return err
		}

		if attempt < maxRetries {
			waitTime := time.Duration(attempt+1) * time.Second
			log.Printf("Database operation failed (attempt %d/%d): %v (retry in %v)",
				attempt+1, maxRetries+1, err, waitTime)
			time.Sleep(waitTime)
		}
	}
	return lastErr
}

func isConnectionError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"broken pipe",
		"no connection",
		"connection reset",
		"eof",
		"timeout",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
