// Package retry provides a bounded retry loop with exponential backoff for
// control commands that fail transiently.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aatumaykin/nexsched/internal/logger"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = 200 * time.Millisecond
	defaultMaxDelay     = 2 * time.Second
)

// Config represents retry configuration.
type Config struct {
	MaxAttempts    int                  // Maximum number of attempts (default: 3)
	InitialBackoff time.Duration        // Initial backoff duration (default: 200ms)
	MaxBackoff     time.Duration        // Maximum backoff duration (default: 2s)
	Retryable      func(err error) bool // Classifier (default: IsRetryable)
	Logger         *logger.Logger
}

// Do executes fn until it succeeds, returns a non-retryable error, or the
// attempts run out. Context cancellation is checked between attempts.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialDelay
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxDelay
	}
	if cfg.Retryable == nil {
		cfg.Retryable = IsRetryable
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				log.Debug("retry succeeded", logger.Field{Key: "attempt", Value: attempt + 1})
			}
			return nil
		}
		lastErr = err

		if !cfg.Retryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		backoff := calculateBackoff(attempt, cfg.InitialBackoff, cfg.MaxBackoff)
		log.Debug("retryable error, backing off",
			logger.Field{Key: "attempt", Value: attempt + 1},
			logger.Field{Key: "max_attempts", Value: cfg.MaxAttempts},
			logger.Field{Key: "backoff", Value: backoff.String()},
			logger.Field{Key: "error", Value: err.Error()})

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if cfg.MaxAttempts == 1 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed: %w", cfg.MaxAttempts, lastErr)
}

// IsRetryable reports whether err looks transient. launchctl reports a busy
// or half-torn-down job as an I/O error and succeeds when asked again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errLower := strings.ToLower(err.Error())

	if strings.Contains(errLower, "context canceled") {
		return false
	}

	retryablePatterns := []string{
		"input/output error",
		"resource temporarily unavailable",
		"operation now in progress",
		"timed out",
		"timeout",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errLower, pattern) {
			return true
		}
	}

	return false
}

// calculateBackoff returns 2^attempt * initial, capped at max.
func calculateBackoff(attempt int, initial, max time.Duration) time.Duration {
	backoff := time.Duration(1<<uint(attempt)) * initial
	if backoff > max {
		return max
	}
	return backoff
}
