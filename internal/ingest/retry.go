package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
)

// retry runs op up to attempts times, doubling the delay from base after each
// retryable failure. Errors that are not apperr infrastructure errors stop
// the loop immediately.
func retry(ctx context.Context, attempts int, base time.Duration, op func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := base
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(attempt)
		if lastErr == nil || !apperr.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		slog.Debug("retryable failure", "attempt", attempt, "max_attempts", attempts, "error", lastErr)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return lastErr
}
