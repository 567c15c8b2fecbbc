// Package backoff provides a small bounded retry helper for writers that
// contend on shared resources.
package backoff

import (
	"context"
	"fmt"
	"time"
)

// Policy describes a bounded exponential backoff schedule.
type Policy struct {
	MaxAttempts int           // total attempts including the first
	BaseDelay   time.Duration // delay before the second attempt
	MaxDelay    time.Duration // cap on a single delay
}

// Delay returns the sleep before retry n (0-based): BaseDelay * 2^n,
// capped at MaxDelay.
func (p Policy) Delay(retry int) time.Duration {
	if retry > 30 {
		retry = 30
	}
	d := p.BaseDelay << uint(retry)
	if p.MaxDelay > 0 && (d > p.MaxDelay || d <= 0) {
		d = p.MaxDelay
	}
	return d
}

// Retry runs fn until it succeeds, returns a non-retryable error, the
// policy is exhausted, or ctx is cancelled. retryable decides whether an
// error deserves another attempt; nil means every error does.
func Retry(ctx context.Context, p Policy, retryable func(error) bool, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Delay(attempt - 1)):
			}
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("all %d attempts exhausted: %w", p.MaxAttempts, lastErr)
}
