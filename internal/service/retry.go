package service

import (
	"context"
	"time"

	"classbook/internal/metrics"
	"classbook/internal/transport"
)

// RetryConfig bounds the retry loop services wrap around repository calls.
type RetryConfig struct {
	Attempts  int
	BaseDelay time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	return c
}

// retryCall runs fn up to cfg.Attempts times with linear backoff
// (attempt × BaseDelay) between failures. Only transient failures are
// repeated: network errors and 5xx/429 responses. Writes reach this path
// exclusively through idempotency-keyed requests, so a repeat cannot
// duplicate server-side effects. The last error is surfaced when every
// attempt fails.
func retryCall[T any](ctx context.Context, cfg RetryConfig, collector *metrics.Collector, fn func() (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if attempt > 1 {
			collector.RecordRetry()
			delay := time.Duration(attempt-1) * cfg.BaseDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, &transport.UnexpectedError{Message: "cancelled while retrying", Err: ctx.Err()}
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !transport.Retryable(err) {
			return zero, err
		}
	}
	return zero, lastErr
}
