package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"classbook/internal/transport"
)

func TestRetryCallSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := retryCall(context.Background(), RetryConfig{Attempts: 3, BaseDelay: time.Millisecond}, nil, func() (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("retryCall: %v", err)
	}
	if got != 42 || calls != 1 {
		t.Fatalf("got %d after %d calls", got, calls)
	}
}

func TestRetryCallRepeatsTransientFailures(t *testing.T) {
	calls := 0
	got, err := retryCall(context.Background(), RetryConfig{Attempts: 3, BaseDelay: time.Millisecond}, nil, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &transport.NetworkError{Message: "down"}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("retryCall: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Fatalf("got %q after %d calls", got, calls)
	}
}

func TestRetryCallExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := retryCall(context.Background(), RetryConfig{Attempts: 3, BaseDelay: time.Millisecond}, nil, func() (int, error) {
		calls++
		return 0, &transport.APIError{Status: 503, Message: "unavailable"}
	})
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	var apiErr *transport.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 503 {
		t.Fatalf("err = %v", err)
	}
}

func TestRetryCallStopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := retryCall(context.Background(), RetryConfig{Attempts: 3, BaseDelay: time.Millisecond}, nil, func() (int, error) {
		calls++
		return 0, &transport.APIError{Status: 400, Message: "bad request"}
	})
	if calls != 1 {
		t.Fatalf("permanent failure retried, calls = %d", calls)
	}
	var apiErr *transport.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
}

func TestRetryCallLinearDelays(t *testing.T) {
	base := 20 * time.Millisecond
	calls := 0
	start := time.Now()
	_, _ = retryCall(context.Background(), RetryConfig{Attempts: 3, BaseDelay: base}, nil, func() (int, error) {
		calls++
		return 0, &transport.NetworkError{Message: "down"}
	})
	elapsed := time.Since(start)

	// delays are base then 2×base, 60ms total
	if want := 3 * base; elapsed < want {
		t.Fatalf("elapsed %v, want at least %v", elapsed, want)
	}
	if calls != 3 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestRetryCallHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := retryCall(ctx, RetryConfig{Attempts: 3, BaseDelay: time.Minute}, nil, func() (int, error) {
			calls++
			return 0, &transport.NetworkError{Message: "down"}
		})
		var unexpected *transport.UnexpectedError
		if !errors.As(err, &unexpected) {
			t.Errorf("err = %v", err)
		}
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	<-done

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetryConfigDefaults(t *testing.T) {
	cfg := RetryConfig{}.withDefaults()
	if cfg.Attempts != 3 || cfg.BaseDelay != time.Second {
		t.Fatalf("defaults = %+v", cfg)
	}
}
