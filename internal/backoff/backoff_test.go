package backoff

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDelay_GrowthAndCap(t *testing.T) {
	p := Policy{MaxAttempts: 10, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}

	tests := []struct {
		retry int
		want  time.Duration
	}{
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{2, 800 * time.Millisecond},
		{4, 3200 * time.Millisecond},
		{5, 5 * time.Second}, // 6.4s capped
		{9, 5 * time.Second},
		{40, 5 * time.Second}, // shift clamp must not overflow
	}
	for _, tt := range tests {
		if got := p.Delay(tt.retry); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.retry, got, tt.want)
		}
	}
}

func TestDelay_NoCap(t *testing.T) {
	p := Policy{BaseDelay: time.Second}
	if got := p.Delay(3); got != 8*time.Second {
		t.Errorf("Delay(3) = %v, want 8s", got)
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	calls := 0
	err := Retry(context.Background(), p, nil, func() error {
		calls++
		if calls < 3 {
			return errors.New("busy")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 4, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	sentinel := errors.New("database is locked")
	calls := 0
	err := Retry(context.Background(), p, nil, func() error {
		calls++
		return sentinel
	})
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("exhausted error should wrap the last failure, got %v", err)
	}
}

func TestRetry_NonRetryableShortCircuits(t *testing.T) {
	p := Policy{MaxAttempts: 10, BaseDelay: time.Millisecond}
	fatal := errors.New("constraint violation")
	calls := 0
	err := Retry(context.Background(), p, func(err error) bool {
		return err.Error() == "busy"
	}, func() error {
		calls++
		return fatal
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, fatal) {
		t.Errorf("err = %v, want the non-retryable error unwrapped", err)
	}
}

func TestRetry_ContextCancelStopsWaiting(t *testing.T) {
	p := Policy{MaxAttempts: 10, BaseDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, p, nil, func() error {
			calls++
			return errors.New("busy")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Retry did not return after cancel")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 before the first backoff", calls)
	}
}
