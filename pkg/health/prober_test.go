package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// flakyChecker fails a fixed number of times before succeeding.
type flakyChecker struct {
	failures int32
}

func (c *flakyChecker) Check(_ context.Context) Result {
	if atomic.AddInt32(&c.failures, -1) >= 0 {
		return Result{Healthy: false, Message: "connection refused", CheckedAt: time.Now()}
	}
	return Result{Healthy: true, Message: "ok", CheckedAt: time.Now()}
}

func (c *flakyChecker) Type() CheckType { return CheckTypeTCP }

func TestProberSucceedsAfterRetries(t *testing.T) {
	prober := NewProber(&flakyChecker{failures: 3}, 10*time.Millisecond, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	attempts, err := prober.WaitReady(ctx)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if attempts != 4 {
		t.Errorf("Expected 4 attempts, got %d", attempts)
	}
}

func TestProberTimesOut(t *testing.T) {
	prober := NewProber(&flakyChecker{failures: 1 << 30}, 10*time.Millisecond, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	attempts, err := prober.WaitReady(ctx)
	if err == nil {
		t.Fatal("Expected timeout error")
	}

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected *TimeoutError, got %T", err)
	}
	if timeoutErr.Attempts != attempts || attempts == 0 {
		t.Errorf("Expected recorded attempts %d to match %d and be nonzero", timeoutErr.Attempts, attempts)
	}
	if timeoutErr.LastMessage != "connection refused" {
		t.Errorf("Expected last probe message, got %q", timeoutErr.LastMessage)
	}
}

func TestProberStartPeriodRespectsCancellation(t *testing.T) {
	prober := NewProber(&flakyChecker{}, 10*time.Millisecond, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	attempts, err := prober.WaitReady(ctx)
	if err == nil {
		t.Fatal("Expected timeout during start period")
	}
	if attempts != 0 {
		t.Errorf("Expected no probes during start period, got %d", attempts)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Start period wait did not honor cancellation, took %v", elapsed)
	}
}

func TestProberImmediateSuccess(t *testing.T) {
	prober := NewProber(&flakyChecker{failures: 0}, time.Minute, 0)

	// Interval is long; a ready candidate must not wait for a tick
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	attempts, err := prober.WaitReady(ctx)
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected exactly one attempt, got %d", attempts)
	}
}
