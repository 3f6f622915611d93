package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.WaitURL(ctx, "http://example.com/chart.txt"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different host should also work
	if err := limiter.WaitURL(ctx, "http://charts.example.org"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	if err := limiter.WaitURL(ctx, "::invalid"); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	start := time.Now()
	if err := limiter.WaitWithDelay(ctx, "example.com", 50*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}

	if d := time.Since(start); d < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", d)
	}
}

func TestLimiter_WaitWithDelay_Cancelled(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.WaitWithDelay(ctx, "example.com", time.Second); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("203.0.113.7") {
		t.Error("first request should pass")
	}
	if limiter.Allow("203.0.113.7") {
		t.Error("expected allow to fail (exhausted tokens)")
	}
	if !limiter.Allow("198.51.100.2") {
		t.Error("expected allow for other client")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(0, 1)

	for i := 0; i < 100; i++ {
		if !limiter.Allow("client") {
			t.Fatalf("request %d rejected with limiting disabled", i)
		}
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetRate("slow.example", 0.1, 1)

	if !limiter.Allow("slow.example") {
		t.Error("first request should pass")
	}
	if limiter.Allow("slow.example") {
		t.Error("second request should fail")
	}
	if !limiter.Allow("fast.example") {
		t.Error("other host should pass")
	}
}

func TestLimiter_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewLimiter(10, 10)
	limiter.now = func() time.Time { return now }

	limiter.Allow("old")
	limiter.SetRate("pinned", 1, 1)
	now = now.Add(10 * time.Minute)
	limiter.Allow("fresh")

	if removed := limiter.Sweep(5 * time.Minute); removed != 1 {
		t.Errorf("expected 1 swept key, got %d", removed)
	}
	if limiter.Len() != 2 {
		t.Errorf("expected 2 remaining keys, got %d", limiter.Len())
	}
}

func TestHostKey(t *testing.T) {
	host, err := HostKey("http://example.com:8080/foo")
	if err != nil {
		t.Fatalf("HostKey failed: %v", err)
	}
	if host != "example.com:8080" {
		t.Errorf("expected example.com:8080, got %s", host)
	}

	if _, err := HostKey("::invalid"); err == nil {
		t.Errorf("expected error for invalid URL")
	}
}
