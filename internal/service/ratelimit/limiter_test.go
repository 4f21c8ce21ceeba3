package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterPerKeyBurst(t *testing.T) {
	l := New(1, 3, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should pass", i)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("burst exhausted, request should be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatalf("other keys have their own bucket")
	}

	now = now.Add(1100 * time.Millisecond)
	if !l.Allow("10.0.0.1") {
		t.Fatalf("token should refill after a second")
	}
}

func TestLimiterSweep(t *testing.T) {
	l := New(5, 5, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.Allow("a")
	now = now.Add(2 * time.Minute)
	l.Allow("b")
	if n := l.Sweep(); n != 1 || l.Len() != 1 {
		t.Fatalf("expected one idle key removed, got %d (len %d)", n, l.Len())
	}
}
