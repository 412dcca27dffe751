package ratelimit

import (
	"testing"
	"time"
)

func TestAllowRefill(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return now }

	capacity, refill := PerWindow(2, time.Second)
	if !l.Allow("k", capacity, refill) || !l.Allow("k", capacity, refill) {
		t.Fatalf("expected first two requests to pass")
	}
	if l.Allow("k", capacity, refill) {
		t.Fatalf("expected third request to be limited")
	}
	if !l.Allow("other", capacity, refill) {
		t.Fatalf("keys must not share buckets")
	}

	now = now.Add(500 * time.Millisecond)
	if !l.Allow("k", capacity, refill) {
		t.Fatalf("expected one token after refill")
	}
}

func TestPerWindowZero(t *testing.T) {
	c, r := PerWindow(0, time.Minute)
	if c != 0 || r != 0 {
		t.Fatalf("unexpected %v %v", c, r)
	}
}

func TestForget(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return now }
	l.Allow("a", 1, 1)
	now = now.Add(time.Hour)
	l.Allow("b", 1, 1)
	if n := l.Forget(time.Minute); n != 1 {
		t.Fatalf("forgot %d buckets, want 1", n)
	}
}
