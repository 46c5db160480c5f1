package cache

import (
	"testing"
	"time"
)

// fixedClock lets tests step time manually.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New(ttl)
	c.now = clock.now
	return c, clock
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t, 5*time.Minute)

	c.Set("k", "v")

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "v" {
		t.Errorf("expected v, got %v", got)
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c, _ := newTestCache(t, 5*time.Minute)

	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss")
	}
}

func TestCache_ExpiresAtTTLBoundary(t *testing.T) {
	c, clock := newTestCache(t, 5*time.Minute)
	c.Set("k", "v")

	clock.advance(5*time.Minute - time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit just before TTL")
	}

	clock.advance(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss at exactly TTL")
	}

	// Expired entry is deleted on read.
	if c.Len() != 0 {
		t.Errorf("expected expired entry deleted, len=%d", c.Len())
	}
}

func TestCache_OverwriteResetsExpiry(t *testing.T) {
	c, clock := newTestCache(t, time.Minute)
	c.Set("k", "old")

	clock.advance(50 * time.Second)
	c.Set("k", "new")

	clock.advance(30 * time.Second)
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit after overwrite reset the expiry")
	}
	if got != "new" {
		t.Errorf("expected new value, got %v", got)
	}
}

func TestCache_ZeroTTLDisables(t *testing.T) {
	c, _ := newTestCache(t, 0)

	c.Set("k", "v")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss with caching disabled")
	}
	if c.Len() != 0 {
		t.Errorf("expected no stored entries, len=%d", c.Len())
	}
}

func TestCache_Clear(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected empty cache, len=%d", c.Len())
	}
}

func TestCache_SweepDeletesOnlyExpired(t *testing.T) {
	c, clock := newTestCache(t, time.Minute)
	c.Set("old", 1)

	clock.advance(30 * time.Second)
	c.Set("fresh", 2)

	clock.advance(30 * time.Second)
	c.sweep()

	if c.Len() != 1 {
		t.Fatalf("expected 1 entry after sweep, got %d", c.Len())
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("expected fresh entry to survive sweep")
	}
}

func TestCache_StartCleanupStopIsIdempotent(t *testing.T) {
	c := New(time.Minute)

	stop := c.StartCleanup(10 * time.Millisecond)
	stop()
	stop() // second call must not panic
}
