package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(ttl time.Duration, capacity int) (*TTLCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
	return NewTTLWithClock[string](ttl, capacity, clock.now), clock
}

func TestTTLCache_GetSet(t *testing.T) {
	c, _ := newTestCache(time.Minute, 10)

	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache should miss")
	}

	c.Set("a", "one")
	if v, ok := c.Get("a"); !ok || v != "one" {
		t.Errorf("got (%q, %v), want (one, true)", v, ok)
	}

	c.Set("a", "two")
	if v, _ := c.Get("a"); v != "two" {
		t.Errorf("overwrite failed, got %q", v)
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
}

func TestTTLCache_Expiry(t *testing.T) {
	c, clock := newTestCache(time.Minute, 10)
	c.Set("a", "one")

	clock.advance(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Error("entry expired early")
	}

	clock.advance(2 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, len = %d", c.Len())
	}
}

func TestTTLCache_SetRefreshesExpiry(t *testing.T) {
	c, clock := newTestCache(time.Minute, 10)
	c.Set("a", "one")

	clock.advance(45 * time.Second)
	c.Set("a", "one")

	clock.advance(45 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Error("rewrite should have refreshed the TTL")
	}
}

func TestTTLCache_CapacityEvictsLRU(t *testing.T) {
	c, _ := newTestCache(time.Hour, 2)
	c.Set("a", "one")
	c.Set("b", "two")

	// Touch a so b becomes the eviction candidate.
	c.Get("a")
	c.Set("c", "three")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be present")
	}
	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}
}

func TestTTLCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(time.Hour, 10)
	c.Set("a", "one")
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("invalidated entry still present")
	}
	// Invalidating a missing key is a no-op.
	c.Invalidate("ghost")
}
