package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestTTLCacheExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)}
	c := NewWithClock[string, int](clock.Now)

	c.Set("a", 1, time.Minute)
	c.Set("forever", 2, 0)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v; want 1, true", v, ok)
	}

	clock.Advance(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to expire after its TTL")
	}
	if _, ok := c.Get("forever"); !ok {
		t.Error("entries with ttl <= 0 should never expire")
	}

	if n := c.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
	if removed := c.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
}

func TestTTLCacheGetOrCreate(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewWithClock[string, *int](clock.Now)

	calls := 0
	create := func() *int {
		calls++
		v := calls
		return &v
	}

	first, created := c.GetOrCreate("s", time.Hour, create)
	if !created || *first != 1 {
		t.Fatalf("first GetOrCreate = %d, %v; want 1, true", *first, created)
	}

	clock.Advance(59 * time.Minute)
	again, created := c.GetOrCreate("s", time.Hour, create)
	if created || again != first {
		t.Fatal("expected the existing value within its TTL")
	}

	// The previous call refreshed the TTL.
	clock.Advance(59 * time.Minute)
	if _, ok := c.Get("s"); !ok {
		t.Fatal("expected GetOrCreate to refresh the TTL")
	}

	clock.Advance(2 * time.Hour)
	fresh, created := c.GetOrCreate("s", time.Hour, create)
	if !created || *fresh != 2 {
		t.Errorf("after expiry GetOrCreate = %d, %v; want 2, true", *fresh, created)
	}
}

func TestTTLCacheDelete(t *testing.T) {
	c := New[string, string]()
	c.Set("k", "v", time.Hour)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected key to be deleted")
	}
}
