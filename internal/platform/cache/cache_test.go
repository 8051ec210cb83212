package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New(10)
	c.Set("drug_interaction_aspirin_warfarin", "result", time.Hour)

	v, ok := c.Get("drug_interaction_aspirin_warfarin")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.(string) != "result" {
		t.Errorf("expected %q, got %v", "result", v)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	clock := &now
	c := NewWithClock(10, func() time.Time { return *clock })

	c.Set("k", 1, time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	later := now.Add(2 * time.Minute)
	clock = &later
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after expiry")
	}
}

func TestExpiredEntryPurgedOnWrite(t *testing.T) {
	now := time.Now()
	clock := &now
	c := NewWithClock(10, func() time.Time { return *clock })

	c.Set("stale", 1, time.Minute)
	later := now.Add(2 * time.Minute)
	clock = &later
	c.Set("fresh", 2, time.Minute)

	if c.Len() != 1 {
		t.Errorf("expected stale entry purged on write, len=%d", c.Len())
	}
}

func TestFIFOEviction(t *testing.T) {
	c := New(3)
	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), i, time.Hour)
	}

	if c.Len() != 3 {
		t.Fatalf("expected len 3 after eviction, got %d", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("expected oldest entry k0 evicted")
	}
	for i := 1; i < 4; i++ {
		if _, ok := c.Get(fmt.Sprintf("k%d", i)); !ok {
			t.Errorf("expected k%d retained", i)
		}
	}
}

func TestOverwriteDoesNotGrow(t *testing.T) {
	c := New(2)
	c.Set("a", 1, time.Hour)
	c.Set("a", 2, time.Hour)
	c.Set("b", 3, time.Hour)

	if c.Len() != 2 {
		t.Fatalf("expected len 2, got %d", c.Len())
	}
	v, _ := c.Get("a")
	if v.(int) != 2 {
		t.Errorf("expected overwritten value 2, got %v", v)
	}
}

func TestFlushAll(t *testing.T) {
	c := New(10)
	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)
	c.FlushAll()

	if c.Len() != 0 {
		t.Errorf("expected empty cache after FlushAll, len=%d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after FlushAll")
	}
}
