package util

import (
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewWithConfig(CacheConfig[string, int]{Capacity: 2})
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}

	c.Put("a", 1, 1)
	c.Put("b", 2, 1)

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}

	c.Put("c", 3, 1)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("a = %d, %v; want 1, true", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("c = %d, %v; want 3, true", v, ok)
	}
}

func TestLRUWeightBound(t *testing.T) {
	c, err := NewWithConfig(CacheConfig[string, string]{MaxWeight: 10})
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}

	c.Put("small", "x", 3)
	c.Put("big", "y", 9)

	if _, ok := c.Get("small"); ok {
		t.Error("small should have been evicted to fit big")
	}
	if c.Weight() != 9 {
		t.Errorf("Weight() = %d, want 9", c.Weight())
	}
}

func TestLRUTTLExpiry(t *testing.T) {
	c, err := NewWithConfig(CacheConfig[string, int]{Capacity: 4, TTL: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}

	c.Put("k", 7, 1)
	if v, ok := c.Get("k"); !ok || v != 7 {
		t.Fatalf("fresh entry: got %d, %v; want 7, true", v, ok)
	}

	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
}

func TestLRURequiresABound(t *testing.T) {
	if _, err := NewWithConfig(CacheConfig[string, int]{}); err == nil {
		t.Error("expected an error when neither bound is set")
	}
}
