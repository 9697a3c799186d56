package cache

import (
	"testing"
	"time"
)

func TestCache_GetSetRoundTrip(t *testing.T) {
	c := New(time.Minute)
	if err := c.Set("k", 42.5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var got float64
	ok, err := c.Get("k", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got != 42.5 {
		t.Errorf("Get(\"k\") = (%v, %v), want (42.5, true)", got, ok)
	}
}

func TestCache_Miss(t *testing.T) {
	c := New(time.Minute)
	var got float64
	ok, err := c.Get("missing", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected miss for unset key")
	}
}

// An entry older than the TTL must be treated as a miss and evicted, even
// though nothing ever explicitly invalidated it.
func TestCache_TTLExpiry(t *testing.T) {
	c := New(10 * time.Millisecond)
	if err := c.Set("k", 1.0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	var got float64
	ok, err := c.Get("k", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected miss after TTL expiry")
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New(time.Minute)
	_ = c.Set("k", 1.0)
	c.Invalidate("k")

	var got float64
	ok, _ := c.Get("k", &got)
	if ok {
		t.Error("expected miss after explicit invalidate")
	}
}

func TestKey_StableRegardlessOfListOrder(t *testing.T) {
	a, err := Key("balance", map[string]any{"periods": []string{"Jan 2025", "Feb 2025"}})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	b, err := Key("balance", map[string]any{"periods": []string{"Feb 2025", "Jan 2025"}})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if a != b {
		t.Errorf("Key differs by list order: %q vs %q", a, b)
	}
}

func TestKey_DiffersByTag(t *testing.T) {
	params := map[string]any{"account": "4000"}
	a, _ := Key("balance", params)
	b, _ := Key("budget", params)
	if a == b {
		t.Error("expected different keys for different tags over the same params")
	}
}
