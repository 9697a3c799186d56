// Package cache implements the in-memory, TTL-expiring, coalescing cache
// shared by every operation in the gateway. There is no durable storage:
// spec §3 is explicit that the cache lives entirely in process memory, so
// this package replaces the teacher's Postgres-backed TieredCache with a
// lock-free concurrent map and lazy, read-time eviction.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/alphadose/haxmap"
)

// DefaultTTL is the five-minute expiry spec §4.5 fixes for every cached
// operation.
const DefaultTTL = 5 * time.Minute

// entry is one cached value plus its insertion time. Entries are never
// mutated in place; a write always installs a fresh entry (spec §5:
// "replace-on-write").
type entry struct {
	value     []byte
	insertedAt time.Time
}

// Cache is a process-wide, TTL-expiring, lazily-evicted key/value store.
// Values are JSON-marshaled on Set and unmarshaled into the caller's
// destination on Get, mirroring the teacher's TieredCache contract.
type Cache struct {
	ttl   time.Duration
	store *haxmap.Map[string, *entry]
}

// New constructs a Cache with the given TTL. Pass zero to use DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:   ttl,
		store: haxmap.New[string, *entry](),
	}
}

// Get looks up key and unmarshals its value into dest. Returns (true, nil)
// on a live hit, (false, nil) on a miss or an expired entry (which is
// removed as a side effect — the only eviction this cache ever does).
func (c *Cache) Get(key string, dest any) (bool, error) {
	e, ok := c.store.Get(key)
	if !ok {
		return false, nil
	}
	if time.Since(e.insertedAt) > c.ttl {
		c.store.Del(key)
		return false, nil
	}
	if err := json.Unmarshal(e.value, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value under key, replacing any existing entry.
func (c *Cache) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store.Set(key, &entry{value: data, insertedAt: time.Now()})
	return nil
}

// Invalidate removes key unconditionally.
func (c *Cache) Invalidate(key string) {
	c.store.Del(key)
}

// Key canonicalizes an operation tag plus its normalized parameters into a
// stable cache key. Sorted accounts/periods/filter ids plus the tag are
// JSON-marshaled (map keys sort lexically under encoding/json) and hashed so
// the key shape never exposes argument count or ordering quirks. Stability
// across process runs (required for tests to assert key shapes) follows
// from encoding/json's guaranteed key-sort order for map types.
func Key(tag string, params map[string]any) (string, error) {
	normalized := normalizeParams(params)
	payload := struct {
		Tag    string         `json:"tag"`
		Params map[string]any `json:"params"`
	}{Tag: tag, Params: normalized}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return tag + ":" + hex.EncodeToString(sum[:]), nil
}

// normalizeParams sorts any []string values so the key is stable regardless
// of the caller's input order (the coordinator must key "Jan 2025, Feb 2025"
// the same as "Feb 2025, Jan 2025").
func normalizeParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		if ss, ok := v.([]string); ok {
			sorted := append([]string(nil), ss...)
			sort.Strings(sorted)
			out[k] = sorted
			continue
		}
		out[k] = v
	}
	return out
}
