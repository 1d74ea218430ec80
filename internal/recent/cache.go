// Package recent keeps a small, durable, most-recent-first list of meal
// analyses for offline viewing. Cache failures are logged and never
// surfaced: the list is a convenience view, not a system of record.
package recent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nutrisnap-backend/internal/nutrition"
	"nutrisnap-backend/internal/shared/storage/kv"
	"nutrisnap-backend/internal/shared/telemetry"
	"nutrisnap-backend/internal/shared/util"
)

const (
	// MaxSize is the number of entries the cache retains.
	MaxSize = 5
	// DefaultSlot is the slot key used by single-user clients.
	DefaultSlot = "nutrisnap-cache"
)

// Entry is one cached analysis. Entries are write-once.
type Entry struct {
	ID        string             `json:"id"`
	Analysis  nutrition.Analysis `json:"analysis"`
	ImageURL  string             `json:"imageUrl"`
	Timestamp time.Time          `json:"-"`
}

type entryJSON struct {
	ID        string             `json:"id"`
	Analysis  nutrition.Analysis `json:"analysis"`
	ImageURL  string             `json:"imageUrl"`
	Timestamp int64              `json:"timestamp"`
}

// MarshalJSON encodes the timestamp as Unix milliseconds.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		ID:        e.ID,
		Analysis:  e.Analysis,
		ImageURL:  e.ImageURL,
		Timestamp: e.Timestamp.UnixMilli(),
	})
}

// UnmarshalJSON decodes a Unix-millisecond timestamp.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry{
		ID:        raw.ID,
		Analysis:  raw.Analysis,
		ImageURL:  raw.ImageURL,
		Timestamp: time.UnixMilli(raw.Timestamp).UTC(),
	}
	return nil
}

// Cache is bound to one durable slot of a kv.Store. It is the only writer of
// that slot. Concurrent inserts into the same slot may race; the later write wins.
type Cache struct {
	store kv.Store
	slot  string
	now   func() time.Time
}

// New binds a cache to slot in store.
func New(store kv.Store, slot string) *Cache {
	if slot == "" {
		slot = DefaultSlot
	}
	return &Cache{store: store, slot: slot, now: time.Now}
}

// Slot returns the key of the backing slot.
func (c *Cache) Slot() string {
	return c.slot
}

// List returns cached entries most recent first. An absent, unreadable or
// corrupt slot yields an empty list.
func (c *Cache) List(ctx context.Context) []Entry {
	entries, err := c.list(ctx)
	if err != nil {
		telemetry.Warn("cache.read_failed", map[string]any{"slot": c.slot, "err": err})
		return []Entry{}
	}
	return entries
}

// Insert prepends a new entry and keeps the newest MaxSize entries.
// Failures are logged; the cache is best-effort and callers must not depend on it.
func (c *Cache) Insert(ctx context.Context, id string, analysis nutrition.Analysis, imageURL string) {
	if err := c.insert(ctx, id, analysis, imageURL); err != nil {
		telemetry.Error("cache.write_failed", map[string]any{"slot": c.slot, "id": id, "err": err})
	}
}

// Clear removes the slot. Clearing an empty cache succeeds.
func (c *Cache) Clear(ctx context.Context) {
	if err := c.clear(ctx); err != nil {
		telemetry.Error("cache.clear_failed", map[string]any{"slot": c.slot, "err": err})
	}
}

func (c *Cache) list(ctx context.Context) ([]Entry, error) {
	if c == nil || c.store == nil {
		return nil, fmt.Errorf("cache store not configured")
	}
	data, ok, err := c.store.Get(ctx, c.slot)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return []Entry{}, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode slot: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (c *Cache) insert(ctx context.Context, id string, analysis nutrition.Analysis, imageURL string) error {
	if c == nil || c.store == nil {
		return fmt.Errorf("cache store not configured")
	}
	current := c.List(ctx)

	entry := Entry{
		ID:        id,
		Analysis:  analysis,
		ImageURL:  imageURL,
		Timestamp: time.UnixMilli(c.now().UnixMilli()).UTC(),
	}
	updated := make([]Entry, 0, MaxSize)
	updated = append(updated, entry)
	updated = append(updated, current...)
	if len(updated) > MaxSize {
		updated = updated[:MaxSize]
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("encode slot: %w", err)
	}
	return c.store.Set(ctx, c.slot, data)
}

func (c *Cache) clear(ctx context.Context) error {
	if c == nil || c.store == nil {
		return fmt.Errorf("cache store not configured")
	}
	return c.store.Delete(ctx, c.slot)
}

// Slots hands out per-user caches that share one kv.Store.
type Slots struct {
	Store kv.Store
}

// For returns the cache for userID.
func (s Slots) For(userID string) *Cache {
	return New(s.Store, SlotForUser(userID))
}

// SlotForUser derives a stable slot key for userID.
func SlotForUser(userID string) string {
	return DefaultSlot + "/" + util.HashUserKey(userID)
}

// Resolver picks the cache for a user.
type Resolver interface {
	For(userID string) *Cache
}

// Shared hands every user the same cache. Used by the single-user CLI.
type Shared struct {
	Cache *Cache
}

func (s Shared) For(string) *Cache {
	return s.Cache
}
