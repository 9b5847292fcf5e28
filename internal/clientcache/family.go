package clientcache

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/preston-bernstein/football-data-service/internal/metrics"
)

// Entry is one cached slot.
type Entry[T any] struct {
	Data       T         `json:"data"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// Family is the set of slots for one query shape, all sharing a TTL.
// Expired slots stay in place until overwritten or cleared.
type Family[T any] struct {
	name  string
	ttl   time.Duration
	owner *Store

	mu    sync.RWMutex
	slots map[string]Entry[T]
}

type family interface {
	Name() string
	load(raw []byte) error
	clear()
	expire(key string, now time.Time) bool
}

func newFamily[T any](owner *Store, name string, ttl time.Duration) *Family[T] {
	f := &Family[T]{name: name, ttl: ttl, owner: owner, slots: make(map[string]Entry[T])}
	owner.families = append(owner.families, f)
	return f
}

// Name is the family's persistence key.
func (f *Family[T]) Name() string { return f.name }

// TTL is how long a slot stays valid after Set.
func (f *Family[T]) TTL() time.Duration { return f.ttl }

// Get returns the slot's data while now - LastUpdate < TTL.
func (f *Family[T]) Get(key string) (T, bool) {
	f.mu.RLock()
	e, ok := f.slots[key]
	f.mu.RUnlock()

	valid := ok && f.valid(e, f.owner.now())
	f.owner.metrics.RecordCacheLookup(metrics.TierClient, f.name, valid)
	if !valid {
		var zero T
		return zero, false
	}
	return e.Data, true
}

// Entry returns the raw slot, expired or not.
func (f *Family[T]) Entry(key string) (Entry[T], bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.slots[key]
	return e, ok
}

// Set stores data stamped with the current time and persists the family.
// Persistence failures are logged; the in-memory slot is kept.
func (f *Family[T]) Set(ctx context.Context, key string, data T) {
	f.mu.Lock()
	f.slots[key] = Entry[T]{Data: data, LastUpdate: f.owner.now()}
	raw, err := json.Marshal(f.slots)
	f.mu.Unlock()

	f.owner.persist(ctx, f.name, raw, err)
}

// Len counts slots, expired ones included.
func (f *Family[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.slots)
}

func (f *Family[T]) valid(e Entry[T], now time.Time) bool {
	return now.Sub(e.LastUpdate) < f.ttl
}

func (f *Family[T]) load(raw []byte) error {
	slots := make(map[string]Entry[T])
	if err := json.Unmarshal(raw, &slots); err != nil {
		return err
	}
	f.mu.Lock()
	f.slots = slots
	f.mu.Unlock()
	return nil
}

func (f *Family[T]) clear() {
	f.mu.Lock()
	f.slots = make(map[string]Entry[T])
	f.mu.Unlock()
}

// expire drops key when stale and reports whether it did.
func (f *Family[T]) expire(key string, now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.slots[key]
	if !ok || f.valid(e, now) {
		return false
	}
	delete(f.slots, key)
	return true
}

func (f *Family[T]) snapshot() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return json.Marshal(f.slots)
}
