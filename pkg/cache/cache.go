// Package cache keeps the last successful remote read per kind and scope so
// reads can fall back to it while the remote store is unreachable.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/logging"
	"tableflip.dev/daybook/pkg/store"
	"tableflip.dev/daybook/pkg/timeutil"
)

// DefaultTTL is how long a cached read stays usable.
const DefaultTTL = 6 * time.Hour

// ScopeAll is the scope of reads that are not date scoped.
const ScopeAll = "all"

// Entry is the stored form of a cached read.
type Entry struct {
	// TS is the write time in epoch milliseconds.
	TS   int64        `json:"ts"`
	Data []entity.Row `json:"data"`
}

// Written is the write time of the entry.
func (e Entry) Written() time.Time {
	return time.UnixMilli(e.TS)
}

// Cache is a TTL-bounded cache over a store.KV. Storage failures are logged
// and otherwise ignored: a broken cache behaves like an empty one.
type Cache struct {
	kv    store.KV
	ttl   time.Duration
	clock timeutil.Clock
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the clock used for timestamps and expiry.
func WithClock(clock timeutil.Clock) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New returns a cache writing to kv.
func New(kv store.KV, opts ...Option) *Cache {
	c := &Cache{kv: kv, ttl: DefaultTTL, clock: timeutil.SystemClock{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key is the storage key for a kind and scope. An empty scope means ScopeAll.
func Key(kind entity.Kind, scope string) string {
	if scope == "" {
		scope = ScopeAll
	}
	return fmt.Sprintf("cache_%s_%s", kind, scope)
}

// TTL reports the configured time to live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the entry for the scope key when it exists and is younger than
// the TTL.
func (c *Cache) Get(key string) (Entry, bool) {
	raw, ok, err := c.kv.Get(key)
	if err != nil {
		logging.Warnf("cache: read %s: %v", key, err)
		return Entry{}, false
	}
	if !ok {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		logging.Debugf("cache: corrupt entry %s: %v", key, err)
		return Entry{}, false
	}
	if c.clock.Now().Sub(e.Written()) >= c.ttl {
		return Entry{}, false
	}
	return e, true
}

// Put overwrites the entry for the scope key with rows stamped now.
func (c *Cache) Put(key string, rows []entity.Row) {
	if rows == nil {
		rows = []entity.Row{}
	}
	b, err := json.Marshal(Entry{TS: c.clock.Now().UnixMilli(), Data: rows})
	if err != nil {
		logging.Warnf("cache: encode %s: %v", key, err)
		return
	}
	if err := c.kv.Put(key, string(b)); err != nil {
		logging.Warnf("cache: write %s: %v", key, err)
	}
}
