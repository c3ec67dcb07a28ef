// Package cache keeps recently generated responses in memory for a bounded
// time and count.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"
)

// TTL is a size-bounded cache whose entries expire a fixed time after they
// were stored. When full, the oldest stored entry is evicted first.
type TTL[V any] struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
}

type entry[V any] struct {
	key    string
	value  V
	stored time.Time
}

// NewTTL creates a cache. A non-positive max means unbounded; a
// non-positive ttl means entries never expire.
func NewTTL[V any](ttl time.Duration, max int) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		max:     max,
		now:     time.Now,
		entries: map[string]*list.Element{},
		order:   list.New(),
	}
}

// Get returns the value for key if present and not expired. Expired
// entries are dropped on access.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if c.ttl > 0 && c.now().Sub(e.stored) > c.ttl {
		c.remove(el)
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, replacing and refreshing any earlier entry.
func (c *TTL[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
	c.entries[key] = c.order.PushBack(&entry[V]{key: key, value: value, stored: c.now()})

	for c.max > 0 && c.order.Len() > c.max {
		c.remove(c.order.Front())
	}
}

func (c *TTL[V]) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*entry[V]).key)
}

// Len reports the number of stored entries, expired or not.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every entry.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]*list.Element{}
	c.order.Init()
}

// Key derives a stable cache key from its parts.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		writeString(h, p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeString writes s with a null delimiter so that ("ab", "c") and
// ("a", "bc") hash differently.
func writeString(w io.Writer, s string) {
	_, _ = w.Write([]byte(s + "\x00"))
}
