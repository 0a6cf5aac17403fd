// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package cache provides a TTL-bounded LRU cache.
//
// The API uses it for rendered recommendation responses and the event
// handlers use it to drop redelivered messages.
package cache

import (
	"sync"
	"time"
)

// entry is a node of the recency list.
type entry[V any] struct {
	key       string
	value     V
	prev      *entry[V]
	next      *entry[V]
	expiresAt time.Time
}

// LRU is a thread-safe least recently used cache with per-entry TTL.
//
// Get, Set and Remove are O(1). Expired entries are dropped lazily on access
// or in bulk by CleanupExpired.
type LRU[V any] struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	now      func() time.Time

	items map[string]*entry[V]

	// head.next is the most recently used entry, tail.prev the least.
	head *entry[V]
	tail *entry[V]

	hits   int64
	misses int64
}

// NewLRU creates a cache. Non-positive capacity defaults to 10000 and
// non-positive ttl to 5 minutes.
func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*entry[V], capacity),
		head:     &entry[V]{},
		tail:     &entry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.removeEntry(e)
		c.misses++
		return zero, false
	}
	c.moveToFront(e)
	c.hits++
	return e.value, true
}

// Set adds or replaces key, evicting the least recently used entry when full.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

// IsDuplicate reports whether key was seen within the TTL. Unseen keys are
// recorded.
func (c *LRU[V]) IsDuplicate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		if !c.now().After(e.expiresAt) {
			c.moveToFront(e)
			c.hits++
			return true
		}
		c.removeEntry(e)
	}
	var zero V
	c.set(key, zero)
	c.misses++
	return false
}

// Remove deletes key and reports whether it was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.removeEntry(e)
		return true
	}
	return false
}

// Len returns the number of entries, including expired ones not yet dropped.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes every entry. Hit and miss counters are kept.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// CleanupExpired drops expired entries and returns how many were removed.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.removeEntry(e)
			removed++
		}
		e = prev
	}
	return removed
}

// Stats returns hit and miss counts and the current size.
func (c *LRU[V]) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// The methods below must be called with mu held.

func (c *LRU[V]) set(key string, value V) {
	expiresAt := c.now().Add(c.ttl)
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e
	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

func (c *LRU[V]) addToFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) moveToFront(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *LRU[V]) removeEntry(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

func (c *LRU[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
