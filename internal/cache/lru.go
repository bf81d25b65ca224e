// Melodex - Mood-Driven Music Recommendation Core
// Copyright 2026 Sonic Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soniclabs/melodex

// Package cache provides the bounded in-memory caches used by the
// search index. The cached values are scores of a pure function, so
// entries carry no TTL; capacity is the only eviction pressure.
package cache

import "sync"

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 4096

// entry is a node in the doubly-linked recency list.
type entry struct {
	key   string
	value float64
	prev  *entry
	next  *entry
}

// LRU is a thread-safe fixed-capacity least-recently-used cache of
// float64 scores. All operations are O(1): a hashmap provides lookup
// and a doubly-linked list with sentinel head/tail tracks recency
// (head.next is the most recently used, tail.prev the least).
type LRU struct {
	mu sync.Mutex

	capacity int
	items    map[string]*entry
	head     *entry
	tail     *entry

	hits   int64
	misses int64
}

// NewLRU creates an LRU with the given capacity.
// Non-positive capacities fall back to DefaultCapacity.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &LRU{
		capacity: capacity,
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get retrieves a cached score, promoting the entry to most recently
// used. The second return value reports whether the key was present.
func (c *LRU) Get(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++
		return 0, false
	}

	c.moveToFront(e)
	c.hits++
	return e.value, true
}

// Add inserts or updates a score. When the cache is at capacity the
// least recently used entry is evicted.
func (c *LRU) Add(key string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.addToFront(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Len returns the current number of entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries and resets the recency list.
// Hit/miss counters are preserved.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Stats returns hit/miss counters and the current size.
func (c *LRU) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods (must be called with the lock held).

func (c *LRU) addToFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *LRU) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	oldest.prev.next = oldest.next
	oldest.next.prev = oldest.prev
	delete(c.items, oldest.key)
}
