package adapters

import (
	"context"
	"sync"
	"time"

	"github.com/precidx/precidx/precidx/ports"
)

// VerdictLRU is an in-memory LRU verdict cache with per-entry TTL. One
// instance is created per batch run and discarded with it.
type VerdictLRU struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*verdictItem
	head     *verdictItem
	tail     *verdictItem
}

type verdictItem struct {
	key     string
	verdict bool
	expires time.Time
	prev    *verdictItem
	next    *verdictItem
}

// NewVerdictLRU creates a verdict cache holding up to capacity entries, each
// valid for ttl.
func NewVerdictLRU(capacity int, ttl time.Duration) *VerdictLRU {
	return &VerdictLRU{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*verdictItem),
	}
}

// Get retrieves a memoized verdict.
func (c *VerdictLRU) Get(ctx context.Context, key string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		return false, false
	}
	if time.Now().After(item.expires) {
		c.removeItem(item)
		delete(c.items, key)
		return false, false
	}

	c.moveToFront(item)
	return item.verdict, true
}

// Set memoizes a verdict.
func (c *VerdictLRU) Set(ctx context.Context, key string, verdict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := time.Now().Add(c.ttl)

	if item, exists := c.items[key]; exists {
		item.verdict = verdict
		item.expires = expires
		c.moveToFront(item)
		return
	}

	item := &verdictItem{key: key, verdict: verdict, expires: expires}
	c.addToFront(item)
	c.items[key] = item

	if len(c.items) > c.capacity {
		c.evictLRU()
	}
}

func (c *VerdictLRU) moveToFront(item *verdictItem) {
	if item == c.head {
		return
	}
	c.removeItem(item)
	c.addToFront(item)
}

func (c *VerdictLRU) addToFront(item *verdictItem) {
	item.next = c.head
	item.prev = nil
	if c.head != nil {
		c.head.prev = item
	}
	c.head = item
	if c.tail == nil {
		c.tail = item
	}
}

func (c *VerdictLRU) removeItem(item *verdictItem) {
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		c.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		c.tail = item.prev
	}
	item.prev = nil
	item.next = nil
}

func (c *VerdictLRU) evictLRU() {
	if c.tail == nil {
		return
	}
	item := c.tail
	c.removeItem(item)
	delete(c.items, item.key)
}

var _ ports.VerdictCache = (*VerdictLRU)(nil)
