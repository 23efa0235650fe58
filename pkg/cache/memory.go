// Package cache is a small in-memory byte cache with TTL expiry and
// size-bounded eviction. It holds rendered pages of the public listing.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"memorial/pkg/logger"
	"memorial/pkg/utils"
)

const (
	DefaultMaxCapacity = 16 // MB
	DefaultTTL         = time.Minute
	DefaultMaxItemSize = 512 * 1024

	// GCInterval is how often expired items are swept.
	GCInterval = time.Minute

	// MonitorInterval is the heartbeat log period.
	MonitorInterval = 30 * time.Minute
)

type Options struct {
	Enabled     bool
	MaxCapacity int // MB
	TTL         time.Duration
	MaxItemSize int64
}

type Item struct {
	Data      []byte
	ExpiresAt time.Time
	Size      int64
}

type MemoryCache struct {
	sync.RWMutex
	items       map[string]Item
	totalSize   int64
	maxSize     int64
	maxItemSize int64
	ttl         time.Duration
	enabled     bool
	now         func() time.Time
}

// New builds a cache. A disabled cache is a pass-through: Get always
// misses and Set is ignored.
func New(opts Options) *MemoryCache {
	limitMB := int64(opts.MaxCapacity)
	if limitMB <= 0 {
		limitMB = DefaultMaxCapacity
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	maxItem := opts.MaxItemSize
	if maxItem <= 0 {
		maxItem = DefaultMaxItemSize
	}

	c := &MemoryCache{
		maxSize:     limitMB * 1024 * 1024,
		maxItemSize: maxItem,
		ttl:         ttl,
		enabled:     opts.Enabled,
		now:         time.Now,
	}
	if c.enabled {
		c.items = make(map[string]Item)
	}
	return c
}

// Enabled reports whether the cache stores anything.
func (c *MemoryCache) Enabled() bool {
	return c.enabled
}

// Start runs the GC and monitor workers until ctx is done.
func (c *MemoryCache) Start(ctx context.Context) {
	if !c.enabled {
		logger.LogWarn("Page cache is DISABLED via config (pass-through mode).")
		return
	}
	logger.LogInfo("Page cache initialized: %s limit, TTL %s", utils.FormatBytes(c.maxSize), c.ttl)

	go c.run(ctx, GCInterval, c.collect)
	go c.run(ctx, MonitorInterval, c.report)
}

func (c *MemoryCache) run(ctx context.Context, every time.Duration, fn func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// Set stores data under key for the configured TTL. Items above the
// per-item limit or half the capacity are skipped.
func (c *MemoryCache) Set(key string, data []byte) {
	if !c.enabled {
		return
	}

	size := int64(len(data))
	if size > c.maxItemSize || size > c.maxSize/2 {
		return
	}

	c.Lock()
	defer c.Unlock()

	if old, exists := c.items[key]; exists {
		c.totalSize -= old.Size
		delete(c.items, key)
	}
	if c.totalSize+size > c.maxSize {
		c.prune()
	}

	c.items[key] = Item{
		Data:      data,
		ExpiresAt: c.now().Add(c.ttl),
		Size:      size,
	}
	c.totalSize += size
}

// Get returns the item if present and not expired.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	c.RLock()
	defer c.RUnlock()

	item, found := c.items[key]
	if !found || c.now().After(item.ExpiresAt) {
		return nil, false
	}
	return item.Data, true
}

func (c *MemoryCache) Delete(key string) {
	if !c.enabled {
		return
	}

	c.Lock()
	defer c.Unlock()

	if item, found := c.items[key]; found {
		delete(c.items, key)
		c.totalSize -= item.Size
	}
}

// Purge drops every item.
func (c *MemoryCache) Purge() {
	if !c.enabled {
		return
	}

	c.Lock()
	c.items = make(map[string]Item)
	c.totalSize = 0
	c.Unlock()
}

// Len returns the number of stored items, expired ones included.
func (c *MemoryCache) Len() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.items)
}

// Size returns the stored payload bytes.
func (c *MemoryCache) Size() int64 {
	c.RLock()
	defer c.RUnlock()
	return c.totalSize
}

// prune evicts the soonest-expiring items until usage drops to 80%.
// Caller holds the write lock.
func (c *MemoryCache) prune() {
	if len(c.items) == 0 {
		return
	}

	target := int64(float64(c.maxSize) * 0.80)

	type candidate struct {
		key       string
		expiresAt time.Time
		size      int64
	}
	candidates := make([]candidate, 0, len(c.items))
	for k, v := range c.items {
		candidates = append(candidates, candidate{k, v.ExpiresAt, v.Size})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].expiresAt.Before(candidates[j].expiresAt)
	})

	for _, cand := range candidates {
		if c.totalSize <= target {
			break
		}
		delete(c.items, cand.key)
		c.totalSize -= cand.size
	}
}

// collect removes expired items.
func (c *MemoryCache) collect() {
	c.Lock()
	now := c.now()
	removed := 0
	var freed int64
	for k, v := range c.items {
		if now.After(v.ExpiresAt) {
			delete(c.items, k)
			c.totalSize -= v.Size
			freed += v.Size
			removed++
		}
	}
	c.Unlock()

	if removed > 0 {
		logger.LogInfo("[CACHE] GC: cleaned %d items (%s freed)", removed, utils.FormatBytes(freed))
	}
}

func (c *MemoryCache) report() {
	c.RLock()
	count, used, max := len(c.items), c.totalSize, c.maxSize
	c.RUnlock()

	if count == 0 {
		return
	}
	logger.LogInfo("[CACHE] %d items | usage %s / %s (%.2f%%)",
		count, utils.FormatBytes(used), utils.FormatBytes(max), float64(used)/float64(max)*100)
}
