package idcache

import (
	"sync"
	"time"

	"github.com/kvikmesh/kvik-go/internal/ktimer"
	"github.com/kvikmesh/kvik-go/pkg/kvik"
)

// Cache tracks recently seen message IDs per peer address and reports
// duplicates. It owns a background timer that periodically evicts expired
// entries; Close must be called to stop it.
type Cache struct {
	maxAge uint8

	mu      sync.Mutex
	tickNum uint16
	// addr string -> expiry tick -> set of ids seen at that expiry
	entries map[string]map[uint16]map[uint16]struct{}

	timer *ktimer.Timer
}

// New constructs a Cache. timeUnit is the tick period; maxAge is the
// number of ticks an entry survives before expiring.
func New(timeUnit time.Duration, maxAge uint8) *Cache {
	c := &Cache{
		maxAge:  maxAge,
		entries: make(map[string]map[uint16]map[uint16]struct{}),
	}
	c.timer = ktimer.New(timeUnit, c.tick)
	return c
}

// Insert records id as seen from addr, returning true if it wasn't already
// present (i.e. not a duplicate) and false if it was.
func (c *Cache) Insert(addr kvik.LocalAddr, id uint16) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := addr.String()
	addrCache, ok := c.entries[key]
	if !ok {
		addrCache = make(map[uint16]map[uint16]struct{})
		c.entries[key] = addrCache
	}

	for _, idSet := range addrCache {
		if _, dup := idSet[id]; dup {
			return false
		}
	}

	expTick := c.tickNum + uint16(c.maxAge) + 1
	idSet, ok := addrCache[expTick]
	if !ok {
		idSet = make(map[uint16]struct{})
		addrCache[expTick] = idSet
	}
	idSet[id] = struct{}{}

	return true
}

// Close stops the cache's background eviction timer.
func (c *Cache) Close() {
	c.timer.Close()
}

func (c *Cache) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tickNum++

	for addr, addrCache := range c.entries {
		delete(addrCache, c.tickNum)
		if len(addrCache) == 0 {
			delete(c.entries, addr)
		}
	}
}
