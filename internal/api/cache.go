package api

import (
	"sync"
	"time"

	"github.com/yegors/flightrec/internal/storage/sqlite"
)

const maxCachedFlights = 1024

// flightCache holds recently read flights until they expire
type flightCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cachedFlight
}

type cachedFlight struct {
	flight    *sqlite.FlightRecord
	expiresAt time.Time
}

// newFlightCache creates a cache; a non-positive ttl disables it
func newFlightCache(ttl time.Duration) *flightCache {
	return &flightCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedFlight),
	}
}

// Get returns the cached flight if it has not expired (thread-safe)
func (c *flightCache) Get(id string) (*sqlite.FlightRecord, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.flight, true
}

// Set caches a flight for the configured ttl (thread-safe).
// When full, expired entries are swept first; a flight that still does
// not fit is not cached.
func (c *flightCache) Set(id string, flight *sqlite.FlightRecord) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.entries) >= maxCachedFlights {
		for k, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, k)
			}
		}
		if len(c.entries) >= maxCachedFlights {
			return
		}
	}
	c.entries[id] = cachedFlight{flight: flight, expiresAt: now.Add(c.ttl)}
}

// Delete drops a flight from the cache (thread-safe)
func (c *flightCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}
