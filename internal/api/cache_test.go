package api

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yegors/flightrec/internal/storage/sqlite"
)

func TestFlightCache_Expiry(t *testing.T) {
	now := time.Date(2018, 7, 23, 11, 0, 0, 0, time.UTC)
	c := newFlightCache(time.Minute)
	c.now = func() time.Time { return now }

	rec := &sqlite.FlightRecord{ID: "a"}
	c.Set("a", rec)

	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Same(t, rec, got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestFlightCache_Delete(t *testing.T) {
	c := newFlightCache(time.Minute)
	c.Set("a", &sqlite.FlightRecord{ID: "a"})
	c.Delete("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestFlightCache_Disabled(t *testing.T) {
	c := newFlightCache(0)
	c.Set("a", &sqlite.FlightRecord{ID: "a"})

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestFlightCache_FullSweepsExpired(t *testing.T) {
	now := time.Date(2018, 7, 23, 11, 0, 0, 0, time.UTC)
	c := newFlightCache(time.Minute)
	c.now = func() time.Time { return now }

	for i := 0; i < maxCachedFlights; i++ {
		c.Set(fmt.Sprint(i), &sqlite.FlightRecord{})
	}
	c.Set("late", &sqlite.FlightRecord{})
	_, ok := c.Get("late")
	assert.False(t, ok, "full cache should refuse new entries")

	now = now.Add(2 * time.Minute)
	c.Set("late", &sqlite.FlightRecord{})
	_, ok = c.Get("late")
	assert.True(t, ok)
	assert.Len(t, c.entries, 1)
}
