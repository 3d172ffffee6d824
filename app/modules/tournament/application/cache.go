package tournamentservice

import (
	"slices"
	"sync"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/rugby-bot/app/modules/tournament/domain"
	"github.com/google/uuid"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// AnchorClock always returns the same instant. Useful for parsing relative input
// deterministically.
type AnchorClock struct {
	anchor time.Time
}

// NewAnchorClock creates an AnchorClock. A zero t anchors at the current UTC time.
func NewAnchorClock(t time.Time) AnchorClock {
	if t.IsZero() {
		return AnchorClock{anchor: time.Now().UTC()}
	}
	return AnchorClock{anchor: t.UTC()}
}

func (c AnchorClock) Now() time.Time { return c.anchor }

type cacheEntry struct {
	rows    []tournamentdomain.StandingsRow
	expires time.Time
}

// StandingsCache keeps ranked tables for a short time. A non-positive ttl disables caching.
//
// Every Invalidate bumps the tournament's generation. A reader captures Generation before it
// loads rows and hands it to Put, which refuses to store a table loaded before a later write.
type StandingsCache struct {
	ttl   time.Duration
	clock Clock

	mu          sync.RWMutex
	entries     map[uuid.UUID]cacheEntry
	generations map[uuid.UUID]uint64
}

// NewStandingsCache creates a cache whose entries live for ttl. A nil clock uses RealClock.
func NewStandingsCache(ttl time.Duration, clock Clock) *StandingsCache {
	if clock == nil {
		clock = RealClock{}
	}
	return &StandingsCache{
		ttl:         ttl,
		clock:       clock,
		entries:     make(map[uuid.UUID]cacheEntry),
		generations: make(map[uuid.UUID]uint64),
	}
}

// Get returns a copy of the cached table when present and not expired.
func (c *StandingsCache) Get(id uuid.UUID) ([]tournamentdomain.StandingsRow, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.clock.Now().Before(e.expires) {
		c.mu.Lock()
		if cur, ok := c.entries[id]; ok && cur.expires.Equal(e.expires) {
			delete(c.entries, id)
		}
		c.mu.Unlock()
		return nil, false
	}
	return slices.Clone(e.rows), true
}

// Generation returns the number of times the tournament has been invalidated.
func (c *StandingsCache) Generation(id uuid.UUID) uint64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[id]
}

// Put stores a copy of rows when no Invalidate happened since generation was read.
// It reports whether the rows were stored.
func (c *StandingsCache) Put(id uuid.UUID, generation uint64, rows []tournamentdomain.StandingsRow) bool {
	if c == nil || c.ttl <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[id] != generation {
		return false
	}
	c.entries[id] = cacheEntry{rows: slices.Clone(rows), expires: c.clock.Now().Add(c.ttl)}
	return true
}

// Invalidate drops the cached table of a tournament.
func (c *StandingsCache) Invalidate(id uuid.UUID) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[id]++
	delete(c.entries, id)
}
