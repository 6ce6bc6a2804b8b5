// Package service orchestrates ingestion, load recomputation, threshold
// estimation, program generation, and evaluation on top of the store.
// The computational components in analysis and plan stay pure; everything
// that locks, persists, or logs lives here.
package service

import (
	"sync"
	"time"

	"runcoach/internal/config"
	"runcoach/internal/store"
)

// Coach wires the store and the analysis pipeline together. Mutating
// operations for one athlete serialize on a per-athlete mutex; operations
// for different athletes run independently.
type Coach struct {
	db  *store.DB
	cfg config.Config

	mu       sync.Mutex
	athletes map[int64]*sync.Mutex

	// now is stubbed in tests to pin the calendar
	now func() time.Time
}

// New creates a coach backed by the given store and configuration.
func New(db *store.DB, cfg config.Config) *Coach {
	return &Coach{
		db:       db,
		cfg:      cfg,
		athletes: make(map[int64]*sync.Mutex),
		now:      time.Now,
	}
}

// lockAthlete returns the mutex serializing one athlete's writes,
// creating it on first use.
func (c *Coach) lockAthlete(athleteID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	mu, ok := c.athletes[athleteID]
	if !ok {
		mu = &sync.Mutex{}
		c.athletes[athleteID] = mu
	}
	return mu
}
