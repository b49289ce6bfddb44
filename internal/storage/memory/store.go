// Package memory implements an in-process snapshot store for tests and
// ephemeral runs without a cache file.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/avilchesi/pronostico-service/internal/forecast"
)

// Store keeps the last snapshot in memory with the same monotonic
// captured-at guarantee as the file store.
type Store struct {
	mu           sync.RWMutex
	snap         *forecast.Snapshot
	lastCaptured time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Load returns a copy of the stored snapshot, or (nil, nil) when empty.
func (s *Store) Load() (*forecast.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, nil
	}
	cp := &forecast.Snapshot{
		CapturedAt: s.snap.CapturedAt,
		Locations:  append([]forecast.LocationForecast(nil), s.snap.Locations...),
	}
	return cp, nil
}

// Save replaces the stored snapshot, clamping CapturedAt so it never moves
// backwards.
func (s *Store) Save(snap *forecast.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	capturedAt := snap.CapturedAt
	if capturedAt.Before(s.lastCaptured) {
		capturedAt = s.lastCaptured
	}
	s.snap = &forecast.Snapshot{
		CapturedAt: capturedAt,
		Locations:  append([]forecast.LocationForecast(nil), snap.Locations...),
	}
	s.lastCaptured = capturedAt
	return nil
}
