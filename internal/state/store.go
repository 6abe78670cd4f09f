// Package state holds the dashboard's single mutable snapshot. All
// mutation goes through Store.Apply as pure snapshot-to-snapshot
// transforms, so concurrent refreshes resolve last-write-wins and
// readers always observe a complete, consistent view.
package state

import (
	"sync"
	"time"

	"TickerScope/internal/model"
)

// Snapshot is the complete dashboard state at one point in time: the
// selected controls, the canonical table with its derived summary, and
// the user-facing message line ("" when everything is fine).
type Snapshot struct {
	Ticker    string
	StartDate string // ISO yyyy-mm-dd, "" when unset
	EndDate   string
	Watchlist []string

	Table model.PriceTable
	Stats model.StatSummary

	Message     string
	Source      string
	RefreshID   string
	LastRefresh time.Time
}

// HasData reports whether the snapshot carries a non-empty table.
func (s Snapshot) HasData() bool { return len(s.Table) > 0 }

// Store guards the current snapshot. Transforms must treat their input
// as immutable and return a fresh value; slices and maps inside a
// snapshot are never mutated in place after installation.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStore creates a store seeded with the given snapshot.
func NewStore(initial Snapshot) *Store {
	return &Store{snap: initial}
}

// Current returns the snapshot as of now.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Apply transforms the current snapshot and installs the result.
func (s *Store) Apply(fn func(Snapshot) Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = fn(s.snap)
}
