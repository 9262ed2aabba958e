package dispatch

import (
	"sync"
	"time"
)

// Metrics counts dispatcher activity. The diag command surfaces a
// Snapshot verbatim.
type Metrics struct {
	mu         sync.Mutex
	dispatches int64
	suppressed int64
	searches   int64
	fallbacks  int64
	errors     int64
	elapsed    time.Duration
}

// Snapshot is a point-in-time copy of the dispatcher counters.
type Snapshot struct {
	Dispatches int64         `json:"dispatches"`
	Suppressed int64         `json:"suppressed"`
	Searches   int64         `json:"searches"`
	Fallbacks  int64         `json:"fallbacks"`
	Errors     int64         `json:"errors"`
	AvgLatency time.Duration `json:"avg_latency"`
}

// RecordDispatch counts one completed dispatch and its duration.
func (m *Metrics) RecordDispatch(elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatches++
	m.elapsed += elapsed
}

// RecordSuppressed counts a dispatch superseded during the quiet window.
func (m *Metrics) RecordSuppressed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppressed++
}

// RecordSearch counts one query reaching the remote search API.
func (m *Metrics) RecordSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
}

// RecordFallback counts a query that missed the command table and fell
// back to the global search.
func (m *Metrics) RecordFallback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}

// RecordError counts a fault converted to the nothing-found result.
func (m *Metrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors++
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Dispatches: m.dispatches,
		Suppressed: m.suppressed,
		Searches:   m.searches,
		Fallbacks:  m.fallbacks,
		Errors:     m.errors,
	}
	if m.dispatches > 0 {
		snap.AvgLatency = m.elapsed / time.Duration(m.dispatches)
	}
	return snap
}
