package dispatch

import (
	"context"
	"sync"
	"time"
)

// DefaultQuietPeriod is the debounce window applied to search commands
// when no override is configured.
const DefaultQuietPeriod = 500 * time.Millisecond

// Debouncer coalesces rapid bursts of search queries. Every dispatch
// stamps it on entry; search handlers then wait the quiet window and run
// only when no later stamp arrived meanwhile. Each waiter runs its own
// timer, so overlapping dispatches never block one another; the shared
// stamp is the only coordination point.
type Debouncer struct {
	mu    sync.Mutex
	last  time.Time
	quiet time.Duration
}

// NewDebouncer creates a Debouncer with the given quiet window, falling
// back to DefaultQuietPeriod when the window is not positive.
func NewDebouncer(quiet time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{quiet: quiet}
}

// Window returns the configured quiet period.
func (d *Debouncer) Window() time.Duration {
	return d.quiet
}

// Touch records stamp as the latest query time. Stamps never move
// backward, so out-of-order arrivals cannot resurrect a stale query.
func (d *Debouncer) Touch(stamp time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if stamp.After(d.last) {
		d.last = stamp
	}
}

// Superseded waits the quiet window, then reports whether a query newer
// than stamp was recorded while waiting. Context cancellation counts as
// supersession since the caller no longer wants the work.
func (d *Debouncer) Superseded(ctx context.Context, stamp time.Time) bool {
	timer := time.NewTimer(d.quiet)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last.After(stamp)
}
