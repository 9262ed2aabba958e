package dispatch

import (
	"testing"
	"time"
)

func TestMetrics(t *testing.T) {
	t.Run("EmptySnapshot", func(t *testing.T) {
		var m Metrics

		snap := m.Snapshot()
		if snap.Dispatches != 0 || snap.AvgLatency != 0 {
			t.Errorf("expected zeroed snapshot, got %+v", snap)
		}
	})

	t.Run("AveragesLatencyOverDispatches", func(t *testing.T) {
		var m Metrics

		m.RecordDispatch(10 * time.Millisecond)
		m.RecordDispatch(30 * time.Millisecond)
		m.RecordSuppressed()
		m.RecordSearch()
		m.RecordFallback()
		m.RecordError()

		snap := m.Snapshot()
		if snap.Dispatches != 2 {
			t.Errorf("expected 2 dispatches, got %d", snap.Dispatches)
		}
		if snap.AvgLatency != 20*time.Millisecond {
			t.Errorf("expected 20ms average, got %v", snap.AvgLatency)
		}
		if snap.Suppressed != 1 || snap.Searches != 1 || snap.Fallbacks != 1 || snap.Errors != 1 {
			t.Errorf("expected each counter at 1, got %+v", snap)
		}
	})
}
