package tracker

import (
	"sync"
	"testing"
)

func TestTracker(t *testing.T) {
	tr := New()
	provider := "test.provider"

	// Test Initial State
	stats := tr.Snapshot()
	if len(stats) != 0 {
		t.Errorf("Expected empty stats, got %d", len(stats))
	}

	// Test Tracking
	tr.TrackAPISuccess(provider)
	tr.TrackAPIFailure(provider)
	tr.TrackRetry(provider)
	tr.AddBytesIn(provider, 2048)
	tr.AddCharsOut(provider, 750)

	// Verify Snapshot
	stats = tr.Snapshot()
	pStats, ok := stats[provider]
	if !ok {
		t.Fatalf("Expected stats for provider %s", provider)
	}

	if pStats.APISuccess != 1 {
		t.Errorf("Expected 1 APISuccess, got %d", pStats.APISuccess)
	}
	if pStats.APIFailures != 1 {
		t.Errorf("Expected 1 APIFailure, got %d", pStats.APIFailures)
	}
	if pStats.Retries != 1 {
		t.Errorf("Expected 1 Retry, got %d", pStats.Retries)
	}
	if pStats.BytesIn != 2048 {
		t.Errorf("Expected 2048 BytesIn, got %d", pStats.BytesIn)
	}
	if pStats.CharsOut != 750 {
		t.Errorf("Expected 750 CharsOut, got %d", pStats.CharsOut)
	}
}

func TestTrackerConcurrency(t *testing.T) {
	tr := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.TrackAPISuccess("orpheus")
				tr.AddCharsOut("orpheus", 10)
			}
		}()
	}
	wg.Wait()

	stats := tr.Snapshot()["orpheus"]
	if stats.APISuccess != 1000 {
		t.Errorf("Expected 1000 APISuccess, got %d", stats.APISuccess)
	}
	if stats.CharsOut != 10000 {
		t.Errorf("Expected 10000 CharsOut, got %d", stats.CharsOut)
	}
}
