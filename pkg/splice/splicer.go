// Package splice reconstructs the retained audio timeline after repeat
// removal. It is agnostic of the audio representation: callers supply a
// copy function that appends a millisecond range of the original audio
// to the output.
package splice

import (
	"sort"

	"docvoice/pkg/model"
)

// Range is a half-open [StartMs, EndMs) span of the original audio that
// survives splicing.
type Range struct {
	StartMs int
	EndMs   int
}

// DurationMs returns the length of the range.
func (r Range) DurationMs() int {
	return r.EndMs - r.StartMs
}

// SortIntervals orders removal intervals ascending by start time.
// The detector reports intervals in discovery order; they must be sorted
// before splicing.
func SortIntervals(intervals []model.RemovalInterval) {
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].StartMs != intervals[j].StartMs {
			return intervals[i].StartMs < intervals[j].StartMs
		}
		return intervals[i].EndMs < intervals[j].EndMs
	})
}

// Retained computes the kept ranges of an audio timeline of durationMs
// after removing the given intervals. Intervals must be sorted ascending
// by StartMs. Overlapping intervals do not crash: the cursor only moves
// forward, so overlaps shorten the removed total rather than duplicating
// or reordering audio.
func Retained(durationMs int, intervals []model.RemovalInterval) []Range {
	var kept []Range
	cursor := 0
	for _, iv := range intervals {
		if iv.StartMs > cursor {
			kept = append(kept, Range{StartMs: cursor, EndMs: iv.StartMs})
		}
		if iv.EndMs > cursor {
			cursor = iv.EndMs
		}
	}
	if cursor < durationMs {
		kept = append(kept, Range{StartMs: cursor, EndMs: durationMs})
	}
	return kept
}

// RetainedDurationMs returns the total duration of the kept ranges.
func RetainedDurationMs(durationMs int, intervals []model.RemovalInterval) int {
	total := 0
	for _, r := range Retained(durationMs, intervals) {
		total += r.DurationMs()
	}
	return total
}

// RangeCopier appends the [startMs, endMs) range of the original audio to
// the output being assembled.
type RangeCopier func(startMs, endMs int) error

// Splice walks the sorted intervals and invokes copyRange for every kept
// range, in original order. The output is the concatenation of all
// sub-ranges not covered by any interval.
func Splice(durationMs int, intervals []model.RemovalInterval, copyRange RangeCopier) error {
	for _, r := range Retained(durationMs, intervals) {
		if err := copyRange(r.StartMs, r.EndMs); err != nil {
			return err
		}
	}
	return nil
}
