// Package transcript implements repeat detection over timed word sequences.
package transcript

import (
	"fmt"
	"strings"

	"docvoice/pkg/model"
)

// Detection defaults. These match the tuning the dedupe workflow was
// calibrated with; callers can override them on the Detector.
const (
	DefaultMinWords     = 1
	DefaultMaxPhraseLen = 20
	DefaultMaxGapMs     = 2000
)

// Detector finds adjacent repeated words and phrases in a transcript.
// The zero value is not usable; construct with NewDetector.
type Detector struct {
	// MinWords is the shortest phrase length considered for a repeat.
	MinWords int
	// MaxPhraseLen is the longest phrase length considered. Longer
	// matches always win over shorter ones at the same position.
	MaxPhraseLen int
	// MaxGapMs is the largest pause between a phrase and its repeat
	// for the repeat to count as a stutter rather than deliberate
	// repetition.
	MaxGapMs float64
}

// NewDetector creates a Detector with the default tuning.
func NewDetector() *Detector {
	return &Detector{
		MinWords:     DefaultMinWords,
		MaxPhraseLen: DefaultMaxPhraseLen,
		MaxGapMs:     DefaultMaxGapMs,
	}
}

// Match describes one detected repeat. Matches are data, not log lines:
// the caller decides whether and how to report them.
type Match struct {
	Phrase  string // normalized phrase text
	Length  int    // words per occurrence (1 for single-word runs)
	Repeats int    // total occurrences including the retained first one
	StartMs int    // start of the removed region
	EndMs   int    // end of the removed region
}

// Describe renders the match the way the dedupe log reports it.
func (m Match) Describe() string {
	if m.Length == 1 && m.Repeats > 2 {
		return fmt.Sprintf("single-word repeat: %q x%d at %.2fs", m.Phrase, m.Repeats, float64(m.StartMs)/1000)
	}
	return fmt.Sprintf("repeat: %q (len=%d) at %.2fs", m.Phrase, m.Length, float64(m.StartMs)/1000)
}

// Detect scans words for adjacent duplicated phrases and single-word runs
// and returns the intervals to remove, in discovery order, together with
// one Match per interval. Discovery order is not sorted; callers must sort
// by StartMs before splicing. Empty and single-word inputs yield nothing.
//
// The second occurrence of a phrase is the one removed. With MinWords at 1
// a run of identical words collapses through chained (possibly overlapping)
// pair matches, which the splicer merges; the dedicated run branch below
// only fires when MinWords excludes single-word phrases.
func (d *Detector) Detect(words []model.Word) ([]model.RemovalInterval, []Match) {
	var intervals []model.RemovalInterval
	var matches []Match

	n := len(words)
	i := 0
	for i < n {
		found := false

		// Longest-match-first: prefer removing a whole repeated phrase
		// over a short prefix of it.
		for phraseLen := d.MaxPhraseLen; phraseLen >= d.MinWords; phraseLen-- {
			if i+2*phraseLen > n {
				continue
			}
			if !equalRuns(words[i:i+phraseLen], words[i+phraseLen:i+2*phraseLen]) {
				continue
			}
			gapMs := (words[i+phraseLen].Start - words[i+phraseLen-1].End) * 1000
			if gapMs > d.MaxGapMs {
				continue
			}

			iv := model.RemovalInterval{
				StartMs: words[i+phraseLen].StartMs(),
				EndMs:   words[i+2*phraseLen-1].EndMs(),
			}
			intervals = append(intervals, iv)
			matches = append(matches, Match{
				Phrase:  joinNormalized(words[i : i+phraseLen]),
				Length:  phraseLen,
				Repeats: 2,
				StartMs: iv.StartMs,
				EndMs:   iv.EndMs,
			})
			i += phraseLen
			found = true
			break
		}

		// Single word repeated three or more times in a row. Only
		// consulted when no phrase match fired at this position.
		if !found && i+2 < n {
			w := normalize(words[i].Text)
			if normalize(words[i+1].Text) == w && normalize(words[i+2].Text) == w {
				runLen := 3
				for i+runLen < n && normalize(words[i+runLen].Text) == w {
					runLen++
				}
				iv := model.RemovalInterval{
					StartMs: words[i+1].StartMs(),
					EndMs:   words[i+runLen-1].EndMs(),
				}
				intervals = append(intervals, iv)
				matches = append(matches, Match{
					Phrase:  w,
					Length:  1,
					Repeats: runLen,
					StartMs: iv.StartMs,
					EndMs:   iv.EndMs,
				})
				i += runLen
				found = true
			}
		}

		if !found {
			i++
		}
	}

	return intervals, matches
}

// normalize lowercases and trims a token for comparison. Whisper emits
// words with leading spaces, so the trim is load-bearing.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func equalRuns(a, b []model.Word) bool {
	for i := range a {
		if normalize(a[i].Text) != normalize(b[i].Text) {
			return false
		}
	}
	return true
}

func joinNormalized(words []model.Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = normalize(w.Text)
	}
	return strings.Join(parts, " ")
}
