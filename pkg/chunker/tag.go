// Package chunker turns raw LLM output into bounded-length, voice-tagged
// chunks ready for speech synthesis.
package chunker

import (
	"fmt"
	"strconv"
	"strings"
)

// TagKind identifies the role a tag marks in the text.
type TagKind int

const (
	// TagAISummary marks model-generated summary narration.
	TagAISummary TagKind = iota
	// TagSpeaker marks dialogue attributed to a numbered speaker.
	TagSpeaker
)

// Tag is an in-text marker (<AI Summary> or <SPEAKER n>) driving voice
// assignment. Speaker is only meaningful for TagSpeaker.
type Tag struct {
	Kind    TagKind
	Speaker int
}

// Canonical returns the normalized form used as a binding key, so that
// <speaker_2> and <SPEAKER 2> share one voice.
func (t Tag) Canonical() string {
	if t.Kind == TagAISummary {
		return "<AI SUMMARY>"
	}
	return fmt.Sprintf("<SPEAKER %d>", t.Speaker)
}

// TaggedSpan is a stretch of text attributed to one tag. A nil Tag means
// untagged narration, spoken by the requesting user's chosen voice.
type TaggedSpan struct {
	Tag  *Tag
	Text string
}

// maxTagBody bounds the search for a closing '>' so a stray '<' in prose
// does not trigger a scan of the whole remaining text.
const maxTagBody = 24

// parseTag attempts to read a tag at the start of s (s[0] must be '<').
// It returns the tag, the number of bytes consumed, and whether a valid
// tag was found. Anything that does not match the grammar is left alone
// and treated as plain text.
func parseTag(s string) (Tag, int, bool) {
	limit := len(s)
	if limit > maxTagBody {
		limit = maxTagBody
	}
	end := strings.IndexByte(s[:limit], '>')
	if end < 0 {
		return Tag{}, 0, false
	}

	// Underscores and spaces are equivalent inside the tag.
	body := strings.ToUpper(strings.ReplaceAll(s[1:end], "_", " "))

	if body == "AI SUMMARY" {
		return Tag{Kind: TagAISummary}, end + 1, true
	}

	if rest, ok := strings.CutPrefix(body, "SPEAKER"); ok {
		rest = strings.TrimLeft(rest, " ")
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 || rest != strconv.Itoa(n) {
			return Tag{}, 0, false
		}
		return Tag{Kind: TagSpeaker, Speaker: n}, end + 1, true
	}

	return Tag{}, 0, false
}
