package chunker

import (
	"strings"
)

// DefaultMaxChunkLength is the synthesis length limit applied when the
// caller does not specify one.
const DefaultMaxChunkLength = 750

// SplitLongText splits text into pieces no longer than maxLength,
// preferring to cut just after the first sentence boundary ('.' or '!')
// at or beyond the limit. When the remainder contains no boundary at all,
// it hard-cuts exactly at the limit. Pieces are trimmed of surrounding
// whitespace. Joining the pieces back together reconstructs the input up
// to that trimming.
func SplitLongText(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxChunkLength
	}
	if len(text) <= maxLength {
		return []string{strings.TrimSpace(text)}
	}

	var pieces []string
	start := 0
	for start < len(text) {
		if len(text)-start <= maxLength {
			pieces = append(pieces, strings.TrimSpace(text[start:]))
			break
		}
		splitIdx := start + maxLength
		if rel := strings.IndexAny(text[splitIdx:], ".!"); rel >= 0 {
			end := splitIdx + rel + 1 // cut after the boundary, inclusive
			pieces = append(pieces, strings.TrimSpace(text[start:end]))
			start = end
		} else {
			pieces = append(pieces, strings.TrimSpace(text[start:splitIdx]))
			start = splitIdx
		}
	}
	return pieces
}
