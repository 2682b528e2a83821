package chunker

import (
	"strings"
)

// Segment splits text into tagged spans by scanning left to right for tag
// markers. Each recognized tag owns the text that follows it, up to the
// next tag or the end of the string. Text before the first tag (or all of
// it, when no tags are present) becomes an untagged span.
//
// The scan is a two-state machine: outside any tag it looks for a '<'
// that opens a valid tag; inside a tag's content it accumulates text
// until the next valid tag. Malformed or unterminated markers are not
// errors; they stay in the text as ordinary prose.
func Segment(text string) []TaggedSpan {
	var spans []TaggedSpan
	var current *Tag
	start := 0

	flush := func(end int) {
		content := text[start:end]
		if current != nil {
			spans = append(spans, TaggedSpan{Tag: current, Text: content})
		} else if strings.TrimSpace(content) != "" {
			spans = append(spans, TaggedSpan{Text: content})
		}
	}

	i := 0
	for i < len(text) {
		if text[i] == '<' {
			if tag, consumed, ok := parseTag(text[i:]); ok {
				flush(i)
				owned := tag
				current = &owned
				i += consumed
				start = i
				continue
			}
		}
		i++
	}
	flush(len(text))

	return spans
}
