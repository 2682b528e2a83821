package transcript

import (
	"fmt"
	"strings"

	"docvoice/pkg/model"
)

// FormatWordLog renders one line per word ("text<TAB>start<TAB>end"),
// the format of the transcription log written next to cleaned audio.
func FormatWordLog(words []model.Word) string {
	var sb strings.Builder
	for _, w := range words {
		fmt.Fprintf(&sb, "%s\t%.2f\t%.2f\n", w.Text, w.Start, w.End)
	}
	return sb.String()
}

// TotalDurationMs returns the end of the last word in milliseconds, or 0
// for an empty sequence.
func TotalDurationMs(words []model.Word) int {
	if len(words) == 0 {
		return 0
	}
	return words[len(words)-1].EndMs()
}
