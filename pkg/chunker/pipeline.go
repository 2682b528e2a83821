package chunker

import (
	"docvoice/pkg/model"
)

// Chunks runs the full text pipeline: segment the raw text by tags, bind
// a voice to each span, then split every span's content to the length
// limit. The result preserves the original text's linear order. A chunk
// may run past maxLength only up to the first sentence boundary beyond
// it; with no boundary in reach the hard cut applies.
func Chunks(text, userVoice string, allVoices []model.Voice, maxLength int) []model.Chunk {
	if maxLength <= 0 {
		maxLength = DefaultMaxChunkLength
	}

	spans := Segment(text)
	binder := NewBinder(userVoice, allVoices)

	var chunks []model.Chunk
	for _, bound := range binder.Bind(spans) {
		for _, piece := range SplitLongText(bound.Text, maxLength) {
			if piece == "" {
				continue
			}
			chunks = append(chunks, model.Chunk{Text: piece, Voice: bound.Voice})
		}
	}
	return chunks
}
