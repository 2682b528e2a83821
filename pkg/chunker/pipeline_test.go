package chunker

import (
	"strings"
	"testing"

	"docvoice/pkg/voices"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunksTwoSpeakerDialogue(t *testing.T) {
	chunks := Chunks("<SPEAKER 1>Hello there.<SPEAKER 2>Hi back.",
		"Tara", testVoices("Tara", "Leo", "Mia"), 750)

	require.Len(t, chunks, 2)
	assert.Equal(t, "Hello there.", chunks[0].Text)
	assert.Equal(t, "Mia", chunks[0].Voice)
	assert.Equal(t, "Hi back.", chunks[1].Text)
	assert.Equal(t, "Leo", chunks[1].Voice)
}

func TestChunksUntaggedTextAllUserVoice(t *testing.T) {
	chunks := Chunks("No tags anywhere in this text.", "Zoe", voices.Catalog(), 750)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Zoe", chunks[0].Voice)
	assert.Equal(t, "No tags anywhere in this text.", chunks[0].Text)
}

func TestChunksLongSpanSplitKeepsVoice(t *testing.T) {
	long := strings.Repeat("Words and more words. ", 60) // ~1320 chars
	chunks := Chunks("<AI Summary>"+long, "Tara", voices.Catalog(), 400)

	require.Greater(t, len(chunks), 1)
	voice := chunks[0].Voice
	assert.NotEqual(t, "Tara", voice)
	for _, c := range chunks {
		assert.Equal(t, voice, c.Voice)
	}
}

func TestChunksMixedNarrationAndDialogueOrder(t *testing.T) {
	text := "Opening line. <SPEAKER 1>First speech.<SPEAKER 2>Second speech. Closing handled by speaker two."
	chunks := Chunks(text, "Tara", voices.Catalog(), 750)

	require.Len(t, chunks, 3)
	assert.Equal(t, "Opening line.", chunks[0].Text)
	assert.Equal(t, "Tara", chunks[0].Voice)
	assert.Equal(t, "First speech.", chunks[1].Text)
	assert.Equal(t, "Second speech. Closing handled by speaker two.", chunks[2].Text)
	assert.NotEqual(t, chunks[1].Voice, chunks[2].Voice)
}

func TestChunksEmptyInput(t *testing.T) {
	assert.Empty(t, Chunks("", "Tara", voices.Catalog(), 750))
	assert.Empty(t, Chunks("   \n ", "Tara", voices.Catalog(), 750))
}

func TestChunksDeterministic(t *testing.T) {
	text := "<SPEAKER 1>A.<SPEAKER 2>B.<SPEAKER 3>C.<SPEAKER 1>D."
	first := Chunks(text, "Tara", voices.Catalog(), 750)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Chunks(text, "Tara", voices.Catalog(), 750))
	}
}
