package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextUnchanged(t *testing.T) {
	pieces := SplitLongText("  A short paragraph. ", 750)
	require.Len(t, pieces, 1)
	assert.Equal(t, "A short paragraph.", pieces[0])
}

func TestSplitAtSentenceBoundaryPastLimit(t *testing.T) {
	// 900 characters with the only period at index 760: the first piece
	// runs through the period (761 chars), the rest forms the second.
	text := strings.Repeat("a", 760) + "." + strings.Repeat("b", 139)
	require.Len(t, text, 900)

	pieces := SplitLongText(text, 750)
	require.Len(t, pieces, 2)
	assert.Len(t, pieces[0], 761)
	assert.True(t, strings.HasSuffix(pieces[0], "."))
	assert.Len(t, pieces[1], 139)
}

func TestSplitHardCutWithoutBoundary(t *testing.T) {
	text := strings.Repeat("x", 1600)
	pieces := SplitLongText(text, 750)
	require.Len(t, pieces, 3)
	assert.Len(t, pieces[0], 750)
	assert.Len(t, pieces[1], 750)
	assert.Len(t, pieces[2], 100)
}

func TestSplitExclamationCountsAsBoundary(t *testing.T) {
	text := strings.Repeat("a", 100) + "!" + strings.Repeat("b", 100)
	pieces := SplitLongText(text, 100)
	require.Len(t, pieces, 2)
	assert.Len(t, pieces[0], 101)
	assert.Len(t, pieces[1], 100)
}

func TestSplitReconstructsInput(t *testing.T) {
	// Concatenating the pieces reproduces the input modulo whitespace
	// trimmed at the cut points.
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 60)
	pieces := SplitLongText(text, 300)
	require.Greater(t, len(pieces), 1)

	var rebuilt strings.Builder
	for i, p := range pieces {
		assert.Equal(t, strings.TrimSpace(p), p)
		if i > 0 {
			rebuilt.WriteString(" ")
		}
		rebuilt.WriteString(p)
	}
	assert.Equal(t, strings.TrimSpace(text), rebuilt.String())
}

func TestSplitDefaultsWhenMaxLengthUnset(t *testing.T) {
	pieces := SplitLongText("tiny", 0)
	assert.Equal(t, []string{"tiny"}, pieces)
}
