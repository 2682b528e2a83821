// Package stt defines the transcription interface used by the dedupe pass.
package stt

import (
	"context"

	"docvoice/pkg/model"
)

// Transcriber converts an audio file into word-level timestamps.
type Transcriber interface {
	// Transcribe returns the words of the audio at path in spoken order,
	// each with start and end times in seconds.
	Transcribe(ctx context.Context, path string) ([]model.Word, error)
}
