package tts

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const (
	// MinAudioSize is the minimum size of a synthesized audio file (1KB).
	// Files smaller than this are likely failed synthesis attempts.
	MinAudioSize = 1024
)

// ProgressFunc reports synthesis download progress as a percentage (0-100).
type ProgressFunc func(percent int)

// Provider defines the interface for Text-To-Speech engines.
type Provider interface {
	// Synthesize generates audio from text and writes it to outputPath.
	// progress may be nil. Returns the audio format ("mp3", "wav") and error.
	Synthesize(ctx context.Context, text, voice, outputPath string, progress ProgressFunc) (string, error)

	// HealthCheck verifies that the engine is configured and reachable.
	HealthCheck(ctx context.Context) error
}

// TempAudioName returns a unique filename for a synthesized chunk.
func TempAudioName() string {
	return "tts_" + strings.ReplaceAll(uuid.New().String(), "-", "") + ".wav"
}

// FatalError represents a TTS error that should abort the narration run
// instead of being retried per chunk. Examples: rate limits (429), server
// errors (5xx), auth failures (401/403).
type FatalError struct {
	StatusCode int
	Message    string
}

func (e *FatalError) Error() string {
	return e.Message
}

// NewFatalError creates a new FatalError with the given status code and message.
func NewFatalError(statusCode int, message string) *FatalError {
	return &FatalError{StatusCode: statusCode, Message: message}
}

// IsFatalError checks if an error is a TTS fatal error.
func IsFatalError(err error) bool {
	_, ok := err.(*FatalError)
	return ok
}
