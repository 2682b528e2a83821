package model

import (
	"math"
	"time"
)

// Word is a single timed token from a transcript.
// Start and End are offsets in seconds from the beginning of the audio.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// StartMs returns the word's start offset in milliseconds. Rounded, not
// truncated; transcribers emit float artifacts like 1.7299999.
func (w Word) StartMs() int {
	return int(math.Round(w.Start * 1000))
}

// EndMs returns the word's end offset in milliseconds.
func (w Word) EndMs() int {
	return int(math.Round(w.End * 1000))
}

// RemovalInterval is a half-open range [StartMs, EndMs) in the audio's
// millisecond timeline marked for excision.
type RemovalInterval struct {
	StartMs int `json:"start_ms"`
	EndMs   int `json:"end_ms"`
}

// DurationMs returns the length of the interval.
func (r RemovalInterval) DurationMs() int {
	return r.EndMs - r.StartMs
}

// Gender partitions the voice catalog for speaker assignment.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// Voice is a synthesizer voice identity.
type Voice struct {
	Name        string `json:"name"`
	Gender      Gender `json:"gender"`
	Description string `json:"description"`
}

// Chunk is a bounded-length unit of text paired with the voice that
// should speak it. This is the final unit handed to TTS.
type Chunk struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// ProgressEvent is one entry in the ordered stream of pipeline progress.
// The core algorithms never log; the orchestrator emits these as data.
type ProgressEvent struct {
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	Percent   int       `json:"percent"` // -1 when not meaningful
	Timestamp time.Time `json:"timestamp"`
}

// Job records one narration run.
type Job struct {
	ID         string    `json:"id"`
	InputPath  string    `json:"input_path"`
	Model      string    `json:"model"`
	Voice      string    `json:"voice"`
	Prompt     string    `json:"prompt"`
	Status     string    `json:"status"` // "running", "done", "failed"
	OutputPath string    `json:"output_path"`
	DurationMs int       `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Job status values.
const (
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)
