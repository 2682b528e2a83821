package narrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"docvoice/pkg/audio"
	"docvoice/pkg/splice"
	"docvoice/pkg/transcript"
)

// DedupeResult holds the outcome of a repeat-removal pass.
type DedupeResult struct {
	Cleaned    bool   // false when no repeats were found
	OutputPath string // the cleaned file, or the original when not cleaned
	DurationMs int
	RemovedMs  int
	Matches    []transcript.Match
	LogPath    string // word-timestamp log written next to the audio
}

// Dedupe transcribes the narration, finds adjacent repeats, and splices
// them out into a new <name>_Cleaned.wav next to the original.
func (s *Service) Dedupe(ctx context.Context, audioPath string, progress ProgressFunc) (*DedupeResult, error) {
	if s.stt == nil {
		return nil, fmt.Errorf("no transcriber configured")
	}

	emit(progress, "transcribe", "Transcribing narration for repeat detection", 0)
	words, err := s.stt.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	logPath := base + "_WHISPERLOG.txt"
	if err := os.WriteFile(logPath, []byte(transcript.FormatWordLog(words)), 0o644); err != nil {
		slog.Warn("Failed to write word log", "path", logPath, "error", err)
		logPath = ""
	}

	detector := transcript.NewDetector()
	if s.cfg.Dedupe.MinWords > 0 {
		detector.MinWords = s.cfg.Dedupe.MinWords
	}
	if s.cfg.Dedupe.MaxPhraseLen > 0 {
		detector.MaxPhraseLen = s.cfg.Dedupe.MaxPhraseLen
	}
	if s.cfg.Dedupe.MaxGapMs > 0 {
		detector.MaxGapMs = float64(s.cfg.Dedupe.MaxGapMs)
	}

	emit(progress, "detect", "Scanning for adjacent repeats", 50)
	intervals, matches := detector.Detect(words)
	for _, m := range matches {
		slog.Info("Repeat detected", "detail", m.Describe())
	}

	if len(intervals) == 0 {
		slog.Info("No repeats found, audio left untouched", "path", audioPath)
		return &DedupeResult{
			Cleaned:    false,
			OutputPath: audioPath,
			LogPath:    logPath,
			Matches:    matches,
		}, nil
	}

	emit(progress, "splice", fmt.Sprintf("Removing %d repeated passage(s)", len(intervals)), 75)
	buf, err := audio.Load(audioPath)
	if err != nil {
		return nil, fmt.Errorf("load narration: %w", err)
	}

	splice.SortIntervals(intervals)
	cleaned := audio.Cut(buf, intervals)

	outputPath := base + "_Cleaned" + filepath.Ext(audioPath)
	if err := audio.ExportWAV(cleaned, outputPath); err != nil {
		return nil, fmt.Errorf("export cleaned narration: %w", err)
	}

	removed := 0
	for _, iv := range intervals {
		removed += iv.DurationMs()
	}
	slog.Info("Narration cleaned", "path", outputPath, "removed_ms", removed, "repeats", len(intervals))

	return &DedupeResult{
		Cleaned:    true,
		OutputPath: outputPath,
		DurationMs: audio.DurationMs(cleaned),
		RemovedMs:  removed,
		Matches:    matches,
		LogPath:    logPath,
	}, nil
}
