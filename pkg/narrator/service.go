// Package narrator orchestrates the document-to-audio pipeline: text
// acquisition, chunking, synthesis, assembly, and the optional dedupe
// pass over the finished narration.
package narrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docvoice/pkg/audio"
	"docvoice/pkg/chunker"
	"docvoice/pkg/config"
	"docvoice/pkg/document"
	"docvoice/pkg/llm"
	"docvoice/pkg/llm/prompts"
	"docvoice/pkg/model"
	"docvoice/pkg/stt"
	"docvoice/pkg/tts"
	"docvoice/pkg/voices"
)

// ProgressFunc receives pipeline progress events. May be nil.
type ProgressFunc func(ev model.ProgressEvent)

// Service runs narration requests.
type Service struct {
	cfg     *config.Config
	llm     llm.Provider    // nil when provider is "none"
	tts     tts.Provider    // nil when synthesis is skipped entirely
	stt     stt.Transcriber // nil when dedupe is unavailable
	prompts *prompts.Manager
}

// Request describes one narration run.
type Request struct {
	InputPath string // source document; ignored when Text is set
	Text      string // narrate this text directly, bypassing the LLM
	Voice     string // main narration voice
	Prompt    string // prompt template name; empty uses the configured default
	SkipTTS   bool   // stop after producing the script
	Dedupe    bool   // run the repeat-removal pass on the finished audio
}

// Result holds the outputs of a narration run.
type Result struct {
	Script     string
	Chunks     int
	OutputPath string // empty when SkipTTS
	DurationMs int
	Dedupe     *DedupeResult // nil when the pass did not run
}

// New creates a narration service. llmProvider, ttsProvider and
// transcriber may each be nil; the corresponding stages are skipped or
// rejected at request time.
func New(cfg *config.Config, llmProvider llm.Provider, ttsProvider tts.Provider, transcriber stt.Transcriber, pm *prompts.Manager) *Service {
	return &Service{
		cfg:     cfg,
		llm:     llmProvider,
		tts:     ttsProvider,
		stt:     transcriber,
		prompts: pm,
	}
}

// Narrate runs the pipeline for one request.
func (s *Service) Narrate(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	voice := req.Voice
	if voice == "" {
		voice = s.cfg.Narrator.UserVoice
	}
	if _, ok := voices.ByName(voice); !ok {
		return nil, fmt.Errorf("unknown voice: %s", voice)
	}

	script, err := s.buildScript(ctx, req, progress)
	if err != nil {
		return nil, err
	}

	emit(progress, "chunk", "Segmenting script", 0)
	chunks := chunker.Chunks(script, voice, voices.Catalog(), s.cfg.Chunker.MaxChunkLength)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("script produced no narratable text")
	}
	slog.Info("Script chunked", "chunks", len(chunks), "voice", voice)

	result := &Result{Script: script, Chunks: len(chunks)}
	if req.SkipTTS {
		return result, nil
	}
	if s.tts == nil {
		return nil, fmt.Errorf("no TTS engine configured")
	}

	outputPath, durationMs, err := s.synthesize(ctx, req, chunks, progress)
	if err != nil {
		return nil, err
	}
	result.OutputPath = outputPath
	result.DurationMs = durationMs

	if req.Dedupe {
		if s.stt == nil {
			slog.Warn("Dedupe requested but no transcriber configured, skipping")
		} else {
			dr, err := s.Dedupe(ctx, outputPath, progress)
			if err != nil {
				// The narration itself succeeded; a failed cleanup pass
				// should not discard it.
				slog.Error("Dedupe pass failed, keeping original narration", "error", err)
			} else {
				result.Dedupe = dr
				if dr.Cleaned {
					result.OutputPath = dr.OutputPath
					result.DurationMs = dr.DurationMs
				}
			}
		}
	}

	emit(progress, "done", "Narration complete", 100)
	return result, nil
}

// buildScript produces the tagged narration script from the request.
func (s *Service) buildScript(ctx context.Context, req Request, progress ProgressFunc) (string, error) {
	if strings.TrimSpace(req.Text) != "" {
		return req.Text, nil
	}
	if req.InputPath == "" {
		return "", fmt.Errorf("either an input document or text is required")
	}

	if s.llm == nil {
		emit(progress, "extract", "Extracting document text", 0)
		doc, err := document.ExtractFile(req.InputPath)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(doc.Text) == "" {
			return "", fmt.Errorf("document contains no extractable text")
		}
		return doc.Text, nil
	}

	promptName := req.Prompt
	if promptName == "" {
		promptName = s.cfg.Narrator.Prompt
	}
	prompt, err := s.prompts.Render(promptName, prompts.Data{Username: s.cfg.Narrator.Username})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	emit(progress, "summarize", fmt.Sprintf("Generating script with %q prompt", promptName), 0)
	script, err := s.llm.GenerateDocument(ctx, promptName, prompt, req.InputPath)
	if err != nil {
		return "", fmt.Errorf("script generation failed: %w", err)
	}
	if strings.TrimSpace(script) == "" {
		return "", fmt.Errorf("model returned an empty script")
	}
	return script, nil
}

// synthesize runs TTS per chunk and assembles the final narration.
func (s *Service) synthesize(ctx context.Context, req Request, chunks []model.Chunk, progress ProgressFunc) (string, int, error) {
	outputDir := s.cfg.Audio.OutputDir
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create output dir: %w", err)
	}

	var chunkPaths []string
	cleanup := func() {
		for _, p := range chunkPaths {
			_ = os.Remove(p)
		}
	}
	defer cleanup()

	for i, chunk := range chunks {
		if ctx.Err() != nil {
			return "", 0, ctx.Err()
		}

		percent := 100 * i / len(chunks)
		emit(progress, "synthesize", fmt.Sprintf("Synthesizing chunk %d/%d (%s)", i+1, len(chunks), chunk.Voice), percent)

		path := filepath.Join(outputDir, tts.TempAudioName())
		if _, err := s.tts.Synthesize(ctx, chunk.Text, chunk.Voice, path, nil); err != nil {
			if tts.IsFatalError(err) {
				return "", 0, fmt.Errorf("synthesis aborted at chunk %d: %w", i+1, err)
			}
			// Retry once; transient hiccups on long runs are common.
			slog.Warn("Chunk synthesis failed, retrying", "chunk", i+1, "error", err)
			if _, err := s.tts.Synthesize(ctx, chunk.Text, chunk.Voice, path, nil); err != nil {
				return "", 0, fmt.Errorf("synthesis failed at chunk %d: %w", i+1, err)
			}
		}
		chunkPaths = append(chunkPaths, path)
	}

	emit(progress, "assemble", "Assembling narration", 95)
	buf, err := audio.Concat(chunkPaths, s.cfg.Audio.PauseMs)
	if err != nil {
		return "", 0, err
	}

	outputPath := filepath.Join(outputDir, outputBaseName(req)+".wav")
	if err := audio.ExportWAV(buf, outputPath); err != nil {
		return "", 0, err
	}

	slog.Info("Narration assembled", "path", outputPath, "duration_ms", audio.DurationMs(buf))
	return outputPath, audio.DurationMs(buf), nil
}

func outputBaseName(req Request) string {
	if req.InputPath != "" {
		base := filepath.Base(req.InputPath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "narration_" + time.Now().Format("20060102_150405")
}

func emit(progress ProgressFunc, stage, message string, percent int) {
	if progress == nil {
		return
	}
	progress(model.ProgressEvent{
		Stage:     stage,
		Message:   message,
		Percent:   percent,
		Timestamp: time.Now(),
	})
}
