// Package openai implements tts.Provider for the OpenAI speech API.
// Useful when no local Orpheus server is available.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	gopenai "github.com/sashabaranov/go-openai"

	"docvoice/pkg/config"
	"docvoice/pkg/tracker"
	"docvoice/pkg/tts"
)

// Provider implements tts.Provider using go-openai.
type Provider struct {
	client  *gopenai.Client
	model   string
	speed   float64
	tracker *tracker.Tracker
}

// NewProvider creates a new OpenAI TTS provider.
func NewProvider(cfg config.TTSConfig, t *tracker.Tracker) *Provider {
	model := cfg.Model
	if model == "" || model == "orpheus-tts" {
		model = string(gopenai.TTSModel1)
	}
	speed := cfg.Speed
	if speed == 0 {
		speed = 1.0
	}
	return &Provider{
		client:  gopenai.NewClient(cfg.Key),
		model:   model,
		speed:   speed,
		tracker: t,
	}
}

// Synthesize generates a .wav file via the speech endpoint. The catalog
// voice name is passed through lowercased; OpenAI rejects names outside
// its own set, which surfaces as a fatal error.
func (p *Provider) Synthesize(ctx context.Context, text, voice, outputPath string, progress tts.ProgressFunc) (string, error) {
	if voice == "" {
		return "", fmt.Errorf("voice is required")
	}

	if p.tracker != nil {
		p.tracker.AddCharsOut("openai", int64(len(text)))
	}

	resp, err := p.client.CreateSpeech(ctx, gopenai.CreateSpeechRequest{
		Model:          gopenai.SpeechModel(p.model),
		Input:          text,
		Voice:          gopenai.SpeechVoice(strings.ToLower(voice)),
		ResponseFormat: gopenai.SpeechResponseFormatWav,
		Speed:          p.speed,
	})
	if err != nil {
		if p.tracker != nil {
			p.tracker.TrackAPIFailure("openai")
		}
		var apiErr *gopenai.APIError
		if errors.As(err, &apiErr) && fatalStatus(apiErr.HTTPStatusCode) {
			return "", tts.NewFatalError(apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("openai speech failed: %w", err)
	}
	defer resp.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp)
	if err != nil {
		if p.tracker != nil {
			p.tracker.TrackAPIFailure("openai")
		}
		return "", fmt.Errorf("write audio: %w", err)
	}
	if written < tts.MinAudioSize {
		if p.tracker != nil {
			p.tracker.TrackAPIFailure("openai")
		}
		return "", fmt.Errorf("openai returned suspiciously small audio (%d bytes)", written)
	}

	if p.tracker != nil {
		p.tracker.TrackAPISuccess("openai")
		p.tracker.AddBytesIn("openai", written)
	}
	if progress != nil {
		progress(100)
	}
	return "wav", nil
}

func fatalStatus(code int) bool {
	return code == 429 || code == 401 || code == 403 || code >= 500
}

// HealthCheck verifies the API key is set.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if p.client == nil {
		return fmt.Errorf("openai client not configured")
	}
	return nil
}
