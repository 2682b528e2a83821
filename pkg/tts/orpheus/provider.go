// Package orpheus implements tts.Provider for an Orpheus TTS server
// exposing the OpenAI-compatible /v1/audio/speech route.
package orpheus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"docvoice/pkg/config"
	"docvoice/pkg/tracker"
	"docvoice/pkg/tts"
)

// Provider implements tts.Provider for Orpheus.
type Provider struct {
	endpoint string
	model    string
	speed    float64
	tracker  *tracker.Tracker

	// Streaming downloads bypass the shared queued client; synthesis of a
	// long chunk can run minutes and is throttled by the server itself.
	httpClient *http.Client
}

type speechRequest struct {
	Input          string  `json:"input"`
	Model          string  `json:"model"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed"`
}

// NewProvider creates a new Orpheus provider.
func NewProvider(cfg config.TTSConfig, t *tracker.Tracker) *Provider {
	model := cfg.Model
	if model == "" {
		model = "orpheus-tts"
	}
	speed := cfg.Speed
	if speed == 0 {
		speed = 1.0
	}
	return &Provider{
		endpoint:   cfg.Endpoint,
		model:      model,
		speed:      speed,
		tracker:    t,
		httpClient: &http.Client{Timeout: 500 * time.Second},
	}
}

// Synthesize generates a .wav file by streaming the Orpheus response to disk.
func (p *Provider) Synthesize(ctx context.Context, text, voice, outputPath string, progress tts.ProgressFunc) (string, error) {
	if voice == "" {
		return "", fmt.Errorf("voice is required")
	}

	payload, err := json.Marshal(speechRequest{
		Input:          text,
		Model:          p.model,
		Voice:          strings.ToLower(voice),
		ResponseFormat: "wav",
		Speed:          p.speed,
	})
	if err != nil {
		return "", fmt.Errorf("marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if p.tracker != nil {
		p.tracker.AddCharsOut("orpheus", int64(len(text)))
	}

	slog.Debug("Requesting audio from Orpheus", "voice", voice, "chars", len(text))
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.trackFailure()
		return "", fmt.Errorf("orpheus request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 || resp.StatusCode >= 500 || resp.StatusCode == 401 || resp.StatusCode == 403 {
		p.trackFailure()
		return "", tts.NewFatalError(resp.StatusCode, fmt.Sprintf("orpheus error: status %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		p.trackFailure()
		return "", fmt.Errorf("orpheus error: status %d", resp.StatusCode)
	}

	written, err := streamToFile(resp.Body, outputPath, resp.ContentLength, progress)
	if err != nil {
		p.trackFailure()
		return "", err
	}
	if written < tts.MinAudioSize {
		p.trackFailure()
		return "", fmt.Errorf("orpheus returned suspiciously small audio (%d bytes)", written)
	}

	if p.tracker != nil {
		p.tracker.TrackAPISuccess("orpheus")
		p.tracker.AddBytesIn("orpheus", written)
	}
	return "wav", nil
}

// HealthCheck probes the endpoint. Any HTTP response counts as alive;
// Orpheus has no dedicated health route.
func (p *Provider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "HEAD", p.endpoint, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("orpheus unreachable at %s: %w", p.endpoint, err)
	}
	resp.Body.Close()
	return nil
}

func (p *Provider) trackFailure() {
	if p.tracker != nil {
		p.tracker.TrackAPIFailure("orpheus")
	}
}

func streamToFile(r io.Reader, path string, total int64, progress tts.ProgressFunc) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	var written int64
	buf := make([]byte, 8192)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return written, fmt.Errorf("write audio: %w", writeErr)
			}
			written += int64(n)
			if progress != nil && total > 0 {
				percent := int(100 * written / total)
				if percent > 99 {
					percent = 99
				}
				progress(percent)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, fmt.Errorf("read audio stream: %w", readErr)
		}
	}

	if progress != nil {
		progress(100)
	}
	return written, nil
}
