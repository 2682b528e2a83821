// Package whisper implements stt.Transcriber against the OpenAI Whisper
// API or a compatible local server.
package whisper

import (
	"context"
	"fmt"

	gopenai "github.com/sashabaranov/go-openai"

	"docvoice/pkg/config"
	"docvoice/pkg/model"
	"docvoice/pkg/tracker"
)

// Client implements stt.Transcriber using go-openai.
type Client struct {
	client  *gopenai.Client
	model   string
	tracker *tracker.Tracker
}

// NewClient creates a new Whisper client. BaseURL may point at a local
// whisper server exposing the OpenAI audio routes.
func NewClient(cfg config.STTConfig, t *tracker.Tracker) *Client {
	clientCfg := gopenai.DefaultConfig(cfg.Key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "whisper-1"
	}

	return &Client{
		client:  gopenai.NewClientWithConfig(clientCfg),
		model:   modelName,
		tracker: t,
	}
}

// Transcribe requests a verbose transcription with word granularity and
// maps it to the internal word model.
func (c *Client) Transcribe(ctx context.Context, path string) ([]model.Word, error) {
	resp, err := c.client.CreateTranscription(ctx, gopenai.AudioRequest{
		Model:    c.model,
		FilePath: path,
		Format:   gopenai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []gopenai.TranscriptionTimestampGranularity{
			gopenai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		if c.tracker != nil {
			c.tracker.TrackAPIFailure("whisper")
		}
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	if c.tracker != nil {
		c.tracker.TrackAPISuccess("whisper")
	}

	words := make([]model.Word, 0, len(resp.Words))
	for _, w := range resp.Words {
		words = append(words, model.Word{
			Text:  w.Word,
			Start: w.Start,
			End:   w.End,
		})
	}
	return words, nil
}
