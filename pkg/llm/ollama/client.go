// Package ollama implements llm.Provider for a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"docvoice/pkg/config"
	"docvoice/pkg/document"
	"docvoice/pkg/request"
	"docvoice/pkg/tracker"
)

// Client implements llm.Provider against the Ollama chat API.
type Client struct {
	host    string
	model   string
	rc      *request.Client
	tracker *tracker.Tracker
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// NewClient creates a new Ollama client.
func NewClient(cfg config.LLMConfig, rc *request.Client, t *tracker.Tracker) *Client {
	host := strings.TrimRight(cfg.OllamaHost, "/")
	if host == "" {
		host = "http://localhost:11434"
	}
	return &Client{
		host:    host,
		model:   cfg.Model,
		rc:      rc,
		tracker: t,
	}
}

// GenerateText sends a prompt through the chat endpoint.
func (c *Client) GenerateText(ctx context.Context, name, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	if c.tracker != nil {
		c.tracker.AddCharsOut("ollama", int64(len(prompt)))
	}

	body, err := c.rc.Post(ctx, "ollama", c.host+"/api/chat", payload, "application/json")
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", resp.Error)
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return "", fmt.Errorf("ollama returned empty response")
	}
	return resp.Message.Content, nil
}

// GenerateDocument inlines the extracted document text into the prompt.
// Ollama has no file upload API.
func (c *Client) GenerateDocument(ctx context.Context, name, prompt, docPath string) (string, error) {
	doc, err := document.ExtractFile(docPath)
	if err != nil {
		return "", fmt.Errorf("extract document: %w", err)
	}
	combined := prompt + "\n\n<START OF DOCUMENT>\n" + doc.Text + "\n<END OF DOCUMENT>"
	return c.GenerateText(ctx, name, combined)
}

// HealthCheck verifies the server is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.rc.Get(ctx, "ollama", c.host+"/api/tags", nil); err != nil {
		return fmt.Errorf("ollama unreachable at %s: %w", c.host, err)
	}
	return nil
}
