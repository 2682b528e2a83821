package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvoice/pkg/config"
	"docvoice/pkg/request"
	"docvoice/pkg/tracker"
)

func testClient(host string) *Client {
	return NewClient(config.LLMConfig{
		Provider:   "ollama",
		Model:      "llama3.2",
		OllamaHost: host,
	}, request.New(tracker.New(), nil), tracker.New())
}

func TestGenerateText(t *testing.T) {
	var got chatRequest
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "<AI Summary>The witness agreed."},
		})
	}))
	defer svr.Close()

	c := testClient(svr.URL)
	out, err := c.GenerateText(context.Background(), "summary", "Summarize the deposition.")
	require.NoError(t, err)
	assert.Equal(t, "<AI Summary>The witness agreed.", out)

	assert.Equal(t, "llama3.2", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestGenerateTextServerError(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{Error: "model not found"})
	}))
	defer svr.Close()

	c := testClient(svr.URL)
	_, err := c.GenerateText(context.Background(), "summary", "Hello.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestGenerateTextEmptyResponse(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer svr.Close()

	c := testClient(svr.URL)
	_, err := c.GenerateText(context.Background(), "summary", "Hello.")
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer svr.Close()

	assert.NoError(t, testClient(svr.URL).HealthCheck(context.Background()))
}
