package orpheus

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvoice/pkg/config"
	"docvoice/pkg/tracker"
	"docvoice/pkg/tts"
)

func testProvider(endpoint string) *Provider {
	return NewProvider(config.TTSConfig{
		Engine:   "orpheus",
		Endpoint: endpoint,
		Speed:    1.0,
	}, tracker.New())
}

func TestSynthesizeWritesAudio(t *testing.T) {
	audio := bytes.Repeat([]byte{0xAB}, 4096)

	var got speechRequest
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(audio)
	}))
	defer svr.Close()

	p := testProvider(svr.URL)
	outPath := filepath.Join(t.TempDir(), "chunk.wav")

	var lastPercent int
	format, err := p.Synthesize(context.Background(), "Objection, your honor.", "Tara", outPath,
		func(percent int) { lastPercent = percent })
	require.NoError(t, err)
	assert.Equal(t, "wav", format)
	assert.Equal(t, 100, lastPercent)

	// Voice names go over the wire lowercased.
	assert.Equal(t, "tara", got.Voice)
	assert.Equal(t, "wav", got.ResponseFormat)
	assert.Equal(t, "orpheus-tts", got.Model)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, audio, data)
}

func TestSynthesizeRejectsTinyResponse(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not audio"))
	}))
	defer svr.Close()

	p := testProvider(svr.URL)
	_, err := p.Synthesize(context.Background(), "Hi.", "Tara", filepath.Join(t.TempDir(), "o.wav"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "small audio")
}

func TestSynthesizeFatalStatus(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer svr.Close()

	p := testProvider(svr.URL)
	_, err := p.Synthesize(context.Background(), "Hi.", "Tara", filepath.Join(t.TempDir(), "o.wav"), nil)
	require.Error(t, err)
	assert.True(t, tts.IsFatalError(err))
}

func TestSynthesizeRequiresVoice(t *testing.T) {
	p := testProvider("http://localhost:0")
	_, err := p.Synthesize(context.Background(), "Hi.", "", "out.wav", nil)
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Even an error status means the server is there.
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer svr.Close()

	p := testProvider(svr.URL)
	assert.NoError(t, p.HealthCheck(context.Background()))

	svr.Close()
	assert.Error(t, p.HealthCheck(context.Background()))
}
