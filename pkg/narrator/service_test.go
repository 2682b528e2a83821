package narrator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvoice/pkg/audio"
	"docvoice/pkg/config"
	"docvoice/pkg/llm/prompts"
	"docvoice/pkg/model"
	"docvoice/pkg/tts"
)

func promptManager(t *testing.T, templates map[string]string) *prompts.Manager {
	t.Helper()
	dir := t.TempDir()
	for name, content := range templates {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".tmpl"), []byte(content), 0o644))
	}
	pm, err := prompts.NewManager(dir)
	require.NoError(t, err)
	return pm
}

type toneStreamer struct {
	remaining int
}

func (t *toneStreamer) Stream(samples [][2]float64) (int, bool) {
	if t.remaining <= 0 {
		return 0, false
	}
	n := len(samples)
	if n > t.remaining {
		n = t.remaining
	}
	for i := 0; i < n; i++ {
		samples[i][0], samples[i][1] = 0.1, 0.1
	}
	t.remaining -= n
	return n, true
}

func (t *toneStreamer) Err() error { return nil }

func writeToneWAV(t *testing.T, path string, ms int) {
	t.Helper()
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	buf := beep.NewBuffer(format)
	buf.Append(&toneStreamer{remaining: format.SampleRate.N(time.Duration(ms) * time.Millisecond)})
	require.NoError(t, audio.ExportWAV(buf, path))
}

// fakeTTS writes a short tone per chunk and records what it was asked for.
type fakeTTS struct {
	calls []model.Chunk
}

func (f *fakeTTS) Synthesize(ctx context.Context, text, voice, outputPath string, progress tts.ProgressFunc) (string, error) {
	f.calls = append(f.calls, model.Chunk{Text: text, Voice: voice})
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	buf := beep.NewBuffer(format)
	buf.Append(&toneStreamer{remaining: format.SampleRate.N(200 * time.Millisecond)})
	return "wav", audio.ExportWAV(buf, outputPath)
}

func (f *fakeTTS) HealthCheck(ctx context.Context) error { return nil }

type fakeLLM struct {
	script string
}

func (f *fakeLLM) GenerateText(ctx context.Context, name, prompt string) (string, error) {
	return f.script, nil
}

func (f *fakeLLM) GenerateDocument(ctx context.Context, name, prompt, docPath string) (string, error) {
	return f.script, nil
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return nil }

type fakeSTT struct {
	words []model.Word
}

func (f *fakeSTT) Transcribe(ctx context.Context, path string) ([]model.Word, error) {
	return f.words, nil
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Audio.OutputDir = t.TempDir()
	cfg.Audio.PauseMs = 50
	return cfg
}

func TestNarrateTextSkipTTS(t *testing.T) {
	svc := New(testConfig(t), nil, nil, nil, nil)

	res, err := svc.Narrate(context.Background(), Request{
		Text:    "<SPEAKER 1>Hello.<SPEAKER 2>Hi.",
		SkipTTS: true,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Chunks)
	assert.Empty(t, res.OutputPath)
}

func TestNarrateUnknownVoice(t *testing.T) {
	svc := New(testConfig(t), nil, nil, nil, nil)

	_, err := svc.Narrate(context.Background(), Request{Text: "x", Voice: "Nobody"}, nil)
	assert.ErrorContains(t, err, "unknown voice")
}

func TestNarrateRequiresInput(t *testing.T) {
	svc := New(testConfig(t), nil, nil, nil, nil)

	_, err := svc.Narrate(context.Background(), Request{SkipTTS: true}, nil)
	assert.Error(t, err)
}

func TestNarrateSynthesizesAndAssembles(t *testing.T) {
	cfg := testConfig(t)
	engine := &fakeTTS{}
	svc := New(cfg, nil, engine, nil, nil)

	var events []model.ProgressEvent
	res, err := svc.Narrate(context.Background(), Request{
		Text:  "Opening line. <SPEAKER 1>First speech.<SPEAKER 2>Second speech.",
		Voice: "Tara",
	}, func(ev model.ProgressEvent) { events = append(events, ev) })
	require.NoError(t, err)

	require.Len(t, engine.calls, 3)
	assert.Equal(t, "Tara", engine.calls[0].Voice)
	assert.NotEqual(t, engine.calls[1].Voice, engine.calls[2].Voice)

	require.FileExists(t, res.OutputPath)
	// 3 tones of 200ms plus 2 pauses of 50ms
	assert.InDelta(t, 700, res.DurationMs, 10)

	// Chunk temp files are cleaned up, leaving only the narration
	entries, err := os.ReadDir(cfg.Audio.OutputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	stages := make(map[string]bool)
	for _, ev := range events {
		stages[ev.Stage] = true
	}
	assert.True(t, stages["synthesize"])
	assert.True(t, stages["assemble"])
	assert.True(t, stages["done"])
}

func TestNarrateUsesLLMScript(t *testing.T) {
	cfg := testConfig(t)
	docPath := filepath.Join(t.TempDir(), "case.txt")
	require.NoError(t, os.WriteFile(docPath, []byte("raw document"), 0o644))

	pm := promptManager(t, map[string]string{"legal_summary_only": "Summarize for {{.Username}}."})
	svc := New(cfg, &fakeLLM{script: "<AI Summary>The gist of the case."}, nil, nil, pm)

	res, err := svc.Narrate(context.Background(), Request{InputPath: docPath, SkipTTS: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, res.Script, "The gist of the case.")
	assert.Equal(t, 1, res.Chunks)
}

func TestDedupeSplicesRepeats(t *testing.T) {
	cfg := testConfig(t)
	narrationPath := filepath.Join(cfg.Audio.OutputDir, "case.wav")
	writeToneWAV(t, narrationPath, 3000)

	// "the court finds the court finds" with the second copy at 1000-1800ms
	stt := &fakeSTT{words: []model.Word{
		{Text: "the", Start: 0.0, End: 0.3},
		{Text: "court", Start: 0.3, End: 0.6},
		{Text: "finds", Start: 0.6, End: 0.9},
		{Text: "the", Start: 1.0, End: 1.3},
		{Text: "court", Start: 1.3, End: 1.6},
		{Text: "finds", Start: 1.6, End: 1.8},
		{Text: "liability", Start: 2.0, End: 2.9},
	}}
	svc := New(cfg, nil, nil, stt, nil)

	res, err := svc.Dedupe(context.Background(), narrationPath, nil)
	require.NoError(t, err)

	assert.True(t, res.Cleaned)
	assert.Equal(t, filepath.Join(cfg.Audio.OutputDir, "case_Cleaned.wav"), res.OutputPath)
	require.FileExists(t, res.OutputPath)
	assert.Equal(t, 800, res.RemovedMs)
	assert.InDelta(t, 2200, res.DurationMs, 5)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "the court finds", res.Matches[0].Phrase)

	require.FileExists(t, res.LogPath)
	logData, err := os.ReadFile(res.LogPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(logData), "the\t0.00\t0.30"))
}

func TestDedupeCleanAudioUntouched(t *testing.T) {
	cfg := testConfig(t)
	narrationPath := filepath.Join(cfg.Audio.OutputDir, "clean.wav")
	writeToneWAV(t, narrationPath, 1000)

	stt := &fakeSTT{words: []model.Word{
		{Text: "no", Start: 0.0, End: 0.3},
		{Text: "repeats", Start: 0.3, End: 0.6},
		{Text: "here", Start: 0.6, End: 0.9},
	}}
	svc := New(cfg, nil, nil, stt, nil)

	res, err := svc.Dedupe(context.Background(), narrationPath, nil)
	require.NoError(t, err)

	assert.False(t, res.Cleaned)
	assert.Equal(t, narrationPath, res.OutputPath)
	assert.NoFileExists(t, filepath.Join(cfg.Audio.OutputDir, "clean_Cleaned.wav"))
}
