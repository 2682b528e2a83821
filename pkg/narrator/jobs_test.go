package narrator

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvoice/pkg/config"
	"docvoice/pkg/db"
	"docvoice/pkg/model"
	"docvoice/pkg/store"
)

func testRunner(t *testing.T) (*Runner, *store.SQLiteStore) {
	t.Helper()

	d, err := db.Init(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	st := store.NewSQLiteStore(d)
	cfg := config.DefaultConfig()
	cfg.Audio.OutputDir = t.TempDir()

	return NewRunner(New(cfg, nil, nil, nil, nil), st), st
}

func waitForJob(t *testing.T, st *store.SQLiteStore, id string) *model.Job {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := st.GetJob(t.Context(), id)
		require.NoError(t, err)
		if job != nil && job.Status != model.JobRunning {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestRunnerCompletesTextJob(t *testing.T) {
	runner, st := testRunner(t)

	job, err := runner.Start(t.Context(), Request{Text: "Hello there.", Voice: "Zoe", SkipTTS: true})
	require.NoError(t, err)
	assert.Equal(t, model.JobRunning, job.Status)

	final := waitForJob(t, st, job.ID)
	assert.Equal(t, model.JobDone, final.Status)

	// An explicitly chosen voice is remembered across restarts.
	v, ok := st.GetState(t.Context(), "last_voice")
	assert.True(t, ok)
	assert.Equal(t, "Zoe", v)
}

func TestSubscribeReceivesEventsAndCloses(t *testing.T) {
	runner, st := testRunner(t)

	job, err := runner.Start(t.Context(), Request{Text: "Hello there.", SkipTTS: true})
	require.NoError(t, err)

	events, cancel := runner.Subscribe(job.ID)
	defer cancel()

	// Drain until the runner closes the channel on completion.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				waitForJob(t, st, job.ID)
				return
			}
		case <-deadline:
			t.Fatal("event channel never closed")
		}
	}
}

func TestSubscribeAfterJobFinished(t *testing.T) {
	runner, st := testRunner(t)

	job, err := runner.Start(t.Context(), Request{Text: "Hello there.", SkipTTS: true})
	require.NoError(t, err)
	waitForJob(t, st, job.ID)

	// A late subscriber must not block forever on a channel nothing
	// will ever close.
	events, cancel := runner.Subscribe(job.ID)
	defer cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "expected a closed channel for a finished job")
	case <-time.After(2 * time.Second):
		t.Fatal("subscription to finished job never closed")
	}
}

func TestSubscribeUnknownJob(t *testing.T) {
	runner, _ := testRunner(t)

	events, cancel := runner.Subscribe("no-such-job")
	defer cancel()

	_, ok := <-events
	assert.False(t, ok)
}
