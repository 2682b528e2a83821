package store

import (
	"context"
	"path/filepath"
	"testing"

	"docvoice/pkg/db"
	"docvoice/pkg/model"
)

func TestSQLiteStore(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	// Init DB
	d, err := db.Init(dbPath)
	if err != nil {
		t.Fatalf("Failed to init DB: %v", err)
	}
	defer d.Close()

	store := NewSQLiteStore(d)
	ctx := context.Background()

	testJobs(t, ctx, store)
	testJobList(t, ctx, store)
	testState(t, ctx, store)
}

func testJobs(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("Jobs", func(t *testing.T) {
		job := &model.Job{
			ID:        "job-1",
			InputPath: "deposition.pdf",
			Model:     "gemini-2.5-flash",
			Voice:     "Tara",
			Prompt:    "legal_summary_only",
			Status:    model.JobRunning,
		}

		if err := store.SaveJob(ctx, job); err != nil {
			t.Errorf("SaveJob failed: %v", err)
		}

		loaded, err := store.GetJob(ctx, "job-1")
		if err != nil {
			t.Errorf("GetJob failed: %v", err)
		}
		if loaded == nil {
			t.Fatal("GetJob returned nil")
		}
		if loaded.Voice != "Tara" {
			t.Errorf("Voice mismatch: %v", loaded.Voice)
		}
		if loaded.Status != model.JobRunning {
			t.Errorf("Status mismatch: %v", loaded.Status)
		}

		// Update to done
		job.Status = model.JobDone
		job.OutputPath = "outputs/deposition.wav"
		job.DurationMs = 183000
		if err := store.UpdateJob(ctx, job); err != nil {
			t.Errorf("UpdateJob failed: %v", err)
		}

		loaded, err = store.GetJob(ctx, "job-1")
		if err != nil {
			t.Fatalf("GetJob after update failed: %v", err)
		}
		if loaded.Status != model.JobDone {
			t.Errorf("Expected done, got %s", loaded.Status)
		}
		if loaded.OutputPath != "outputs/deposition.wav" {
			t.Errorf("OutputPath mismatch: %v", loaded.OutputPath)
		}
		if loaded.DurationMs != 183000 {
			t.Errorf("DurationMs mismatch: %v", loaded.DurationMs)
		}

		// Missing job is nil, not an error
		missing, err := store.GetJob(ctx, "no-such-job")
		if err != nil {
			t.Errorf("GetJob for missing id failed: %v", err)
		}
		if missing != nil {
			t.Errorf("Expected nil for missing job, got %+v", missing)
		}
	})
}

func testJobList(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("JobList", func(t *testing.T) {
		_ = store.SaveJob(ctx, &model.Job{ID: "list-1", Status: model.JobDone})
		_ = store.SaveJob(ctx, &model.Job{ID: "list-2", Status: model.JobFailed, Error: "tts unreachable"})

		jobs, err := store.ListJobs(ctx, 100)
		if err != nil {
			t.Fatalf("ListJobs failed: %v", err)
		}
		if len(jobs) < 2 {
			t.Errorf("Expected at least 2 jobs, got %d", len(jobs))
		}

		found := false
		for _, j := range jobs {
			if j.ID == "list-2" {
				found = true
				if j.Error != "tts unreachable" {
					t.Errorf("Error mismatch: %v", j.Error)
				}
			}
		}
		if !found {
			t.Error("list-2 not returned by ListJobs")
		}
	})
}

func testState(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("State", func(t *testing.T) {
		if err := store.SetState(ctx, "last_voice", "Leo"); err != nil {
			t.Errorf("SetState failed: %v", err)
		}

		val, ok := store.GetState(ctx, "last_voice")
		if !ok || val != "Leo" {
			t.Errorf("GetState mismatch: %v %v", val, ok)
		}

		if err := store.DeleteState(ctx, "last_voice"); err != nil {
			t.Errorf("DeleteState failed: %v", err)
		}
		if _, ok := store.GetState(ctx, "last_voice"); ok {
			t.Error("State still present after delete")
		}
	})
}
