package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/websocket"

	"docvoice/pkg/narrator"
	"docvoice/pkg/store"
)

// JobsHandler serves narration job submission, listing, and progress.
type JobsHandler struct {
	runner   *narrator.Runner
	store    store.JobStore
	upgrader websocket.Upgrader
}

func NewJobsHandler(runner *narrator.Runner, js store.JobStore) *JobsHandler {
	return &JobsHandler{
		runner: runner,
		store:  js,
		upgrader: websocket.Upgrader{
			// The API binds to localhost; cross-origin browsers are fine.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type narrateRequest struct {
	InputPath string `json:"input_path"`
	Text      string `json:"text"`
	Voice     string `json:"voice"`
	Prompt    string `json:"prompt"`
	SkipTTS   bool   `json:"skip_tts"`
	Dedupe    bool   `json:"dedupe"`
}

// HandleNarrate starts a narration job.
func (h *JobsHandler) HandleNarrate(w http.ResponseWriter, r *http.Request) {
	var req narrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.InputPath == "" && req.Text == "" {
		http.Error(w, "input_path or text is required", http.StatusBadRequest)
		return
	}
	if req.InputPath != "" {
		if _, err := os.Stat(req.InputPath); err != nil {
			http.Error(w, "input file not found: "+req.InputPath, http.StatusBadRequest)
			return
		}
	}

	job, err := h.runner.Start(r.Context(), narrator.Request{
		InputPath: req.InputPath,
		Text:      req.Text,
		Voice:     req.Voice,
		Prompt:    req.Prompt,
		SkipTTS:   req.SkipTTS,
		Dedupe:    req.Dedupe,
	})
	if err != nil {
		slog.Error("Failed to start narration job", "error", err)
		http.Error(w, "failed to start job", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(job)
}

// HandleList returns recent jobs, newest first.
func (h *JobsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	jobs, err := h.store.ListJobs(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list jobs", "error", err)
		http.Error(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jobs)
}

// HandleGet returns a single job by ID.
func (h *JobsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	job, err := h.store.GetJob(r.Context(), id)
	if err != nil {
		slog.Error("Failed to load job", "id", id, "error", err)
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(job)
}

// HandleEvents streams progress events for a job over a websocket until
// the job finishes or the client disconnects.
func (h *JobsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	job, err := h.store.GetJob(r.Context(), id)
	if err != nil || job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "id", id, "error", err)
		return
	}
	defer conn.Close()

	events, cancel := h.runner.Subscribe(id)
	defer cancel()

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			slog.Debug("Event subscriber disconnected", "id", id, "error", err)
			return
		}
	}

	// Channel closed: job finished. Send the final state.
	if final, err := h.store.GetJob(r.Context(), id); err == nil && final != nil {
		_ = conn.WriteJSON(final)
	}
}
