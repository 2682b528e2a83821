package narrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"docvoice/pkg/model"
	"docvoice/pkg/store"
)

// Runner executes narration requests as background jobs and fans
// progress events out to subscribers.
type Runner struct {
	svc   *Service
	store store.JobStore

	mu      sync.Mutex
	running map[string]bool
	subs    map[string][]chan model.ProgressEvent
}

// NewRunner creates a job runner backed by the given store.
func NewRunner(svc *Service, js store.JobStore) *Runner {
	return &Runner{
		svc:     svc,
		store:   js,
		running: make(map[string]bool),
		subs:    make(map[string][]chan model.ProgressEvent),
	}
}

// Start persists a new job and runs the request in the background.
// The returned job reflects the initial running state.
func (r *Runner) Start(ctx context.Context, req Request) (*model.Job, error) {
	job := &model.Job{
		ID:        uuid.NewString(),
		InputPath: req.InputPath,
		Model:     r.svc.cfg.LLM.Model,
		Voice:     req.Voice,
		Prompt:    req.Prompt,
		Status:    model.JobRunning,
		CreatedAt: time.Now(),
	}
	if job.Voice == "" {
		job.Voice = r.svc.cfg.Narrator.UserVoice
	}
	if job.Prompt == "" {
		job.Prompt = r.svc.cfg.Narrator.Prompt
	}

	if err := r.store.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	// Remember the last explicitly chosen voice across restarts.
	if req.Voice != "" {
		if ss, ok := r.store.(store.StateStore); ok {
			if err := ss.SetState(ctx, "last_voice", req.Voice); err != nil {
				slog.Warn("Failed to persist voice preference", "error", err)
			}
		}
	}

	r.mu.Lock()
	r.running[job.ID] = true
	r.mu.Unlock()

	go r.run(*job, req)
	return job, nil
}

// run executes the request detached from the caller's context; an HTTP
// client disconnecting must not cancel a half-synthesized narration.
func (r *Runner) run(job model.Job, req Request) {
	ctx := context.Background()

	res, err := r.svc.Narrate(ctx, req, func(ev model.ProgressEvent) {
		r.broadcast(job.ID, ev)
	})

	if err != nil {
		job.Status = model.JobFailed
		job.Error = err.Error()
		slog.Error("Narration job failed", "id", job.ID, "error", err)
	} else {
		job.Status = model.JobDone
		job.OutputPath = res.OutputPath
		job.DurationMs = res.DurationMs
		slog.Info("Narration job finished", "id", job.ID, "output", res.OutputPath)
	}

	if updateErr := r.store.UpdateJob(ctx, &job); updateErr != nil {
		slog.Error("Failed to persist job result", "id", job.ID, "error", updateErr)
	}

	r.closeSubscribers(job.ID)
}

// Subscribe returns a channel of progress events for the job. The cancel
// function must be called when the subscriber goes away. The channel is
// closed when the job finishes; subscribing to a job that already finished
// (or was never started) yields an already-closed channel.
func (r *Runner) Subscribe(jobID string) (<-chan model.ProgressEvent, func()) {
	ch := make(chan model.ProgressEvent, 16)

	r.mu.Lock()
	if !r.running[jobID] {
		r.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	r.subs[jobID] = append(r.subs[jobID], ch)
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		chans := r.subs[jobID]
		for i, c := range chans {
			if c == ch {
				r.subs[jobID] = append(chans[:i], chans[i+1:]...)
				close(c)
				break
			}
		}
	}
	return ch, cancel
}

func (r *Runner) broadcast(jobID string, ev model.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ch := range r.subs[jobID] {
		// Slow subscribers drop events rather than stall synthesis.
		select {
		case ch <- ev:
		default:
		}
	}
}

func (r *Runner) closeSubscribers(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ch := range r.subs[jobID] {
		close(ch)
	}
	delete(r.subs, jobID)
	delete(r.running, jobID)
}
