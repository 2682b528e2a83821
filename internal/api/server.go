// Package api exposes the HTTP control surface for narration jobs.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"docvoice/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, jobs *JobsHandler, voicesH *VoicesHandler, stats *StatsHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 2. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 3. Voice and Prompt Catalogs
	mux.HandleFunc("GET /api/voices", voicesH.HandleVoices)
	mux.HandleFunc("GET /api/prompts", voicesH.HandlePrompts)

	// 4. Stats Endpoint
	mux.Handle("GET /api/stats", stats)

	// 5. Narration Jobs
	mux.HandleFunc("POST /api/narrate", jobs.HandleNarrate)
	mux.HandleFunc("GET /api/jobs", jobs.HandleList)
	mux.HandleFunc("GET /api/jobs/{id}", jobs.HandleGet)
	mux.HandleFunc("GET /api/jobs/{id}/events", jobs.HandleEvents)

	// 6. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// Websocket event streams outlive the write timeout; handlers
		// that need it reset deadlines themselves.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
