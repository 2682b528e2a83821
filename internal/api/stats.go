package api

import (
	"encoding/json"
	"net/http"

	"docvoice/pkg/tracker"
)

// StatsHandler serves provider usage counters.
type StatsHandler struct {
	tracker *tracker.Tracker
}

func NewStatsHandler(t *tracker.Tracker) *StatsHandler {
	return &StatsHandler{tracker: t}
}

type ProviderStatsDTO struct {
	APISuccess  int64 `json:"api_success"`
	APIFailures int64 `json:"api_errors"`
	Retries     int64 `json:"retries"`
	BytesIn     int64 `json:"bytes_in"`
	CharsOut    int64 `json:"chars_out"`
}

type StatsResponse struct {
	Providers map[string]ProviderStatsDTO `json:"providers"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	resp := StatsResponse{
		Providers: make(map[string]ProviderStatsDTO),
	}
	for provider, stats := range snapshot {
		resp.Providers[provider] = ProviderStatsDTO{
			APISuccess:  stats.APISuccess,
			APIFailures: stats.APIFailures,
			Retries:     stats.Retries,
			BytesIn:     stats.BytesIn,
			CharsOut:    stats.CharsOut,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
