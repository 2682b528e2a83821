package api

import (
	"encoding/json"
	"net/http"

	"docvoice/pkg/llm/prompts"
	"docvoice/pkg/voices"
)

// VoicesHandler serves the voice catalog and prompt template names.
type VoicesHandler struct {
	prompts *prompts.Manager
}

// NewVoicesHandler creates the handler. pm may be nil when no prompt
// directory is configured.
func NewVoicesHandler(pm *prompts.Manager) *VoicesHandler {
	return &VoicesHandler{prompts: pm}
}

type voiceDTO struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Description string `json:"description"`
}

func (h *VoicesHandler) HandleVoices(w http.ResponseWriter, r *http.Request) {
	catalog := voices.Catalog()
	out := make([]voiceDTO, 0, len(catalog))
	for _, v := range catalog {
		out = append(out, voiceDTO{
			Name:        v.Name,
			Gender:      string(v.Gender),
			Description: v.Description,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *VoicesHandler) HandlePrompts(w http.ResponseWriter, r *http.Request) {
	var names []string
	if h.prompts != nil {
		names = h.prompts.Names()
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"prompts": names})
}
