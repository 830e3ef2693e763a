package api

import "net/http"

// StatsHandler serves a small operational snapshot.
type StatsHandler struct {
	deps Dependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps Dependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

type statsResponse struct {
	Ready      bool `json:"ready"`
	QueueDepth int  `json:"queue_depth"`
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Ready:      h.deps.Gate().Ready(),
		QueueDepth: h.deps.QueueLen(r.Context()),
	})
}
