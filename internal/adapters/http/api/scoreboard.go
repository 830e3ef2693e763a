package api

import (
	"net/http"
	"strings"
)

// ScoreboardHandler serves named sub-group rankings.
type ScoreboardHandler struct {
	deps Dependencies
}

// NewScoreboardHandler creates a new scoreboard handler.
func NewScoreboardHandler(deps Dependencies) *ScoreboardHandler {
	return &ScoreboardHandler{deps: deps}
}

type scoreboardResponse struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Members []leaderboardEntry `json:"members"`
}

// HandleGetScoreboard handles GET /scoreboard/{name}.
func (h *ScoreboardHandler) HandleGetScoreboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/scoreboard/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", errBadReference)
		return
	}

	sb, members, err := h.deps.Scoreboard(r.Context(), name)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreboardResponse{
		ID:      sb.ID,
		Name:    sb.Name,
		Members: toEntries(members),
	})
}
