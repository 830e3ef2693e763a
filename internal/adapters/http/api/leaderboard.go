package api

import (
	"net/http"
	"strconv"

	"github.com/challwatch/challwatch/internal/domain/model"
)

const defaultLeaderboardLimit = 25

// LeaderboardHandler serves the tracked-auteur ranking.
type LeaderboardHandler struct {
	deps Dependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

type leaderboardEntry struct {
	Rank     int    `json:"rank"`
	ID       int    `json:"id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", errInvalidLimit)
			return
		}
		limit = n
	}

	auteurs, err := h.deps.TopAuteurs(r.Context(), limit)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntries(auteurs))
}

func toEntries(auteurs []model.Auteur) []leaderboardEntry {
	entries := make([]leaderboardEntry, 0, len(auteurs))
	for i, aut := range auteurs {
		entries = append(entries, leaderboardEntry{
			Rank:     i + 1,
			ID:       aut.ID,
			Username: aut.Username,
			Score:    aut.Score,
		})
	}
	return entries
}
