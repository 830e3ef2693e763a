package api

import (
	"net/http"
	"strings"
)

// ProfileHandler serves the per-auteur standing view.
type ProfileHandler struct {
	deps Dependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps Dependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

type overtakeView struct {
	Username     string `json:"username"`
	PointsNeeded int    `json:"points_needed"`
}

type profileResponse struct {
	ID       int           `json:"id"`
	Username string        `json:"username"`
	Score    int           `json:"score"`
	Rank     int           `json:"rank"`
	Solves   int           `json:"solves"`
	Overtake *overtakeView `json:"overtake,omitempty"`
}

// HandleGetProfile handles GET /profile/{id-or-username}.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	ref := strings.TrimPrefix(r.URL.Path, "/profile/")
	if ref == "" || strings.Contains(ref, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", errBadReference)
		return
	}

	profile, err := h.deps.Profile(r.Context(), ref)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	resp := profileResponse{
		ID:       profile.Auteur.ID,
		Username: profile.Auteur.Username,
		Score:    profile.Auteur.Score,
		Rank:     profile.Rank,
		Solves:   len(profile.Solves),
	}
	if profile.Overtake != nil {
		resp.Overtake = &overtakeView{
			Username:     profile.Overtake.Username,
			PointsNeeded: profile.Overtake.PointsNeeded,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
