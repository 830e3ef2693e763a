// Package api declares the HTTP ops surface and its route registration.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	repository "github.com/challwatch/challwatch/internal/adapters/repository"
	app "github.com/challwatch/challwatch/internal/app"
	"github.com/challwatch/challwatch/internal/domain/model"
	"github.com/challwatch/challwatch/internal/domain/rank"
)

// Dependencies is the engine surface the handlers read from. Using an
// interface bundle keeps the handler layer loosely coupled to the service.
type Dependencies interface {
	TopAuteurs(ctx context.Context, n int) ([]model.Auteur, error)
	Profile(ctx context.Context, ref string) (app.Profile, error)
	Scoreboard(ctx context.Context, name string) (model.Scoreboard, []model.Auteur, error)
	QueueLen(ctx context.Context) int
	Gate() *app.Gate
}

// Server wires the HTTP routes of the ops surface.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	profileHandler     *ProfileHandler
	scoreboardHandler  *ScoreboardHandler
}

// NewServer creates the ops server over the engine.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		profileHandler:     NewProfileHandler(deps),
		scoreboardHandler:  NewScoreboardHandler(deps),
	}
}

// Register attaches all routes to mux, most specific first.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/profile/", MetricsMiddleware(s.profileHandler.HandleGetProfile, "profile"))
	mux.HandleFunc("/scoreboard/", MetricsMiddleware(s.scoreboardHandler.HandleGetScoreboard, "scoreboard"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeLookupError maps the engine's lookup errors onto HTTP statuses.
func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, rank.ErrUnknownAuteur):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, app.ErrAmbiguous):
		writeError(w, http.StatusConflict, "ambiguous", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
