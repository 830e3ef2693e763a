package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	api "github.com/challwatch/challwatch/internal/adapters/http/api"
	repository "github.com/challwatch/challwatch/internal/adapters/repository"
	app "github.com/challwatch/challwatch/internal/app"
	"github.com/challwatch/challwatch/internal/domain/model"
)

// fakeDeps serves canned engine state to the handlers.
type fakeDeps struct {
	gate     *app.Gate
	auteurs  []model.Auteur
	profiles map[string]app.Profile
	boards   map[string]model.Scoreboard
	queueLen int
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		gate:     app.NewGate(),
		profiles: make(map[string]app.Profile),
		boards:   make(map[string]model.Scoreboard),
	}
}

func (f *fakeDeps) TopAuteurs(_ context.Context, n int) ([]model.Auteur, error) {
	if n > 0 && n < len(f.auteurs) {
		return f.auteurs[:n], nil
	}
	return f.auteurs, nil
}

func (f *fakeDeps) Profile(_ context.Context, ref string) (app.Profile, error) {
	p, ok := f.profiles[ref]
	if !ok {
		return app.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeDeps) Scoreboard(_ context.Context, name string) (model.Scoreboard, []model.Auteur, error) {
	sb, ok := f.boards[name]
	if !ok {
		return model.Scoreboard{}, nil, repository.ErrNotFound
	}
	return sb, f.auteurs, nil
}

func (f *fakeDeps) QueueLen(_ context.Context) int { return f.queueLen }

func (f *fakeDeps) Gate() *app.Gate { return f.gate }

func newTestServer(deps api.Dependencies) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(mux)
	return httptest.NewServer(mux)
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec // test server URL
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestOpsSurface(t *testing.T) {
	convey.Convey("Given an ops server over a fake engine", t, func() {
		deps := newFakeDeps()
		deps.auteurs = []model.Auteur{
			{ID: 7, Username: "alice", Score: 60},
			{ID: 8, Username: "bob", Score: 10},
		}
		deps.profiles["alice"] = app.Profile{
			Auteur: model.Auteur{ID: 7, Username: "alice", Score: 60},
			Rank:   1,
			Solves: []model.Solve{{AuteurID: 7, ChallengeID: 1}},
		}
		deps.profiles["8"] = app.Profile{
			Auteur:   model.Auteur{ID: 8, Username: "bob", Score: 10},
			Rank:     2,
			Overtake: &model.Overtake{Username: "alice", PointsNeeded: 50},
		}
		deps.boards["team-red"] = model.Scoreboard{ID: "sb-1", Name: "team-red", AuteurIDs: []int{7, 8}}
		deps.queueLen = 3

		srv := newTestServer(deps)
		defer srv.Close()

		convey.Convey("Then /healthz reports readiness from the gate", func() {
			var health struct {
				Status string `json:"status"`
				Ready  bool   `json:"ready"`
			}
			convey.So(getJSON(t, srv.URL+"/healthz", &health), convey.ShouldEqual, http.StatusOK)
			convey.So(health.Status, convey.ShouldEqual, "ok")
			convey.So(health.Ready, convey.ShouldBeFalse)

			deps.gate.Open()
			getJSON(t, srv.URL+"/healthz", &health)
			convey.So(health.Ready, convey.ShouldBeTrue)
		})

		convey.Convey("Then /leaderboard honors the limit parameter", func() {
			var entries []struct {
				Rank     int    `json:"rank"`
				Username string `json:"username"`
			}
			convey.So(getJSON(t, srv.URL+"/leaderboard?limit=1", &entries), convey.ShouldEqual, http.StatusOK)
			convey.So(len(entries), convey.ShouldEqual, 1)
			convey.So(entries[0].Rank, convey.ShouldEqual, 1)
			convey.So(entries[0].Username, convey.ShouldEqual, "alice")

			convey.So(getJSON(t, srv.URL+"/leaderboard?limit=bogus", nil), convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("Then /profile serves the standing view", func() {
			var profile struct {
				Username string `json:"username"`
				Rank     int    `json:"rank"`
				Overtake *struct {
					Username     string `json:"username"`
					PointsNeeded int    `json:"points_needed"`
				} `json:"overtake"`
			}
			convey.So(getJSON(t, srv.URL+"/profile/8", &profile), convey.ShouldEqual, http.StatusOK)
			convey.So(profile.Username, convey.ShouldEqual, "bob")
			convey.So(profile.Rank, convey.ShouldEqual, 2)
			convey.So(profile.Overtake, convey.ShouldNotBeNil)
			convey.So(profile.Overtake.PointsNeeded, convey.ShouldEqual, 50)

			convey.So(getJSON(t, srv.URL+"/profile/ghost", nil), convey.ShouldEqual, http.StatusNotFound)
			convey.So(getJSON(t, srv.URL+"/profile/", nil), convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("Then /scoreboard serves named boards", func() {
			var board struct {
				Name    string `json:"name"`
				Members []struct {
					Username string `json:"username"`
				} `json:"members"`
			}
			convey.So(getJSON(t, srv.URL+"/scoreboard/team-red", &board), convey.ShouldEqual, http.StatusOK)
			convey.So(board.Name, convey.ShouldEqual, "team-red")
			convey.So(len(board.Members), convey.ShouldEqual, 2)

			convey.So(getJSON(t, srv.URL+"/scoreboard/missing", nil), convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("Then /stats exposes the queue depth", func() {
			var stats struct {
				QueueDepth int `json:"queue_depth"`
			}
			convey.So(getJSON(t, srv.URL+"/stats", &stats), convey.ShouldEqual, http.StatusOK)
			convey.So(stats.QueueDepth, convey.ShouldEqual, 3)
		})

		convey.Convey("Then /metrics serves the Prometheus registry", func() {
			resp, err := http.Get(srv.URL + "/metrics")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})
	})
}
