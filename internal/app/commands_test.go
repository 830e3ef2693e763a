package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/challwatch/challwatch/internal/adapters/platform"
	repository "github.com/challwatch/challwatch/internal/adapters/repository"
	app "github.com/challwatch/challwatch/internal/app"
	"github.com/challwatch/challwatch/internal/domain/model"
)

// commandSource serves the platform lookups the command surface needs.
type commandSource struct {
	auteurs map[int]platform.AuteurSnapshot
	byName  map[string][]platform.AuteurSnapshot
}

func (s *commandSource) Challenges(_ context.Context) ([]platform.ChallengeSnapshot, error) {
	return nil, nil
}

func (s *commandSource) Auteur(_ context.Context, id int) (platform.AuteurSnapshot, error) {
	snap, ok := s.auteurs[id]
	if !ok {
		return platform.AuteurSnapshot{}, platform.ErrNotFound
	}
	return snap, nil
}

func (s *commandSource) SearchAuteurs(_ context.Context, name string) ([]platform.AuteurSnapshot, error) {
	return s.byName[name], nil
}

func seededFixture(ctx context.Context, t *testing.T) (*app.Service, repository.Store, *commandSource) {
	t.Helper()
	store := repository.NewMemoryStore()
	for _, ch := range []model.Challenge{
		{ID: 1, Title: "SQL injection basics", Category: "Web", Score: 10},
		{ID: 2, Title: "SQL injection blind", Category: "Web", Score: 30},
		{ID: 3, Title: "Stack smash", Category: "Pwn", Score: 50},
	} {
		if err := store.UpsertChallenge(ctx, ch); err != nil {
			t.Fatalf("seed challenge: %v", err)
		}
	}
	for _, aut := range []model.Auteur{
		{ID: 7, Username: "alice"},
		{ID: 8, Username: "bob"},
	} {
		if err := store.UpsertAuteur(ctx, aut); err != nil {
			t.Fatalf("seed auteur: %v", err)
		}
	}
	now := time.Now()
	for _, s := range []struct {
		solve model.Solve
		delta int
	}{
		{model.Solve{AuteurID: 7, ChallengeID: 1, ValidatedAt: now}, 10},
		{model.Solve{AuteurID: 7, ChallengeID: 3, ValidatedAt: now.Add(time.Minute)}, 50},
		{model.Solve{AuteurID: 8, ChallengeID: 1, ValidatedAt: now.Add(2 * time.Minute)}, 10},
	} {
		if err := store.RecordSolve(ctx, s.solve, s.delta); err != nil {
			t.Fatalf("seed solve: %v", err)
		}
	}

	src := &commandSource{
		auteurs: map[int]platform.AuteurSnapshot{},
		byName:  map[string][]platform.AuteurSnapshot{},
	}
	svc := app.New(store, src)
	svc.Gate().Open()
	return svc, store, src
}

func TestAuteurCommands(t *testing.T) {
	convey.Convey("Given a seeded engine", t, func() {
		ctx := context.Background()
		svc, store, src := seededFixture(ctx, t)

		convey.Convey("When adding an auteur by an unambiguous name", func() {
			src.auteurs[9] = platform.AuteurSnapshot{
				ID: 9, Username: "carol", Score: 40,
				Solves: []platform.SolveSnapshot{
					{ChallengeID: 2, ValidatedAt: time.Now()},
				},
			}
			src.byName["carol"] = []platform.AuteurSnapshot{src.auteurs[9]}

			aut, err := svc.AddAuteurByName(ctx, "carol")

			convey.Convey("Then the auteur and their history land silently", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(aut.Username, convey.ShouldEqual, "carol")
				convey.So(aut.Score, convey.ShouldEqual, 40)
				ok, err := store.HasSolve(ctx, 9, 2)
				convey.So(err, convey.ShouldBeNil)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(svc.QueueLen(ctx), convey.ShouldEqual, 0)
			})

			convey.Convey("Then adding again is a no-op returning the record", func() {
				again, err := svc.AddAuteurByName(ctx, "carol")
				convey.So(err, convey.ShouldBeNil)
				convey.So(again.ID, convey.ShouldEqual, 9)
			})
		})

		convey.Convey("When the name matches nobody", func() {
			_, err := svc.AddAuteurByName(ctx, "nobody")
			convey.So(errors.Is(err, platform.ErrNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("When the name matches several users", func() {
			src.byName["smith"] = []platform.AuteurSnapshot{
				{ID: 20, Username: "smith"},
				{ID: 21, Username: "smithy"},
			}
			_, err := svc.AddAuteurByName(ctx, "smith")

			convey.Convey("Then the candidates come back for disambiguation", func() {
				convey.So(errors.Is(err, app.ErrAmbiguous), convey.ShouldBeTrue)
				var amb *app.AmbiguousAuteursError
				convey.So(errors.As(err, &amb), convey.ShouldBeTrue)
				convey.So(len(amb.Candidates), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When removing an auteur by username", func() {
			removed, err := svc.RemoveAuteur(ctx, "alice")

			convey.Convey("Then the auteur and their solves are gone", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(removed.ID, convey.ShouldEqual, 7)
				_, err = store.Auteur(ctx, 7)
				convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
				ok, err := store.HasSolve(ctx, 7, 1)
				convey.So(err, convey.ShouldBeNil)
				convey.So(ok, convey.ShouldBeFalse)
			})

			convey.Convey("Then re-adding replays the history without noise", func() {
				src.auteurs[7] = platform.AuteurSnapshot{
					ID: 7, Username: "alice", Score: 60,
					Solves: []platform.SolveSnapshot{
						{ChallengeID: 1, ValidatedAt: time.Now()},
						{ChallengeID: 3, ValidatedAt: time.Now()},
					},
				}
				aut, err := svc.AddAuteurByID(ctx, 7)
				convey.So(err, convey.ShouldBeNil)
				convey.So(aut.Score, convey.ShouldEqual, 60)
				convey.So(svc.QueueLen(ctx), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When asking for a profile by ID", func() {
			profile, err := svc.Profile(ctx, "8")

			convey.Convey("Then rank, solves and the chase target are filled in", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(profile.Auteur.Username, convey.ShouldEqual, "bob")
				convey.So(profile.Rank, convey.ShouldEqual, 2)
				convey.So(len(profile.Solves), convey.ShouldEqual, 1)
				convey.So(profile.Overtake, convey.ShouldNotBeNil)
				convey.So(profile.Overtake.Username, convey.ShouldEqual, "alice")
				convey.So(profile.Overtake.PointsNeeded, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When asking for the leader's profile", func() {
			profile, err := svc.Profile(ctx, "alice")
			convey.So(err, convey.ShouldBeNil)
			convey.So(profile.Rank, convey.ShouldEqual, 1)
			convey.So(profile.Overtake, convey.ShouldBeNil)
		})
	})
}

func TestChallengeCommands(t *testing.T) {
	convey.Convey("Given a seeded engine", t, func() {
		ctx := context.Background()
		svc, _, _ := seededFixture(ctx, t)

		convey.Convey("When asking who solved a challenge by ID", func() {
			ch, solvers, err := svc.WhoSolved(ctx, "1")

			convey.Convey("Then the solvers come back in validation order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ch.Title, convey.ShouldEqual, "SQL injection basics")
				convey.So(len(solvers), convey.ShouldEqual, 2)
				convey.So(solvers[0].Username, convey.ShouldEqual, "alice")
				convey.So(solvers[1].Username, convey.ShouldEqual, "bob")
			})
		})

		convey.Convey("When the title fragment is unambiguous", func() {
			ch, solvers, err := svc.WhoSolved(ctx, "stack")
			convey.So(err, convey.ShouldBeNil)
			convey.So(ch.ID, convey.ShouldEqual, 3)
			convey.So(len(solvers), convey.ShouldEqual, 1)
		})

		convey.Convey("When the title fragment matches several challenges", func() {
			_, _, err := svc.WhoSolved(ctx, "SQL injection")
			convey.So(errors.Is(err, app.ErrAmbiguous), convey.ShouldBeTrue)
			var amb *app.AmbiguousChallengesError
			convey.So(errors.As(err, &amb), convey.ShouldBeTrue)
			convey.So(len(amb.Candidates), convey.ShouldEqual, 2)
		})

		convey.Convey("When the title matches nothing", func() {
			_, _, err := svc.WhoSolved(ctx, "nonexistent")
			convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
		})
	})
}

func TestScoreboardCommands(t *testing.T) {
	convey.Convey("Given a seeded engine", t, func() {
		ctx := context.Background()
		svc, _, _ := seededFixture(ctx, t)

		convey.Convey("When creating a scoreboard and adding members", func() {
			sb, err := svc.CreateScoreboard(ctx, "team-red")
			convey.So(err, convey.ShouldBeNil)
			convey.So(sb.ID, convey.ShouldNotBeEmpty)

			convey.So(svc.AddToScoreboard(ctx, "team-red", "bob"), convey.ShouldBeNil)
			convey.So(svc.AddToScoreboard(ctx, "team-red", "7"), convey.ShouldBeNil)

			convey.Convey("Then members come back ordered by score", func() {
				_, members, err := svc.Scoreboard(ctx, "team-red")
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(members), convey.ShouldEqual, 2)
				convey.So(members[0].Username, convey.ShouldEqual, "alice")
				convey.So(members[1].Username, convey.ShouldEqual, "bob")
			})

			convey.Convey("Then creating the same name again returns it", func() {
				same, err := svc.CreateScoreboard(ctx, "team-red")
				convey.So(err, convey.ShouldBeNil)
				convey.So(same.ID, convey.ShouldEqual, sb.ID)
			})
		})

		convey.Convey("When listing the top auteurs", func() {
			top, err := svc.TopAuteurs(ctx, 1)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(top), convey.ShouldEqual, 1)
			convey.So(top[0].Username, convey.ShouldEqual, "alice")

			all, err := svc.TopAuteurs(ctx, 0)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(all), convey.ShouldEqual, 2)
		})
	})
}
