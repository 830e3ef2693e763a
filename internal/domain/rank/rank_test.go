package rank_test

import (
	"context"
	"errors"
	"testing"

	"github.com/challwatch/challwatch/internal/domain/model"
	rank "github.com/challwatch/challwatch/internal/domain/rank"
	"github.com/smartystreets/goconvey/convey"
)

// fixedPopulation serves a pre-ordered auteur listing.
type fixedPopulation struct {
	auteurs []model.Auteur
}

func (p *fixedPopulation) AuteursByScoreDesc(ctx context.Context) ([]model.Auteur, error) {
	return p.auteurs, nil
}

func TestOvertake(t *testing.T) {
	convey.Convey("Given a ranked population", t, func() {
		ctx := context.Background()
		pop := &fixedPopulation{auteurs: []model.Auteur{
			{ID: 1, Username: "alice", Score: 500},
			{ID: 2, Username: "bob", Score: 300},
			{ID: 4, Username: "dave", Score: 300},
			{ID: 3, Username: "carol", Score: 100},
		}}
		engine := rank.New(pop)

		convey.Convey("When querying the bottom auteur", func() {
			overtake, err := engine.Overtake(ctx, 3)

			convey.Convey("Then the nearest strictly-higher competitor is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(overtake, convey.ShouldNotBeNil)
				convey.So(overtake.Username, convey.ShouldEqual, "dave")
				convey.So(overtake.PointsNeeded, convey.ShouldEqual, 200)
			})
		})

		convey.Convey("When querying an auteur in a tie", func() {
			overtake, err := engine.Overtake(ctx, 4)

			convey.Convey("Then equal scores are skipped, not targeted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(overtake, convey.ShouldNotBeNil)
				convey.So(overtake.Username, convey.ShouldEqual, "alice")
				convey.So(overtake.PointsNeeded, convey.ShouldEqual, 200)
			})
		})

		convey.Convey("When querying the top auteur", func() {
			overtake, err := engine.Overtake(ctx, 1)

			convey.Convey("Then there is nobody to overtake", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(overtake, convey.ShouldBeNil)
			})
		})

		convey.Convey("When querying an unknown auteur", func() {
			_, err := engine.Overtake(ctx, 99)

			convey.Convey("Then the error names the unknown auteur", func() {
				convey.So(errors.Is(err, rank.ErrUnknownAuteur), convey.ShouldBeTrue)
			})
		})
	})
}

func TestOvertakeMonotonicity(t *testing.T) {
	convey.Convey("Given an auteur climbing the board", t, func() {
		ctx := context.Background()
		pop := &fixedPopulation{auteurs: []model.Auteur{
			{ID: 1, Username: "alice", Score: 500},
			{ID: 2, Username: "bob", Score: 200},
		}}
		engine := rank.New(pop)

		before, err := engine.Overtake(ctx, 2)
		convey.So(err, convey.ShouldBeNil)
		convey.So(before.PointsNeeded, convey.ShouldEqual, 300)

		convey.Convey("When bob's score strictly increases", func() {
			pop.auteurs[1].Score = 350

			after, err := engine.Overtake(ctx, 2)

			convey.Convey("Then the gap strictly shrinks", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(after.PointsNeeded, convey.ShouldBeLessThan, before.PointsNeeded)
			})
		})

		convey.Convey("When bob takes the top score", func() {
			pop.auteurs[1].Score = 600
			pop.auteurs = []model.Auteur{pop.auteurs[1], pop.auteurs[0]}

			after, err := engine.Overtake(ctx, 2)

			convey.Convey("Then the overtake info becomes none", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(after, convey.ShouldBeNil)
			})
		})
	})
}

func TestRank(t *testing.T) {
	convey.Convey("Given a ranked population", t, func() {
		ctx := context.Background()
		pop := &fixedPopulation{auteurs: []model.Auteur{
			{ID: 1, Username: "alice", Score: 500},
			{ID: 2, Username: "bob", Score: 300},
			{ID: 3, Username: "carol", Score: 100},
		}}
		engine := rank.New(pop)

		convey.Convey("Then ranks are 1-based positions in the total order", func() {
			for i, auteurID := range []int{1, 2, 3} {
				r, err := engine.Rank(ctx, auteurID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(r, convey.ShouldEqual, i+1)
			}
		})

		convey.Convey("And unknown auteurs are reported", func() {
			_, err := engine.Rank(ctx, 42)
			convey.So(errors.Is(err, rank.ErrUnknownAuteur), convey.ShouldBeTrue)
		})
	})
}
