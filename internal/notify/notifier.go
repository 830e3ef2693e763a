// Package notify declares the presentation collaborator contract.
//
// The dispatch loop hands every event to a Notifier; chat transports
// (Discord, Slack, ...) implement this interface outside the engine.
package notify

import (
	"context"

	"github.com/challwatch/challwatch/internal/domain/model"
	"github.com/challwatch/challwatch/pkg/logger"
)

// Notifier receives delivered events. Errors are logged and isolated by the
// dispatch loop; they never halt dispatching.
type Notifier interface {
	// NewSolve announces a solve with its blood/overtake metadata.
	NewSolve(ctx context.Context, aut model.Auteur, ch model.Challenge, firstBlood bool, overtake *model.Overtake) error

	// NewChallenge announces a freshly published challenge.
	NewChallenge(ctx context.Context, ch model.Challenge) error
}

// LogNotifier writes announcements as structured log lines. It is the
// default sink when no chat transport is configured.
type LogNotifier struct {
	logger logger.Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier logging under the "notify" name.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

func (n *LogNotifier) NewSolve(ctx context.Context, aut model.Auteur, ch model.Challenge, firstBlood bool, overtake *model.Overtake) error {
	fields := []logger.Field{
		logger.String("auteur", aut.Username),
		logger.Int("auteurID", aut.ID),
		logger.String("challenge", ch.Title),
		logger.Int("challengeID", ch.ID),
		logger.Int("points", ch.Score),
		logger.Int("newScore", aut.Score),
		logger.Bool("firstBlood", firstBlood),
	}
	if overtake != nil {
		fields = append(fields,
			logger.String("nextAbove", overtake.Username),
			logger.Int("pointsNeeded", overtake.PointsNeeded),
		)
	}
	n.logger.Info(ctx, "new solve", fields...)
	return nil
}

func (n *LogNotifier) NewChallenge(ctx context.Context, ch model.Challenge) error {
	n.logger.Info(ctx, "new challenge",
		logger.String("title", ch.Title),
		logger.Int("challengeID", ch.ID),
		logger.String("category", ch.Category),
		logger.String("difficulty", ch.Difficulty),
		logger.Int("points", ch.Score),
	)
	return nil
}
