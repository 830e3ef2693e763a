// Package rank computes derived competitive statistics over the tracked
// auteur population.
package rank

import (
	"context"
	"fmt"

	"github.com/challwatch/challwatch/internal/domain/model"
)

// Population exposes the ranked auteur listing the engine reads. The order
// is score descending with ascending ID tie-break, so equal scores rank
// deterministically.
type Population interface {
	AuteursByScoreDesc(ctx context.Context) ([]model.Auteur, error)
}

// Engine answers overtake and rank queries. Pure reads: no mutation, safe
// to call concurrently with score updates in flight. Results are advisory;
// they reflect the population at the moment of the read.
type Engine struct {
	population Population
}

// New creates a rank engine over the given population.
func New(population Population) *Engine {
	return &Engine{population: population}
}

// Overtake returns the auteur with the smallest score still strictly
// greater than auteurID's current score, and the positive gap to them.
// A nil Overtake means the auteur is at or above the top score.
func (e *Engine) Overtake(ctx context.Context, auteurID int) (*model.Overtake, error) {
	auteurs, err := e.population.AuteursByScoreDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("read population: %w", err)
	}

	self, ok := find(auteurs, auteurID)
	if !ok {
		return nil, fmt.Errorf("auteur %d: %w", auteurID, ErrUnknownAuteur)
	}

	// The list is score-descending: the last entry scoring strictly above
	// self is the nearest competitor.
	var next *model.Auteur
	for i := range auteurs {
		if auteurs[i].Score > self.Score {
			next = &auteurs[i]
			continue
		}
		break
	}
	if next == nil {
		return nil, nil // already at the top score
	}
	return &model.Overtake{
		Username:     next.Username,
		PointsNeeded: next.Score - self.Score,
	}, nil
}

// Rank returns the 1-based position of the auteur in the total order.
func (e *Engine) Rank(ctx context.Context, auteurID int) (int, error) {
	auteurs, err := e.population.AuteursByScoreDesc(ctx)
	if err != nil {
		return 0, fmt.Errorf("read population: %w", err)
	}
	for i, aut := range auteurs {
		if aut.ID == auteurID {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("auteur %d: %w", auteurID, ErrUnknownAuteur)
}

func find(auteurs []model.Auteur, id int) (model.Auteur, bool) {
	for _, aut := range auteurs {
		if aut.ID == id {
			return aut, true
		}
	}
	return model.Auteur{}, false
}
