// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// Challenge mirrors a scored task on the external platform. ID is the
// platform's stable identifier; Score never changes once published.
type Challenge struct {
	ID         int
	Title      string
	Category   string
	Difficulty string
	Score      int
	Solves     []Solve // ordered by validation time
}

// SolverIDs returns the set of auteur IDs that solved the challenge.
func (c *Challenge) SolverIDs() map[int]struct{} {
	ids := make(map[int]struct{}, len(c.Solves))
	for _, s := range c.Solves {
		ids[s.AuteurID] = struct{}{}
	}
	return ids
}

// Auteur is a tracked platform user. Rank is derived from relative scores
// and never stored.
type Auteur struct {
	ID       int
	Username string
	Score    int
}

// Solve records one auteur completing one challenge. Immutable once created;
// unique per (auteur, challenge) pair.
type Solve struct {
	AuteurID    int
	ChallengeID int
	ValidatedAt time.Time
}

// Key returns the stable identity of the (auteur, challenge) pair.
func (s Solve) Key() string {
	return SolveKey(s.AuteurID, s.ChallengeID)
}

// SolveKey builds the keyed-set identity for a (auteur, challenge) pair.
func SolveKey(auteurID, challengeID int) string {
	return fmt.Sprintf("%d/%d", auteurID, challengeID)
}

// Scoreboard is a named, user-curated subset of tracked auteurs. Display
// only; the sync engine never reads it.
type Scoreboard struct {
	ID        string
	Name      string
	AuteurIDs []int
}

// Overtake names the nearest strictly higher-scoring competitor and the
// positive point gap to them.
type Overtake struct {
	Username     string
	PointsNeeded int
}
