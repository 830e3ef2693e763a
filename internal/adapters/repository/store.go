// Package repository defines the persistent store interface and its adapters.
package repository

import (
	"context"

	"github.com/challwatch/challwatch/internal/domain/model"
)

// Store provides keyed read/write access to observed platform state.
// It is the sole shared mutable resource of the engine; implementations
// must be safe for concurrent use by the sync cycles and the dispatch loop.
type Store interface {
	// Challenges.

	// UpsertChallenge creates or updates a challenge record. Solves are
	// managed through RecordSolve, never through the challenge payload.
	UpsertChallenge(ctx context.Context, ch model.Challenge) error
	// Challenge returns a challenge with its recorded solves, ordered by
	// validation time. Returns ErrNotFound for unknown IDs.
	Challenge(ctx context.Context, id int) (model.Challenge, error)
	// SearchChallenges returns challenges whose title contains the text,
	// case-insensitively.
	SearchChallenges(ctx context.Context, title string) ([]model.Challenge, error)
	CountChallenges(ctx context.Context) (int, error)

	// Auteurs.

	UpsertAuteur(ctx context.Context, aut model.Auteur) error
	// Auteur returns a tracked auteur. Returns ErrNotFound for unknown IDs.
	Auteur(ctx context.Context, id int) (model.Auteur, error)
	// SearchAuteurs returns tracked auteurs whose username contains the
	// text, case-insensitively. Usernames are not unique.
	SearchAuteurs(ctx context.Context, username string) ([]model.Auteur, error)
	// DeleteAuteur removes an auteur and their solves.
	// Returns ErrNotFound for unknown IDs.
	DeleteAuteur(ctx context.Context, id int) error
	// AuteursByScoreDesc returns every tracked auteur ordered by score
	// descending, ties broken by ascending ID for deterministic ranking.
	AuteursByScoreDesc(ctx context.Context) ([]model.Auteur, error)

	// Solves.

	// RecordSolve inserts a solve and bumps the auteur's score by
	// scoreDelta in a single transaction. Returns ErrDuplicateSolve when
	// the (auteur, challenge) pair was already recorded; in that case no
	// state changes.
	RecordSolve(ctx context.Context, solve model.Solve, scoreDelta int) error
	HasSolve(ctx context.Context, auteurID, challengeID int) (bool, error)
	SolvesByChallenge(ctx context.Context, challengeID int) ([]model.Solve, error)
	SolvesByAuteur(ctx context.Context, auteurID int) ([]model.Solve, error)

	// Scoreboards.

	CreateScoreboard(ctx context.Context, sb model.Scoreboard) error
	// Scoreboard looks a scoreboard up by name. Returns ErrNotFound when
	// absent.
	Scoreboard(ctx context.Context, name string) (model.Scoreboard, error)
	AddScoreboardMember(ctx context.Context, name string, auteurID int) error

	Close() error
}
