package app

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"

	"github.com/challwatch/challwatch/internal/adapters/platform"
	repository "github.com/challwatch/challwatch/internal/adapters/repository"
	"github.com/challwatch/challwatch/internal/domain/model"
	"github.com/challwatch/challwatch/pkg/logger"
	"github.com/challwatch/challwatch/pkg/metrics"
)

// Command operations. Every operation waits on the bootstrap gate first so
// commands never observe a half-imported store.

// Profile is the enriched auteur view returned by the Profile operation.
type Profile struct {
	Auteur   model.Auteur
	Rank     int
	Solves   []model.Solve
	Overtake *model.Overtake
}

// AddAuteurByID starts tracking the auteur with the given platform ID.
// The auteur's full solve history is imported quietly; tracking someone
// must not replay their past as fresh notifications.
func (s *Service) AddAuteurByID(ctx context.Context, id int) (model.Auteur, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return model.Auteur{}, err
	}

	if aut, err := s.store.Auteur(ctx, id); err == nil {
		return aut, nil // already tracked
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.Auteur{}, err
	}

	if err := s.importAuteur(ctx, id); err != nil {
		return model.Auteur{}, err
	}

	aut, err := s.store.Auteur(ctx, id)
	if err != nil {
		return model.Auteur{}, err
	}
	s.logger.Info(ctx, "auteur tracked",
		logger.Int("auteurID", aut.ID), logger.String("username", aut.Username))
	return aut, nil
}

// AddAuteurByName resolves a username on the platform and starts tracking
// the match. Zero matches yield platform.ErrNotFound; more than one yields
// an AmbiguousAuteursError listing the candidates.
func (s *Service) AddAuteurByName(ctx context.Context, name string) (model.Auteur, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return model.Auteur{}, err
	}

	snaps, err := s.source.SearchAuteurs(ctx, name)
	if err != nil {
		return model.Auteur{}, err
	}
	switch len(snaps) {
	case 0:
		return model.Auteur{}, platform.ErrNotFound
	case 1:
		return s.AddAuteurByID(ctx, snaps[0].ID)
	default:
		candidates := make([]model.Auteur, 0, len(snaps))
		for _, snap := range snaps {
			candidates = append(candidates, model.Auteur{
				ID:       snap.ID,
				Username: snap.Username,
				Score:    snap.Score,
			})
		}
		return model.Auteur{}, &AmbiguousAuteursError{Candidates: candidates}
	}
}

// RemoveAuteur stops tracking an auteur identified by ID or username.
// Their solves go with them; a later re-add reimports the history quietly.
func (s *Service) RemoveAuteur(ctx context.Context, ref string) (model.Auteur, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return model.Auteur{}, err
	}

	aut, err := s.resolveAuteur(ctx, ref)
	if err != nil {
		return model.Auteur{}, err
	}

	solves, err := s.store.SolvesByAuteur(ctx, aut.ID)
	if err != nil {
		return model.Auteur{}, err
	}
	if err := s.store.DeleteAuteur(ctx, aut.ID); err != nil {
		return model.Auteur{}, err
	}
	for _, solve := range solves {
		s.seen.Unrecord(ctx, solve.AuteurID, solve.ChallengeID)
	}

	s.logger.Info(ctx, "auteur untracked",
		logger.Int("auteurID", aut.ID), logger.String("username", aut.Username))
	return aut, nil
}

// Profile returns the tracked auteur's current standing: score, rank,
// solve history, and who to overtake next.
func (s *Service) Profile(ctx context.Context, ref string) (Profile, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return Profile{}, err
	}

	aut, err := s.resolveAuteur(ctx, ref)
	if err != nil {
		return Profile{}, err
	}

	position, err := s.ranker.Rank(ctx, aut.ID)
	if err != nil {
		return Profile{}, err
	}
	overtake, err := s.ranker.Overtake(ctx, aut.ID)
	if err != nil {
		return Profile{}, err
	}
	solves, err := s.store.SolvesByAuteur(ctx, aut.ID)
	if err != nil {
		return Profile{}, err
	}

	return Profile{Auteur: aut, Rank: position, Solves: solves, Overtake: overtake}, nil
}

// WhoSolved reports the tracked auteurs who solved a challenge identified
// by ID or by title fragment. Title lookups follow the 0/1/many contract:
// no match is ErrNotFound, several matches return the candidates through
// an AmbiguousChallengesError.
func (s *Service) WhoSolved(ctx context.Context, ref string) (model.Challenge, []model.Auteur, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return model.Challenge{}, nil, err
	}

	ch, err := s.resolveChallenge(ctx, ref)
	if err != nil {
		return model.Challenge{}, nil, err
	}

	solvers := make([]model.Auteur, 0, len(ch.Solves))
	for _, solve := range ch.Solves {
		aut, err := s.store.Auteur(ctx, solve.AuteurID)
		if err != nil {
			return model.Challenge{}, nil, err
		}
		solvers = append(solvers, aut)
	}
	return ch, solvers, nil
}

// TopAuteurs returns the top n tracked auteurs by score. n <= 0 returns
// the whole board.
func (s *Service) TopAuteurs(ctx context.Context, n int) ([]model.Auteur, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return nil, err
	}

	auteurs, err := s.store.AuteursByScoreDesc(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && n < len(auteurs) {
		auteurs = auteurs[:n]
	}
	return auteurs, nil
}

// CreateScoreboard creates a named scoreboard, or returns the existing one
// when the name is already taken.
func (s *Service) CreateScoreboard(ctx context.Context, name string) (model.Scoreboard, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return model.Scoreboard{}, err
	}

	if sb, err := s.store.Scoreboard(ctx, name); err == nil {
		return sb, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.Scoreboard{}, err
	}

	sb := model.Scoreboard{ID: uuid.NewString(), Name: name}
	if err := s.store.CreateScoreboard(ctx, sb); err != nil {
		return model.Scoreboard{}, err
	}
	return sb, nil
}

// Scoreboard returns a scoreboard's members ordered by score descending.
func (s *Service) Scoreboard(ctx context.Context, name string) (model.Scoreboard, []model.Auteur, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return model.Scoreboard{}, nil, err
	}

	sb, err := s.store.Scoreboard(ctx, name)
	if err != nil {
		return model.Scoreboard{}, nil, err
	}

	member := make(map[int]struct{}, len(sb.AuteurIDs))
	for _, id := range sb.AuteurIDs {
		member[id] = struct{}{}
	}

	all, err := s.store.AuteursByScoreDesc(ctx)
	if err != nil {
		return model.Scoreboard{}, nil, err
	}
	members := make([]model.Auteur, 0, len(sb.AuteurIDs))
	for _, aut := range all {
		if _, ok := member[aut.ID]; ok {
			members = append(members, aut)
		}
	}
	return sb, members, nil
}

// AddToScoreboard adds a tracked auteur (by ID or username) to a named
// scoreboard.
func (s *Service) AddToScoreboard(ctx context.Context, name, ref string) error {
	if err := s.gate.Wait(ctx); err != nil {
		return err
	}

	aut, err := s.resolveAuteur(ctx, ref)
	if err != nil {
		return err
	}
	return s.store.AddScoreboardMember(ctx, name, aut.ID)
}

// FlushQueue drains and discards pending notifications without delivering
// them. Operator escape hatch for event floods.
func (s *Service) FlushQueue(ctx context.Context) int {
	events := s.queue.DrainAll(ctx)
	if len(events) > 0 {
		s.logger.Warn(ctx, "notification queue flushed", logger.Int("discarded", len(events)))
	}
	metrics.UpdateQueueDepth(0)
	return len(events)
}

// resolveAuteur maps an ID-or-username reference onto one tracked auteur.
func (s *Service) resolveAuteur(ctx context.Context, ref string) (model.Auteur, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return s.store.Auteur(ctx, id)
	}

	matches, err := s.store.SearchAuteurs(ctx, ref)
	if err != nil {
		return model.Auteur{}, err
	}
	switch len(matches) {
	case 0:
		return model.Auteur{}, repository.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return model.Auteur{}, &AmbiguousAuteursError{Candidates: matches}
	}
}

// resolveChallenge maps an ID-or-title reference onto one stored challenge.
func (s *Service) resolveChallenge(ctx context.Context, ref string) (model.Challenge, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return s.store.Challenge(ctx, id)
	}

	matches, err := s.store.SearchChallenges(ctx, ref)
	if err != nil {
		return model.Challenge{}, err
	}
	switch len(matches) {
	case 0:
		return model.Challenge{}, repository.ErrNotFound
	case 1:
		// Re-read for the solve list; search results are shallow.
		return s.store.Challenge(ctx, matches[0].ID)
	default:
		return model.Challenge{}, &AmbiguousChallengesError{Candidates: matches}
	}
}
