package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/challwatch/challwatch/internal/adapters/platform"
	repository "github.com/challwatch/challwatch/internal/adapters/repository"
	"github.com/challwatch/challwatch/internal/domain/model"
	"github.com/challwatch/challwatch/pkg/logger"
	"github.com/challwatch/challwatch/pkg/metrics"
)

// firstBloodThreshold: a solve counts as blood while the challenge has at
// most this many recorded solvers, the new one included.
const firstBloodThreshold = 2

// runBootstrap populates the store on first run, then opens the gate.
// A populated store opens the gate immediately with zero writes.
func (s *Service) runBootstrap(ctx context.Context) {
	count, err := s.store.CountChallenges(ctx)
	if err != nil {
		s.logger.Error(ctx, "bootstrap: counting challenges failed", logger.Error(err))
		return
	}

	if count >= s.bootstrapThreshold {
		s.logger.Info(ctx, "store already populated, skipping import",
			logger.Int("challenges", count))
		s.loadSeenSet(ctx)
		s.gate.Open()
		return
	}

	s.logger.Info(ctx, "first run detected, importing full snapshot",
		logger.Int("challenges", count),
		logger.Int("threshold", s.bootstrapThreshold))
	start := time.Now()

	if err := s.fullImport(ctx); err != nil {
		s.logger.Error(ctx, "bootstrap import failed, retrying", logger.Error(err))
		// The import is idempotent; retry until the platform cooperates.
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.challengePollPeriod):
			s.runBootstrap(ctx)
			return
		}
	}

	metrics.RecordBootstrapRun()
	metrics.RecordBootstrapDuration(time.Since(start).Seconds())
	s.logger.Info(ctx, "bootstrap import done", logger.Any("took", time.Since(start)))
	s.gate.Open()
}

// fullImport persists the whole catalog and every tracked auteur's history
// with enqueuing suppressed: a cold start must not announce hundreds of
// pre-existing challenges and solves.
func (s *Service) fullImport(ctx context.Context) error {
	snaps, err := s.source.Challenges(ctx)
	if err != nil {
		return err
	}
	for i := range snaps {
		if err := s.store.UpsertChallenge(ctx, snapshotChallenge(&snaps[i])); err != nil {
			return err
		}
	}
	metrics.UpdateStoredChallenges(len(snaps))

	auteurs, err := s.store.AuteursByScoreDesc(ctx)
	if err != nil {
		return err
	}
	for _, aut := range auteurs {
		if err := s.importAuteur(ctx, aut.ID); err != nil {
			return err
		}
	}
	metrics.UpdateTrackedAuteurs(len(auteurs))
	return nil
}

// importAuteur fetches one auteur's snapshot and persists their full solve
// history without enqueuing events.
func (s *Service) importAuteur(ctx context.Context, id int) error {
	snap, err := s.source.Auteur(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.UpsertAuteur(ctx, model.Auteur{ID: snap.ID, Username: snap.Username}); err != nil {
		return err
	}
	for _, solve := range snap.Solves {
		ch, err := s.store.Challenge(ctx, solve.ChallengeID)
		if errors.Is(err, repository.ErrNotFound) {
			// Solve against a challenge the catalog no longer lists.
			continue
		}
		if err != nil {
			return err
		}
		if err := s.recordSolve(ctx, model.Auteur{ID: snap.ID, Username: snap.Username}, ch, solve.ValidatedAt, true); err != nil {
			return err
		}
	}

	// The platform score is authoritative when it exceeds the sum of
	// recorded challenge points (other point sources exist).
	return s.store.UpsertAuteur(ctx, model.Auteur{ID: snap.ID, Username: snap.Username, Score: snap.Score})
}

// loadSeenSet primes the dedupe set from persisted solves on warm starts.
func (s *Service) loadSeenSet(ctx context.Context) {
	auteurs, err := s.store.AuteursByScoreDesc(ctx)
	if err != nil {
		s.logger.Error(ctx, "priming seen set failed", logger.Error(err))
		return
	}
	for _, aut := range auteurs {
		solves, err := s.store.SolvesByAuteur(ctx, aut.ID)
		if err != nil {
			s.logger.Error(ctx, "priming seen set failed",
				logger.Int("auteurID", aut.ID), logger.Error(err))
			continue
		}
		for _, solve := range solves {
			s.seen.SeenAndRecord(ctx, solve.AuteurID, solve.ChallengeID)
		}
	}
}

// challengeCycle is the slow full-catalog discovery loop.
func (s *Service) challengeCycle(ctx context.Context) {
	if err := s.gate.Wait(ctx); err != nil {
		return
	}
	s.logger.Info(ctx, "challenge discovery cycle running")

	ticker := time.NewTicker(s.challengePollPeriod)
	defer ticker.Stop()

	for {
		s.syncChallenges(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// syncChallenges diffs the fetched catalog against the store by challenge
// ID, announcing unknown challenges and routing new solvers through the
// shared solve path. A failed fetch persists nothing.
func (s *Service) syncChallenges(ctx context.Context) {
	snaps, err := s.source.Challenges(ctx)
	if err != nil {
		metrics.RecordFetchError("challenges")
		s.logger.Warn(ctx, "challenge fetch failed, retrying next tick", logger.Error(err))
		return
	}

	for i := range snaps {
		snap := &snaps[i]
		stored, err := s.store.Challenge(ctx, snap.ID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.discoverChallenge(ctx, snap)
		case err != nil:
			s.logger.Error(ctx, "challenge lookup failed",
				logger.Int("challengeID", snap.ID), logger.Error(err))
		default:
			s.diffSolvers(ctx, snap, &stored)
		}
	}

	metrics.RecordSyncCycle("challenges")
	metrics.UpdateStoredChallenges(len(snaps))
}

// discoverChallenge persists a newly published challenge and announces it.
// Its pre-existing solvers are recorded quietly: the challenge is the news,
// not solves that predate our first observation of it.
func (s *Service) discoverChallenge(ctx context.Context, snap *platform.ChallengeSnapshot) {
	ch := snapshotChallenge(snap)
	if err := s.store.UpsertChallenge(ctx, ch); err != nil {
		s.logger.Error(ctx, "persisting new challenge failed",
			logger.Int("challengeID", ch.ID), logger.Error(err))
		return
	}

	s.queue.Enqueue(ctx, model.NewChallengeEvent(ch))
	metrics.RecordChallengeDiscovered()
	s.logger.Info(ctx, "new challenge discovered",
		logger.Int("challengeID", ch.ID), logger.String("title", ch.Title))

	for _, solver := range snap.Solvers {
		aut := model.Auteur{ID: solver.AuteurID, Username: solver.Username}
		if err := s.recordSolve(ctx, aut, ch, solver.ValidatedAt, true); err != nil {
			s.logger.Error(ctx, "recording solver of new challenge failed",
				logger.Int("auteurID", solver.AuteurID),
				logger.Int("challengeID", ch.ID), logger.Error(err))
		}
	}
}

// diffSolvers announces every solver present in the fetch but absent from
// the stored solver set. Identity diffing only; ordering in the feed is
// irrelevant.
func (s *Service) diffSolvers(ctx context.Context, snap *platform.ChallengeSnapshot, stored *model.Challenge) {
	known := stored.SolverIDs()
	for _, solver := range snap.Solvers {
		if _, ok := known[solver.AuteurID]; ok {
			continue
		}
		aut := model.Auteur{ID: solver.AuteurID, Username: solver.Username}
		if err := s.recordSolve(ctx, aut, *stored, solver.ValidatedAt, false); err != nil {
			s.logger.Error(ctx, "recording solve failed",
				logger.Int("auteurID", solver.AuteurID),
				logger.Int("challengeID", stored.ID), logger.Error(err))
		}
	}
}

// userCycle is the fast per-auteur refresh loop. One auteur per iteration
// keeps the request rate within the platform's limits.
func (s *Service) userCycle(ctx context.Context) {
	if err := s.gate.Wait(ctx); err != nil {
		return
	}
	s.logger.Info(ctx, "user refresh cycle running")

	for {
		s.refreshNextAuteur(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.userPollPeriod):
		}
	}
}

// refreshNextAuteur advances the round-robin cursor and syncs that auteur.
func (s *Service) refreshNextAuteur(ctx context.Context) {
	auteurs, err := s.store.AuteursByScoreDesc(ctx)
	if err != nil {
		s.logger.Error(ctx, "listing auteurs failed", logger.Error(err))
		return
	}
	if len(auteurs) == 0 {
		return
	}
	metrics.UpdateTrackedAuteurs(len(auteurs))

	ids := make([]int, 0, len(auteurs))
	for _, aut := range auteurs {
		ids = append(ids, aut.ID)
	}
	sort.Ints(ids)

	next := ids[0]
	for _, id := range ids {
		if id > s.lastRefreshedID {
			next = id
			break
		}
	}
	s.lastRefreshedID = next

	s.syncAuteur(ctx, next)
	metrics.RecordSyncCycle("users")
}

// syncAuteur refreshes one tracked auteur and routes newly reported solves
// through the shared solve path.
func (s *Service) syncAuteur(ctx context.Context, id int) {
	snap, err := s.source.Auteur(ctx, id)
	if errors.Is(err, platform.ErrNotFound) {
		s.logger.Warn(ctx, "tracked auteur gone from platform", logger.Int("auteurID", id))
		return
	}
	if err != nil {
		metrics.RecordFetchError("users")
		s.logger.Warn(ctx, "auteur fetch failed, retrying next tick",
			logger.Int("auteurID", id), logger.Error(err))
		return
	}

	aut := model.Auteur{ID: snap.ID, Username: snap.Username}
	if err := s.store.UpsertAuteur(ctx, aut); err != nil {
		s.logger.Error(ctx, "refreshing auteur failed", logger.Int("auteurID", id), logger.Error(err))
		return
	}

	for _, solve := range snap.Solves {
		ch, err := s.store.Challenge(ctx, solve.ChallengeID)
		if errors.Is(err, repository.ErrNotFound) {
			// The challenge cycle has not discovered it yet; the solve
			// will be picked up once it is.
			continue
		}
		if err != nil {
			s.logger.Error(ctx, "challenge lookup failed",
				logger.Int("challengeID", solve.ChallengeID), logger.Error(err))
			continue
		}
		if err := s.recordSolve(ctx, aut, ch, solve.ValidatedAt, false); err != nil {
			s.logger.Error(ctx, "recording solve failed",
				logger.Int("auteurID", id),
				logger.Int("challengeID", ch.ID), logger.Error(err))
		}
	}
}

// recordSolve is the shared detection path of both discovery cycles.
// It guarantees at-most-once per (auteur, challenge): the seen set filters
// the hot path, the store's unique index backstops races. quiet suppresses
// the event, which bootstrap and first-observation imports rely on.
func (s *Service) recordSolve(ctx context.Context, aut model.Auteur, ch model.Challenge, validatedAt time.Time, quiet bool) error {
	if s.seen.SeenAndRecord(ctx, aut.ID, ch.ID) {
		return nil
	}

	if err := s.store.UpsertAuteur(ctx, aut); err != nil {
		s.seen.Unrecord(ctx, aut.ID, ch.ID)
		return err
	}

	solve := model.Solve{AuteurID: aut.ID, ChallengeID: ch.ID, ValidatedAt: validatedAt}
	err := s.store.RecordSolve(ctx, solve, ch.Score)
	if errors.Is(err, repository.ErrDuplicateSolve) {
		// Both cycles observed the same external event; the first write
		// won. A sync bug would also land here, so keep it visible.
		metrics.RecordDuplicateSolve()
		s.logger.Warn(ctx, "duplicate solve skipped", logger.String("solve", solve.Key()))
		return nil
	}
	if err != nil {
		s.seen.Unrecord(ctx, aut.ID, ch.ID)
		return err
	}
	metrics.RecordSolveRecorded()

	if quiet {
		return nil
	}

	solvers, err := s.store.SolvesByChallenge(ctx, ch.ID)
	if err != nil {
		return err
	}
	firstBlood := len(solvers) <= firstBloodThreshold

	// Overtake info must read a state no older than the committed score.
	updated, err := s.store.Auteur(ctx, aut.ID)
	if err != nil {
		return err
	}
	overtake, err := s.ranker.Overtake(ctx, aut.ID)
	if err != nil {
		// Advisory only; the solve still goes out.
		s.logger.Warn(ctx, "overtake computation failed",
			logger.Int("auteurID", aut.ID), logger.Error(err))
		overtake = nil
	}

	s.queue.Enqueue(ctx, model.NewSolveEvent(updated, ch, solve, firstBlood, overtake))
	return nil
}

func snapshotChallenge(snap *platform.ChallengeSnapshot) model.Challenge {
	return model.Challenge{
		ID:         snap.ID,
		Title:      snap.Title,
		Category:   snap.Category,
		Difficulty: snap.Difficulty,
		Score:      snap.Score,
	}
}
