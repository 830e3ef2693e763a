package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/challwatch/challwatch/internal/domain/model"
)

// MemoryStore implements Store with mutex-guarded maps. It backs the
// no-persistence mode and the engine tests; ordering semantics match the
// SQLite adapter (score descending, ID ascending tie-break).
type MemoryStore struct {
	mu          sync.RWMutex
	challenges  map[int]model.Challenge
	auteurs     map[int]model.Auteur
	solves      map[string]model.Solve // keyed by model.SolveKey
	scoreboards map[string]model.Scoreboard
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges:  make(map[int]model.Challenge),
		auteurs:     make(map[int]model.Auteur),
		solves:      make(map[string]model.Solve),
		scoreboards: make(map[string]model.Scoreboard),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) UpsertChallenge(ctx context.Context, ch model.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch.Solves = nil // solves live in the keyed solve set
	s.challenges[ch.ID] = ch
	return nil
}

func (s *MemoryStore) Challenge(ctx context.Context, id int) (model.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.challenges[id]
	if !ok {
		return model.Challenge{}, ErrNotFound
	}
	ch.Solves = s.solvesByChallengeLocked(id)
	return ch, nil
}

func (s *MemoryStore) SearchChallenges(ctx context.Context, title string) ([]model.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Challenge
	needle := strings.ToLower(title)
	for _, ch := range s.challenges {
		if strings.Contains(strings.ToLower(ch.Title), needle) {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CountChallenges(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.challenges), nil
}

func (s *MemoryStore) UpsertAuteur(ctx context.Context, aut model.Auteur) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.auteurs[aut.ID]; ok && existing.Score > aut.Score {
		// Scores are monotonically non-decreasing.
		aut.Score = existing.Score
	}
	s.auteurs[aut.ID] = aut
	return nil
}

func (s *MemoryStore) Auteur(ctx context.Context, id int) (model.Auteur, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	aut, ok := s.auteurs[id]
	if !ok {
		return model.Auteur{}, ErrNotFound
	}
	return aut, nil
}

func (s *MemoryStore) SearchAuteurs(ctx context.Context, username string) ([]model.Auteur, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Auteur
	needle := strings.ToLower(username)
	for _, aut := range s.auteurs {
		if strings.Contains(strings.ToLower(aut.Username), needle) {
			out = append(out, aut)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) DeleteAuteur(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auteurs[id]; !ok {
		return ErrNotFound
	}
	delete(s.auteurs, id)
	for key, solve := range s.solves {
		if solve.AuteurID == id {
			delete(s.solves, key)
		}
	}
	return nil
}

func (s *MemoryStore) AuteursByScoreDesc(ctx context.Context) ([]model.Auteur, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Auteur, 0, len(s.auteurs))
	for _, aut := range s.auteurs {
		out = append(out, aut)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) RecordSolve(ctx context.Context, solve model.Solve, scoreDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := solve.Key()
	if _, exists := s.solves[key]; exists {
		return ErrDuplicateSolve
	}
	s.solves[key] = solve
	if aut, ok := s.auteurs[solve.AuteurID]; ok {
		aut.Score += scoreDelta
		s.auteurs[solve.AuteurID] = aut
	}
	return nil
}

func (s *MemoryStore) HasSolve(ctx context.Context, auteurID, challengeID int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.solves[model.SolveKey(auteurID, challengeID)]
	return ok, nil
}

func (s *MemoryStore) SolvesByChallenge(ctx context.Context, challengeID int) ([]model.Solve, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.solvesByChallengeLocked(challengeID), nil
}

func (s *MemoryStore) solvesByChallengeLocked(challengeID int) []model.Solve {
	var out []model.Solve
	for _, solve := range s.solves {
		if solve.ChallengeID == challengeID {
			out = append(out, solve)
		}
	}
	sortSolves(out)
	return out
}

func (s *MemoryStore) SolvesByAuteur(ctx context.Context, auteurID int) ([]model.Solve, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Solve
	for _, solve := range s.solves {
		if solve.AuteurID == auteurID {
			out = append(out, solve)
		}
	}
	sortSolves(out)
	return out, nil
}

func sortSolves(solves []model.Solve) {
	sort.Slice(solves, func(i, j int) bool {
		if !solves[i].ValidatedAt.Equal(solves[j].ValidatedAt) {
			return solves[i].ValidatedAt.Before(solves[j].ValidatedAt)
		}
		if solves[i].AuteurID != solves[j].AuteurID {
			return solves[i].AuteurID < solves[j].AuteurID
		}
		return solves[i].ChallengeID < solves[j].ChallengeID
	})
}

func (s *MemoryStore) CreateScoreboard(ctx context.Context, sb model.Scoreboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scoreboards[sb.Name] = sb
	return nil
}

func (s *MemoryStore) Scoreboard(ctx context.Context, name string) (model.Scoreboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sb, ok := s.scoreboards[name]
	if !ok {
		return model.Scoreboard{}, ErrNotFound
	}
	return sb, nil
}

func (s *MemoryStore) AddScoreboardMember(ctx context.Context, name string, auteurID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sb, ok := s.scoreboards[name]
	if !ok {
		return ErrNotFound
	}
	for _, id := range sb.AuteurIDs {
		if id == auteurID {
			return nil
		}
	}
	sb.AuteurIDs = append(sb.AuteurIDs, auteurID)
	s.scoreboards[name] = sb
	return nil
}
