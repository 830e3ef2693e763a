// Package dedupe tracks already-observed (auteur, challenge) pairs so both
// discovery cycles agree on what counts as new.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/challwatch/challwatch/internal/domain/model"
)

// SolveSet records solve identities for O(1) "have we seen this before"
// checks. The store's unique index remains the authoritative backstop; the
// set saves a round trip on the hot diff path.
type SolveSet interface {
	// SeenAndRecord atomically checks whether the pair was seen and
	// records it if not. Returns true if it was already seen.
	SeenAndRecord(ctx context.Context, auteurID, challengeID int) bool

	// Unrecord removes a pair, allowing it to be retried after a failed
	// store write.
	Unrecord(ctx context.Context, auteurID, challengeID int)

	Size() int64
}

// inMemorySolveSet implements SolveSet with a mutex-guarded map. The
// population is bounded by real solves, so no eviction is needed.
type inMemorySolveSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
	size atomic.Int64
}

// NewSolveSet creates an empty solve set.
func NewSolveSet() SolveSet {
	return &inMemorySolveSet{
		seen: make(map[string]struct{}),
	}
}

func (d *inMemorySolveSet) SeenAndRecord(ctx context.Context, auteurID, challengeID int) bool {
	key := model.SolveKey(auteurID, challengeID)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}
	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemorySolveSet) Unrecord(ctx context.Context, auteurID, challengeID int) {
	key := model.SolveKey(auteurID, challengeID)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

func (d *inMemorySolveSet) Size() int64 {
	return d.size.Load()
}
