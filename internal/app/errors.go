package app

import (
	"errors"
	"fmt"

	"github.com/challwatch/challwatch/internal/domain/model"
)

// ErrAmbiguous marks name lookups that matched more than one record.
// Use errors.As to recover the candidate list for caller disambiguation.
var ErrAmbiguous = errors.New("multiple matches")

// AmbiguousAuteursError carries the auteur candidates of an ambiguous
// name lookup.
type AmbiguousAuteursError struct {
	Candidates []model.Auteur
}

func (e *AmbiguousAuteursError) Error() string {
	return fmt.Sprintf("%d auteurs match", len(e.Candidates))
}

func (e *AmbiguousAuteursError) Is(target error) bool {
	return target == ErrAmbiguous
}

// AmbiguousChallengesError carries the challenge candidates of an ambiguous
// title lookup.
type AmbiguousChallengesError struct {
	Candidates []model.Challenge
}

func (e *AmbiguousChallengesError) Error() string {
	return fmt.Sprintf("%d challenges match", len(e.Candidates))
}

func (e *AmbiguousChallengesError) Is(target error) bool {
	return target == ErrAmbiguous
}
