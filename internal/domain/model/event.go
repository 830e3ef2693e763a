package model

// EventKind tags the variant carried by an Event.
type EventKind int

const (
	KindNewChallenge EventKind = iota + 1
	KindNewSolve
)

// String returns the metric/log label for the kind.
func (k EventKind) String() string {
	switch k {
	case KindNewChallenge:
		return "new_challenge"
	case KindNewSolve:
		return "new_solve"
	default:
		return "unknown"
	}
}

// Event is a queue-resident notification produced by the sync engine and
// consumed exactly once by the dispatch loop. The zero value is invalid;
// use the constructors.
type Event struct {
	Kind EventKind

	Challenge Challenge

	// KindNewSolve only.
	Auteur     Auteur
	Solve      Solve
	FirstBlood bool
	Overtake   *Overtake // nil when the auteur holds the top score
}

// NewChallengeEvent builds a KindNewChallenge event.
func NewChallengeEvent(ch Challenge) Event {
	return Event{Kind: KindNewChallenge, Challenge: ch}
}

// NewSolveEvent builds a KindNewSolve event.
func NewSolveEvent(aut Auteur, ch Challenge, solve Solve, firstBlood bool, overtake *Overtake) Event {
	return Event{
		Kind:       KindNewSolve,
		Challenge:  ch,
		Auteur:     aut,
		Solve:      solve,
		FirstBlood: firstBlood,
		Overtake:   overtake,
	}
}
