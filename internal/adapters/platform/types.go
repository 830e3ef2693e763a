package platform

import "time"

// ChallengeSnapshot is the platform's current view of one challenge,
// including its full solver list.
type ChallengeSnapshot struct {
	ID         int              `json:"id"`
	Title      string           `json:"title"`
	Category   string           `json:"category"`
	Difficulty string           `json:"difficulty"`
	Score      int              `json:"score"`
	Solvers    []SolverSnapshot `json:"validations"`
}

// SolverSnapshot is one entry of a challenge's solver list.
type SolverSnapshot struct {
	AuteurID    int       `json:"auteur_id"`
	Username    string    `json:"username"`
	ValidatedAt time.Time `json:"date"`
}

// AuteurSnapshot is the platform's current view of one user.
type AuteurSnapshot struct {
	ID       int             `json:"id"`
	Username string          `json:"username"`
	Score    int             `json:"score"`
	Solves   []SolveSnapshot `json:"solves"`
}

// SolveSnapshot is one entry of an auteur's solve history.
type SolveSnapshot struct {
	ChallengeID int       `json:"challenge_id"`
	ValidatedAt time.Time `json:"date"`
}

// challengesPage is the paged catalog response.
type challengesPage struct {
	Challenges []ChallengeSnapshot `json:"challenges"`
	NextStart  int                 `json:"next_start"` // 0 when this is the last page
}

// auteurSearchResult is the name-search response.
type auteurSearchResult struct {
	Auteurs []AuteurSnapshot `json:"auteurs"`
}
