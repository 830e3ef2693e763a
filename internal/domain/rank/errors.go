package rank

import "errors"

// Sentinel kinds for rank errors.
var (
	ErrUnknownAuteur = errors.New("auteur not in tracked population")
)
