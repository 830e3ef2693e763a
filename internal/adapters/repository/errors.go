package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateSolve = errors.New("solve already recorded")
)
