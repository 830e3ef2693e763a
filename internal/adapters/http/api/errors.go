package api

import "errors"

// Request validation errors surfaced as 400 responses.
var (
	errInvalidLimit = errors.New("limit must be a non-negative integer")
	errBadReference = errors.New("missing or malformed path reference")
)
