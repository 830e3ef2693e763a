package platform

import "errors"

// Sentinel kinds for platform errors. ErrRateLimited and ErrUnavailable are
// transient: callers skip the current cycle and retry on the next tick.
var (
	ErrNotFound    = errors.New("not found on platform")
	ErrRateLimited = errors.New("platform rate limit hit")
	ErrUnavailable = errors.New("platform unavailable")
)
