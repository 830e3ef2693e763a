// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; file and env layers override them in Load.
// - External errors must be wrapped via this package's error helpers.
package config

import "context"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the ops HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatabasePath locates the SQLite database file. Empty selects the
	// in-memory store (no persistence across restarts).
	DatabasePath string `koanf:"database_path"`

	// PlatformBaseURL is the root of the external platform's JSON API.
	PlatformBaseURL string `koanf:"platform_base_url"`

	// PlatformAPIKey authenticates API requests (sent as a cookie).
	PlatformAPIKey string `koanf:"platform_api_key"`

	// PlatformLang selects the language for titles and search results.
	PlatformLang string `koanf:"platform_lang"`

	// ChallengePollSeconds is the period of the full-catalog discovery cycle.
	ChallengePollSeconds int `koanf:"challenge_poll_seconds"`

	// UserPollSeconds is the delay between per-auteur refresh iterations.
	UserPollSeconds int `koanf:"user_poll_seconds"`

	// DispatchSeconds is the period of the notification dispatch loop.
	DispatchSeconds int `koanf:"dispatch_seconds"`

	// BootstrapThreshold is the challenge count below which the store is
	// considered unpopulated and a full silent import runs.
	BootstrapThreshold int `koanf:"bootstrap_threshold"`

	// RatePerSecond caps outbound platform requests.
	RatePerSecond float64 `koanf:"rate_per_second"`

	// RateBurst is the platform request burst allowance.
	RateBurst int `koanf:"rate_burst"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		DatabasePath:         "challwatch.db",
		PlatformBaseURL:      "https://api.www.root-me.org",
		PlatformLang:         "en",
		ChallengePollSeconds: 300,
		UserPollSeconds:      1,
		DispatchSeconds:      1,
		BootstrapThreshold:   300,
		RatePerSecond:        5,
		RateBurst:            10,
	}
}
