package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if CHALLWATCH_CONFIG is set
//  3. env (prefix CHALLWATCH_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("CHALLWATCH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: CHALLWATCH_ADDR, CHALLWATCH_DATABASE_PATH, ...
	// Map env keys like CHALLWATCH_RATE_BURST -> rate_burst (flat keys,
	// underscores preserved to match the koanf struct tags).
	envProvider := env.Provider("CHALLWATCH_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "challwatch_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PlatformBaseURL == "":
		return fmt.Errorf("%w: platform_base_url must not be empty", ErrInvalidConfig)
	case c.ChallengePollSeconds <= 0:
		return fmt.Errorf("%w: challenge_poll_seconds must be positive", ErrInvalidConfig)
	case c.UserPollSeconds <= 0:
		return fmt.Errorf("%w: user_poll_seconds must be positive", ErrInvalidConfig)
	case c.DispatchSeconds <= 0:
		return fmt.Errorf("%w: dispatch_seconds must be positive", ErrInvalidConfig)
	case c.BootstrapThreshold < 0:
		return fmt.Errorf("%w: bootstrap_threshold must not be negative", ErrInvalidConfig)
	case c.RatePerSecond <= 0:
		return fmt.Errorf("%w: rate_per_second must be positive", ErrInvalidConfig)
	}
	return nil
}
