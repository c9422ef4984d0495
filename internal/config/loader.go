package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if POINTBOT_CONFIG is set
//  3. env (prefix POINTBOT_)
//
// A local .env file, when present, is loaded into the environment first so
// deployments can keep the DSN and bot token out of the shell.
func Load(ctx context.Context) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("%w: .env: %w", ErrLoadConfig, err)
		}
	}

	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("POINTBOT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: POINTBOT_DSN, POINTBOT_DISCORD_TOKEN, ...
	// Map env keys like POINTBOT_QUEUE_SIZE -> queue_size (flat keys).
	// Underscores are preserved to match koanf tags on the struct.
	envProvider := env.Provider("POINTBOT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pointbot_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the process cannot start with.
func (c *Config) validate() error {
	switch {
	case c.DSN == "":
		return fmt.Errorf("%w: dsn must not be empty", ErrInvalidConfig)
	case c.DiscordToken == "":
		return fmt.Errorf("%w: discord_token must not be empty", ErrInvalidConfig)
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MultiplierMin < 0 || c.MultiplierMax < c.MultiplierMin:
		return fmt.Errorf("%w: multiplier bounds must satisfy 0 <= min <= max", ErrInvalidConfig)
	case c.TickSeconds < 1:
		return fmt.Errorf("%w: tick_seconds must be at least 1", ErrInvalidConfig)
	case c.CooldownSeconds < 0:
		return fmt.Errorf("%w: cooldown_seconds must not be negative", ErrInvalidConfig)
	case c.RankingLimit < 1:
		return fmt.Errorf("%w: ranking_limit must be at least 1", ErrInvalidConfig)
	}
	return nil
}
