// Package config loads the application configuration from an optional
// YAML file, environment variables and command-line flags, in that
// precedence order.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/calumbell/wordpace/internal/domain"
	"github.com/calumbell/wordpace/internal/scheduler"
)

const envPrefix = "WORDPACE_"

// Config is the full application configuration.
type Config struct {
	DB        DBConfig        `koanf:"db"`
	Server    ServerConfig    `koanf:"server"`
	Levels    LevelsConfig    `koanf:"levels"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Seed      SeedConfig      `koanf:"seed"`
}

// DBConfig locates the SQLite database.
type DBConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

// LevelsConfig is the static access policy: which levels are unlocked.
type LevelsConfig struct {
	Unlocked []string `koanf:"unlocked" validate:"required,min=1,dive,oneof=A1 A2 B1 B2"`
}

// SchedulerConfig carries the scheduling constants. The defaults are the
// empirically chosen production values.
type SchedulerConfig struct {
	SmallBacklog   int     `koanf:"small_backlog" validate:"gte=0"`
	MediumBacklog  int     `koanf:"medium_backlog" validate:"gtefield=SmallBacklog"`
	LargeBacklog   int     `koanf:"large_backlog" validate:"gtefield=MediumBacklog"`
	NewRatioSmall  float64 `koanf:"new_ratio_small" validate:"gte=0,lte=1"`
	NewRatioMedium float64 `koanf:"new_ratio_medium" validate:"gte=0,lte=1"`
	NewRatioLarge  float64 `koanf:"new_ratio_large" validate:"gte=0,lte=1"`
	OldestBias     float64 `koanf:"oldest_bias" validate:"gte=0,lte=1"`
	BiasMinGroup   int     `koanf:"bias_min_group" validate:"gte=1"`
}

// SeedConfig is the allowlist of words selectable before the full corpus
// is provisioned.
type SeedConfig struct {
	Words []string `koanf:"words" validate:"required,min=1"`
}

// Default returns the built-in configuration.
func Default() Config {
	p := scheduler.DefaultParams()
	return Config{
		DB:     DBConfig{Path: "wordpace.db"},
		Server: ServerConfig{Addr: ":8080"},
		Levels: LevelsConfig{Unlocked: []string{"A1", "A2", "B1", "B2"}},
		Scheduler: SchedulerConfig{
			SmallBacklog:   p.SmallBacklog,
			MediumBacklog:  p.MediumBacklog,
			LargeBacklog:   p.LargeBacklog,
			NewRatioSmall:  p.NewRatioSmall,
			NewRatioMedium: p.NewRatioMedium,
			NewRatioLarge:  p.NewRatioLarge,
			OldestBias:     p.OldestBias,
			BiasMinGroup:   p.BiasMinGroup,
		},
		Seed: SeedConfig{Words: []string{
			"hello", "goodbye", "please", "thanks", "yes", "no",
			"water", "bread", "house", "friend", "family", "work",
			"day", "night", "good", "bad", "big", "small", "go", "come",
		}},
	}
}

// Load merges the optional YAML file at path, WORDPACE_* environment
// variables and the given flag set over the defaults, then validates the
// result. Environment keys separate config sections with a double
// underscore so that underscored field names survive:
// WORDPACE_SCHEDULER__OLDEST_BIAS maps to scheduler.oldest_bias.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// SchedulerParams converts the configured constants into engine params.
func (c *Config) SchedulerParams() *scheduler.Params {
	return &scheduler.Params{
		SmallBacklog:   c.Scheduler.SmallBacklog,
		MediumBacklog:  c.Scheduler.MediumBacklog,
		LargeBacklog:   c.Scheduler.LargeBacklog,
		NewRatioSmall:  c.Scheduler.NewRatioSmall,
		NewRatioMedium: c.Scheduler.NewRatioMedium,
		NewRatioLarge:  c.Scheduler.NewRatioLarge,
		OldestBias:     c.Scheduler.OldestBias,
		BiasMinGroup:   c.Scheduler.BiasMinGroup,
	}
}

// AccessPolicy builds the static access policy from the unlocked levels.
func (c *Config) AccessPolicy() (*StaticAccessPolicy, error) {
	levels := make([]domain.Level, 0, len(c.Levels.Unlocked))
	for _, s := range c.Levels.Unlocked {
		lvl, err := domain.ParseLevel(s)
		if err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}
	return &StaticAccessPolicy{levels: levels}, nil
}

// StaticAccessPolicy unlocks a fixed level set for the process lifetime.
// Entitlement checks live outside this system; this is their stand-in.
type StaticAccessPolicy struct {
	levels []domain.Level
}

// UnlockedLevels implements policy.AccessPolicy.
func (p *StaticAccessPolicy) UnlockedLevels() []domain.Level {
	return p.levels
}
