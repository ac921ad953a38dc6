// Package config loads the configuration of the C++ checker.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/mpyw/supercall/internal/classify"
	"github.com/mpyw/supercall/internal/hierarchy"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the checker configuration.
type Config struct {
	// Mode is "full" or "simple".
	Mode string `yaml:"mode"`
	// SkipPolicy is "any" or "all".
	SkipPolicy string `yaml:"skip_policy"`
	// Workers bounds parsing and checking concurrency (0 = GOMAXPROCS).
	Workers int `yaml:"workers"`
	// Include lists doublestar patterns of files to check.
	Include []string `yaml:"include"`
	// Exclude lists doublestar patterns removed from Include.
	Exclude []string `yaml:"exclude"`
}

// DefaultConfig returns a Config with defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:       classify.ModeFull.String(),
		SkipPolicy: hierarchy.SkipAny.String(),
		Include: []string{
			"**/*.cpp", "**/*.cc", "**/*.cxx",
			"**/*.hpp", "**/*.hh", "**/*.hxx", "**/*.h",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := classify.ParseMode(c.Mode); !ok {
		return fmt.Errorf("%w: mode must be full or simple, got %q", ErrInvalid, c.Mode)
	}
	if _, ok := hierarchy.ParseSkipPolicy(c.SkipPolicy); !ok {
		return fmt.Errorf("%w: skip_policy must be any or all, got %q", ErrInvalid, c.SkipPolicy)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	}
	for _, p := range append(append([]string(nil), c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: bad glob %q", ErrInvalid, p)
		}
	}
	return nil
}

// Options converts the validated mode and skip policy.
func (c *Config) Options() classify.Options {
	m, _ := classify.ParseMode(c.Mode)
	p, _ := hierarchy.ParseSkipPolicy(c.SkipPolicy)
	return classify.Options{Mode: m, SkipPolicy: p}
}

// Jobs returns the effective worker count.
func (c *Config) Jobs() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Match reports whether a slash-separated path relative to the walk root is
// selected by Include and not removed by Exclude.
func (c *Config) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	return matchAny(c.Include, rel) && !matchAny(c.Exclude, rel)
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}
