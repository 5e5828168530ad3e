package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name looked up in the search directories.
const FileName = "notematch.yaml"

// Load loads the configuration.
// Search order: customPath -> ~/.notematch/notematch.yaml -> ./configs/notematch.yaml -> embedded default
//
// Files are decoded over the defaults, so a partial file only overrides the
// keys it sets. A custom path that cannot be read or parsed is an error; the
// other locations are skipped when missing or broken.
func Load(customPath string) (Config, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(FileName); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := Parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", FileName)); err == nil {
		if cfg, err := Parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := Parse(defaultYAML)
	if err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".notematch", filename)
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks that every preset yields whole pairs, that curriculum
// presets have room for their required pairs, and that delays are positive.
func (c Config) Validate() error {
	if len(c.Difficulties) == 0 {
		return fmt.Errorf("%w: no difficulties", ErrInvalid)
	}
	for d, p := range c.Difficulties {
		if len(p.Layers) == 0 {
			return fmt.Errorf("%w: %s: no layers", ErrInvalid, d)
		}
		for i, size := range p.Layers {
			if size <= 0 || size%2 != 0 {
				return fmt.Errorf("%w: %s: layer %d: grid size %d must be positive and even", ErrInvalid, d, i, size)
			}
		}
		if len(p.Required) > p.PairCount() {
			return fmt.Errorf("%w: %s: %d required pairs exceed %d pair slots", ErrInvalid, d, len(p.Required), p.PairCount())
		}
		for _, r := range p.Required {
			if r.Note == "" {
				return fmt.Errorf("%w: %s: required pair with empty note", ErrInvalid, d)
			}
		}
	}

	t := c.Timings
	if t.Reveal <= 0 || t.MatchSettle <= 0 || t.MismatchRevert <= 0 || t.GameEnd <= 0 {
		return fmt.Errorf("%w: timings must be positive", ErrInvalid)
	}
	if c.PopupDuration <= 0 {
		return fmt.Errorf("%w: popup_duration must be positive", ErrInvalid)
	}
	if c.Leaderboard.Limit <= 0 {
		return fmt.Errorf("%w: leaderboard.limit must be positive", ErrInvalid)
	}
	return nil
}
