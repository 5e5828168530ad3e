package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmbeddedMatchesDefault(t *testing.T) {
	cfg, err := Parse(defaultYAML)
	if err != nil {
		t.Fatalf("Parse(embedded) error: %v", err)
	}
	want := Default()

	for _, d := range Difficulties {
		got, ok := cfg.Preset(d)
		if !ok {
			t.Fatalf("embedded config missing %s", d)
		}
		w, _ := want.Preset(d)
		if len(got.Layers) != len(w.Layers) {
			t.Fatalf("%s layers = %v, want %v", d, got.Layers, w.Layers)
		}
		for i := range got.Layers {
			if got.Layers[i] != w.Layers[i] {
				t.Errorf("%s layers = %v, want %v", d, got.Layers, w.Layers)
			}
		}
		if len(got.Required) != len(w.Required) {
			t.Errorf("%s required = %v, want %v", d, got.Required, w.Required)
		}
	}
	if cfg.Timings != want.Timings {
		t.Errorf("Timings = %+v, want %+v", cfg.Timings, want.Timings)
	}
	if cfg.PopupDuration != 2*time.Second {
		t.Errorf("PopupDuration = %v, want 2s", cfg.PopupDuration)
	}
	if cfg.Leaderboard.Limit != 100 {
		t.Errorf("Leaderboard.Limit = %d, want 100", cfg.Leaderboard.Limit)
	}
}

func TestPresetCounts(t *testing.T) {
	cfg := Default()

	tests := []struct {
		d     Difficulty
		tiles int
		pairs int
	}{
		{DifficultyEasy, 20, 10},
		{DifficultyMedium, 56, 28},
		{DifficultyHard, 92, 46},
	}
	for _, tc := range tests {
		p, _ := cfg.Preset(tc.d)
		if p.TileCount() != tc.tiles {
			t.Errorf("%s TileCount() = %d, want %d", tc.d, p.TileCount(), tc.tiles)
		}
		if p.PairCount() != tc.pairs {
			t.Errorf("%s PairCount() = %d, want %d", tc.d, p.PairCount(), tc.pairs)
		}
	}
}

func TestParsePartialOverride(t *testing.T) {
	cfg, err := Parse([]byte("timings:\n  reveal: 1.5s\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if cfg.Timings.Reveal != 1500*time.Millisecond {
		t.Errorf("Reveal = %v, want 1.5s", cfg.Timings.Reveal)
	}
	if cfg.Timings.MismatchRevert != 600*time.Millisecond {
		t.Errorf("MismatchRevert = %v, want default 600ms", cfg.Timings.MismatchRevert)
	}
	if _, ok := cfg.Preset(DifficultyHard); !ok {
		t.Error("unset difficulties should keep their defaults")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"odd grid", func(c *Config) { c.Difficulties[DifficultyMedium] = Preset{Layers: []int{5, 2}} }},
		{"no layers", func(c *Config) { c.Difficulties[DifficultyHard] = Preset{} }},
		{"too many required", func(c *Config) {
			c.Difficulties[DifficultyEasy] = Preset{
				Layers:   []int{2},
				Required: []RequiredPair{{Note: "A4"}, {Note: "B4"}, {Note: "C4"}},
			}
		}},
		{"zero reveal", func(c *Config) { c.Timings.Reveal = 0 }},
		{"negative popup", func(c *Config) { c.PopupDuration = -time.Second }},
		{"zero limit", func(c *Config) { c.Leaderboard.Limit = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("leaderboard:\n  limit: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Leaderboard.Limit != 10 {
		t.Errorf("Leaderboard.Limit = %d, want 10", cfg.Leaderboard.Limit)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing custom path should fail")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("difficulties:\n  easy:\n    layers: [3]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load(odd grid) = %v, want ErrInvalid", err)
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
		ok   bool
	}{
		{"easy", DifficultyEasy, true},
		{" Medium ", DifficultyMedium, true},
		{"normal", DifficultyMedium, true},
		{"HARD", DifficultyHard, true},
		{"expert", "", false},
	}
	for _, tc := range tests {
		got, err := ParseDifficulty(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("ParseDifficulty(%q) err = %v, want ok=%v", tc.in, err, tc.ok)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnknownDifficulty) {
			t.Errorf("ParseDifficulty(%q) err = %v, want ErrUnknownDifficulty", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseDifficulty(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
