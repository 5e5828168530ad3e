// Package config provides YAML-based configuration for notematch: the
// difficulty presets that shape the board, the required note curriculum and
// the delays of the scheduled transitions.
package config

import "time"

// Config is the root of notematch.yaml.
type Config struct {
	Difficulties  map[Difficulty]Preset `yaml:"difficulties"`
	Timings       Timings               `yaml:"timings"`
	PopupDuration time.Duration         `yaml:"popup_duration"`
	Leaderboard   LeaderboardConfig     `yaml:"leaderboard"`
}

// Preset describes the board for one difficulty.
type Preset struct {
	// Layers lists grid sizes from the bottom layer (index 0) up.
	Layers []int `yaml:"layers"`
	// Required pairs must all appear on the board. When set, the remaining
	// pair slots are resampled from this set instead of the full note table.
	Required []RequiredPair `yaml:"required,omitempty"`
}

// RequiredPair binds a note name to the value shown on its tile faces.
type RequiredPair struct {
	Note    string `yaml:"note"`
	Display int    `yaml:"display"`
}

// Timings holds the delays of the engine's scheduled transitions.
type Timings struct {
	Reveal         time.Duration `yaml:"reveal"`          // second flip -> resolution
	MatchSettle    time.Duration `yaml:"match_settle"`    // match -> layer clear check
	MismatchRevert time.Duration `yaml:"mismatch_revert"` // resolution -> tiles turned back
	GameEnd        time.Duration `yaml:"game_end"`        // last layer cleared -> ended
}

// LeaderboardConfig configures leaderboard queries.
type LeaderboardConfig struct {
	Limit int `yaml:"limit"`
}

// Preset returns the preset for a difficulty.
func (c Config) Preset(d Difficulty) (Preset, bool) {
	p, ok := c.Difficulties[d]
	return p, ok
}

// TileCount returns the number of tiles the preset produces.
func (p Preset) TileCount() int {
	n := 0
	for _, size := range p.Layers {
		n += size * size
	}
	return n
}

// PairCount returns the number of pairs the preset produces.
func (p Preset) PairCount() int {
	return p.TileCount() / 2
}
