package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/notematch.yaml
var defaultYAML []byte

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// Default returns the hardcoded configuration, identical to the embedded file.
func Default() Config {
	return Config{
		Difficulties: map[Difficulty]Preset{
			DifficultyEasy: {
				Layers: []int{4, 2},
				Required: []RequiredPair{
					{Note: "B4", Display: 5},
					{Note: "A4", Display: 2},
					{Note: "G4", Display: 10},
					{Note: "D5", Display: 15},
					{Note: "A#4", Display: 6},
					{Note: "F#4", Display: 8},
				},
			},
			DifficultyMedium: {Layers: []int{6, 4, 2}},
			DifficultyHard:   {Layers: []int{6, 6, 4, 2}},
		},
		Timings: Timings{
			Reveal:         800 * time.Millisecond,
			MatchSettle:    500 * time.Millisecond,
			MismatchRevert: 600 * time.Millisecond,
			GameEnd:        1000 * time.Millisecond,
		},
		PopupDuration: 2 * time.Second,
		Leaderboard:   LeaderboardConfig{Limit: 100},
	}
}
