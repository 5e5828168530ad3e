package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDifficulty is returned for difficulty names with no preset.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulty names a board preset.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the built-in difficulties in menu order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty converts user input into a built-in Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	case "normal":
		return DifficultyMedium, nil
	}
	return "", fmt.Errorf("config: %q: %w", s, ErrUnknownDifficulty)
}

func (d Difficulty) String() string {
	return string(d)
}
