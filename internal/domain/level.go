package domain

import "fmt"

// Level is a CEFR proficiency tier attached to both vocabulary entries
// and corpus sentences.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
)

// Levels lists every level in ordinal (easiest-first) order.
var Levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2}

// ParseLevel converts a string into a Level, rejecting unknown tiers.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelA1, LevelA2, LevelB1, LevelB2:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown level %q", s)
}

// Next returns the ordinal successor of l, or false when l is the last level.
func (l Level) Next() (Level, bool) {
	for i, lvl := range Levels {
		if lvl == l && i+1 < len(Levels) {
			return Levels[i+1], true
		}
	}
	return "", false
}
