package domain

// Mode selects how target levels are ordered during selection.
type Mode string

const (
	// ProgressiveByLevel works through one level at a time, advancing
	// when the current level is completed.
	ProgressiveByLevel Mode = "progressive"
	// RandomAcrossLevels draws from every unlocked target level at once.
	RandomAcrossLevels Mode = "random"
)

// LearningSettings is the singleton per-learner configuration row.
// The per-level maps are cached aggregates recomputed by a full scan
// after each mastery event, not incrementally maintained.
type LearningSettings struct {
	TargetLevels []Level
	Mode         Mode
	// CurrentLevel is meaningful only in ProgressiveByLevel mode.
	CurrentLevel Level

	LevelCompleted map[Level]bool
	TotalPerLevel  map[Level]int
	KnownPerLevel  map[Level]int
}

// DefaultSettings returns the settings created on first access.
func DefaultSettings() *LearningSettings {
	return &LearningSettings{
		TargetLevels:   append([]Level(nil), Levels...),
		Mode:           ProgressiveByLevel,
		CurrentLevel:   LevelA1,
		LevelCompleted: map[Level]bool{},
		TotalPerLevel:  map[Level]int{},
		KnownPerLevel:  map[Level]int{},
	}
}

// AllCompleted reports whether every target level has been completed.
// This is the terminal "all done" condition, distinct from a transient
// empty pool.
func (s *LearningSettings) AllCompleted() bool {
	if len(s.TargetLevels) == 0 {
		return false
	}
	for _, lvl := range s.TargetLevels {
		if !s.LevelCompleted[lvl] {
			return false
		}
	}
	return true
}
