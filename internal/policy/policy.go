// Package policy decides which levels the selection engine may draw from
// and maintains the per-level progress aggregates.
package policy

import (
	"context"

	"github.com/calumbell/wordpace/internal/domain"
	"github.com/calumbell/wordpace/internal/storage"
)

// AccessPolicy is the external collaborator gating which levels are
// unlocked, regardless of the learner's stored target preference.
type AccessPolicy interface {
	UnlockedLevels() []domain.Level
}

// Policy reads and writes the learning settings singleton and derives the
// target level list from it.
type Policy struct {
	db     *storage.DB
	access AccessPolicy
}

// New builds a policy over the given store and access collaborator.
func New(db *storage.DB, access AccessPolicy) *Policy {
	return &Policy{db: db, access: access}
}

// Settings loads the singleton settings row, creating defaults on first use.
func (p *Policy) Settings(ctx context.Context) (*domain.LearningSettings, error) {
	return p.db.LoadSettings(ctx)
}

// TargetLevels returns the levels eligible for selection, in preference
// order, together with the settings they were derived from. An empty list
// means every target level is complete: the terminal condition, not a
// transient empty pool.
func (p *Policy) TargetLevels(ctx context.Context) ([]domain.Level, *domain.LearningSettings, error) {
	settings, err := p.db.LoadSettings(ctx)
	if err != nil {
		return nil, nil, err
	}

	unlocked := make(map[domain.Level]bool)
	for _, lvl := range p.access.UnlockedLevels() {
		unlocked[lvl] = true
	}

	// Candidates are the stored targets that are both unlocked and still
	// incomplete, in target preference order. Completed levels drop out
	// in every mode: a fully known level is never drawn from again.
	var candidates []domain.Level
	for _, lvl := range settings.TargetLevels {
		if unlocked[lvl] && !settings.LevelCompleted[lvl] {
			candidates = append(candidates, lvl)
		}
	}

	if settings.Mode == domain.RandomAcrossLevels {
		return candidates, settings, nil
	}

	// Progressive mode: stay on the current level while it is a
	// candidate; once complete, widen to every remaining candidate.
	// Auto-advance happens during the next progress recompute.
	if containsLevel(candidates, settings.CurrentLevel) {
		return []domain.Level{settings.CurrentLevel}, settings, nil
	}
	return candidates, settings, nil
}

// RecomputeProgress recounts per-level totals from a full scan, refreshes
// the completion flags and, in progressive mode, advances the current
// level when it has just been completed and its successor is still open.
func (p *Policy) RecomputeProgress(ctx context.Context) (*domain.LearningSettings, error) {
	settings, err := p.db.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := p.db.LevelCounts(ctx)
	if err != nil {
		return nil, err
	}

	settings.TotalPerLevel = make(map[domain.Level]int, len(domain.Levels))
	settings.KnownPerLevel = make(map[domain.Level]int, len(domain.Levels))
	settings.LevelCompleted = make(map[domain.Level]bool, len(domain.Levels))
	for _, lvl := range domain.Levels {
		c := counts[lvl]
		settings.TotalPerLevel[lvl] = c.Total
		settings.KnownPerLevel[lvl] = c.Known
		settings.LevelCompleted[lvl] = c.Total > 0 && c.Known >= c.Total
	}

	if settings.Mode == domain.ProgressiveByLevel && settings.LevelCompleted[settings.CurrentLevel] {
		if next, ok := settings.CurrentLevel.Next(); ok && !settings.LevelCompleted[next] {
			settings.CurrentLevel = next
		}
	}

	if err := p.db.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func containsLevel(levels []domain.Level, lvl domain.Level) bool {
	for _, l := range levels {
		if l == lvl {
			return true
		}
	}
	return false
}
