package policy

import (
	"context"
	"testing"

	"github.com/calumbell/wordpace/internal/domain"
	"github.com/calumbell/wordpace/internal/storage"
)

type fakeAccess struct {
	levels []domain.Level
}

func (f fakeAccess) UnlockedLevels() []domain.Level { return f.levels }

func setup(t *testing.T, unlocked ...domain.Level) (*Policy, *storage.DB) {
	t.Helper()
	db, err := storage.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if len(unlocked) == 0 {
		unlocked = domain.Levels
	}
	return New(db, fakeAccess{levels: unlocked}), db
}

func seed(t *testing.T, db *storage.DB, entries ...domain.VocabularyEntry) {
	t.Helper()
	if err := db.UpsertWords(context.Background(), entries); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestTargetLevelsProgressive(t *testing.T) {
	pol, db := setup(t)
	ctx := context.Background()

	seed(t, db,
		domain.VocabularyEntry{Word: "a", Level: domain.LevelA1},
		domain.VocabularyEntry{Word: "b", Level: domain.LevelA2},
	)

	levels, settings, err := pol.TargetLevels(ctx)
	if err != nil {
		t.Fatalf("target levels: %v", err)
	}
	if settings.Mode != domain.ProgressiveByLevel {
		t.Fatalf("expected progressive default, got %s", settings.Mode)
	}
	if len(levels) != 1 || levels[0] != domain.LevelA1 {
		t.Errorf("expected only the current level, got %v", levels)
	}
}

func TestTargetLevelsRandomMode(t *testing.T) {
	pol, db := setup(t, domain.LevelA1, domain.LevelB1)
	ctx := context.Background()

	settings, err := db.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	settings.Mode = domain.RandomAcrossLevels
	if err := db.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	levels, _, err := pol.TargetLevels(ctx)
	if err != nil {
		t.Fatalf("target levels: %v", err)
	}
	// Only unlocked levels remain, in target preference order.
	if len(levels) != 2 || levels[0] != domain.LevelA1 || levels[1] != domain.LevelB1 {
		t.Errorf("expected [A1 B1], got %v", levels)
	}
}

func TestRandomModeExcludesCompletedLevels(t *testing.T) {
	pol, db := setup(t)
	ctx := context.Background()

	seed(t, db,
		domain.VocabularyEntry{Word: "a", Level: domain.LevelA1, IsKnown: true},
		domain.VocabularyEntry{Word: "b", Level: domain.LevelA2},
	)
	if _, err := pol.RecomputeProgress(ctx); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	settings, err := db.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	settings.Mode = domain.RandomAcrossLevels
	if err := db.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	levels, _, err := pol.TargetLevels(ctx)
	if err != nil {
		t.Fatalf("target levels: %v", err)
	}
	for _, lvl := range levels {
		if lvl == domain.LevelA1 {
			t.Error("completed A1 must not be drawn from in random mode")
		}
	}
	if len(levels) != 3 {
		t.Errorf("expected the three incomplete levels, got %v", levels)
	}
}

func TestAccessPolicyGatesTargets(t *testing.T) {
	pol, _ := setup(t, domain.LevelB2)
	ctx := context.Background()

	levels, _, err := pol.TargetLevels(ctx)
	if err != nil {
		t.Fatalf("target levels: %v", err)
	}
	// Progressive current level A1 is locked; B2 is the only candidate left.
	if len(levels) != 1 || levels[0] != domain.LevelB2 {
		t.Errorf("expected locked current level to widen to [B2], got %v", levels)
	}
}

func TestRecomputeProgressMarksCompletion(t *testing.T) {
	pol, db := setup(t)
	ctx := context.Background()

	seed(t, db,
		domain.VocabularyEntry{Word: "a", Level: domain.LevelA1, IsKnown: true},
		domain.VocabularyEntry{Word: "b", Level: domain.LevelA1, IsKnown: true},
		domain.VocabularyEntry{Word: "c", Level: domain.LevelA2},
	)

	settings, err := pol.RecomputeProgress(ctx)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if !settings.LevelCompleted[domain.LevelA1] {
		t.Error("expected A1 completed")
	}
	if settings.LevelCompleted[domain.LevelA2] {
		t.Error("expected A2 incomplete")
	}
	if settings.LevelCompleted[domain.LevelB1] {
		t.Error("an empty level must not count as completed")
	}
	if settings.TotalPerLevel[domain.LevelA1] != 2 || settings.KnownPerLevel[domain.LevelA1] != 2 {
		t.Errorf("unexpected A1 aggregates: %+v", settings)
	}
}

func TestRecomputeAdvancesCurrentLevel(t *testing.T) {
	pol, db := setup(t)
	ctx := context.Background()

	seed(t, db,
		domain.VocabularyEntry{Word: "a", Level: domain.LevelA1, IsKnown: true},
		domain.VocabularyEntry{Word: "b", Level: domain.LevelA2},
	)

	settings, err := pol.RecomputeProgress(ctx)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if settings.CurrentLevel != domain.LevelA2 {
		t.Errorf("expected advance to A2, got %s", settings.CurrentLevel)
	}

	// Recomputing again must not advance past the incomplete level.
	settings, err = pol.RecomputeProgress(ctx)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if settings.CurrentLevel != domain.LevelA2 {
		t.Errorf("expected current level to stay at A2, got %s", settings.CurrentLevel)
	}
}

func TestRecomputeDoesNotAdvanceIntoCompletedLevel(t *testing.T) {
	pol, db := setup(t)
	ctx := context.Background()

	seed(t, db,
		domain.VocabularyEntry{Word: "a", Level: domain.LevelA1, IsKnown: true},
		domain.VocabularyEntry{Word: "b", Level: domain.LevelA2, IsKnown: true},
	)

	settings, err := pol.RecomputeProgress(ctx)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if settings.CurrentLevel != domain.LevelA1 {
		t.Errorf("expected current level to hold at A1, got %s", settings.CurrentLevel)
	}

	// The completed-current branch widens to incomplete levels instead.
	levels, _, err := pol.TargetLevels(ctx)
	if err != nil {
		t.Fatalf("target levels: %v", err)
	}
	if len(levels) != 2 || levels[0] != domain.LevelB1 || levels[1] != domain.LevelB2 {
		t.Errorf("expected [B1 B2], got %v", levels)
	}
}

func TestAllLevelsCompleteIsTerminal(t *testing.T) {
	pol, db := setup(t)
	ctx := context.Background()

	var entries []domain.VocabularyEntry
	for i, lvl := range domain.Levels {
		entries = append(entries, domain.VocabularyEntry{
			Word: string(rune('a' + i)), Level: lvl, IsKnown: true,
		})
	}
	seed(t, db, entries...)

	settings, err := pol.RecomputeProgress(ctx)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if !settings.AllCompleted() {
		t.Error("expected all levels completed")
	}

	levels, _, err := pol.TargetLevels(ctx)
	if err != nil {
		t.Fatalf("target levels: %v", err)
	}
	if len(levels) != 0 {
		t.Errorf("expected empty target list as terminal condition, got %v", levels)
	}
}
