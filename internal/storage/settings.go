package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/calumbell/wordpace/internal/domain"
)

// LoadSettings returns the singleton learning settings row, creating it
// with defaults on first access.
func (db *DB) LoadSettings(ctx context.Context) (*domain.LearningSettings, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT target_levels, mode, current_level, level_completed, total_per_level, known_per_level
		FROM settings WHERE id = 1
	`)

	var targetLevels, mode, currentLevel, completed, totals, known string
	err := row.Scan(&targetLevels, &mode, &currentLevel, &completed, &totals, &known)
	if err == sql.ErrNoRows {
		defaults := domain.DefaultSettings()
		if err := db.SaveSettings(ctx, defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	s := &domain.LearningSettings{
		Mode:         domain.Mode(mode),
		CurrentLevel: domain.Level(currentLevel),
	}
	if err := json.Unmarshal([]byte(targetLevels), &s.TargetLevels); err != nil {
		return nil, fmt.Errorf("failed to decode target levels: %w", err)
	}
	if err := json.Unmarshal([]byte(completed), &s.LevelCompleted); err != nil {
		return nil, fmt.Errorf("failed to decode level completion: %w", err)
	}
	if err := json.Unmarshal([]byte(totals), &s.TotalPerLevel); err != nil {
		return nil, fmt.Errorf("failed to decode level totals: %w", err)
	}
	if err := json.Unmarshal([]byte(known), &s.KnownPerLevel); err != nil {
		return nil, fmt.Errorf("failed to decode known counts: %w", err)
	}
	return s, nil
}

// SaveSettings writes the singleton settings row.
func (db *DB) SaveSettings(ctx context.Context, s *domain.LearningSettings) error {
	targetLevels, err := json.Marshal(s.TargetLevels)
	if err != nil {
		return fmt.Errorf("failed to encode target levels: %w", err)
	}
	completed, err := json.Marshal(s.LevelCompleted)
	if err != nil {
		return fmt.Errorf("failed to encode level completion: %w", err)
	}
	totals, err := json.Marshal(s.TotalPerLevel)
	if err != nil {
		return fmt.Errorf("failed to encode level totals: %w", err)
	}
	known, err := json.Marshal(s.KnownPerLevel)
	if err != nil {
		return fmt.Errorf("failed to encode known counts: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO settings (id, target_levels, mode, current_level, level_completed, total_per_level, known_per_level)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			target_levels = excluded.target_levels,
			mode = excluded.mode,
			current_level = excluded.current_level,
			level_completed = excluded.level_completed,
			total_per_level = excluded.total_per_level,
			known_per_level = excluded.known_per_level
	`, string(targetLevels), string(s.Mode), string(s.CurrentLevel), string(completed), string(totals), string(known))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
