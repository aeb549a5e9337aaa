package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/calumbell/wordpace/internal/domain"
)

const wordColumns = `word, level, translation, definition, example, part_of_speech,
	forms, synonyms, antonyms, collocations, is_known, repetitions, last_reviewed_at`

// GetWord retrieves a single vocabulary entry by its case-normalized key.
// A missing word returns (nil, nil).
func (db *DB) GetWord(ctx context.Context, key string) (*domain.VocabularyEntry, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+wordColumns+`
		FROM words WHERE word = ?
	`, domain.NormalizeWord(key))

	entry, err := scanWord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Word not found
		}
		return nil, fmt.Errorf("failed to get word %s: %w", key, err)
	}
	return entry, nil
}

// FetchWords returns every entry matching the filter conjunction.
func (db *DB) FetchWords(ctx context.Context, f domain.WordFilter) ([]domain.VocabularyEntry, error) {
	where, args := buildWordFilter(f)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+wordColumns+`
		FROM words`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch words: %w", err)
	}
	defer rows.Close()

	var entries []domain.VocabularyEntry
	for rows.Next() {
		entry, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch words: %w", err)
	}
	return entries, nil
}

// CountWords counts entries matching the filter conjunction.
func (db *DB) CountWords(ctx context.Context, f domain.WordFilter) (int, error) {
	where, args := buildWordFilter(f)
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return n, nil
}

// UpsertWord inserts or replaces a single vocabulary entry.
func (db *DB) UpsertWord(ctx context.Context, entry domain.VocabularyEntry) error {
	return db.upsertWord(ctx, db.conn, entry)
}

// UpsertWords inserts or replaces a batch of entries in one transaction.
// The batch is all-or-nothing: a failed row rolls back every prior row.
func (db *DB) UpsertWords(ctx context.Context, entries []domain.VocabularyEntry) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin word batch: %w", err)
	}
	for _, entry := range entries {
		if err := db.upsertWord(ctx, tx, entry); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit word batch: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (db *DB) upsertWord(ctx context.Context, ex execer, entry domain.VocabularyEntry) error {
	var last any
	if entry.LastReviewedAt != nil {
		last = *entry.LastReviewedAt
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO words (`+wordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(word) DO UPDATE SET
			level = excluded.level,
			translation = excluded.translation,
			definition = excluded.definition,
			example = excluded.example,
			part_of_speech = excluded.part_of_speech,
			forms = excluded.forms,
			synonyms = excluded.synonyms,
			antonyms = excluded.antonyms,
			collocations = excluded.collocations,
			is_known = excluded.is_known,
			repetitions = excluded.repetitions,
			last_reviewed_at = excluded.last_reviewed_at
	`,
		domain.NormalizeWord(entry.Word),
		string(entry.Level),
		entry.Translation,
		entry.Definition,
		entry.Example,
		entry.PartOfSpeech,
		marshalList(entry.Forms),
		marshalList(entry.Synonyms),
		marshalList(entry.Antonyms),
		marshalList(entry.Collocations),
		entry.IsKnown,
		entry.Repetitions,
		last,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert word %s: %w", entry.Word, err)
	}
	return nil
}

// IncrementRepetitions bumps the consecutive-exposure counter and stamps
// the review time. The counter only ever grows through this path.
func (db *DB) IncrementRepetitions(ctx context.Context, key string, now time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE words
		SET repetitions = repetitions + 1, last_reviewed_at = ?
		WHERE word = ?
	`, now, domain.NormalizeWord(key))
	if err != nil {
		return fmt.Errorf("failed to record exposure for %s: %w", key, err)
	}
	return nil
}

// SetKnown marks a word mastered and resets its repetition counter.
func (db *DB) SetKnown(ctx context.Context, key string) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE words
		SET is_known = 1, repetitions = 0
		WHERE word = ?
	`, domain.NormalizeWord(key))
	if err != nil {
		return fmt.Errorf("failed to mark %s known: %w", key, err)
	}
	return nil
}

// LevelCount is one row of the per-level aggregate scan.
type LevelCount struct {
	Total int
	Known int
}

// LevelCounts recounts total and known words per level in one pass over
// the whole table. This backs the settings progress recompute.
func (db *DB) LevelCounts(ctx context.Context) (map[domain.Level]LevelCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT level, COUNT(*), SUM(is_known)
		FROM words GROUP BY level
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count levels: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Level]LevelCount)
	for rows.Next() {
		var level string
		var lc LevelCount
		if err := rows.Scan(&level, &lc.Total, &lc.Known); err != nil {
			return nil, fmt.Errorf("failed to scan level count row: %w", err)
		}
		counts[domain.Level(level)] = lc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count levels: %w", err)
	}
	return counts, nil
}

// buildWordFilter renders a WordFilter as a WHERE clause with placeholders.
func buildWordFilter(f domain.WordFilter) (string, []any) {
	var conds []string
	var args []any

	if len(f.Levels) > 0 {
		marks := make([]string, len(f.Levels))
		for i, lvl := range f.Levels {
			marks[i] = "?"
			args = append(args, string(lvl))
		}
		conds = append(conds, "level IN ("+strings.Join(marks, ", ")+")")
	}
	if f.IsKnown != nil {
		conds = append(conds, "is_known = ?")
		args = append(args, *f.IsKnown)
	}
	switch f.Repetitions {
	case domain.ZeroRepetitions:
		conds = append(conds, "repetitions = 0")
	case domain.PositiveRepetitions:
		conds = append(conds, "repetitions > 0")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWord(row rowScanner) (*domain.VocabularyEntry, error) {
	var e domain.VocabularyEntry
	var level string
	var forms, synonyms, antonyms, collocations string
	var last sql.NullTime

	err := row.Scan(
		&e.Word,
		&level,
		&e.Translation,
		&e.Definition,
		&e.Example,
		&e.PartOfSpeech,
		&forms,
		&synonyms,
		&antonyms,
		&collocations,
		&e.IsKnown,
		&e.Repetitions,
		&last,
	)
	if err != nil {
		return nil, err
	}

	e.Level = domain.Level(level)
	e.Forms = unmarshalList(forms)
	e.Synonyms = unmarshalList(synonyms)
	e.Antonyms = unmarshalList(antonyms)
	e.Collocations = unmarshalList(collocations)
	if last.Valid {
		t := last.Time
		e.LastReviewedAt = &t
	}
	return &e, nil
}

func marshalList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalList(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}
