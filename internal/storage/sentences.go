package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/calumbell/wordpace/internal/domain"
)

// SearchSentences performs a case-insensitive substring match against the
// source-language text only. The match has no notion of word boundaries;
// callers over-fetch and post-filter for whole words.
func (db *DB) SearchSentences(ctx context.Context, pattern string, limit int, tier *domain.Level) ([]domain.SentencePair, error) {
	query := `
		SELECT source_id, target_id, source_text, target_text, tier
		FROM sentences
		WHERE source_text LIKE ? ESCAPE '\'`
	args := []any{"%" + escapeLike(pattern) + "%"}
	if tier != nil {
		query += ` AND tier = ?`
		args = append(args, string(*tier))
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	return db.querySentences(ctx, query, args...)
}

// SampleSentences returns an unordered random subset of the corpus,
// optionally restricted to one tier.
func (db *DB) SampleSentences(ctx context.Context, count int, tier *domain.Level) ([]domain.SentencePair, error) {
	query := `
		SELECT source_id, target_id, source_text, target_text, tier
		FROM sentences`
	var args []any
	if tier != nil {
		query += ` WHERE tier = ?`
		args = append(args, string(*tier))
	}
	query += ` ORDER BY RANDOM() LIMIT ?`
	args = append(args, count)

	return db.querySentences(ctx, query, args...)
}

// InsertSentences bulk-loads corpus rows in one transaction. Duplicate
// (source_id, target_id) pairs are tolerated by design.
func (db *DB) InsertSentences(ctx context.Context, pairs []domain.SentencePair) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin sentence batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sentences (source_id, target_id, source_text, target_text, tier)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare sentence insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pairs {
		if _, err := stmt.ExecContext(ctx, p.SourceID, p.TargetID, p.SourceText, p.TargetText, string(p.Tier)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert sentence %d/%d: %w", p.SourceID, p.TargetID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sentence batch: %w", err)
	}
	return nil
}

// CountSentences reports the corpus size.
func (db *DB) CountSentences(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sentences`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sentences: %w", err)
	}
	return n, nil
}

func (db *DB) querySentences(ctx context.Context, query string, args ...any) ([]domain.SentencePair, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sentences: %w", err)
	}
	defer rows.Close()

	var pairs []domain.SentencePair
	for rows.Next() {
		var p domain.SentencePair
		var tier string
		if err := rows.Scan(&p.SourceID, &p.TargetID, &p.SourceText, &p.TargetText, &tier); err != nil {
			return nil, fmt.Errorf("failed to scan sentence row: %w", err)
		}
		p.Tier = domain.Level(tier)
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query sentences: %w", err)
	}
	return pairs, nil
}

// escapeLike neutralizes LIKE metacharacters in a user-supplied pattern.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
