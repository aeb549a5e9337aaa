// Package scheduler implements the selection engine: it decides the single
// best next word, balancing new words against the review backlog.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/calumbell/wordpace/internal/domain"
	"github.com/calumbell/wordpace/internal/gate"
	"github.com/calumbell/wordpace/internal/policy"
	"github.com/calumbell/wordpace/internal/storage"
)

// Engine selects the next vocabulary entry to present. Selection is a pure
// read; mutation happens only through RecordExposure and MarkKnown, which
// are serialized on a single writer lane. The engine holds no session
// state between calls: the exclusion window belongs to the caller.
type Engine struct {
	db     *storage.DB
	policy *policy.Policy
	gate   *gate.Gate
	params *Params
	rng    RNG
	now    func() time.Time

	writeMu sync.Mutex
}

// New builds an engine over the given stores and scheduling constants.
func New(db *storage.DB, pol *policy.Policy, g *gate.Gate, params *Params, rng RNG) *Engine {
	if params == nil {
		params = DefaultParams()
	}
	if rng == nil {
		rng = NewRand()
	}
	return &Engine{
		db:     db,
		policy: pol,
		gate:   g,
		params: params,
		rng:    rng,
		now:    time.Now,
	}
}

// SelectNext picks the next entry to present, skipping recently shown
// keys. A nil entry with a nil error means no candidate was found; the
// caller disambiguates "all levels complete" from "momentarily empty
// pool" through the settings aggregates.
func (e *Engine) SelectNext(ctx context.Context, excluding []string) (*domain.VocabularyEntry, error) {
	levels, _, err := e.policy.TargetLevels(ctx)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, nil
	}

	full, err := e.gate.Check(ctx)
	if err != nil {
		return nil, err
	}

	eligible, err := e.eligibleWords(ctx, levels, full)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(excluding))
	for _, key := range excluding {
		excluded[domain.NormalizeWord(key)] = struct{}{}
	}

	stats := poolStats(eligible)
	if e.rng.Float64() < e.params.NewRatio(stats.WordsInReview) {
		if entry := e.pickNew(eligible, levels, excluded); entry != nil {
			return entry, nil
		}
		return e.pickReview(eligible, excluded), nil
	}
	if entry := e.pickReview(eligible, excluded); entry != nil {
		return entry, nil
	}
	return e.pickNew(eligible, levels, excluded), nil
}

// RecordExposure reports that a previously selected entry was shown and
// dismissed without being marked known. The repetition counter only grows
// through this path.
func (e *Engine) RecordExposure(ctx context.Context, key string) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.db.IncrementRepetitions(ctx, key, e.now())
}

// MarkKnown marks an entry mastered, resets its repetitions, and recounts
// the per-level progress aggregates.
func (e *Engine) MarkKnown(ctx context.Context, key string) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if err := e.db.SetKnown(ctx, key); err != nil {
		return err
	}
	_, err := e.policy.RecomputeProgress(ctx)
	return err
}

// Stats snapshots the eligible pool. The snapshot parameterizes the
// new-vs-review ratio and is never persisted.
func (e *Engine) Stats(ctx context.Context) (domain.ReviewStats, error) {
	levels, _, err := e.policy.TargetLevels(ctx)
	if err != nil {
		return domain.ReviewStats{}, err
	}
	if len(levels) == 0 {
		return domain.ReviewStats{}, nil
	}
	full, err := e.gate.Check(ctx)
	if err != nil {
		return domain.ReviewStats{}, err
	}
	eligible, err := e.eligibleWords(ctx, levels, full)
	if err != nil {
		return domain.ReviewStats{}, err
	}
	return poolStats(eligible), nil
}

// eligibleWords scans every entry in the target levels, restricted to the
// seed allowlist while the content gate is not fully open.
func (e *Engine) eligibleWords(ctx context.Context, levels []domain.Level, full bool) ([]domain.VocabularyEntry, error) {
	entries, err := e.db.FetchWords(ctx, domain.WordFilter{Levels: levels})
	if err != nil {
		return nil, err
	}
	if full {
		return entries, nil
	}
	eligible := entries[:0]
	for _, entry := range entries {
		if e.gate.IsSeedItem(entry.Word) {
			eligible = append(eligible, entry)
		}
	}
	return eligible, nil
}

func poolStats(entries []domain.VocabularyEntry) domain.ReviewStats {
	var stats domain.ReviewStats
	stats.TotalWords = len(entries)
	for _, entry := range entries {
		switch {
		case entry.IsKnown:
			stats.KnownWords++
		case entry.Repetitions > 0:
			stats.WordsInReview++
		}
	}
	return stats
}

// pickNew draws uniformly from the never-reviewed pool of the first target
// level that still has candidates: earlier levels are exhausted before
// later ones are tried.
func (e *Engine) pickNew(eligible []domain.VocabularyEntry, levels []domain.Level, excluded map[string]struct{}) *domain.VocabularyEntry {
	for _, lvl := range levels {
		var pool []domain.VocabularyEntry
		for _, entry := range eligible {
			if entry.Level != lvl || entry.IsKnown || entry.Repetitions != 0 {
				continue
			}
			if _, skip := excluded[entry.Word]; skip {
				continue
			}
			pool = append(pool, entry)
		}
		if len(pool) > 0 {
			pick := pool[e.rng.IntN(len(pool))]
			return &pick
		}
	}
	return nil
}

// pickReview walks repetition groups in ascending order (fewest exposures
// first, since those are furthest from mastery) and picks from the first
// group with unexcluded candidates, biased toward the least recently
// reviewed quartile.
func (e *Engine) pickReview(eligible []domain.VocabularyEntry, excluded map[string]struct{}) *domain.VocabularyEntry {
	groups := make(map[int][]domain.VocabularyEntry)
	var reps []int
	for _, entry := range eligible {
		if entry.IsKnown || entry.Repetitions == 0 {
			continue
		}
		if _, skip := excluded[entry.Word]; skip {
			continue
		}
		if _, seen := groups[entry.Repetitions]; !seen {
			reps = append(reps, entry.Repetitions)
		}
		groups[entry.Repetitions] = append(groups[entry.Repetitions], entry)
	}
	sort.Ints(reps)

	for _, rep := range reps {
		group := groups[rep]
		if len(group) == 0 {
			continue
		}
		// Oldest review first; entries never stamped sort before all others.
		sort.SliceStable(group, func(i, j int) bool {
			a, b := group[i].LastReviewedAt, group[j].LastReviewedAt
			switch {
			case a == nil:
				return b != nil
			case b == nil:
				return false
			}
			return a.Before(*b)
		})

		pool := group
		if len(group) > e.params.BiasMinGroup && e.rng.Float64() < e.params.OldestBias {
			quartile := len(group) / 4
			if quartile < 1 {
				quartile = 1
			}
			pool = group[:quartile]
		}
		pick := pool[e.rng.IntN(len(pool))]
		return &pick
	}
	return nil
}
