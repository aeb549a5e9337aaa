package domain

import (
	"strings"
	"time"
)

// VocabularyEntry is a single word and its per-learner progress state.
// Word is the primary key, case-normalized at creation. Level and the
// reference fields are immutable after creation; only IsKnown,
// Repetitions and LastReviewedAt change during a learning session.
type VocabularyEntry struct {
	Word         string
	Level        Level
	Translation  string
	Definition   string
	Example      string
	PartOfSpeech string
	Forms        []string
	Synonyms     []string
	Antonyms     []string
	Collocations []string

	// IsKnown removes the entry from both pools until explicitly reset.
	IsKnown bool
	// Repetitions counts consecutive exposures; 0 means never reviewed.
	Repetitions int
	// LastReviewedAt is set whenever Repetitions changes. It is nil only
	// while Repetitions is 0.
	LastReviewedAt *time.Time
}

// NormalizeWord case-normalizes a word key.
func NormalizeWord(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

// RepetitionFilter narrows a word query by the repetitions counter.
type RepetitionFilter int

const (
	AnyRepetitions RepetitionFilter = iota
	ZeroRepetitions
	PositiveRepetitions
)

// WordFilter is a conjunction of predicates over vocabulary entries.
// Zero-valued fields do not constrain the query.
type WordFilter struct {
	Levels      []Level
	IsKnown     *bool
	Repetitions RepetitionFilter
}

// ReviewStats is an on-demand snapshot of the eligible pool, used to
// parameterize the new-vs-review ratio. Never persisted.
type ReviewStats struct {
	TotalWords    int
	KnownWords    int
	WordsInReview int
}
