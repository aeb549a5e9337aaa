// Package lookup finds example sentences containing a word. The storage
// engine only matches substrings, so lookups over-fetch and re-filter for
// whole-word matches client-side; that beats pushing boundary-aware
// matching into the storage engine.
package lookup

import (
	"context"
	"strings"
	"unicode"

	"github.com/calumbell/wordpace/internal/domain"
	"github.com/calumbell/wordpace/internal/storage"
)

// overFetchFactor is how many substring rows are fetched per requested
// whole-word result before the boundary postfilter runs.
const overFetchFactor = 5

// Lookup serves bounded example-sentence queries against the corpus.
type Lookup struct {
	db *storage.DB
}

// New builds a lookup over the corpus store.
func New(db *storage.DB) *Lookup {
	return &Lookup{db: db}
}

// Examples returns up to limit corpus sentences containing word as a whole
// word in the source text. An empty result is valid ("no examples yet"),
// not an error.
func (l *Lookup) Examples(ctx context.Context, word string, limit int) ([]domain.SentencePair, error) {
	word = domain.NormalizeWord(word)
	if word == "" || limit <= 0 {
		return nil, nil
	}

	rows, err := l.db.SearchSentences(ctx, word, limit*overFetchFactor, nil)
	if err != nil {
		return nil, err
	}

	var out []domain.SentencePair
	for _, pair := range rows {
		if !ContainsWholeWord(pair.SourceText, word) {
			continue
		}
		out = append(out, pair)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ContainsWholeWord reports whether word occurs in text as a maximal
// alphabetic run, case-insensitively. "cat" matches "the cat sat" but not
// "concatenate".
func ContainsWholeWord(text, word string) bool {
	if word == "" {
		return false
	}
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && strings.EqualFold(text[start:i], word) {
			return true
		}
		start = -1
	}
	return start >= 0 && strings.EqualFold(text[start:], word)
}
