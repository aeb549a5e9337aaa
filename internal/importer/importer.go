// Package importer bulk-loads vocabulary and corpus content from
// tab-separated data files. It is the provisioning side of the content
// availability gate: the selection engine only ever reads gate state.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/calumbell/wordpace/internal/domain"
	"github.com/calumbell/wordpace/internal/gate"
	"github.com/calumbell/wordpace/internal/storage"
)

const (
	wordsSuffix     = ".words.tsv"
	sentencesSuffix = ".sentences.tsv"
)

// Importer reconciles content-pack data files into the stores.
type Importer struct {
	db   *storage.DB
	gate *gate.Gate
}

// New builds an importer over the given store and gate.
func New(db *storage.DB, g *gate.Gate) *Importer {
	return &Importer{db: db, gate: g}
}

// Summary reports the outcome of an import run.
type Summary struct {
	Words     int
	Sentences int
	Errors    []error
}

// ImportDir walks a content-pack directory, loading every *.words.tsv and
// *.sentences.tsv file. The gate moves to Downloading for the duration of
// the run and to Full once corpus sentences have been loaded; a gate that
// is already Full stays open across pack updates. Per-file failures are
// accumulated, not fatal.
func (im *Importer) ImportDir(ctx context.Context, dir string) (*Summary, error) {
	state, err := im.gate.State(ctx)
	if err != nil {
		return nil, err
	}
	// Re-imports of an already provisioned pack must not move the gate
	// backward.
	if state != gate.Full {
		if err := im.gate.SetState(ctx, gate.Downloading); err != nil {
			return nil, err
		}
	}

	summary := &Summary{}
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		switch {
		case strings.HasSuffix(name, wordsSuffix):
			n, err := im.ImportWords(ctx, path)
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Errorf("importing %s: %w", path, err))
				return nil
			}
			summary.Words += n
		case strings.HasSuffix(name, sentencesSuffix):
			n, err := im.ImportSentences(ctx, path)
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Errorf("importing %s: %w", path, err))
				return nil
			}
			summary.Sentences += n
		}
		return nil
	})
	if walkErr != nil {
		return summary, fmt.Errorf("error walking content pack %s: %w", dir, walkErr)
	}

	if summary.Sentences > 0 && len(summary.Errors) == 0 {
		if err := im.gate.SetState(ctx, gate.Full); err != nil {
			return summary, err
		}
	}

	slog.Info("import complete",
		"dir", dir,
		"words", summary.Words,
		"sentences", summary.Sentences,
		"errors", len(summary.Errors),
	)
	return summary, nil
}

// ImportWords loads one vocabulary file. Columns (tab-separated):
// word, level, translation, definition, example, part_of_speech,
// forms, synonyms, antonyms, collocations. The list columns use ';' as
// an internal separator. Only word and level are required.
func (im *Importer) ImportWords(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	entries, err := parseWords(file)
	if err != nil {
		return 0, err
	}
	if err := im.db.UpsertWords(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// ImportSentences loads one corpus file. Columns (tab-separated):
// source_id, target_id, source_text, target_text, tier.
func (im *Importer) ImportSentences(ctx context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	pairs, err := parseSentences(file)
	if err != nil {
		return 0, err
	}
	if err := im.db.InsertSentences(ctx, pairs); err != nil {
		return 0, err
	}
	return len(pairs), nil
}

func newTSVReader(r io.Reader) *csv.Reader {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'
	tsv.FieldsPerRecord = -1
	tsv.LazyQuotes = true
	return tsv
}

func parseWords(r io.Reader) ([]domain.VocabularyEntry, error) {
	tsv := newTSVReader(r)
	var entries []domain.VocabularyEntry
	for line := 1; ; line++ {
		record, err := tsv.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: want at least word and level, got %d fields", line, len(record))
		}
		level, err := domain.ParseLevel(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entry := domain.VocabularyEntry{
			Word:  domain.NormalizeWord(record[0]),
			Level: level,
		}
		if entry.Word == "" {
			return nil, fmt.Errorf("line %d: empty word", line)
		}
		fields := []*string{
			&entry.Translation, &entry.Definition, &entry.Example, &entry.PartOfSpeech,
		}
		for i, dst := range fields {
			if len(record) > 2+i {
				*dst = record[2+i]
			}
		}
		lists := []*[]string{
			&entry.Forms, &entry.Synonyms, &entry.Antonyms, &entry.Collocations,
		}
		for i, dst := range lists {
			if len(record) > 6+i {
				*dst = splitList(record[6+i])
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseSentences(r io.Reader) ([]domain.SentencePair, error) {
	tsv := newTSVReader(r)
	var pairs []domain.SentencePair
	for line := 1; ; line++ {
		record, err := tsv.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 5 {
			return nil, fmt.Errorf("line %d: want 5 fields, got %d", line, len(record))
		}
		sourceID, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: source id: %w", line, err)
		}
		targetID, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: target id: %w", line, err)
		}
		tier, err := domain.ParseLevel(record[4])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		pairs = append(pairs, domain.SentencePair{
			SourceID:   sourceID,
			TargetID:   targetID,
			SourceText: record[2],
			TargetText: record[3],
			Tier:       tier,
		})
	}
	return pairs, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
