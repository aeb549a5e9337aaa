package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/calumbell/wordpace/internal/domain"
	"github.com/calumbell/wordpace/internal/gate"
	"github.com/calumbell/wordpace/internal/storage"
)

const wordsTSV = "apple\tA1\tmanzana\ta round fruit\tI ate an apple.\tnoun\tapples\tpome\t\tapple pie;apple tree\n" +
	"run\tA2\tcorrer\n" +
	"# comment line\n" +
	"bright\tB1\tbrillante\tgiving off light\t\tadjective\n"

const sentencesTSV = "100\t200\tThe apple is red.\tLa manzana es roja.\tA1\n" +
	"101\t201\tI run every day.\tCorro todos los días.\tA2\n"

func setup(t *testing.T) (*Importer, *storage.DB, *gate.Gate) {
	t.Helper()
	db, err := storage.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	g := gate.New(db, nil)
	return New(db, g), db, g
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestImportWords(t *testing.T) {
	im, db, _ := setup(t)
	ctx := context.Background()

	path := writeFile(t, t.TempDir(), "core.words.tsv", wordsTSV)
	n, err := im.ImportWords(ctx, path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 words, got %d", n)
	}

	apple, err := db.GetWord(ctx, "apple")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if apple == nil || apple.Level != domain.LevelA1 {
		t.Fatalf("unexpected apple entry: %+v", apple)
	}
	if apple.Translation != "manzana" || apple.PartOfSpeech != "noun" {
		t.Errorf("reference fields not imported: %+v", apple)
	}
	if len(apple.Collocations) != 2 || apple.Collocations[0] != "apple pie" {
		t.Errorf("expected split collocations, got %v", apple.Collocations)
	}
	if apple.Repetitions != 0 || apple.IsKnown {
		t.Errorf("imported words must start in the new pool, got %+v", apple)
	}

	// Short rows only carry word and level.
	run, err := db.GetWord(ctx, "run")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if run == nil || run.Translation != "correr" || run.Definition != "" {
		t.Errorf("unexpected short-row entry: %+v", run)
	}
}

func TestImportWordsRejectsBadLevel(t *testing.T) {
	im, db, _ := setup(t)
	ctx := context.Background()

	path := writeFile(t, t.TempDir(), "bad.words.tsv", "good\tA1\nbad\tZ9\n")
	if _, err := im.ImportWords(ctx, path); err == nil {
		t.Fatal("expected an error for an unknown level")
	}

	// The batch is all-or-nothing: the valid row must not have landed.
	entry, err := db.GetWord(ctx, "good")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry != nil {
		t.Errorf("expected rollback of the whole batch, found %+v", entry)
	}
}

func TestImportSentences(t *testing.T) {
	im, db, _ := setup(t)
	ctx := context.Background()

	path := writeFile(t, t.TempDir(), "tatoeba.sentences.tsv", sentencesTSV)
	n, err := im.ImportSentences(ctx, path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 sentences, got %d", n)
	}

	rows, err := db.SearchSentences(ctx, "apple", 10, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 1 || rows[0].SourceID != 100 || rows[0].Tier != domain.LevelA1 {
		t.Errorf("unexpected imported row: %+v", rows)
	}
}

func TestImportDirAdvancesGate(t *testing.T) {
	im, _, g := setup(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeFile(t, dir, "core.words.tsv", wordsTSV)
	writeFile(t, dir, "core.sentences.tsv", sentencesTSV)

	summary, err := im.ImportDir(ctx, dir)
	if err != nil {
		t.Fatalf("import dir: %v", err)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", summary.Errors)
	}
	if summary.Words != 3 || summary.Sentences != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	full, err := g.Check(ctx)
	if err != nil {
		t.Fatalf("check gate: %v", err)
	}
	if !full {
		t.Error("expected the gate to open after a full corpus load")
	}
}

func TestImportDirReimportKeepsGateOpen(t *testing.T) {
	im, db, g := setup(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeFile(t, dir, "core.words.tsv", wordsTSV)
	writeFile(t, dir, "core.sentences.tsv", sentencesTSV)

	if _, err := im.ImportDir(ctx, dir); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if state, err := g.State(ctx); err != nil || state != gate.Full {
		t.Fatalf("expected full after first import, got %s, %v", state, err)
	}

	// Picking up pack updates re-runs the import over an open gate.
	summary, err := im.ImportDir(ctx, dir)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", summary.Errors)
	}
	if summary.Words != 3 {
		t.Errorf("expected the updated pack to load, got %d words", summary.Words)
	}
	if state, err := g.State(ctx); err != nil || state != gate.Full {
		t.Errorf("expected gate to stay full across re-imports, got %s, %v", state, err)
	}

	n, err := db.CountSentences(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 4 {
		t.Errorf("expected both corpus loads stored, got %d rows", n)
	}
}

func TestImportDirWithoutSentencesKeepsGateClosed(t *testing.T) {
	im, _, g := setup(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeFile(t, dir, "core.words.tsv", wordsTSV)

	summary, err := im.ImportDir(ctx, dir)
	if err != nil {
		t.Fatalf("import dir: %v", err)
	}
	if summary.Words != 3 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	state, err := g.State(ctx)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state != gate.Downloading {
		t.Errorf("expected gate to stay at downloading, got %s", state)
	}
}

func TestImportDirAccumulatesFileErrors(t *testing.T) {
	im, db, _ := setup(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeFile(t, dir, "bad.words.tsv", "oops\tZ9\n")
	writeFile(t, dir, "good.words.tsv", "fine\tA1\n")

	summary, err := im.ImportDir(ctx, dir)
	if err != nil {
		t.Fatalf("import dir: %v", err)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("expected one accumulated error, got %v", summary.Errors)
	}
	if summary.Words != 1 {
		t.Errorf("expected the good file to import, got %d words", summary.Words)
	}

	entry, err := db.GetWord(ctx, "fine")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry == nil {
		t.Error("expected the good file's word to be present")
	}
}
