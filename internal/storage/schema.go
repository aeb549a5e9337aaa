package storage

const schema = `
-- The 'words' table holds one row per vocabulary entry, keyed by the
-- case-normalized word. The list-valued columns store JSON arrays.
CREATE TABLE IF NOT EXISTS words (
    word TEXT PRIMARY KEY,
    level TEXT NOT NULL,
    translation TEXT NOT NULL DEFAULT '',
    definition TEXT NOT NULL DEFAULT '',
    example TEXT NOT NULL DEFAULT '',
    part_of_speech TEXT NOT NULL DEFAULT '',
    forms TEXT NOT NULL DEFAULT '[]',
    synonyms TEXT NOT NULL DEFAULT '[]',
    antonyms TEXT NOT NULL DEFAULT '[]',
    collocations TEXT NOT NULL DEFAULT '[]',
    is_known INTEGER NOT NULL DEFAULT 0,
    repetitions INTEGER NOT NULL DEFAULT 0,
    last_reviewed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_words_pool ON words (level, is_known, repetitions);

-- The 'sentences' table is the example corpus. (source_id, target_id) are
-- external corpus identifiers and may repeat.
CREATE TABLE IF NOT EXISTS sentences (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_id INTEGER NOT NULL,
    target_id INTEGER NOT NULL,
    source_text TEXT NOT NULL,
    target_text TEXT NOT NULL,
    tier TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sentences_tier ON sentences (tier);

-- The 'settings' table holds the singleton learning settings row. The
-- per-level aggregates are JSON objects keyed by level.
CREATE TABLE IF NOT EXISTS settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    target_levels TEXT NOT NULL,
    mode TEXT NOT NULL,
    current_level TEXT NOT NULL,
    level_completed TEXT NOT NULL,
    total_per_level TEXT NOT NULL,
    known_per_level TEXT NOT NULL
);

-- The 'meta' table carries small key/value state such as the content
-- availability gate.
CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
