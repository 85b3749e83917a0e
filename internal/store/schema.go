package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS files (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
    file_path            TEXT NOT NULL REFERENCES files(file_path) ON DELETE CASCADE,
    ts                   TEXT NOT NULL,
    model                TEXT NOT NULL,
    prompt_tokens        INTEGER NOT NULL,
    completion_tokens    INTEGER NOT NULL,
    cache_creation_tokens INTEGER NOT NULL,
    cache_read_tokens    INTEGER NOT NULL,
    cost_usd             REAL NOT NULL,
    cache_savings_usd    REAL NOT NULL,
    request_id           TEXT,
    dedup_key            TEXT
);

CREATE INDEX IF NOT EXISTS idx_records_file ON records(file_path);
CREATE INDEX IF NOT EXISTS idx_records_ts ON records(ts);
`
