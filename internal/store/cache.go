// Package store provides a SQLite-backed cache for normalized usage
// records, keyed by source file.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/aimon/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed record caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM files")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFileRecords replaces the cached records for one source file
// and updates its tracking info, atomically.
func (c *Cache) SaveFileRecords(filePath string, mtimeNs, sizeBytes int64, records []model.UsageRecord) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT OR REPLACE INTO files (file_path, mtime_ns, size_bytes, parsed_at)
		VALUES (?, ?, ?, ?)`, filePath, mtimeNs, sizeBytes, now)
	if err != nil {
		return err
	}

	if _, err = tx.Exec("DELETE FROM records WHERE file_path = ?", filePath); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO records
		(file_path, ts, model, prompt_tokens, completion_tokens,
		 cache_creation_tokens, cache_read_tokens, cost_usd, cache_savings_usd,
		 request_id, dedup_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		_, err = stmt.Exec(
			filePath, r.Timestamp.UTC().Format(time.RFC3339Nano), r.Model,
			r.PromptTokens, r.CompletionTokens,
			r.CacheCreationTokens, r.CacheReadTokens, r.CostUSD, r.CacheSavingsUSD,
			r.RequestID, r.DedupKey,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadRecords reads the cached records for one source file.
func (c *Cache) LoadRecords(filePath string) ([]model.UsageRecord, error) {
	rows, err := c.db.Query(`SELECT
		ts, model, prompt_tokens, completion_tokens,
		cache_creation_tokens, cache_read_tokens, cost_usd, cache_savings_usd,
		request_id, dedup_key
		FROM records WHERE file_path = ?`, filePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []model.UsageRecord
	for rows.Next() {
		var r model.UsageRecord
		var ts string
		var requestID, dedupKey sql.NullString

		err := rows.Scan(
			&ts, &r.Model, &r.PromptTokens, &r.CompletionTokens,
			&r.CacheCreationTokens, &r.CacheReadTokens, &r.CostUSD, &r.CacheSavingsUSD,
			&requestID, &dedupKey,
		)
		if err != nil {
			return nil, err
		}

		r.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("corrupt cached timestamp %q: %w", ts, err)
		}
		r.Timestamp = r.Timestamp.UTC()
		if requestID.Valid {
			r.RequestID = requestID.String
		}
		if dedupKey.Valid {
			r.DedupKey = dedupKey.String
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteFile removes a file's tracking entry and its records.
func (c *Cache) DeleteFile(filePath string) error {
	_, err := c.db.Exec("DELETE FROM files WHERE file_path = ?", filePath)
	return err
}

// RecordCount returns the number of cached records.
func (c *Cache) RecordCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}
