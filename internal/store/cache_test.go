package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/aimon/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSaveAndLoadRecords(t *testing.T) {
	c := openTestCache(t)

	ts := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	records := []model.UsageRecord{
		{
			Timestamp:           ts,
			Model:               "claude-sonnet-4",
			PromptTokens:        1500,
			CompletionTokens:    500,
			CacheCreationTokens: 200,
			CacheReadTokens:     300,
			CostUSD:             0.0123,
			CacheSavingsUSD:     0.0008,
			RequestID:           "r1",
			DedupKey:            "m1:r1",
		},
		{Timestamp: ts.Add(time.Minute), Model: "gpt-4o", PromptTokens: 100, CompletionTokens: 20, CostUSD: 0.001},
	}

	if err := c.SaveFileRecords("/logs/a.jsonl", 12345, 678, records); err != nil {
		t.Fatal(err)
	}

	got, err := c.LoadRecords("/logs/a.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d", len(got))
	}
	if got[0] != records[0] {
		t.Errorf("roundtrip mismatch:\n got %+v\nwant %+v", got[0], records[0])
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatal(err)
	}
	fi, ok := tracked["/logs/a.jsonl"]
	if !ok || fi.MtimeNs != 12345 || fi.SizeBytes != 678 {
		t.Fatalf("tracked = %+v", tracked)
	}
}

func TestSaveReplacesOldRecords(t *testing.T) {
	c := openTestCache(t)
	ts := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	old := []model.UsageRecord{{Timestamp: ts, Model: "claude-sonnet-4", PromptTokens: 1}}
	if err := c.SaveFileRecords("/logs/a.jsonl", 1, 1, old); err != nil {
		t.Fatal(err)
	}
	fresh := []model.UsageRecord{
		{Timestamp: ts, Model: "claude-sonnet-4", PromptTokens: 2},
		{Timestamp: ts.Add(time.Minute), Model: "claude-sonnet-4", PromptTokens: 3},
	}
	if err := c.SaveFileRecords("/logs/a.jsonl", 2, 2, fresh); err != nil {
		t.Fatal(err)
	}

	got, err := c.LoadRecords("/logs/a.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].PromptTokens != 2 {
		t.Fatalf("reparse did not replace records: %+v", got)
	}

	n, err := c.RecordCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("record count = %d", n)
	}
}

func TestDeleteFileCascades(t *testing.T) {
	c := openTestCache(t)
	ts := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	if err := c.SaveFileRecords("/logs/a.jsonl", 1, 1, []model.UsageRecord{{Timestamp: ts, Model: "m", PromptTokens: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteFile("/logs/a.jsonl"); err != nil {
		t.Fatal(err)
	}

	n, err := c.RecordCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("records survived delete: %d", n)
	}
	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(tracked) != 0 {
		t.Fatalf("tracker survived delete: %+v", tracked)
	}
}
