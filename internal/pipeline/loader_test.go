package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/aimon/internal/model"
	"github.com/theirongolddev/aimon/internal/platform"
	"github.com/theirongolddev/aimon/internal/source"
)

// dirPlatform serves every .jsonl file under a directory.
type dirPlatform struct {
	name string
	dir  string
}

func (p dirPlatform) Name() string { return p.name }

func (p dirPlatform) Discover() ([]source.DiscoveredFile, error) {
	return source.ScanDir(p.dir, p.name)
}

func (p dirPlatform) Models() []model.ModelInfo { return nil }

func TestLoadDeduplicatesAcrossFiles(t *testing.T) {
	dir := t.TempDir()

	// The same message/request pair appears in two files.
	shared := `{"timestamp":"2025-06-15T10:00:00Z","message":{"id":"m1","model":"claude-sonnet-4","usage":{"input_tokens":100,"output_tokens":50}},"requestId":"r1"}`
	if err := os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte(shared+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	other := `{"timestamp":"2025-06-15T11:00:00Z","message":{"id":"m2","model":"claude-sonnet-4","usage":{"input_tokens":10,"output_tokens":5}},"requestId":"r2"}`
	if err := os.WriteFile(filepath.Join(dir, "b.jsonl"), []byte(shared+"\n"+other+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Load([]platform.Platform{dirPlatform{name: "claude", dir: dir}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("records = %d, want 2 after dedup", len(res.Records))
	}
	if res.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", res.Duplicates)
	}
	// Sorted by timestamp.
	if res.Records[0].Timestamp.After(res.Records[1].Timestamp) {
		t.Error("records not sorted by timestamp")
	}
}

func TestLoadTolerantOfBadFiles(t *testing.T) {
	dir := t.TempDir()
	content := `{"timestamp":"2025-06-15T10:00:00Z","usage":{"input_tokens":1}}
garbage line with "usage" in it {{{
`
	if err := os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Load([]platform.Platform{dirPlatform{name: "claude", dir: dir}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(res.Records))
	}
	if res.ParseErrors != 1 {
		t.Errorf("parse errors = %d, want 1", res.ParseErrors)
	}
}

func TestLoadEmpty(t *testing.T) {
	res, err := Load([]platform.Platform{dirPlatform{name: "claude", dir: t.TempDir()}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFiles != 0 || len(res.Records) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}
