package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/aimon/internal/model"
	"github.com/theirongolddev/aimon/internal/platform"
	"github.com/theirongolddev/aimon/internal/source"
)

func benchDir(b *testing.B, files, linesPerFile int) string {
	b.Helper()
	dir := b.TempDir()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for f := 0; f < files; f++ {
		var buf []byte
		for i := 0; i < linesPerFile; i++ {
			ts := base.Add(time.Duration(f*linesPerFile+i) * time.Minute)
			line := fmt.Sprintf(
				`{"timestamp":%q,"message":{"id":"m%d-%d","model":"claude-sonnet-4-20250514","usage":{"input_tokens":1200,"output_tokens":400,"cache_read_input_tokens":800}},"requestId":"r%d-%d"}`,
				ts.Format(time.RFC3339), f, i, f, i)
			buf = append(buf, line...)
			buf = append(buf, '\n')
		}
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("s%d.jsonl", f)), buf, 0o644); err != nil {
			b.Fatal(err)
		}
	}
	return dir
}

func BenchmarkLoad(b *testing.B) {
	dir := benchDir(b, 8, 500)
	platforms := []platform.Platform{dirPlatform{name: "claude", dir: dir}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := Load(platforms, nil)
		if err != nil {
			b.Fatal(err)
		}
		_ = result
	}
}

func BenchmarkParseFile(b *testing.B) {
	dir := benchDir(b, 1, 2000)
	path := filepath.Join(dir, "s0.jsonl")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result := source.ParseFile(path)
		if result.Err != nil {
			b.Fatal(result.Err)
		}
	}
}

func BenchmarkSegment(b *testing.B) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records := make([]model.UsageRecord, 10_000)
	for i := range records {
		records[i] = model.UsageRecord{
			Timestamp:        base.Add(time.Duration(i*7) * time.Minute),
			Model:            "claude-sonnet-4",
			PromptTokens:     1200,
			CompletionTokens: 400,
		}
	}
	s := NewSegmenter(0)
	now := records[len(records)-1].Timestamp.Add(time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Blocks(records, now)
	}
}
