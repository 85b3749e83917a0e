// Package source discovers, parses, and normalizes JSONL usage logs.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"

	"github.com/theirongolddev/aimon/internal/model"
)

// Byte patterns identifying lines that can carry token counts.
// Lines without one of these are skipped before any JSON decoding.
var (
	patUsage  = []byte(`"usage"`)
	patTokens = []byte(`"tokens"`)
	patInput  = []byte(`"input_tokens"`)
)

// FileResult holds the output of parsing a single JSONL file.
type FileResult struct {
	Records []model.UsageRecord
	// ParseErrors counts malformed JSON lines; Skipped counts lines
	// that decoded but normalized to nothing (no timestamp, zero
	// tokens). Neither fails the file.
	ParseErrors int
	Skipped     int
	Err         error
}

// ParseFile reads a JSONL usage file line by line, tolerating
// malformed lines. Only whole-file failures (open, read) set Err.
func ParseFile(path string) FileResult {
	f, err := os.Open(path)
	if err != nil {
		return FileResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	var res FileResult

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 2*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if !hasTokenPayload(line) {
			res.Skipped++
			continue
		}

		var entry RawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			res.ParseErrors++
			continue
		}

		rec, ok := Normalize(entry)
		if !ok {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, rec)
	}

	if err := scanner.Err(); err != nil {
		return FileResult{Err: err}
	}
	return res
}

// hasTokenPayload is a cheap pre-filter: true if the line mentions a
// usage or tokens field anywhere. False positives are fine, they just
// cost one JSON decode.
func hasTokenPayload(line []byte) bool {
	return bytes.Contains(line, patUsage) ||
		bytes.Contains(line, patTokens) ||
		bytes.Contains(line, patInput)
}
