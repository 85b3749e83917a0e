package source

import (
	"encoding/json"
	"testing"
	"time"
)

func rawTS(s string) json.RawMessage {
	return json.RawMessage(s)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{"rfc3339 utc", `"2025-06-15T10:30:00Z"`, time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC), true},
		{"rfc3339 offset", `"2025-06-15T12:30:00+02:00"`, time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC), true},
		{"naive assumes utc", `"2025-06-15T10:30:00"`, time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC), true},
		{"space separated", `"2025-06-15 10:30:00"`, time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC), true},
		{"epoch seconds", `1750000000`, time.Unix(1750000000, 0).UTC(), true},
		{"epoch millis", `1750000000000`, time.Unix(1750000000, 0).UTC(), true},
		{"garbage", `"not a time"`, time.Time{}, false},
		{"null", `null`, time.Time{}, false},
		{"empty", ``, time.Time{}, false},
		{"negative epoch", `-5`, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTimestamp(rawTS(tt.raw))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if ok && got.Location() != time.UTC {
				t.Fatalf("timestamp not UTC: %v", got.Location())
			}
		})
	}
}

func TestNormalizeNestedUsage(t *testing.T) {
	entry := RawEntry{
		Timestamp: rawTS(`"2025-06-15T10:30:00Z"`),
		RequestID: "req_1",
		Message: &RawMessage{
			ID:    "msg_1",
			Model: "claude-sonnet-4-20250514",
			Usage: &RawUsage{
				InputTokens:              1000,
				OutputTokens:             500,
				CacheCreationInputTokens: 200,
				CacheReadInputTokens:     300,
			},
		},
	}

	rec, ok := Normalize(entry)
	if !ok {
		t.Fatal("expected record")
	}
	if rec.Model != "claude-sonnet-4" {
		t.Errorf("model = %q", rec.Model)
	}
	if rec.PromptTokens != 1500 {
		t.Errorf("prompt tokens = %d, want 1500 (input + cache)", rec.PromptTokens)
	}
	if rec.CompletionTokens != 500 {
		t.Errorf("completion tokens = %d", rec.CompletionTokens)
	}
	if rec.CacheCreationTokens != 200 || rec.CacheReadTokens != 300 {
		t.Errorf("cache tokens = %d/%d", rec.CacheCreationTokens, rec.CacheReadTokens)
	}
	if rec.DedupKey != "msg_1:req_1" {
		t.Errorf("dedup key = %q", rec.DedupKey)
	}
	if rec.CostUSD <= 0 {
		t.Errorf("cost not computed: %f", rec.CostUSD)
	}
	if rec.CacheSavingsUSD <= 0 {
		t.Errorf("cache savings not computed: %f", rec.CacheSavingsUSD)
	}
}

func TestNormalizeFlatTokens(t *testing.T) {
	entry := RawEntry{
		Timestamp:  rawTS(`"2025-06-15T10:30:00Z"`),
		Model:      "gpt-4o",
		RequestID2: "req-abc",
		Tokens:     &RawTokens{PromptTokens: 800, CompletionTokens: 150},
		Cost:       0.0123,
	}

	rec, ok := Normalize(entry)
	if !ok {
		t.Fatal("expected record")
	}
	if rec.PromptTokens != 800 || rec.CompletionTokens != 150 {
		t.Errorf("tokens = %d/%d", rec.PromptTokens, rec.CompletionTokens)
	}
	if rec.CostUSD != 0.0123 {
		t.Errorf("entry-provided cost not used: %f", rec.CostUSD)
	}
	if rec.DedupKey != "" {
		t.Errorf("dedup key set without message id: %q", rec.DedupKey)
	}
}

func TestNormalizeSkips(t *testing.T) {
	zero := RawEntry{
		Timestamp: rawTS(`"2025-06-15T10:30:00Z"`),
		Model:     "claude-sonnet-4",
		Usage:     &RawUsage{},
	}
	if _, ok := Normalize(zero); ok {
		t.Error("all-zero token entry should be skipped")
	}

	noTS := RawEntry{
		Model: "claude-sonnet-4",
		Usage: &RawUsage{InputTokens: 10},
	}
	if _, ok := Normalize(noTS); ok {
		t.Error("entry without timestamp should be skipped")
	}

	badTS := RawEntry{
		Timestamp: rawTS(`"soon"`),
		Usage:     &RawUsage{InputTokens: 10},
	}
	if _, ok := Normalize(badTS); ok {
		t.Error("entry with unparseable timestamp should be skipped")
	}
}

func TestNormalizeDedupKeyRequiresBothIDs(t *testing.T) {
	onlyMsg := RawEntry{
		Timestamp: rawTS(`"2025-06-15T10:30:00Z"`),
		Message:   &RawMessage{ID: "msg_1", Usage: &RawUsage{InputTokens: 10}},
	}
	rec, ok := Normalize(onlyMsg)
	if !ok {
		t.Fatal("expected record")
	}
	if rec.DedupKey != "" {
		t.Errorf("dedup key = %q, want empty without request id", rec.DedupKey)
	}
}
