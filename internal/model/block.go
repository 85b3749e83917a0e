package model

import (
	"sort"
	"time"
)

// ModelBlockStats tracks per-model running totals inside a session block.
type ModelBlockStats struct {
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
	Cost                float64
	Calls               int
}

// SessionBlock is a fixed-duration bucket of consecutive usage records.
// For non-gap blocks EndTime = StartTime + the session duration. A gap
// block spans an idle interval and carries no entries.
type SessionBlock struct {
	ID        string // ISO start time, "gap-" prefixed for gap blocks
	StartTime time.Time
	EndTime   time.Time
	// ActualEndTime is the timestamp of the last real record placed in
	// the block; zero for gap blocks.
	ActualEndTime time.Time

	Entries  []UsageRecord
	IsGap    bool
	IsActive bool

	PerModelStats map[string]*ModelBlockStats
}

// Aggregates below are computed from Entries on demand rather than
// stored, so they cannot drift from the underlying records.

// TotalTokens sums prompt and completion tokens across all entries.
func (b *SessionBlock) TotalTokens() int64 {
	var total int64
	for _, r := range b.Entries {
		total += r.TotalTokens()
	}
	return total
}

// TotalCost sums entry costs.
func (b *SessionBlock) TotalCost() float64 {
	var total float64
	for _, r := range b.Entries {
		total += r.CostUSD
	}
	return total
}

// InputTokens sums prompt-side tokens (cache tokens included).
func (b *SessionBlock) InputTokens() int64 {
	var total int64
	for _, r := range b.Entries {
		total += r.PromptTokens
	}
	return total
}

// OutputTokens sums completion tokens.
func (b *SessionBlock) OutputTokens() int64 {
	var total int64
	for _, r := range b.Entries {
		total += r.CompletionTokens
	}
	return total
}

// CacheReadTokens sums tokens served from the provider-side cache.
func (b *SessionBlock) CacheReadTokens() int64 {
	var total int64
	for _, r := range b.Entries {
		total += r.CacheReadTokens
	}
	return total
}

// CacheCreationTokens sums tokens written into the provider-side cache.
func (b *SessionBlock) CacheCreationTokens() int64 {
	var total int64
	for _, r := range b.Entries {
		total += r.CacheCreationTokens
	}
	return total
}

// Calls returns the number of records in the block.
func (b *SessionBlock) Calls() int {
	return len(b.Entries)
}

// Models returns the canonical model names seen in this block, sorted.
func (b *SessionBlock) Models() []string {
	names := make([]string, 0, len(b.PerModelStats))
	for name := range b.PerModelStats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
