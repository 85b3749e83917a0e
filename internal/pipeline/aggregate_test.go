package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/aimon/internal/model"
)

func TestAggregate(t *testing.T) {
	t0 := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	records := []model.UsageRecord{
		{Timestamp: t0, Model: "claude-sonnet-4", PromptTokens: 100, CompletionTokens: 50, CostUSD: 0.01},
		{Timestamp: t0.Add(time.Minute), Model: "claude-opus-4", PromptTokens: 200, CompletionTokens: 100, CostUSD: 0.05, CacheReadTokens: 80, CacheSavingsUSD: 0.002},
	}

	stats := Aggregate(records, time.Time{}, time.Time{})
	if stats.TotalCalls != 2 {
		t.Errorf("calls = %d", stats.TotalCalls)
	}
	if stats.TotalTokens != 450 {
		t.Errorf("tokens = %d, want 450", stats.TotalTokens)
	}
	if math.Abs(stats.TotalCost-0.06) > 1e-9 {
		t.Errorf("cost = %f", stats.TotalCost)
	}
	if stats.PerModel["claude-sonnet-4"] != 150 || stats.PerModel["claude-opus-4"] != 300 {
		t.Errorf("per model = %v", stats.PerModel)
	}
	if stats.TotalCachedTokens != 80 {
		t.Errorf("cached tokens = %d", stats.TotalCachedTokens)
	}
}

// Pins the historical hit-rate formula: cached tokens appear in both
// the numerator and (twice, effectively) the denominator.
func TestAverageCacheHitRateFormula(t *testing.T) {
	stats := model.UsageStats{TotalTokens: 900, TotalCachedTokens: 100}
	want := 100.0 / (900.0 + 100.0)
	if got := stats.AverageCacheHitRate(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("hit rate = %f, want %f", got, want)
	}

	empty := model.UsageStats{}
	if empty.AverageCacheHitRate() != 0 {
		t.Fatal("empty stats should report zero hit rate")
	}
}

func TestFilterByTime(t *testing.T) {
	t0 := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	records := []model.UsageRecord{
		{Timestamp: t0},
		{Timestamp: t0.Add(time.Hour)},
		{Timestamp: t0.Add(2 * time.Hour)},
	}

	got := FilterByTime(records, t0.Add(time.Hour), t0.Add(2*time.Hour))
	if len(got) != 1 {
		t.Fatalf("filtered = %d, want 1 (until is exclusive)", len(got))
	}
	if len(FilterByTime(records, time.Time{}, time.Time{})) != 3 {
		t.Fatal("open bounds should pass everything")
	}
}

func TestAggregateModels(t *testing.T) {
	t0 := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	records := []model.UsageRecord{
		{Timestamp: t0, Model: "claude-sonnet-4", PromptTokens: 10, CostUSD: 0.01},
		{Timestamp: t0, Model: "claude-sonnet-4", PromptTokens: 10, CostUSD: 0.01},
		{Timestamp: t0, Model: "claude-opus-4", PromptTokens: 10, CostUSD: 0.50},
	}

	rows := AggregateModels(records, time.Time{}, time.Time{})
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Model != "claude-opus-4" {
		t.Errorf("rows not sorted by cost: %+v", rows)
	}
	if math.Abs(rows[1].SharePercent-66.666) > 0.01 {
		t.Errorf("share = %f", rows[1].SharePercent)
	}
}

func TestAggregateDaysFillsGaps(t *testing.T) {
	t0 := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	records := []model.UsageRecord{
		{Timestamp: t0, PromptTokens: 10},
		{Timestamp: t0.AddDate(0, 0, 2), PromptTokens: 20},
	}

	days := AggregateDays(records, t0.AddDate(0, 0, -1), t0.AddDate(0, 0, 2))
	if len(days) != 4 {
		t.Fatalf("days = %d, want 4 (range filled)", len(days))
	}
	// Most recent first.
	if !days[0].Date.After(days[1].Date) {
		t.Error("days not sorted descending")
	}
}

func TestComputeBurnRate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	var records []model.UsageRecord
	// 6 calls in the last hour, 600 tokens, $0.60 total.
	for i := 0; i < 6; i++ {
		records = append(records, model.UsageRecord{
			Timestamp:    now.Add(-time.Duration(i*9) * time.Minute),
			PromptTokens: 100,
			CostUSD:      0.10,
		})
	}
	// One stale call outside the window.
	records = append(records, model.UsageRecord{Timestamp: now.Add(-2 * time.Hour), PromptTokens: 99999})

	burn := ComputeBurnRate(records, time.Hour, now)
	if math.Abs(burn.TokensPerMinute-10) > 1e-9 {
		t.Errorf("tokens/min = %f, want 10", burn.TokensPerMinute)
	}
	if math.Abs(burn.CostPerMinute-0.01) > 1e-9 {
		t.Errorf("cost/min = %f", burn.CostPerMinute)
	}
	if math.Abs(burn.Confidence-0.6) > 1e-9 {
		t.Errorf("confidence = %f, want 0.6", burn.Confidence)
	}

	empty := ComputeBurnRate(nil, time.Hour, now)
	if empty.TokensPerMinute != 0 || empty.Confidence != 0 {
		t.Errorf("empty burn = %+v", empty)
	}
}
