// Package model defines domain types for aimon usage analytics.
package model

import "time"

// UsageRecord represents one normalized, deduplicated API call.
// Immutable once created by the normalizer; aggregates hold shared
// read-only references to it.
type UsageRecord struct {
	Timestamp time.Time // always UTC
	Model     string    // canonical family name, e.g. "claude-sonnet-4"

	// PromptTokens includes cache creation and cache read tokens, the
	// same way providers bill them on the input side.
	PromptTokens        int64
	CompletionTokens    int64
	CacheCreationTokens int64
	CacheReadTokens     int64

	CostUSD         float64
	CacheSavingsUSD float64

	RequestID string
	// DedupKey is "<messageID>:<requestID>" when both identifiers were
	// present in the raw entry, empty otherwise. Records without a key
	// are never deduplicated.
	DedupKey string
}

// TotalTokens returns prompt plus completion tokens.
func (r UsageRecord) TotalTokens() int64 {
	return r.PromptTokens + r.CompletionTokens
}

// UsageStats is a cumulative aggregate over a set of records.
// Updates are strictly additive within one aggregation pass.
type UsageStats struct {
	TotalTokens      int64
	TotalCost        float64
	TotalCalls       int
	PromptTokens     int64
	CompletionTokens int64

	// PerModel maps canonical model name to total tokens.
	PerModel map[string]int64

	TotalCachedTokens int64
	TotalCacheSavings float64
}

// NewUsageStats returns empty stats with an initialized model map.
func NewUsageStats() UsageStats {
	return UsageStats{PerModel: make(map[string]int64)}
}

// UpdateFromRecord folds one record into the aggregate.
func (s *UsageStats) UpdateFromRecord(r UsageRecord) {
	s.TotalTokens += r.TotalTokens()
	s.TotalCost += r.CostUSD
	s.TotalCalls++
	s.PromptTokens += r.PromptTokens
	s.CompletionTokens += r.CompletionTokens

	if s.PerModel == nil {
		s.PerModel = make(map[string]int64)
	}
	s.PerModel[r.Model] += r.TotalTokens()

	s.TotalCachedTokens += r.CacheReadTokens
	s.TotalCacheSavings += r.CacheSavingsUSD
}

// AverageCacheHitRate reports cached tokens relative to total plus cached
// tokens. Cached tokens are already counted inside TotalTokens, so the
// denominator double counts them; kept as-is for compatibility with the
// numbers users have been seeing.
func (s UsageStats) AverageCacheHitRate() float64 {
	if s.TotalTokens == 0 {
		return 0
	}
	return float64(s.TotalCachedTokens) / float64(s.TotalTokens+s.TotalCachedTokens)
}

// BurnRate is a consumption-rate snapshot over a recent window.
type BurnRate struct {
	TokensPerMinute float64
	CostPerMinute   float64
	CallsPerMinute  float64
	// EstimatedTimeToLimit is minutes until the token limit at the
	// current rate; nil when the rate or limit is unknown.
	EstimatedTimeToLimit *float64
	Confidence           float64 // 0..1
}

// P90Analysis holds percentile statistics over a rolling window of
// completed session blocks. Produced fresh on each forecaster run.
type P90Analysis struct {
	P90Tokens        int64
	P90Cost          float64
	P90Calls         int
	SampleSize       int
	WindowHours      int
	Confidence       float64 // 0..1, capped at 0.95
	RecommendedLimit int64
}

// Trend direction labels.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
	TrendNeutral    = "neutral"
)

// TrendAnalysis compares mean block usage between the first and second
// half of a window.
type TrendAnalysis struct {
	Direction      string
	ChangePercent  float64
	FirstHalfMean  float64
	SecondHalfMean float64
	SampleSize     int
}

// PlanLimits holds the limits the alert engine monitors against.
// Zero values mean "no limit configured".
type PlanLimits struct {
	Name         string
	TokenLimit   int64
	CostLimit    float64
	RateLimitRPM int
	RateLimitTPM int
	IsCustom     bool
}

// ModelInfo describes pricing metadata for one model on a platform.
type ModelInfo struct {
	Name              string
	Platform          string
	InputPerMTok      float64
	OutputPerMTok     float64
	CacheWritePerMTok float64
	CacheReadPerMTok  float64
	SupportsCaching   bool
}
