// Package forecast derives usage limits and trends from completed
// session blocks.
package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/theirongolddev/aimon/internal/model"
)

// DefaultWindowHours is the lookback window for percentile analysis.
const DefaultWindowHours = 192 // 8 days

// Calculator computes P90 statistics over recent session blocks.
type Calculator struct {
	WindowHours int
	// LimitTiers are the known session token limits, ascending. When
	// any sample reaches 95% of a tier, the analysis restricts itself
	// to limit-approaching samples.
	LimitTiers []int64
}

// NewCalculator returns a calculator with the given window, falling
// back to defaults for zero values.
func NewCalculator(windowHours int, tiers []int64) *Calculator {
	if windowHours <= 0 {
		windowHours = DefaultWindowHours
	}
	if len(tiers) == 0 {
		tiers = []int64{44_000, 88_000, 220_000}
	}
	return &Calculator{WindowHours: windowHours, LimitTiers: tiers}
}

// Analyze computes P90 statistics from blocks within the lookback
// window ending at now. Gap blocks, still-active blocks, and
// zero-token blocks are not samples. Returns nil when no samples
// remain.
func (c *Calculator) Analyze(blocks []*model.SessionBlock, now time.Time) *model.P90Analysis {
	cutoff := now.Add(-time.Duration(c.WindowHours) * time.Hour)

	type sample struct {
		tokens int64
		cost   float64
		calls  int
	}
	var samples []sample
	for _, b := range blocks {
		if b.IsGap || b.IsActive {
			continue
		}
		if b.StartTime.Before(cutoff) {
			continue
		}
		tokens := b.TotalTokens()
		if tokens == 0 {
			continue
		}
		samples = append(samples, sample{tokens: tokens, cost: b.TotalCost(), calls: b.Calls()})
	}

	if len(samples) == 0 {
		return nil
	}

	// If any block came within 95% of a known tier the user is
	// limit-bound; restrict the percentile basis to those blocks so
	// light sessions don't drag the estimate down.
	var saturating []sample
	for _, s := range samples {
		if c.nearLimit(s.tokens) {
			saturating = append(saturating, s)
		}
	}
	if len(saturating) > 0 {
		samples = saturating
	}

	tokens := make([]int64, len(samples))
	costs := make([]float64, len(samples))
	calls := make([]int, len(samples))
	for i, s := range samples {
		tokens[i] = s.tokens
		costs[i] = s.cost
		calls[i] = s.calls
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	sort.Float64s(costs)
	sort.Ints(calls)

	idx := percentileIndex(len(samples), 0.90)
	p90Tokens := tokens[idx]

	confidence := float64(len(samples)) / 100
	if confidence > 0.95 {
		confidence = 0.95
	}

	recommended := int64(math.Round(float64(p90Tokens) * 1.1))
	if recommended < c.LimitTiers[0] {
		recommended = c.LimitTiers[0]
	}

	return &model.P90Analysis{
		P90Tokens:        p90Tokens,
		P90Cost:          costs[idx],
		P90Calls:         calls[idx],
		SampleSize:       len(samples),
		WindowHours:      c.WindowHours,
		Confidence:       confidence,
		RecommendedLimit: recommended,
	}
}

func (c *Calculator) nearLimit(tokens int64) bool {
	for _, tier := range c.LimitTiers {
		if float64(tokens) >= 0.95*float64(tier) {
			return true
		}
	}
	return false
}

// percentileIndex is the nearest-rank index floor(n*p), clamped to
// the last element.
func percentileIndex(n int, p float64) int {
	idx := int(float64(n) * p)
	if idx >= n {
		idx = n - 1
	}
	return idx
}
