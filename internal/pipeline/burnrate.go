package pipeline

import (
	"time"

	"github.com/theirongolddev/aimon/internal/model"
)

// DefaultBurnWindow is the trailing window burn rates average over.
const DefaultBurnWindow = time.Hour

// ComputeBurnRate averages consumption over the trailing window
// ending at now. An empty window yields zero rates with zero
// confidence; confidence grows with sample count and saturates at 10
// calls.
func ComputeBurnRate(records []model.UsageRecord, window time.Duration, now time.Time) model.BurnRate {
	if window <= 0 {
		window = DefaultBurnWindow
	}
	since := now.Add(-window)

	var tokens int64
	var cost float64
	var calls int
	for _, r := range records {
		if r.Timestamp.Before(since) || r.Timestamp.After(now) {
			continue
		}
		tokens += r.TotalTokens()
		cost += r.CostUSD
		calls++
	}

	if calls == 0 {
		return model.BurnRate{}
	}

	minutes := window.Minutes()
	confidence := float64(calls) / 10
	if confidence > 1 {
		confidence = 1
	}

	return model.BurnRate{
		TokensPerMinute: float64(tokens) / minutes,
		CostPerMinute:   cost / minutes,
		CallsPerMinute:  float64(calls) / minutes,
		Confidence:      confidence,
	}
}
