package forecast

import (
	"time"

	"github.com/theirongolddev/aimon/internal/model"
)

// DefaultTrendDays is the lookback window for trend analysis.
const DefaultTrendDays = 7

// Trend compares mean tokens per block between the older and newer
// half of the lookback window ending at now. Fewer than 2 samples
// yields a neutral trend; a change of strictly more than 10% in
// either direction is reported as increasing or decreasing.
func Trend(blocks []*model.SessionBlock, days int, now time.Time) model.TrendAnalysis {
	if days <= 0 {
		days = DefaultTrendDays
	}
	cutoff := now.AddDate(0, 0, -days)

	var samples []float64
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
		samples = append(samples, float64(tokens))
	}

	if len(samples) < 2 {
		return model.TrendAnalysis{Direction: model.TrendNeutral, SampleSize: len(samples)}
	}

	mid := len(samples) / 2
	first := mean(samples[:mid])
	second := mean(samples[mid:])

	var change float64
	if first > 0 {
		change = (second - first) / first * 100
	}

	direction := model.TrendStable
	switch {
	case change > 10:
		direction = model.TrendIncreasing
	case change < -10:
		direction = model.TrendDecreasing
	}

	return model.TrendAnalysis{
		Direction:      direction,
		ChangePercent:  change,
		FirstHalfMean:  first,
		SecondHalfMean: second,
		SampleSize:     len(samples),
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
