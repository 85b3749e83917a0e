package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/aimon/internal/config"
	"github.com/theirongolddev/aimon/internal/model"
)

// TokenTypeCosts holds aggregate costs split by token type.
type TokenTypeCosts struct {
	InputCost      float64
	OutputCost     float64
	CacheWriteCost float64
	CacheReadCost  float64
	TotalCost      float64
	CacheSavings   float64
}

// ModelCostBreakdown holds cost components for one model.
type ModelCostBreakdown struct {
	Model          string
	InputCost      float64
	OutputCost     float64
	CacheWriteCost float64
	CacheReadCost  float64
	TotalCost      float64
	CacheSavings   float64
}

// AggregateCostBreakdown computes token-type and per-model cost
// splits from the pricing table.
func AggregateCostBreakdown(records []model.UsageRecord, since, until time.Time) (TokenTypeCosts, []ModelCostBreakdown) {
	filtered := FilterByTime(records, since, until)

	var totals TokenTypeCosts
	byModel := make(map[string]*ModelCostBreakdown)

	for _, r := range filtered {
		pricing := config.LookupPricing(r.Model)

		base := r.PromptTokens - r.CacheCreationTokens - r.CacheReadTokens
		if base < 0 || !pricing.SupportsCaching() {
			base = r.PromptTokens
		}

		inputCost := float64(base) * pricing.InputPerMTok / 1_000_000
		outputCost := float64(r.CompletionTokens) * pricing.OutputPerMTok / 1_000_000
		var writeCost, readCost float64
		if pricing.SupportsCaching() {
			writeCost = float64(r.CacheCreationTokens) * pricing.CacheWritePerMTok / 1_000_000
			readCost = float64(r.CacheReadTokens) * pricing.CacheReadPerMTok / 1_000_000
		}

		totals.InputCost += inputCost
		totals.OutputCost += outputCost
		totals.CacheWriteCost += writeCost
		totals.CacheReadCost += readCost
		totals.CacheSavings += r.CacheSavingsUSD

		row, ok := byModel[r.Model]
		if !ok {
			row = &ModelCostBreakdown{Model: r.Model}
			byModel[r.Model] = row
		}
		row.InputCost += inputCost
		row.OutputCost += outputCost
		row.CacheWriteCost += writeCost
		row.CacheReadCost += readCost
		row.CacheSavings += r.CacheSavingsUSD
	}

	totals.TotalCost = totals.InputCost + totals.OutputCost + totals.CacheWriteCost + totals.CacheReadCost

	rows := make([]ModelCostBreakdown, 0, len(byModel))
	for _, row := range byModel {
		row.TotalCost = row.InputCost + row.OutputCost + row.CacheWriteCost + row.CacheReadCost
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].TotalCost > rows[j].TotalCost
	})

	return totals, rows
}
