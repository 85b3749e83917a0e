package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/aimon/internal/model"
)

// Aggregate folds records within [since, until) into cumulative
// usage statistics. Zero bounds mean unbounded.
func Aggregate(records []model.UsageRecord, since, until time.Time) model.UsageStats {
	stats := model.NewUsageStats()
	for _, r := range FilterByTime(records, since, until) {
		stats.UpdateFromRecord(r)
	}
	return stats
}

// ModelStats is a per-model aggregate row for display.
type ModelStats struct {
	Model            string
	Calls            int
	PromptTokens     int64
	CompletionTokens int64
	CacheReadTokens  int64
	Cost             float64
	SharePercent     float64 // share of total calls
}

// AggregateModels computes per-model statistics, sorted by cost
// descending.
func AggregateModels(records []model.UsageRecord, since, until time.Time) []ModelStats {
	filtered := FilterByTime(records, since, until)

	byModel := make(map[string]*ModelStats)
	totalCalls := 0

	for _, r := range filtered {
		ms, ok := byModel[r.Model]
		if !ok {
			ms = &ModelStats{Model: r.Model}
			byModel[r.Model] = ms
		}
		ms.Calls++
		ms.PromptTokens += r.PromptTokens
		ms.CompletionTokens += r.CompletionTokens
		ms.CacheReadTokens += r.CacheReadTokens
		ms.Cost += r.CostUSD
		totalCalls++
	}

	models := make([]ModelStats, 0, len(byModel))
	for _, ms := range byModel {
		if totalCalls > 0 {
			ms.SharePercent = float64(ms.Calls) / float64(totalCalls) * 100
		}
		models = append(models, *ms)
	}
	sort.Slice(models, func(i, j int) bool {
		return models[i].Cost > models[j].Cost
	})

	return models
}

// DailyStats is one day's usage bucket.
type DailyStats struct {
	Date   time.Time
	Calls  int
	Tokens int64
	Cost   float64
}

// AggregateDays computes per-day buckets over [since, until),
// filling empty days with zeros so charts show gaps. Most recent
// day first.
func AggregateDays(records []model.UsageRecord, since, until time.Time) []DailyStats {
	filtered := FilterByTime(records, since, until)

	dayMap := make(map[string]*DailyStats)
	for _, r := range filtered {
		key := r.Timestamp.Format("2006-01-02")
		ds, ok := dayMap[key]
		if !ok {
			t, _ := time.ParseInLocation("2006-01-02", key, time.UTC)
			ds = &DailyStats{Date: t}
			dayMap[key] = ds
		}
		ds.Calls++
		ds.Tokens += r.TotalTokens()
		ds.Cost += r.CostUSD
	}

	if !since.IsZero() && !until.IsZero() {
		day := since.UTC().Truncate(24 * time.Hour)
		end := until.UTC().Truncate(24 * time.Hour)
		for !day.After(end) {
			key := day.Format("2006-01-02")
			if _, ok := dayMap[key]; !ok {
				dayMap[key] = &DailyStats{Date: day}
			}
			day = day.AddDate(0, 0, 1)
		}
	}

	days := make([]DailyStats, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

// FilterByTime returns records whose timestamp falls within
// [since, until). Zero bounds are open.
func FilterByTime(records []model.UsageRecord, since, until time.Time) []model.UsageRecord {
	if since.IsZero() && until.IsZero() {
		return records
	}
	var out []model.UsageRecord
	for _, r := range records {
		if !since.IsZero() && r.Timestamp.Before(since) {
			continue
		}
		if !until.IsZero() && !r.Timestamp.Before(until) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterByModel returns records whose model matches the substring,
// case-insensitively.
func FilterByModel(records []model.UsageRecord, modelFilter string) []model.UsageRecord {
	if modelFilter == "" {
		return records
	}
	needle := strings.ToLower(modelFilter)
	var out []model.UsageRecord
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Model), needle) {
			out = append(out, r)
		}
	}
	return out
}
