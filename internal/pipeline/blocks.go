package pipeline

import (
	"time"

	"github.com/theirongolddev/aimon/internal/model"
)

// DefaultSessionDuration is the provider's billing window length.
const DefaultSessionDuration = 5 * time.Hour

// Segmenter groups a timestamp-sorted record stream into
// fixed-duration session blocks with gap blocks for idle periods.
type Segmenter struct {
	Duration time.Duration
}

// NewSegmenter returns a segmenter with the given window duration,
// falling back to the default when d is zero or negative.
func NewSegmenter(d time.Duration) *Segmenter {
	if d <= 0 {
		d = DefaultSessionDuration
	}
	return &Segmenter{Duration: d}
}

// Blocks segments records into session blocks. Records must already
// be sorted by timestamp. A new block opens when there is no open
// block, the record lands at or past the open block's end, or the
// idle time since the previous record reaches the window duration.
// Idle stretches of at least one window become gap blocks.
func (s *Segmenter) Blocks(records []model.UsageRecord, now time.Time) []*model.SessionBlock {
	if len(records) == 0 {
		return nil
	}

	var blocks []*model.SessionBlock
	var current *model.SessionBlock
	var lastTS time.Time

	for _, r := range records {
		ts := r.Timestamp

		if current == nil {
			current = s.newBlock(ts)
		} else if !ts.Before(current.EndTime) || ts.Sub(lastTS) >= s.Duration {
			blocks = append(blocks, current)
			if gap := ts.Sub(lastTS); gap >= s.Duration {
				blocks = append(blocks, s.gapBlock(lastTS, ts))
			}
			current = s.newBlock(ts)
		}

		addToBlock(current, r)
		lastTS = ts
	}
	blocks = append(blocks, current)

	// Only the final real block can still be accumulating.
	last := blocks[len(blocks)-1]
	if !last.IsGap && now.Before(last.EndTime) && now.Sub(last.ActualEndTime) < s.Duration {
		last.IsActive = true
	}

	return blocks
}

// newBlock opens a block whose start is the record's timestamp
// floored to the hour, matching provider billing window alignment.
func (s *Segmenter) newBlock(ts time.Time) *model.SessionBlock {
	start := ts.UTC().Truncate(time.Hour)
	return &model.SessionBlock{
		ID:            start.Format(time.RFC3339),
		StartTime:     start,
		EndTime:       start.Add(s.Duration),
		PerModelStats: make(map[string]*model.ModelBlockStats),
	}
}

// gapBlock spans the idle stretch between two consecutive records.
func (s *Segmenter) gapBlock(from, to time.Time) *model.SessionBlock {
	return &model.SessionBlock{
		ID:        "gap-" + from.UTC().Format(time.RFC3339),
		StartTime: from.UTC(),
		EndTime:   to.UTC(),
		IsGap:     true,
	}
}

func addToBlock(b *model.SessionBlock, r model.UsageRecord) {
	b.Entries = append(b.Entries, r)
	b.ActualEndTime = r.Timestamp

	ms, ok := b.PerModelStats[r.Model]
	if !ok {
		ms = &model.ModelBlockStats{}
		b.PerModelStats[r.Model] = ms
	}
	ms.InputTokens += r.PromptTokens
	ms.OutputTokens += r.CompletionTokens
	ms.CacheCreationTokens += r.CacheCreationTokens
	ms.CacheReadTokens += r.CacheReadTokens
	ms.Cost += r.CostUSD
	ms.Calls++
}
