package source

import (
	"bytes"
	"strconv"
	"time"

	"github.com/theirongolddev/aimon/internal/config"
	"github.com/theirongolddev/aimon/internal/model"
)

// Normalize converts one raw JSONL entry into a UsageRecord. The
// second return value is false when the entry should be skipped: no
// parseable timestamp, or all token counts zero.
func Normalize(e RawEntry) (model.UsageRecord, bool) {
	ts, ok := parseTimestamp(e.Timestamp)
	if !ok {
		return model.UsageRecord{}, false
	}

	input, output, cacheCreate, cacheRead := extractTokens(e)
	if input == 0 && output == 0 && cacheCreate == 0 && cacheRead == 0 {
		return model.UsageRecord{}, false
	}

	rawModel := e.Model
	if rawModel == "" && e.Message != nil {
		rawModel = e.Message.Model
	}
	canonical := config.CanonicalModel(rawModel)

	// Prompt side counts cache tokens the way providers bill them.
	prompt := input + cacheCreate + cacheRead

	cost := e.CostUSD
	if cost == 0 {
		cost = e.Cost
	}
	if cost == 0 {
		cost = config.CalculateCost(canonical, prompt, output, cacheCreate, cacheRead)
	}

	rec := model.UsageRecord{
		Timestamp:           ts.UTC(),
		Model:               canonical,
		PromptTokens:        prompt,
		CompletionTokens:    output,
		CacheCreationTokens: cacheCreate,
		CacheReadTokens:     cacheRead,
		CostUSD:             cost,
		CacheSavingsUSD:     config.CalculateCacheSavings(canonical, cacheRead),
		RequestID:           requestID(e),
	}

	if msgID := messageID(e); msgID != "" && rec.RequestID != "" {
		rec.DedupKey = msgID + ":" + rec.RequestID
	}

	return rec, true
}

// extractTokens pulls token counts from whichever shape the entry
// uses: message.usage, top-level usage, top-level fields, or the
// flat tokens{} object. The first shape with any nonzero count wins.
func extractTokens(e RawEntry) (input, output, cacheCreate, cacheRead int64) {
	if e.Message != nil && e.Message.Usage != nil {
		u := e.Message.Usage
		if u.InputTokens != 0 || u.OutputTokens != 0 || u.CacheCreationInputTokens != 0 || u.CacheReadInputTokens != 0 {
			return u.InputTokens, u.OutputTokens, u.CacheCreationInputTokens, u.CacheReadInputTokens
		}
	}
	if e.Usage != nil {
		u := e.Usage
		if u.InputTokens != 0 || u.OutputTokens != 0 || u.CacheCreationInputTokens != 0 || u.CacheReadInputTokens != 0 {
			return u.InputTokens, u.OutputTokens, u.CacheCreationInputTokens, u.CacheReadInputTokens
		}
	}
	if e.InputTokens != 0 || e.OutputTokens != 0 || e.CacheCreationInputTokens != 0 || e.CacheReadInputTokens != 0 {
		return e.InputTokens, e.OutputTokens, e.CacheCreationInputTokens, e.CacheReadInputTokens
	}
	if e.Tokens != nil {
		return e.Tokens.PromptTokens, e.Tokens.CompletionTokens, 0, 0
	}
	return 0, 0, 0, 0
}

func messageID(e RawEntry) string {
	if e.Message != nil && e.Message.ID != "" {
		return e.Message.ID
	}
	return e.MessageID
}

func requestID(e RawEntry) string {
	if e.RequestID != "" {
		return e.RequestID
	}
	return e.RequestID2
}

// isoLayouts are tried in order for string timestamps without a full
// RFC3339 offset. Layouts lacking a zone are interpreted as UTC.
var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// parseTimestamp decodes an ISO-8601 string or a numeric epoch into
// a UTC time. Epochs larger than 1e12 are treated as milliseconds.
func parseTimestamp(raw []byte) (time.Time, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false
	}

	if raw[0] == '"' {
		s, err := strconv.Unquote(string(raw))
		if err != nil || s == "" {
			return time.Time{}, false
		}
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts.UTC(), true
		}
		for _, layout := range isoLayouts {
			if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	}

	epoch, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || epoch <= 0 {
		return time.Time{}, false
	}
	if epoch > 1e12 {
		epoch /= 1000
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC(), true
}
