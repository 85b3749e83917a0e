package config

import "strings"

// ModelPricing holds per-million-token prices for a model family.
// Zero cache prices mean the provider has no cache billing for the
// model; cache tokens are then charged at the full input rate.
type ModelPricing struct {
	InputPerMTok      float64
	OutputPerMTok     float64
	CacheWritePerMTok float64
	CacheReadPerMTok  float64
}

// SupportsCaching reports whether the model has distinct cache pricing.
func (p ModelPricing) SupportsCaching() bool {
	return p.CacheWritePerMTok > 0 || p.CacheReadPerMTok > 0
}

// DefaultPricing maps canonical model family names to their pricing.
// Claude cache writes bill at 1.25x input and cache reads at 0.1x input.
var DefaultPricing = map[string]ModelPricing{
	"claude-opus-4": {
		InputPerMTok: 15.00, OutputPerMTok: 75.00,
		CacheWritePerMTok: 18.75, CacheReadPerMTok: 1.50,
	},
	"claude-sonnet-4": {
		InputPerMTok: 3.00, OutputPerMTok: 15.00,
		CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.30,
	},
	"claude-haiku-4": {
		InputPerMTok: 1.00, OutputPerMTok: 5.00,
		CacheWritePerMTok: 1.25, CacheReadPerMTok: 0.10,
	},
	"claude-sonnet-3.5": {
		InputPerMTok: 3.00, OutputPerMTok: 15.00,
		CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.30,
	},
	"claude-sonnet-3": {
		InputPerMTok: 3.00, OutputPerMTok: 15.00,
		CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.30,
	},
	"claude-haiku-3.5": {
		InputPerMTok: 0.80, OutputPerMTok: 4.00,
		CacheWritePerMTok: 1.00, CacheReadPerMTok: 0.08,
	},
	"claude-haiku-3": {
		InputPerMTok: 0.25, OutputPerMTok: 1.25,
		CacheWritePerMTok: 0.3125, CacheReadPerMTok: 0.025,
	},
	"claude-opus-3": {
		InputPerMTok: 15.00, OutputPerMTok: 75.00,
		CacheWritePerMTok: 18.75, CacheReadPerMTok: 1.50,
	},

	// OpenAI models carry no cache pricing here; cached prompt tokens
	// are charged at the input rate.
	"gpt-4o":        {InputPerMTok: 2.50, OutputPerMTok: 10.00},
	"gpt-4o-mini":   {InputPerMTok: 0.15, OutputPerMTok: 0.60},
	"gpt-4-turbo":   {InputPerMTok: 10.00, OutputPerMTok: 30.00},
	"gpt-4":         {InputPerMTok: 30.00, OutputPerMTok: 60.00},
	"gpt-3.5-turbo": {InputPerMTok: 0.50, OutputPerMTok: 1.50},
	"o1":            {InputPerMTok: 15.00, OutputPerMTok: 60.00},
	"o1-mini":       {InputPerMTok: 1.10, OutputPerMTok: 4.40},
	"o3-mini":       {InputPerMTok: 1.10, OutputPerMTok: 4.40},

	// Vendor fallbacks for families not listed above.
	"claude-default": {
		InputPerMTok: 3.00, OutputPerMTok: 15.00,
		CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.30,
	},
	"gpt-default": {InputPerMTok: 2.50, OutputPerMTok: 10.00},

	// Last-resort pricing for unrecognized models.
	"default": {InputPerMTok: 1.00, OutputPerMTok: 2.00},
}

// familyRule maps a substring of a raw model identifier to its
// canonical family name. Order matters: the first matching rule wins,
// so the more specific substrings come first.
type familyRule struct {
	substr string
	family string
}

var familyRules = []familyRule{
	{"opus-4", "claude-opus-4"},
	{"sonnet-4", "claude-sonnet-4"},
	{"haiku-4", "claude-haiku-4"},
	{"sonnet-3.5", "claude-sonnet-3.5"},
	{"sonnet-3-5", "claude-sonnet-3.5"},
	{"3-5-sonnet", "claude-sonnet-3.5"},
	{"haiku-3.5", "claude-haiku-3.5"},
	{"haiku-3-5", "claude-haiku-3.5"},
	{"3-5-haiku", "claude-haiku-3.5"},
	{"sonnet", "claude-sonnet-3"},
	{"haiku", "claude-haiku-3"},
	{"opus", "claude-opus-3"},
	{"gpt-4o-mini", "gpt-4o-mini"},
	{"gpt-4o", "gpt-4o"},
	{"gpt-4-turbo", "gpt-4-turbo"},
	{"gpt-4", "gpt-4"},
	{"gpt-3.5-turbo", "gpt-3.5-turbo"},
	{"o3-mini", "o3-mini"},
	{"o1-mini", "o1-mini"},
	{"o1", "o1"},
}

// CanonicalModel collapses a raw model identifier to its pricing
// family. "claude-sonnet-4-20250514" and "anthropic/claude-sonnet-4"
// both map to "claude-sonnet-4". Unrecognized names pass through
// lowercased so they still group consistently in aggregates.
func CanonicalModel(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "unknown"
	}
	for _, rule := range familyRules {
		if strings.Contains(name, rule.substr) {
			return rule.family
		}
	}
	return name
}

// LookupPricing returns pricing for a raw or canonical model name,
// falling back to the vendor default and then the global default.
func LookupPricing(model string) ModelPricing {
	family := CanonicalModel(model)
	if p, ok := DefaultPricing[family]; ok {
		return p
	}
	switch {
	case strings.Contains(family, "claude"):
		return DefaultPricing["claude-default"]
	case strings.Contains(family, "gpt"):
		return DefaultPricing["gpt-default"]
	}
	return DefaultPricing["default"]
}

func lookupExact(name string) ModelPricing {
	if p, ok := DefaultPricing[name]; ok {
		return p
	}
	return ModelPricing{}
}

// ApplyPricingOverrides layers user config overrides onto the
// built-in pricing table.
func ApplyPricingOverrides(cfg Config) {
	for name, ov := range cfg.Pricing.Overrides {
		p := lookupExact(CanonicalModel(name))
		if ov.InputPerMTok != nil {
			p.InputPerMTok = *ov.InputPerMTok
		}
		if ov.OutputPerMTok != nil {
			p.OutputPerMTok = *ov.OutputPerMTok
		}
		if ov.CacheWritePerMTok != nil {
			p.CacheWritePerMTok = *ov.CacheWritePerMTok
		}
		if ov.CacheReadPerMTok != nil {
			p.CacheReadPerMTok = *ov.CacheReadPerMTok
		}
		DefaultPricing[CanonicalModel(name)] = p
	}
}

// CalculateCost computes the USD cost of one call. inputTokens is the
// full prompt-side count including cache tokens; the cache portions
// are re-billed at their own rates when the model prices them.
func CalculateCost(model string, inputTokens, outputTokens, cacheCreation, cacheRead int64) float64 {
	p := LookupPricing(model)

	cost := float64(outputTokens) * p.OutputPerMTok / 1_000_000
	if !p.SupportsCaching() {
		// No cache billing: the whole prompt side pays the input rate.
		cost += float64(inputTokens) * p.InputPerMTok / 1_000_000
		return cost
	}

	base := inputTokens - cacheCreation - cacheRead
	if base < 0 {
		base = 0
	}
	cost += float64(base) * p.InputPerMTok / 1_000_000
	cost += float64(cacheCreation) * p.CacheWritePerMTok / 1_000_000
	cost += float64(cacheRead) * p.CacheReadPerMTok / 1_000_000
	return cost
}

// CalculateCacheSavings reports how much cache reads saved versus
// paying the full input rate. Zero for models without cache pricing.
func CalculateCacheSavings(model string, cacheReadTokens int64) float64 {
	p := LookupPricing(model)
	if !p.SupportsCaching() {
		return 0
	}
	full := float64(cacheReadTokens) * p.InputPerMTok / 1_000_000
	actual := float64(cacheReadTokens) * p.CacheReadPerMTok / 1_000_000
	return full - actual
}
