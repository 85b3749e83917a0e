package config

import (
	"math"
	"testing"
)

func TestCanonicalModel(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"claude-sonnet-4-20250514", "claude-sonnet-4"},
		{"anthropic/claude-opus-4-1-20250805", "claude-opus-4"},
		{"claude-3-5-sonnet-20241022", "claude-sonnet-3.5"},
		{"claude-3-5-haiku-20241022", "claude-haiku-3.5"},
		{"claude-3-sonnet-20240229", "claude-sonnet-3"},
		{"claude-3-haiku-20240307", "claude-haiku-3"},
		{"claude-3-opus-20240229", "claude-opus-3"},
		{"Claude-Sonnet-4", "claude-sonnet-4"},
		{"gpt-4o-mini-2024-07-18", "gpt-4o-mini"},
		{"gpt-4o-2024-08-06", "gpt-4o"},
		{"o1-mini", "o1-mini"},
		{"some-new-model", "some-new-model"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		if got := CanonicalModel(tt.raw); got != tt.want {
			t.Errorf("CanonicalModel(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCanonicalModelOrdering(t *testing.T) {
	// "sonnet-4" must win over the generic "sonnet" rule.
	if got := CanonicalModel("claude-sonnet-4-5"); got != "claude-sonnet-4" {
		t.Fatalf("sonnet-4 rule did not win: got %q", got)
	}
	// "opus-4" must win over the generic "opus" rule.
	if got := CanonicalModel("claude-opus-4-20250514"); got != "claude-opus-4" {
		t.Fatalf("opus-4 rule did not win: got %q", got)
	}
}

func TestLookupPricingFallbacks(t *testing.T) {
	if p := LookupPricing("claude-future-model"); p != DefaultPricing["claude-default"] {
		t.Errorf("unknown claude model did not fall back to claude-default: %+v", p)
	}
	if p := LookupPricing("gpt-99"); p != DefaultPricing["gpt-default"] {
		t.Errorf("unknown gpt model did not fall back to gpt-default: %+v", p)
	}
	if p := LookupPricing("mystery-llm"); p != DefaultPricing["default"] {
		t.Errorf("unknown vendor did not fall back to default: %+v", p)
	}
}

func TestCalculateCost(t *testing.T) {
	// claude-sonnet-4: input $3, output $15, write $3.75, read $0.30 per MTok.
	// 1M prompt tokens, of which 200k cache writes and 300k cache reads.
	cost := CalculateCost("claude-sonnet-4", 1_000_000, 100_000, 200_000, 300_000)
	want := 0.5*3.00 + 0.2*3.75 + 0.3*0.30 + 0.1*15.00
	if math.Abs(cost-want) > 1e-9 {
		t.Fatalf("cost = %.6f, want %.6f", cost, want)
	}
}

func TestCalculateCostNoCachePricing(t *testing.T) {
	// gpt-4o has no cache pricing: the entire prompt side pays the
	// input rate, regardless of how it is split.
	plain := CalculateCost("gpt-4o", 1_000_000, 0, 0, 0)
	split := CalculateCost("gpt-4o", 1_000_000, 0, 200_000, 300_000)
	if math.Abs(plain-split) > 1e-9 {
		t.Fatalf("cache split changed cost for cache-less model: %.6f vs %.6f", plain, split)
	}
	if want := 2.50; math.Abs(plain-want) > 1e-9 {
		t.Fatalf("cost = %.6f, want %.6f", plain, want)
	}
}

func TestCacheSavings(t *testing.T) {
	// Cache reads bill at 10% of the input rate, so savings are 90%
	// of what full input pricing would have cost.
	full := float64(1_000_000) * DefaultPricing["claude-sonnet-4"].InputPerMTok / 1_000_000
	got := CalculateCacheSavings("claude-sonnet-4", 1_000_000)
	if want := full * 0.9; math.Abs(got-want) > 1e-9 {
		t.Fatalf("savings = %.6f, want %.6f", got, want)
	}

	if s := CalculateCacheSavings("gpt-4o", 1_000_000); s != 0 {
		t.Fatalf("cache-less model reported savings %.6f, want 0", s)
	}
}

func TestResolvePlan(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Plan.Name = "max5"
	limits, err := ResolvePlan(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if limits.TokenLimit != 88_000 || limits.CostLimit != 35.00 {
		t.Fatalf("max5 limits = %+v", limits)
	}

	tok := int64(123_456)
	cfg.Plan.TokenLimit = &tok
	limits, err = ResolvePlan(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if limits.TokenLimit != 123_456 {
		t.Fatalf("token override not applied: %d", limits.TokenLimit)
	}

	cfg.Plan.Name = "enterprise"
	if _, err := ResolvePlan(cfg); err == nil {
		t.Fatal("expected error for unknown plan")
	}
}

func TestApplyPricingOverrides(t *testing.T) {
	orig := DefaultPricing["claude-haiku-4"]
	defer func() { DefaultPricing["claude-haiku-4"] = orig }()

	in := 2.00
	cfg := DefaultConfig()
	cfg.Pricing.Overrides = map[string]ModelPricingOverride{
		"claude-haiku-4": {InputPerMTok: &in},
	}
	ApplyPricingOverrides(cfg)

	p := DefaultPricing["claude-haiku-4"]
	if p.InputPerMTok != 2.00 {
		t.Fatalf("override not applied: %+v", p)
	}
	if p.OutputPerMTok != orig.OutputPerMTok {
		t.Fatalf("unrelated field changed: %+v", p)
	}
}
