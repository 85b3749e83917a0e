package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/aimon/internal/model"
)

// TokenLimitTiers are the known per-session token limits, ascending.
// The forecaster snaps restriction checks and recommendations to
// these values.
var TokenLimitTiers = []int64{44_000, 88_000, 220_000}

// Plans maps plan names to their session limits. The custom plan has
// no fixed token limit; callers substitute a P90-derived one.
var Plans = map[string]model.PlanLimits{
	"pro": {
		Name:         "pro",
		TokenLimit:   44_000,
		CostLimit:    18.00,
		RateLimitRPM: 50,
		RateLimitTPM: 40_000,
	},
	"max5": {
		Name:         "max5",
		TokenLimit:   88_000,
		CostLimit:    35.00,
		RateLimitRPM: 50,
		RateLimitTPM: 88_000,
	},
	"max20": {
		Name:         "max20",
		TokenLimit:   220_000,
		CostLimit:    140.00,
		RateLimitRPM: 50,
		RateLimitTPM: 220_000,
	},
	"custom": {
		Name:     "custom",
		IsCustom: true,
	},
}

// PlanNames returns the known plan names, sorted.
func PlanNames() []string {
	names := make([]string, 0, len(Plans))
	for name := range Plans {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvePlan returns the limits for the configured plan, applying
// any explicit token/cost limit overrides from the config file.
func ResolvePlan(cfg Config) (model.PlanLimits, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Plan.Name))
	if name == "" {
		name = "custom"
	}
	limits, ok := Plans[name]
	if !ok {
		return model.PlanLimits{}, fmt.Errorf("unknown plan %q (known: %s)", cfg.Plan.Name, strings.Join(PlanNames(), ", "))
	}
	if cfg.Plan.TokenLimit != nil {
		limits.TokenLimit = *cfg.Plan.TokenLimit
	}
	if cfg.Plan.CostLimit != nil {
		limits.CostLimit = *cfg.Plan.CostLimit
	}
	return limits, nil
}
