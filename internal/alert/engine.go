// Package alert evaluates usage against plan limits and produces
// graduated alerts, health scores, and reset recommendations.
package alert

import (
	"fmt"
	"math"

	"github.com/theirongolddev/aimon/internal/config"
	"github.com/theirongolddev/aimon/internal/model"
)

// Engine checks current-session usage against plan limits.
type Engine struct {
	Limits model.PlanLimits
	Cfg    config.AlertConfig
}

// NewEngine returns an engine for the given limits and thresholds.
func NewEngine(limits model.PlanLimits, cfg config.AlertConfig) *Engine {
	return &Engine{Limits: limits, Cfg: cfg}
}

// threshold pairs a usage percentage with the level it triggers.
type threshold struct {
	percent float64
	level   model.AlertLevel
}

// thresholds returns the configured bands in descending order so the
// highest crossed band wins.
func (e *Engine) thresholds() []threshold {
	return []threshold{
		{e.Cfg.DangerPercent, model.LevelDanger},
		{e.Cfg.CriticalPercent, model.LevelCritical},
		{e.Cfg.WarningPercent, model.LevelWarning},
		{e.Cfg.InfoPercent, model.LevelInfo},
	}
}

func (e *Engine) levelFor(pct float64) (model.AlertLevel, float64, bool) {
	for _, t := range e.thresholds() {
		if pct >= t.percent {
			return t.level, t.percent, true
		}
	}
	return "", 0, false
}

// Check evaluates current session usage and burn rate, returning all
// active alerts. tokens and cost are the running totals of the
// active session block.
func (e *Engine) Check(tokens int64, cost float64, burn model.BurnRate) []model.Alert {
	var alerts []model.Alert

	if e.Limits.TokenLimit > 0 {
		pct := float64(tokens) / float64(e.Limits.TokenLimit) * 100
		if level, th, ok := e.levelFor(pct); ok {
			a := model.Alert{
				Level:          level,
				MetricType:     model.MetricTokenUsage,
				CurrentValue:   float64(tokens),
				ThresholdValue: th,
				Severity:       severity(pct),
				Message:        fmt.Sprintf("Token usage at %.1f%% of the %s session limit", pct, e.Limits.Name),
			}
			a.RecommendedAction = e.tokenAction(level, tokens, burn)
			alerts = append(alerts, a)
		}
	}

	if e.Limits.CostLimit > 0 {
		pct := cost / e.Limits.CostLimit * 100
		if level, th, ok := e.levelFor(pct); ok {
			alerts = append(alerts, model.Alert{
				Level:             level,
				MetricType:        model.MetricCostUsage,
				CurrentValue:      cost,
				ThresholdValue:    th,
				Severity:          severity(pct),
				Message:           fmt.Sprintf("Session cost at %.1f%% of the $%.2f limit", pct, e.Limits.CostLimit),
				RecommendedAction: costAction(level),
			})
		}
	}

	alerts = append(alerts, e.burnRateAlerts(tokens, burn)...)
	return alerts
}

// burnRateAlerts fire on consumption velocity alone, independent of
// how much of the limit is already used.
func (e *Engine) burnRateAlerts(tokens int64, burn model.BurnRate) []model.Alert {
	var alerts []model.Alert

	if e.Cfg.TokenRateCeiling > 0 && burn.TokensPerMinute > e.Cfg.TokenRateCeiling {
		ttl := e.TimeToTokenLimit(tokens, burn)
		if ttl != nil && *ttl < 60 {
			alerts = append(alerts, model.Alert{
				Level:             model.LevelDanger,
				MetricType:        model.MetricBurnRate,
				CurrentValue:      burn.TokensPerMinute,
				ThresholdValue:    e.Cfg.TokenRateCeiling,
				Severity:          90,
				Message:           fmt.Sprintf("Burning %.0f tokens/min; limit reached in %s", burn.TokensPerMinute, FormatMinutes(*ttl)),
				RecommendedAction: "Pause or batch requests now to avoid hitting the session limit",
			})
		}
	}

	if e.Cfg.CostRateCeiling > 0 && burn.CostPerMinute > e.Cfg.CostRateCeiling {
		alerts = append(alerts, model.Alert{
			Level:             model.LevelWarning,
			MetricType:        model.MetricCostBurnRate,
			CurrentValue:      burn.CostPerMinute,
			ThresholdValue:    e.Cfg.CostRateCeiling,
			Severity:          70,
			Message:           fmt.Sprintf("Spending $%.2f/min", burn.CostPerMinute),
			RecommendedAction: "Review whether a cheaper model covers the current workload",
		})
	}

	return alerts
}

func (e *Engine) tokenAction(level model.AlertLevel, tokens int64, burn model.BurnRate) string {
	ttl := e.TimeToTokenLimit(tokens, burn)
	switch {
	case level == model.LevelDanger && ttl != nil && *ttl < 30:
		return fmt.Sprintf("Limit reached in %s at the current rate; stop and wait for the session window to reset", FormatMinutes(*ttl))
	case level == model.LevelDanger:
		return "Stop heavy usage; the session limit is nearly exhausted"
	case level == model.LevelCritical:
		return "Switch remaining work to a smaller model or defer it"
	case level == model.LevelWarning:
		return "Keep an eye on usage; consider deferring non-urgent work"
	default:
		if ttl != nil {
			return fmt.Sprintf("On pace to reach the limit in %s", FormatMinutes(*ttl))
		}
		return "Usage is past the halfway mark"
	}
}

func costAction(level model.AlertLevel) string {
	switch level {
	case model.LevelDanger, model.LevelCritical:
		return "Switch to a cheaper model to stay under the cost ceiling"
	case model.LevelWarning:
		return "Review per-model spend before continuing heavy work"
	default:
		return "Cost is past the halfway mark"
	}
}

// severity maps a usage percentage to 0..100.
func severity(pct float64) int {
	s := int(pct)
	if s > 100 {
		s = 100
	}
	if s < 0 {
		s = 0
	}
	return s
}

// TimeToTokenLimit estimates minutes until the token limit at the
// current burn rate. Nil when there is no limit or no measurable
// rate; zero when the limit is already reached.
func (e *Engine) TimeToTokenLimit(tokens int64, burn model.BurnRate) *float64 {
	if e.Limits.TokenLimit <= 0 || burn.TokensPerMinute <= 0 {
		return nil
	}
	remaining := float64(e.Limits.TokenLimit - tokens)
	if remaining < 0 {
		remaining = 0
	}
	minutes := remaining / burn.TokensPerMinute
	return &minutes
}

// FormatMinutes renders a duration in minutes as minutes, hours, or
// days depending on magnitude.
func FormatMinutes(minutes float64) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%.0f min", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%.1f h", minutes/60)
	default:
		return fmt.Sprintf("%.1f d", minutes/60/24)
	}
}

// HealthScore summarizes session health on a 0..100 scale. Token and
// cost usage each weigh 40%, and each exceeded burn ceiling deducts
// a flat 10 points.
func (e *Engine) HealthScore(tokens int64, cost float64, burn model.BurnRate) float64 {
	score := 100.0

	if e.Limits.TokenLimit > 0 {
		pct := float64(tokens) / float64(e.Limits.TokenLimit) * 100
		score -= 0.4 * math.Min(pct, 100)
	}
	if e.Limits.CostLimit > 0 {
		pct := cost / e.Limits.CostLimit * 100
		score -= 0.4 * math.Min(pct, 100)
	}
	if e.Cfg.TokenRateCeiling > 0 && burn.TokensPerMinute > e.Cfg.TokenRateCeiling {
		score -= 10
	}
	if e.Cfg.CostRateCeiling > 0 && burn.CostPerMinute > e.Cfg.CostRateCeiling {
		score -= 10
	}

	return math.Max(0, math.Min(100, score))
}

// ShouldReset recommends waiting for the session window to reset.
// The first matching rule supplies the reason.
func (e *Engine) ShouldReset(alerts []model.Alert, tokens int64, cost float64, burn model.BurnRate) (bool, string) {
	for _, a := range alerts {
		if a.Level == model.LevelDanger {
			return true, "a DANGER alert is active"
		}
	}

	if e.Limits.TokenLimit > 0 {
		pct := float64(tokens) / float64(e.Limits.TokenLimit) * 100
		if pct > 90 && burn.TokensPerMinute > 5_000 {
			return true, "token usage above 90% with a high burn rate"
		}
	}
	if e.Limits.CostLimit > 0 {
		pct := cost / e.Limits.CostLimit * 100
		if pct > 90 && burn.CostPerMinute > 0.50 {
			return true, "cost above 90% with high spend velocity"
		}
	}
	if ttl := e.TimeToTokenLimit(tokens, burn); ttl != nil && *ttl < 30 {
		return true, "less than 30 minutes to the token limit"
	}

	return false, ""
}

// PredictTokens extrapolates token usage hours ahead at the current
// burn rate.
func PredictTokens(current int64, burn model.BurnRate, hours float64) int64 {
	return current + int64(burn.TokensPerMinute*60*hours)
}

// PredictCost extrapolates session cost hours ahead at the current
// burn rate.
func PredictCost(current float64, burn model.BurnRate, hours float64) float64 {
	return current + burn.CostPerMinute*60*hours
}
