package model

// AlertLevel is a graduated severity tied to a usage percentage band.
type AlertLevel string

const (
	LevelInfo     AlertLevel = "INFO"     // 50% usage
	LevelWarning  AlertLevel = "WARNING"  // 75% usage
	LevelCritical AlertLevel = "CRITICAL" // 90% usage
	LevelDanger   AlertLevel = "DANGER"   // 95% usage
)

// Rank orders levels for sorting: DANGER highest.
func (l AlertLevel) Rank() int {
	switch l {
	case LevelDanger:
		return 4
	case LevelCritical:
		return 3
	case LevelWarning:
		return 2
	case LevelInfo:
		return 1
	}
	return 0
}

// Alert metric types.
const (
	MetricTokenUsage   = "token_usage"
	MetricCostUsage    = "cost_usage"
	MetricBurnRate     = "burn_rate"
	MetricCostBurnRate = "cost_burn_rate"
)

// Alert is one active notification produced by the alert engine.
// Consumed read-only by presentation.
type Alert struct {
	Level             AlertLevel
	Message           string
	MetricType        string
	CurrentValue      float64
	ThresholdValue    float64
	Severity          int // 0..100
	RecommendedAction string
}

// IsCritical reports whether the alert is CRITICAL or DANGER level.
func (a Alert) IsCritical() bool {
	return a.Level == LevelCritical || a.Level == LevelDanger
}
