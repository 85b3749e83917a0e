// Package config holds aimon configuration, pricing, and plan data.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all aimon configuration.
type Config struct {
	Monitor MonitorConfig    `toml:"monitor"`
	Alerts  AlertConfig      `toml:"alerts"`
	Plan    PlanConfig       `toml:"plan"`
	Pricing PricingOverrides `toml:"pricing"`
}

// MonitorConfig holds windowing and refresh settings for the engine.
type MonitorConfig struct {
	SessionDurationHours int    `toml:"session_duration_hours"`
	WindowHours          int    `toml:"window_hours"`
	TrendDays            int    `toml:"trend_days"`
	RefreshSeconds       int    `toml:"refresh_seconds"`
	ClaudeDir            string `toml:"claude_dir,omitempty"`
	CodexDir             string `toml:"codex_dir,omitempty"`
}

// AlertConfig holds usage threshold percentages and burn-rate ceilings.
type AlertConfig struct {
	InfoPercent     float64 `toml:"info_percent"`
	WarningPercent  float64 `toml:"warning_percent"`
	CriticalPercent float64 `toml:"critical_percent"`
	DangerPercent   float64 `toml:"danger_percent"`

	TokenRateCeiling float64 `toml:"token_rate_ceiling"` // tokens per minute
	CostRateCeiling  float64 `toml:"cost_rate_ceiling"`  // USD per minute
}

// PlanConfig selects the active plan and optional custom limits.
type PlanConfig struct {
	Name       string   `toml:"name"`
	TokenLimit *int64   `toml:"token_limit,omitempty"`
	CostLimit  *float64 `toml:"cost_limit,omitempty"`
}

// PricingOverrides allows user-defined pricing for specific models.
type PricingOverrides struct {
	Overrides map[string]ModelPricingOverride `toml:"overrides,omitempty"`
}

// ModelPricingOverride holds per-model pricing overrides.
type ModelPricingOverride struct {
	InputPerMTok      *float64 `toml:"input_per_mtok,omitempty"`
	OutputPerMTok     *float64 `toml:"output_per_mtok,omitempty"`
	CacheWritePerMTok *float64 `toml:"cache_write_per_mtok,omitempty"`
	CacheReadPerMTok  *float64 `toml:"cache_read_per_mtok,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Monitor: MonitorConfig{
			SessionDurationHours: 5,
			WindowHours:          192, // 8 days
			TrendDays:            7,
			RefreshSeconds:       10,
		},
		Alerts: AlertConfig{
			InfoPercent:      50,
			WarningPercent:   75,
			CriticalPercent:  90,
			DangerPercent:    95,
			TokenRateCeiling: 10_000,
			CostRateCeiling:  1.00,
		},
		Plan: PlanConfig{Name: "custom"},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "aimon")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "aimon")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
