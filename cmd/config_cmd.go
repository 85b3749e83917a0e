package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aimon/internal/cli"
	"github.com/theirongolddev/aimon/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Monitor]")
	fmt.Printf("    Session duration: %dh\n", cfg.Monitor.SessionDurationHours)
	fmt.Printf("    Analysis window:  %dh\n", cfg.Monitor.WindowHours)
	fmt.Printf("    Trend window:     %dd\n", cfg.Monitor.TrendDays)
	fmt.Printf("    Refresh interval: %ds\n", cfg.Monitor.RefreshSeconds)
	if cfg.Monitor.ClaudeDir != "" {
		fmt.Printf("    Claude directory: %s\n", cfg.Monitor.ClaudeDir)
	}
	if cfg.Monitor.CodexDir != "" {
		fmt.Printf("    Codex directory:  %s\n", cfg.Monitor.CodexDir)
	}
	fmt.Println()

	fmt.Println("  [Alerts]")
	fmt.Printf("    Thresholds: %.0f%% info, %.0f%% warning, %.0f%% critical, %.0f%% danger\n",
		cfg.Alerts.InfoPercent, cfg.Alerts.WarningPercent,
		cfg.Alerts.CriticalPercent, cfg.Alerts.DangerPercent)
	fmt.Printf("    Token rate ceiling: %s\n", cli.FormatRate(cfg.Alerts.TokenRateCeiling))
	fmt.Printf("    Cost rate ceiling:  %s/min\n", cli.FormatCost(cfg.Alerts.CostRateCeiling))
	fmt.Println()

	fmt.Println("  [Plan]")
	limits, err := config.ResolvePlan(cfg)
	if err != nil {
		fmt.Printf("    Name: %s (unknown, known: %v)\n", cfg.Plan.Name, config.PlanNames())
	} else {
		fmt.Printf("    Name: %s\n", limits.Name)
		if limits.TokenLimit > 0 {
			fmt.Printf("    Token limit: %s per session\n", cli.FormatTokens(limits.TokenLimit))
		} else {
			fmt.Println("    Token limit: not set (derived from P90 analysis)")
		}
		if limits.CostLimit > 0 {
			fmt.Printf("    Cost limit:  %s per session\n", cli.FormatCost(limits.CostLimit))
		} else {
			fmt.Println("    Cost limit:  not set")
		}
	}
	fmt.Println()

	if len(cfg.Pricing.Overrides) > 0 {
		fmt.Printf("  [Pricing]\n    %d model override(s) active\n\n", len(cfg.Pricing.Overrides))
	}

	fmt.Println("  Run `aimon config init` to write the defaults to disk.")
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if config.Exists() {
		return fmt.Errorf("config file already exists at %s", config.ConfigPath())
	}
	if err := config.Save(config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("  Wrote default config to %s\n", config.ConfigPath())
	return nil
}
