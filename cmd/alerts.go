package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aimon/internal/alert"
	"github.com/theirongolddev/aimon/internal/cli"
	"github.com/theirongolddev/aimon/internal/config"
	"github.com/theirongolddev/aimon/internal/forecast"
	"github.com/theirongolddev/aimon/internal/pipeline"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Active alerts, session health, and reset recommendation",
	RunE:  runAlerts,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
}

func runAlerts(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := loadData(cfg)
	if err != nil {
		return err
	}

	if len(result.Records) == 0 {
		fmt.Println("\n  No usage records found.")
		return nil
	}

	filtered, _, now := applyFilters(result.Records)
	duration := time.Duration(cfg.Monitor.SessionDurationHours) * time.Hour
	blocks := pipeline.NewSegmenter(duration).Blocks(filtered, now)
	burn := pipeline.ComputeBurnRate(filtered, pipeline.DefaultBurnWindow, now)

	calc := forecast.NewCalculator(cfg.Monitor.WindowHours, config.TokenLimitTiers)
	p90 := calc.Analyze(blocks, now)

	limits, err := resolveLimits(cfg, p90)
	if err != nil {
		return err
	}

	var sessionTokens int64
	var sessionCost float64
	sessionActive := false
	if last := lastBlock(blocks); last != nil && last.IsActive {
		sessionActive = true
		sessionTokens = last.TotalTokens()
		sessionCost = last.TotalCost()
	}

	engine := alert.NewEngine(limits, cfg.Alerts)
	alerts := engine.Check(sessionTokens, sessionCost, burn)
	health := engine.HealthScore(sessionTokens, sessionCost, burn)
	reset, reason := engine.ShouldReset(alerts, sessionTokens, sessionCost, burn)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SESSION ALERTS  Plan: %s", limits.Name)))
	fmt.Println()

	if !sessionActive {
		fmt.Println("  No active session block.")
	} else {
		fmt.Printf("  Session: %s tokens, %s", cli.FormatTokens(sessionTokens), cli.FormatCost(sessionCost))
		if limits.TokenLimit > 0 {
			fmt.Printf("  (%.1f%% of %s limit)",
				float64(sessionTokens)/float64(limits.TokenLimit)*100,
				cli.FormatTokens(limits.TokenLimit))
		}
		fmt.Println()
		if ttl := engine.TimeToTokenLimit(sessionTokens, burn); ttl != nil {
			fmt.Printf("  Time to limit: %s at the current rate\n", alert.FormatMinutes(*ttl))
		}
	}

	fmt.Printf("\n  Health  %s\n\n", cli.RenderHealthGauge(health, 20))

	if len(alerts) == 0 {
		fmt.Println("  No active alerts.")
	} else {
		for _, a := range alerts {
			fmt.Printf("  %s\n", cli.RenderAlert(a))
		}
	}

	if reset {
		fmt.Printf("\n  Recommendation: wait for the session window to reset (%s).\n", reason)
	}

	warnFileErrors(result)
	return nil
}
