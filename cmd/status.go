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

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Quick one-screen view of the current session",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
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

	fmt.Println()
	fmt.Println(cli.RenderTitle("CURRENT SESSION"))
	fmt.Println()

	last := lastBlock(blocks)
	if last == nil || !last.IsActive {
		fmt.Println("  No active session.")
		fmt.Println()
		return nil
	}

	tokens := last.TotalTokens()
	cost := last.TotalCost()
	resetsIn := last.EndTime.Sub(now)

	fmt.Printf("  Started:  %s\n", last.StartTime.Local().Format("Jan 02 15:04"))
	fmt.Printf("  Resets:   %s (%s)\n", last.EndTime.Local().Format("15:04"), formatCountdown(resetsIn))
	fmt.Printf("  Tokens:   %s", cli.FormatTokens(tokens))
	if limits.TokenLimit > 0 {
		pct := float64(tokens) / float64(limits.TokenLimit)
		fmt.Printf("  %s", renderMiniBar(pct, 20))
	}
	fmt.Println()
	fmt.Printf("  Cost:     %s\n", cli.FormatCost(cost))

	if burn.TokensPerMinute > 0 {
		fmt.Printf("  Burn:     %s, %s/min\n",
			cli.FormatRate(burn.TokensPerMinute),
			cli.FormatCost(burn.CostPerMinute))
	}

	engine := alert.NewEngine(limits, cfg.Alerts)
	if ttl := engine.TimeToTokenLimit(tokens, burn); ttl != nil {
		fmt.Printf("  To limit: %s\n", alert.FormatMinutes(*ttl))
	}
	fmt.Println()

	warnFileErrors(result)
	return nil
}

func renderMiniBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	filled := int(pct * float64(width))

	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return fmt.Sprintf("%s %.0f%%", bar, pct*100)
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		return "now"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
