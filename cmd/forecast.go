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

var flagPredictHours float64

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "P90 limit analysis, usage trend, and burn projections",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().Float64Var(&flagPredictHours, "hours", 1, "Projection horizon in hours")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(_ *cobra.Command, _ []string) error {
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

	calc := forecast.NewCalculator(cfg.Monitor.WindowHours, config.TokenLimitTiers)
	p90 := calc.Analyze(blocks, now)
	trend := forecast.Trend(blocks, cfg.Monitor.TrendDays, now)
	burn := pipeline.ComputeBurnRate(filtered, pipeline.DefaultBurnWindow, now)

	fmt.Println()
	fmt.Println(cli.RenderTitle("USAGE FORECAST"))
	fmt.Println()

	if p90 == nil {
		fmt.Println("  Not enough completed sessions to analyze yet.")
		fmt.Printf("  Keep using the CLI; analysis needs at least one full session block.\n")
		return nil
	}

	rows := [][]string{
		{"P90 Tokens/Session", cli.FormatTokens(p90.P90Tokens)},
		{"P90 Cost/Session", cli.FormatCost(p90.P90Cost)},
		{"P90 Calls/Session", cli.FormatNumber(int64(p90.P90Calls))},
		{"Recommended Limit", cli.FormatTokens(p90.RecommendedLimit)},
		{"Samples", fmt.Sprintf("%d blocks over %dh", p90.SampleSize, p90.WindowHours)},
		{"Confidence", cli.FormatPercent(p90.Confidence)},
		{"---"},
		{"Trend", trend.Direction},
	}
	if trend.SampleSize >= 2 {
		rows = append(rows, []string{"Trend Change", fmt.Sprintf("%+.1f%%", trend.ChangePercent)})
	}

	if burn.TokensPerMinute > 0 {
		var sessionTokens int64
		var sessionCost float64
		if last := lastBlock(blocks); last != nil && last.IsActive {
			sessionTokens = last.TotalTokens()
			sessionCost = last.TotalCost()
		}
		rows = append(rows, []string{"---"})
		rows = append(rows, []string{
			fmt.Sprintf("Tokens in %.0fh", flagPredictHours),
			cli.FormatTokens(alert.PredictTokens(sessionTokens, burn, flagPredictHours)),
		})
		rows = append(rows, []string{
			fmt.Sprintf("Cost in %.0fh", flagPredictHours),
			cli.FormatCost(alert.PredictCost(sessionCost, burn, flagPredictHours)),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	warnFileErrors(result)
	return nil
}
