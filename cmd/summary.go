package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aimon/internal/cli"
	"github.com/theirongolddev/aimon/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Usage summary with tokens, costs, and cache economics",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
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
		fmt.Println("  Use a supported AI CLI first, then come back!")
		return nil
	}

	filtered, since, until := applyFilters(result.Records)
	stats := pipeline.Aggregate(filtered, since, until)

	if stats.TotalCalls == 0 {
		fmt.Println("\n  No records found in the selected time range.")
		return nil
	}

	burn := pipeline.ComputeBurnRate(filtered, pipeline.DefaultBurnWindow, until)
	costs, _ := pipeline.AggregateCostBreakdown(filtered, since, until)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("AI USAGE  Last %dd", flagDays)))
	fmt.Println()

	rows := [][]string{
		{"API Calls", cli.FormatNumber(int64(stats.TotalCalls))},
		{"Total Tokens", cli.FormatTokens(stats.TotalTokens)},
		{"Prompt Tokens", cli.FormatTokens(stats.PromptTokens)},
		{"Completion Tokens", cli.FormatTokens(stats.CompletionTokens)},
		{"---"},
		{"Cost (est)", cli.FormatCost(stats.TotalCost)},
		{"Input Cost", cli.FormatCost(costs.InputCost)},
		{"Output Cost", cli.FormatCost(costs.OutputCost)},
		{"Cache Write Cost", cli.FormatCost(costs.CacheWriteCost)},
		{"Cache Read Cost", cli.FormatCost(costs.CacheReadCost)},
		{"---"},
		{"Cached Tokens", cli.FormatTokens(stats.TotalCachedTokens)},
		{"Cache Savings", cli.FormatCost(stats.TotalCacheSavings)},
		{"Cache Hit Rate", cli.FormatPercent(stats.AverageCacheHitRate())},
	}

	if burn.TokensPerMinute > 0 {
		rows = append(rows, []string{"---"})
		rows = append(rows, []string{"Burn Rate", cli.FormatRate(burn.TokensPerMinute)})
		rows = append(rows, []string{"Spend Rate", fmt.Sprintf("%s/min", cli.FormatCost(burn.CostPerMinute))})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	// Daily sparkline for the window.
	days := pipeline.AggregateDays(filtered, since, until)
	if len(days) > 1 {
		values := make([]float64, 0, len(days))
		for i := len(days) - 1; i >= 0; i-- {
			values = append(values, float64(days[i].Tokens))
		}
		fmt.Printf("\n  Daily tokens  %s\n", cli.RenderSparkline(values))
	}

	warnFileErrors(result)
	return nil
}
