package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aimon/internal/cli"
	"github.com/theirongolddev/aimon/internal/pipeline"
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Cost breakdown by token type and model",
	RunE:  runCosts,
}

func init() {
	rootCmd.AddCommand(costsCmd)
}

func runCosts(_ *cobra.Command, _ []string) error {
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

	filtered, since, until := applyFilters(result.Records)
	stats := pipeline.Aggregate(filtered, since, until)
	tokenCosts, modelCosts := pipeline.AggregateCostBreakdown(filtered, since, until)

	if stats.TotalCalls == 0 {
		fmt.Println("\n  No records in the selected time range.")
		return nil
	}

	// Previous period for comparison
	prevDuration := until.Sub(since)
	prevSince := since.Add(-prevDuration)
	prevStats := pipeline.Aggregate(result.Records, prevSince, since)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("COST BREAKDOWN  Last %dd", flagDays)))
	fmt.Println()

	// Cost by token type
	type tokenCost struct {
		name string
		cost float64
	}

	totalCost := tokenCosts.TotalCost

	costs := []tokenCost{
		{"Output", tokenCosts.OutputCost},
		{"Input", tokenCosts.InputCost},
		{"Cache Write", tokenCosts.CacheWriteCost},
		{"Cache Read", tokenCosts.CacheReadCost},
	}

	typeRows := make([][]string, 0, len(costs)+2)
	for _, tc := range costs {
		pct := ""
		if totalCost > 0 {
			pct = fmt.Sprintf("%.1f%%", tc.cost/totalCost*100)
		}
		typeRows = append(typeRows, []string{tc.name, cli.FormatCost(tc.cost), pct})
	}
	typeRows = append(typeRows, []string{"---"})
	typeRows = append(typeRows, []string{"TOTAL", cli.FormatCost(totalCost), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Token Type",
		Headers: []string{"Type", "Cost", "Share"},
		Rows:    typeRows,
	}))

	// Period comparison
	if prevStats.TotalCost > 0 {
		fmt.Printf("  Period Comparison\n")
		maxCost := stats.TotalCost
		if prevStats.TotalCost > maxCost {
			maxCost = prevStats.TotalCost
		}
		fmt.Printf("  This %dd  %s  %s\n",
			flagDays,
			cli.RenderHorizontalBar(stats.TotalCost, maxCost, 30),
			cli.FormatCost(stats.TotalCost))
		fmt.Printf("  Prev %dd  %s  %s\n\n",
			flagDays,
			cli.RenderHorizontalBar(prevStats.TotalCost, maxCost, 30),
			cli.FormatCost(prevStats.TotalCost))
	}

	// Cost by model
	modelRows := make([][]string, 0, len(modelCosts)+2)
	for _, mc := range modelCosts {
		modelRows = append(modelRows, []string{
			shortModel(mc.Model),
			cli.FormatCost(mc.InputCost),
			cli.FormatCost(mc.OutputCost),
			cli.FormatCost(mc.CacheWriteCost + mc.CacheReadCost),
			cli.FormatCost(mc.TotalCost),
		})
	}
	modelRows = append(modelRows, []string{"---"})
	modelRows = append(modelRows, []string{
		"TOTAL",
		cli.FormatCost(tokenCosts.InputCost),
		cli.FormatCost(tokenCosts.OutputCost),
		cli.FormatCost(tokenCosts.CacheWriteCost + tokenCosts.CacheReadCost),
		cli.FormatCost(totalCost),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Model",
		Headers: []string{"Model", "Input", "Output", "Cache", "Total"},
		Rows:    modelRows,
	}))

	fmt.Printf("  Cache Savings: %s saved this period\n\n",
		cli.FormatCost(stats.TotalCacheSavings))

	warnFileErrors(result)
	return nil
}
