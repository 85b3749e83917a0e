package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aimon/internal/cli"
	"github.com/theirongolddev/aimon/internal/config"
	"github.com/theirongolddev/aimon/internal/pipeline"
)

var flagShowPricing bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Per-model usage and cost breakdown",
	RunE:  runModels,
}

func init() {
	modelsCmd.Flags().BoolVar(&flagShowPricing, "pricing", false, "Show the pricing table instead of usage")
	rootCmd.AddCommand(modelsCmd)
}

func runModels(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagShowPricing {
		return showPricing(cfg)
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
	models := pipeline.AggregateModels(filtered, since, until)

	if len(models) == 0 {
		fmt.Println("\n  No model data in the selected time range.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MODEL USAGE  Last %dd", flagDays)))
	fmt.Println()

	rows := make([][]string, 0, len(models))
	for _, ms := range models {
		rows = append(rows, []string{
			shortModel(ms.Model),
			cli.FormatNumber(int64(ms.Calls)),
			cli.FormatTokens(ms.PromptTokens),
			cli.FormatTokens(ms.CompletionTokens),
			cli.FormatTokens(ms.CacheReadTokens),
			cli.FormatCost(ms.Cost),
			fmt.Sprintf("%.1f%%", ms.SharePercent),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Model", "Calls", "Prompt", "Completion", "Cached", "Cost", "Share"},
		Rows:    rows,
	}))

	warnFileErrors(result)
	return nil
}

func showPricing(cfg config.Config) error {
	platforms, err := selectPlatforms(cfg)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MODEL PRICING  $/MTok"))
	fmt.Println()

	var rows [][]string
	for i, p := range platforms {
		if i > 0 {
			rows = append(rows, []string{"---"})
		}
		for _, m := range p.Models() {
			cacheWrite, cacheRead := "-", "-"
			if m.SupportsCaching {
				cacheWrite = fmt.Sprintf("%.2f", m.CacheWritePerMTok)
				cacheRead = fmt.Sprintf("%.2f", m.CacheReadPerMTok)
			}
			rows = append(rows, []string{
				shortModel(m.Name),
				m.Platform,
				fmt.Sprintf("%.2f", m.InputPerMTok),
				fmt.Sprintf("%.2f", m.OutputPerMTok),
				cacheWrite,
				cacheRead,
			})
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Model", "Platform", "Input", "Output", "Cache Write", "Cache Read"},
		Rows:    rows,
	}))
	return nil
}

// shortModel trims the vendor prefix for narrow table columns.
func shortModel(name string) string {
	return strings.TrimPrefix(name, "claude-")
}
