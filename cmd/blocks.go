package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aimon/internal/cli"
	"github.com/theirongolddev/aimon/internal/pipeline"
)

var flagShowGaps bool

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Session blocks aligned to the provider billing window",
	RunE:  runBlocks,
}

func init() {
	blocksCmd.Flags().BoolVar(&flagShowGaps, "gaps", false, "Include gap blocks for idle periods")
	rootCmd.AddCommand(blocksCmd)
}

func runBlocks(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := loadData(cfg)
	if err != nil {
		return err
	}

	filtered, since, until := applyFilters(result.Records)
	windowed := pipeline.FilterByTime(filtered, since, until)
	if len(windowed) == 0 {
		fmt.Println("\n  No records found in the selected time range.")
		return nil
	}

	duration := time.Duration(cfg.Monitor.SessionDurationHours) * time.Hour
	blocks := pipeline.NewSegmenter(duration).Blocks(windowed, until)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SESSION BLOCKS  Last %dd", flagDays)))
	fmt.Println()

	var rows [][]string
	for _, b := range blocks {
		if b.IsGap {
			if !flagShowGaps {
				continue
			}
			rows = append(rows, []string{
				b.StartTime.Local().Format("Jan 02 15:04"),
				"gap",
				cli.FormatDuration(int64(b.EndTime.Sub(b.StartTime).Seconds())),
				"-", "-", "-",
			})
			continue
		}

		state := ""
		if b.IsActive {
			state = "active"
		}
		rows = append(rows, []string{
			b.StartTime.Local().Format("Jan 02 15:04"),
			state,
			cli.FormatDuration(int64(b.ActualEndTime.Sub(b.StartTime).Seconds())),
			cli.FormatTokens(b.TotalTokens()),
			cli.FormatCost(b.TotalCost()),
			strings.Join(b.Models(), ", "),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Start", "State", "Span", "Tokens", "Cost", "Models"},
		Rows:    rows,
	}))

	warnFileErrors(result)
	return nil
}
