// Package cmd implements the aimon command-line interface.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/aimon/internal/cli"
	"github.com/theirongolddev/aimon/internal/config"
	"github.com/theirongolddev/aimon/internal/model"
	"github.com/theirongolddev/aimon/internal/pipeline"
	"github.com/theirongolddev/aimon/internal/platform"
	"github.com/theirongolddev/aimon/internal/store"
)

var (
	flagDays     int
	flagModel    string
	flagPlatform string
	flagPlan     string
	flagDataDir  string
	flagNoCache  bool
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "aimon",
	Short: "AI API usage analytics and predictive alerting",
	Long:  "Analyze local AI usage logs: tokens, costs, session blocks, forecasts, and alerts.",
	RunE:  runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 30, "Time window in days")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "Filter to model (substring match)")
	rootCmd.PersistentFlags().StringVarP(&flagPlatform, "platform", "P", "", "Limit to one platform (claude, codex)")
	rootCmd.PersistentFlags().StringVar(&flagPlan, "plan", "", "Override the configured plan (pro, max5, max20, custom)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Base directory for all platform logs (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagPlan != "" {
		cfg.Plan.Name = flagPlan
	}
	if flagDataDir != "" {
		cfg.Monitor.ClaudeDir = flagDataDir
		cfg.Monitor.CodexDir = flagDataDir
	}
	config.ApplyPricingOverrides(cfg)
	return cfg, nil
}

// selectPlatforms resolves the --platform flag against the config.
func selectPlatforms(cfg config.Config) ([]platform.Platform, error) {
	if flagPlatform != "" {
		p := platform.ForName(flagPlatform, cfg.Monitor.ClaudeDir, cfg.Monitor.CodexDir)
		if p == nil {
			return nil, fmt.Errorf("unknown platform %q (known: claude, codex)", flagPlatform)
		}
		return []platform.Platform{p}, nil
	}
	return platform.All(cfg.Monitor.ClaudeDir, cfg.Monitor.CodexDir), nil
}

// loadData is the shared record loading path used by all commands.
// Uses the SQLite cache when available for fast subsequent runs.
func loadData(cfg config.Config) (*pipeline.LoadResult, error) {
	platforms, err := selectPlatforms(cfg)
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning usage logs...\n")
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%100 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	// Try cached load unless --no-cache
	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
			}
		} else {
			defer cache.Close()

			cr, err := pipeline.LoadWithCache(platforms, cache, progressFn)
			if err != nil {
				if !flagQuiet {
					fmt.Fprintf(os.Stderr, "\n  Cache error, falling back to full parse\n")
				}
			} else {
				if !flagQuiet && cr.TotalFiles > 0 {
					if cr.Reparsed == 0 {
						fmt.Fprintf(os.Stderr, "\r  Loaded %s records from cache    \n",
							cli.FormatNumber(int64(len(cr.Records))))
					} else {
						fmt.Fprintf(os.Stderr, "\r  %d files cached + %d reparsed (%s records)    \n",
							cr.CacheHits, cr.Reparsed,
							cli.FormatNumber(int64(len(cr.Records))))
					}
				}
				return &cr.LoadResult, nil
			}
		}
	}

	// Uncached path
	result, err := pipeline.Load(platforms, progressFn)
	if err != nil {
		return nil, err
	}

	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %d files, %s records    \n",
			result.ParsedFiles,
			cli.FormatNumber(int64(len(result.Records))))
	}

	return result, nil
}

// applyFilters returns filtered records and the computed time range.
func applyFilters(records []model.UsageRecord) ([]model.UsageRecord, time.Time, time.Time) {
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -flagDays)

	filtered := records
	if flagModel != "" {
		filtered = pipeline.FilterByModel(filtered, flagModel)
	}

	return filtered, since, now
}

// resolveLimits picks the plan limits, substituting the P90
// recommendation for a custom plan when one is available.
func resolveLimits(cfg config.Config, p90 *model.P90Analysis) (model.PlanLimits, error) {
	limits, err := config.ResolvePlan(cfg)
	if err != nil {
		return limits, err
	}
	if limits.IsCustom && limits.TokenLimit == 0 && p90 != nil {
		limits.TokenLimit = p90.RecommendedLimit
	}
	return limits, nil
}

func warnFileErrors(result *pipeline.LoadResult) {
	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be read\n", result.FileErrors)
	}
	if result.ParseErrors > 0 && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  %d malformed lines skipped\n", result.ParseErrors)
	}
}
