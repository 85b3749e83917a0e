// Package platform locates usage logs for each supported AI provider.
package platform

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/theirongolddev/aimon/internal/config"
	"github.com/theirongolddev/aimon/internal/model"
	"github.com/theirongolddev/aimon/internal/source"
)

// Platform describes one provider whose local usage logs aimon can
// ingest. Implementations only locate files; parsing and
// normalization are shared downstream.
type Platform interface {
	Name() string
	// Discover returns the JSONL usage files for this platform.
	// A missing data directory yields no files, not an error.
	Discover() ([]source.DiscoveredFile, error)
	// Models returns pricing metadata for the model families this
	// platform bills, sorted by name.
	Models() []model.ModelInfo
}

// ForName returns the platform adapter for name, or nil if unknown.
// Empty dirs fall back to each platform's default location.
func ForName(name, claudeDir, codexDir string) Platform {
	switch name {
	case "claude":
		return NewClaude(claudeDir)
	case "codex":
		return NewCodex(codexDir)
	}
	return nil
}

// All returns every supported platform adapter.
func All(claudeDir, codexDir string) []Platform {
	return []Platform{NewClaude(claudeDir), NewCodex(codexDir)}
}

func homeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

func dirOrDefault(dir string, fallback ...string) string {
	if dir != "" {
		return dir
	}
	return filepath.Join(append([]string{homeDir()}, fallback...)...)
}

// pricingModels builds ModelInfo rows from the pricing table for the
// families the predicate accepts. Vendor fallback rows are excluded.
func pricingModels(platformName string, match func(family string) bool) []model.ModelInfo {
	var infos []model.ModelInfo
	for name, p := range config.DefaultPricing {
		if name == "default" || strings.HasSuffix(name, "-default") {
			continue
		}
		if !match(name) {
			continue
		}
		infos = append(infos, model.ModelInfo{
			Name:              name,
			Platform:          platformName,
			InputPerMTok:      p.InputPerMTok,
			OutputPerMTok:     p.OutputPerMTok,
			CacheWritePerMTok: p.CacheWritePerMTok,
			CacheReadPerMTok:  p.CacheReadPerMTok,
			SupportsCaching:   p.SupportsCaching(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
