package platform

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/aimon/internal/model"
	"github.com/theirongolddev/aimon/internal/source"
)

// Codex reads the flat usage_log.jsonl the Codex CLI appends one
// line per API call to, under <dir>.
type Codex struct {
	dir string
}

// NewCodex returns the Codex adapter rooted at dir, defaulting to
// ~/.codex.
func NewCodex(dir string) *Codex {
	return &Codex{dir: dirOrDefault(dir, ".codex")}
}

func (c *Codex) Name() string { return "codex" }

func (c *Codex) Discover() ([]source.DiscoveredFile, error) {
	path := filepath.Join(c.dir, "usage_log.jsonl")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return []source.DiscoveredFile{{Path: path, Platform: c.Name()}}, nil
}

func (c *Codex) Models() []model.ModelInfo {
	return pricingModels(c.Name(), func(family string) bool {
		return !strings.HasPrefix(family, "claude-")
	})
}
