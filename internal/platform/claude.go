package platform

import (
	"path/filepath"
	"strings"

	"github.com/theirongolddev/aimon/internal/model"
	"github.com/theirongolddev/aimon/internal/source"
)

// Claude reads Claude Code session logs: one JSONL file per session
// under <dir>/projects/<encoded-project>/.
type Claude struct {
	dir string
}

// NewClaude returns the Claude adapter rooted at dir, defaulting to
// ~/.claude.
func NewClaude(dir string) *Claude {
	return &Claude{dir: dirOrDefault(dir, ".claude")}
}

func (c *Claude) Name() string { return "claude" }

func (c *Claude) Discover() ([]source.DiscoveredFile, error) {
	return source.ScanDir(filepath.Join(c.dir, "projects"), c.Name())
}

func (c *Claude) Models() []model.ModelInfo {
	return pricingModels(c.Name(), func(family string) bool {
		return strings.HasPrefix(family, "claude-")
	})
}
