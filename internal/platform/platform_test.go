package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClaudeDiscover(t *testing.T) {
	dir := t.TempDir()
	proj := filepath.Join(dir, "projects", "-home-user-projects-demo")
	if err := os.MkdirAll(proj, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(proj, "session.jsonl"), []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := NewClaude(dir).Discover()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %d, want 1", len(files))
	}
	if files[0].Platform != "claude" {
		t.Errorf("platform = %q", files[0].Platform)
	}
}

func TestCodexDiscover(t *testing.T) {
	dir := t.TempDir()

	files, err := NewCodex(dir).Discover()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files before log exists, got %d", len(files))
	}

	if err := os.WriteFile(filepath.Join(dir, "usage_log.jsonl"), []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	files, err = NewCodex(dir).Discover()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Platform != "codex" {
		t.Fatalf("files = %+v", files)
	}
}

func TestModels(t *testing.T) {
	claude := NewClaude("").Models()
	if len(claude) == 0 {
		t.Fatal("claude has no model pricing rows")
	}
	for _, m := range claude {
		if m.Platform != "claude" {
			t.Errorf("platform = %q for %s", m.Platform, m.Name)
		}
		if !m.SupportsCaching {
			t.Errorf("%s should have cache pricing", m.Name)
		}
	}

	codex := NewCodex("").Models()
	if len(codex) == 0 {
		t.Fatal("codex has no model pricing rows")
	}
	for i := 1; i < len(codex); i++ {
		if codex[i-1].Name >= codex[i].Name {
			t.Fatalf("models not sorted: %s before %s", codex[i-1].Name, codex[i].Name)
		}
	}
}

func TestForName(t *testing.T) {
	if p := ForName("claude", "", ""); p == nil || p.Name() != "claude" {
		t.Error("claude adapter not resolved")
	}
	if p := ForName("codex", "", ""); p == nil || p.Name() != "codex" {
		t.Error("codex adapter not resolved")
	}
	if p := ForName("gemini", "", ""); p != nil {
		t.Error("unknown platform should resolve to nil")
	}
}
