package daemon

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/aimon/internal/config"
	"github.com/theirongolddev/aimon/internal/model"
	"github.com/theirongolddev/aimon/internal/platform"
	"github.com/theirongolddev/aimon/internal/source"
)

func TestDiffSnapshots(t *testing.T) {
	prev := PlatformSnapshot{
		Platform:    "claude",
		TotalTokens: 1_000_000,
		TotalCost:   10.5,
		TotalCalls:  120,
	}
	curr := PlatformSnapshot{
		Platform:    "claude",
		TotalTokens: 1_250_000,
		TotalCost:   13.1,
		TotalCalls:  136,
	}

	delta := diffSnapshots(prev, curr)
	if delta.Platform != "claude" {
		t.Fatalf("platform = %q", delta.Platform)
	}
	if delta.Tokens != 250_000 {
		t.Fatalf("tokens delta = %d, want 250000", delta.Tokens)
	}
	if delta.Calls != 16 {
		t.Fatalf("calls delta = %d, want 16", delta.Calls)
	}
	if math.Abs(delta.CostUSD-2.6) > 1e-9 {
		t.Fatalf("cost delta = %.2f, want 2.60", delta.CostUSD)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

// failingPlatform always errors on discovery.
type failingPlatform struct{}

func (failingPlatform) Name() string { return "broken" }

func (failingPlatform) Discover() ([]source.DiscoveredFile, error) {
	return nil, errors.New("disk on fire")
}

func (failingPlatform) Models() []model.ModelInfo { return nil }

// dirPlatform serves .jsonl files from a directory.
type dirPlatform struct {
	name string
	dir  string
}

func (p dirPlatform) Name() string { return p.name }

func (p dirPlatform) Discover() ([]source.DiscoveredFile, error) {
	return source.ScanDir(p.dir, p.name)
}

func (p dirPlatform) Models() []model.ModelInfo { return nil }

func TestPollIsolatesPlatformFailure(t *testing.T) {
	dir := t.TempDir()
	line := `{"timestamp":"2025-06-15T10:00:00Z","message":{"id":"m1","model":"claude-sonnet-4","usage":{"input_tokens":100,"output_tokens":50}},"requestId":"r1"}`
	if err := os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte(line+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(Config{
		Platforms: []platform.Platform{
			dirPlatform{name: "claude", dir: dir},
			failingPlatform{},
		},
		Limits: model.PlanLimits{Name: "pro", TokenLimit: 44_000},
		Alerts: config.DefaultConfig().Alerts,
	})

	now := time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)
	s.pollOnce(now)

	status := s.snapshotStatus()
	good, ok := status.Platforms["claude"]
	if !ok {
		t.Fatal("healthy platform missing from status")
	}
	if good.TotalTokens != 150 || good.TotalCalls != 1 {
		t.Errorf("claude snapshot = %+v", good)
	}
	if good.LastError != "" {
		t.Errorf("claude carries an error: %q", good.LastError)
	}

	bad, ok := status.Platforms["broken"]
	if !ok {
		t.Fatal("failing platform missing from status")
	}
	if bad.LastError == "" {
		t.Error("failing platform has no error recorded")
	}
	if status.PollCount != 1 {
		t.Errorf("poll count = %d", status.PollCount)
	}
}

func TestPollEmitsDeltaEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jsonl")
	line1 := `{"timestamp":"2025-06-15T10:00:00Z","message":{"id":"m1","model":"claude-sonnet-4","usage":{"input_tokens":100,"output_tokens":50}},"requestId":"r1"}`
	if err := os.WriteFile(path, []byte(line1+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(Config{
		Platforms: []platform.Platform{dirPlatform{name: "claude", dir: dir}},
		Limits:    model.PlanLimits{Name: "pro", TokenLimit: 44_000},
		Alerts:    config.DefaultConfig().Alerts,
	})

	now := time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)
	s.pollOnce(now)

	// Second poll with no change: no new event.
	s.pollOnce(now.Add(10 * time.Second))

	s.mu.RLock()
	n := len(s.events)
	s.mu.RUnlock()
	if n != 1 {
		t.Fatalf("events after unchanged poll = %d, want 1", n)
	}

	line2 := `{"timestamp":"2025-06-15T10:05:00Z","message":{"id":"m2","model":"claude-sonnet-4","usage":{"input_tokens":200,"output_tokens":100}},"requestId":"r2"}`
	if err := os.WriteFile(path, []byte(line1+"\n"+line2+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.pollOnce(now.Add(20 * time.Second))

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 2 {
		t.Fatalf("events after growth = %d, want 2", len(s.events))
	}
	last := s.events[len(s.events)-1]
	if last.Type != "usage_delta" {
		t.Errorf("event type = %q", last.Type)
	}
	if last.Delta.Tokens != 300 {
		t.Errorf("delta tokens = %d, want 300", last.Delta.Tokens)
	}
}

func TestComputeSnapshotAlerts(t *testing.T) {
	dir := t.TempDir()
	// One recent call consuming most of a tiny limit.
	line := `{"timestamp":"2025-06-15T10:55:00Z","message":{"id":"m1","model":"claude-sonnet-4","usage":{"input_tokens":900,"output_tokens":50}},"requestId":"r1"}`
	if err := os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte(line+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(Config{
		Limits: model.PlanLimits{Name: "tiny", TokenLimit: 1000},
		Alerts: config.DefaultConfig().Alerts,
	})

	now := time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)
	snap, err := s.computeSnapshot(dirPlatform{name: "claude", dir: dir}, now)
	if err != nil {
		t.Fatal(err)
	}

	if !snap.SessionActive {
		t.Fatal("session should be active")
	}
	if snap.SessionTokens != 950 {
		t.Errorf("session tokens = %d", snap.SessionTokens)
	}
	if len(snap.Alerts) == 0 {
		t.Fatal("expected a token usage alert at 95%")
	}
	if snap.Alerts[0].Level != model.LevelDanger {
		t.Errorf("level = %s", snap.Alerts[0].Level)
	}
	if snap.HealthScore >= 100 {
		t.Errorf("health = %f", snap.HealthScore)
	}
	if !snap.ShouldReset {
		t.Error("danger alert should recommend reset")
	}
}
