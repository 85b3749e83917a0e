// Package daemon provides the long-running background usage monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/aimon/internal/alert"
	"github.com/theirongolddev/aimon/internal/config"
	"github.com/theirongolddev/aimon/internal/forecast"
	"github.com/theirongolddev/aimon/internal/model"
	"github.com/theirongolddev/aimon/internal/pipeline"
	"github.com/theirongolddev/aimon/internal/platform"
	"github.com/theirongolddev/aimon/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Platforms       []platform.Platform
	Limits          model.PlanLimits
	Alerts          config.AlertConfig
	SessionDuration time.Duration
	WindowHours     int
	TrendDays       int
	UseCache        bool
	Interval        time.Duration
	Addr            string
	EventsBuffer    int
}

// PlatformSnapshot is the computed state for one platform at a poll.
type PlatformSnapshot struct {
	Platform string    `json:"platform"`
	At       time.Time `json:"at"`

	TotalTokens int64   `json:"total_tokens"`
	TotalCost   float64 `json:"total_cost_usd"`
	TotalCalls  int     `json:"total_calls"`

	SessionTokens int64   `json:"session_tokens"`
	SessionCost   float64 `json:"session_cost_usd"`
	SessionActive bool    `json:"session_active"`

	BurnRate    model.BurnRate      `json:"burn_rate"`
	Alerts      []model.Alert       `json:"alerts,omitempty"`
	HealthScore float64             `json:"health_score"`
	ShouldReset bool                `json:"should_reset"`
	ResetReason string              `json:"reset_reason,omitempty"`
	P90         *model.P90Analysis  `json:"p90,omitempty"`
	Trend       model.TrendAnalysis `json:"trend"`

	LastError string `json:"last_error,omitempty"`
}

// Delta captures per-platform usage movement between polls.
type Delta struct {
	Platform string  `json:"platform"`
	Tokens   int64   `json:"tokens"`
	CostUSD  float64 `json:"cost_usd"`
	Calls    int     `json:"calls"`
}

func (d Delta) isZero() bool {
	return d.Tokens == 0 && d.CostUSD == 0 && d.Calls == 0
}

// Event is emitted whenever a platform's usage moves or an alert
// level changes.
type Event struct {
	ID        int64            `json:"id"`
	Type      string           `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Snapshot  PlatformSnapshot `json:"snapshot"`
	Delta     Delta            `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time                   `json:"started_at"`
	LastPollAt      time.Time                   `json:"last_poll_at"`
	PollIntervalSec int                         `json:"poll_interval_sec"`
	PollCount       int64                       `json:"poll_count"`
	Plan            string                      `json:"plan"`
	Platforms       map[string]PlatformSnapshot `json:"platforms"`
	EventCount      int                         `json:"event_count"`
	SubscriberCount int                         `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	snapshots   map[string]PlatformSnapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = pipeline.DefaultSessionDuration
	}

	return &Service{
		cfg:       cfg,
		startedAt: time.Now(),
		snapshots: make(map[string]PlatformSnapshot),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshots so status is useful immediately.
	s.pollOnce(time.Now())

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(time.Now())
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// pollOnce rebuilds each platform's snapshot. A failing platform
// keeps its previous snapshot, annotated with the error, so one
// broken data directory never blanks the others.
func (s *Service) pollOnce(now time.Time) {
	for _, p := range s.cfg.Platforms {
		snap, err := s.computeSnapshot(p, now)

		s.mu.Lock()
		prev, hadPrev := s.snapshots[p.Name()]
		if err != nil {
			stale := prev
			stale.LastError = err.Error()
			s.snapshots[p.Name()] = stale
			s.mu.Unlock()
			log.Printf("aimon daemon: %s poll failed: %v", p.Name(), err)
			continue
		}
		s.snapshots[p.Name()] = snap

		var (
			ev      Event
			publish bool
		)
		if !hadPrev {
			s.nextEventID++
			ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap, Delta: Delta{Platform: p.Name()}}
			publish = true
		} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
			s.nextEventID++
			ev = Event{ID: s.nextEventID, Type: "usage_delta", Timestamp: now, Snapshot: snap, Delta: delta}
			publish = true
		}
		s.mu.Unlock()

		if publish {
			s.publishEvent(ev)
		}
	}

	s.mu.Lock()
	s.lastPollAt = now
	s.pollCount++
	s.mu.Unlock()
}

func (s *Service) computeSnapshot(p platform.Platform, now time.Time) (PlatformSnapshot, error) {
	records, err := s.loadRecords(p)
	if err != nil {
		return PlatformSnapshot{}, err
	}

	stats := pipeline.Aggregate(records, time.Time{}, time.Time{})
	blocks := pipeline.NewSegmenter(s.cfg.SessionDuration).Blocks(records, now)
	burn := pipeline.ComputeBurnRate(records, pipeline.DefaultBurnWindow, now)

	snap := PlatformSnapshot{
		Platform:    p.Name(),
		At:          now,
		TotalTokens: stats.TotalTokens,
		TotalCost:   stats.TotalCost,
		TotalCalls:  stats.TotalCalls,
		BurnRate:    burn,
		Trend:       forecast.Trend(blocks, s.cfg.TrendDays, now),
	}

	calc := forecast.NewCalculator(s.cfg.WindowHours, config.TokenLimitTiers)
	snap.P90 = calc.Analyze(blocks, now)

	if len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		if last.IsActive {
			snap.SessionActive = true
			snap.SessionTokens = last.TotalTokens()
			snap.SessionCost = last.TotalCost()
		}
	}

	limits := s.cfg.Limits
	if limits.IsCustom && snap.P90 != nil {
		limits.TokenLimit = snap.P90.RecommendedLimit
	}
	engine := alert.NewEngine(limits, s.cfg.Alerts)
	snap.Alerts = engine.Check(snap.SessionTokens, snap.SessionCost, burn)
	snap.HealthScore = engine.HealthScore(snap.SessionTokens, snap.SessionCost, burn)
	snap.ShouldReset, snap.ResetReason = engine.ShouldReset(snap.Alerts, snap.SessionTokens, snap.SessionCost, burn)

	return snap, nil
}

func (s *Service) loadRecords(p platform.Platform) ([]model.UsageRecord, error) {
	platforms := []platform.Platform{p}

	if s.cfg.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, loadErr := pipeline.LoadWithCache(platforms, cache, nil)
			if loadErr == nil {
				return cr.Records, nil
			}
		}
	}

	result, err := pipeline.Load(platforms, nil)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

func diffSnapshots(prev, curr PlatformSnapshot) Delta {
	return Delta{
		Platform: curr.Platform,
		Tokens:   curr.TotalTokens - prev.TotalTokens,
		CostUSD:  curr.TotalCost - prev.TotalCost,
		Calls:    curr.TotalCalls - prev.TotalCalls,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	platforms := make(map[string]PlatformSnapshot, len(s.snapshots))
	for name, snap := range s.snapshots {
		platforms[name] = snap
	}

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Plan:            s.cfg.Limits.Name,
		Platforms:       platforms,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshots immediately.
	for _, snap := range s.snapshotStatus().Platforms {
		writeSSE(w, Event{Type: "snapshot", Timestamp: time.Now(), Snapshot: snap, Delta: Delta{Platform: snap.Platform}})
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
