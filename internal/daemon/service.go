// Package daemon provides the long-running metrics service with HTTP/SSE endpoints.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/pipeline"
)

// Event types published on the event stream.
const (
	EventSnapshot = "snapshot"
	EventDelta    = "metrics_delta"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DataDir      string
	Days         int
	Source       string
	UseCache     bool
	Interval     time.Duration
	Addr         string
	EventsBuffer int

	// Loader defaults to a DirLoader over DataDir.
	Loader Loader
	// Engine defaults to pipeline.DefaultEngine.
	Engine *pipeline.Engine
	// Cache memoizes snapshots across polls and requests; nil disables memoization.
	Cache pipeline.SnapshotCache
}

// Snapshot is a compact metrics state for status/event payloads.
type Snapshot struct {
	At             time.Time    `json:"at"`
	Version        string       `json:"version"`
	Revenue        float64      `json:"revenue"`
	Expenses       float64      `json:"expenses"`
	NetProfit      float64      `json:"net_profit"`
	ProfitMargin   float64      `json:"profit_margin"`
	Transactions   int          `json:"transactions"`
	ExpenseRecords int          `json:"expense_records"`
	RevenuePerDay  float64      `json:"revenue_per_day"`
	BurnRate       float64      `json:"burn_rate"`
	Runway         model.Runway `json:"runway"`
	RevenueGrowth  float64      `json:"revenue_growth"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Revenue        float64 `json:"revenue"`
	Expenses       float64 `json:"expenses"`
	NetProfit      float64 `json:"net_profit"`
	Transactions   int     `json:"transactions"`
	ExpenseRecords int     `json:"expense_records"`
}

func (d Delta) isZero() bool {
	return d.Revenue == 0 &&
		d.Expenses == 0 &&
		d.NetProfit == 0 &&
		d.Transactions == 0 &&
		d.ExpenseRecords == 0
}

// Event is emitted whenever the metrics snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DataDir         string    `json:"data_dir"`
	Days            int       `json:"days"`
	Source          string    `json:"source,omitempty"`
	Summary         Snapshot  `json:"summary"`
	ParseErrors     int       `json:"parse_errors"`
	FileErrors      int       `json:"file_errors"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	memo *pipeline.Memoizer
	now  func() time.Time

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	metrics     model.MetricsSnapshot
	data        *pipeline.LoadResult
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Loader == nil {
		cfg.Loader = DirLoader{DataDir: cfg.DataDir, UseCache: cfg.UseCache}
	}
	engine := cfg.Engine
	if engine == nil {
		engine = pipeline.DefaultEngine
	}

	return &Service{
		cfg:       cfg,
		memo:      &pipeline.Memoizer{Engine: engine, Cache: cfg.Cache},
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.PollOnce(ctx)

	scheduler := gocron.NewScheduler(time.Local)
	scheduler.SingletonModeAll()
	if _, err := scheduler.Every(s.cfg.Interval).WaitForSchedule().Do(func() { s.PollOnce(ctx) }); err != nil {
		_ = server.Close()
		return fmt.Errorf("schedule daemon poll: %w", err)
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	log.L.WithFields(log.Fields{
		"addr":     s.cfg.Addr,
		"interval": s.cfg.Interval.String(),
		"data_dir": s.cfg.DataDir,
	}).Info("daemon started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// window is the reporting range for polls, or nil for all history.
func (s *Service) window() *model.DateRange {
	return pipeline.LastDays(s.now(), s.cfg.Days)
}

// memoVersion scopes the dataset version by the source filter.
func (s *Service) memoVersion(version, src string) string {
	if version == "" || src == "" {
		return version
	}
	return version + "|source=" + src
}

// compute returns metrics for rng over the held dataset, memoized by version.
func (s *Service) compute(data *pipeline.LoadResult, rng *model.DateRange, src string) model.MetricsSnapshot {
	if data == nil {
		snap, _ := s.memo.ComputeWindow("", nil, nil, rng)
		return snap
	}
	txs := pipeline.FilterBySource(data.Transactions, src)
	snap, hit := s.memo.ComputeWindow(s.memoVersion(data.Version, src), txs, data.Expenses, rng)
	log.L.WithFields(log.Fields{"version": data.Version, "memo_hit": hit}).Debug("metrics computed")
	return snap
}

// PollOnce reloads the dataset, recomputes the snapshot and publishes an event
// when anything changed.
func (s *Service) PollOnce(ctx context.Context) {
	data, err := s.cfg.Loader.Load(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = s.now()
		s.pollCount++
		s.mu.Unlock()
		log.L.WithError(err).Error("daemon poll failed")
		return
	}

	now := s.now()
	metrics := s.compute(data, s.window(), s.cfg.Source)
	snap := snapshotFromMetrics(metrics, data.Version, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.metrics = metrics
	s.data = data
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventSnapshot,
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      EventDelta,
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFromMetrics(m model.MetricsSnapshot, version string, at time.Time) Snapshot {
	return Snapshot{
		At:             at,
		Version:        version,
		Revenue:        m.Financial.TotalRevenue,
		Expenses:       m.Financial.TotalExpenses,
		NetProfit:      m.Financial.NetProfit,
		ProfitMargin:   m.Financial.ProfitMargin,
		Transactions:   m.Revenue.TotalTransactions,
		ExpenseRecords: m.Costs.TotalExpenseRecords,
		RevenuePerDay:  m.KPIs.RevenuePerDay,
		BurnRate:       m.KPIs.BurnRate,
		Runway:         m.KPIs.Runway,
		RevenueGrowth:  m.Growth.RevenueGrowth.Rate,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Revenue:        curr.Revenue - prev.Revenue,
		Expenses:       curr.Expenses - prev.Expenses,
		NetProfit:      curr.NetProfit - prev.NetProfit,
		Transactions:   curr.Transactions - prev.Transactions,
		ExpenseRecords: curr.ExpenseRecords - prev.ExpenseRecords,
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

	st := Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DataDir:         s.cfg.DataDir,
		Days:            s.cfg.Days,
		Source:          s.cfg.Source,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if s.data != nil {
		st.ParseErrors = s.data.ParseErrors
		st.FileErrors = s.data.FileErrors
	}
	return st
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
