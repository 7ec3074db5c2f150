package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ragops/ragdoctor/pkg/diagnose"
	"ragops/ragdoctor/pkg/telemetry/health"
	"ragops/ragdoctor/pkg/telemetry/metrics"
)

// DefaultShutdownTimeout bounds the HTTP server's graceful shutdown.
const DefaultShutdownTimeout = 5 * time.Second

// reportRateLimit caps /report requests per second. Each one encodes the
// full latest run.
const reportRateLimit = 10

// Ticker runs one monitor iteration. *diagnose.Doctor implements it.
type Ticker interface {
	Tick(ctx context.Context) diagnose.Run
}

// Config configures a Monitor.
type Config struct {
	// Schedule is a cron expression or descriptor such as "@every 1m".
	Schedule string

	// ListenAddress serves /metrics, /health, /ready, /version and /report.
	ListenAddress string

	// ShutdownTimeout defaults to DefaultShutdownTimeout.
	ShutdownTimeout time.Duration

	// Build information for /version.
	Version   string
	Commit    string
	BuildTime string
}

// Monitor runs the doctor's tick on a schedule and serves the latest result.
type Monitor struct {
	cfg       Config
	ticker    Ticker
	collector *metrics.Collector
	checker   *health.Checker
	scheduler *Scheduler
	logger    *slog.Logger

	mu      sync.RWMutex
	latest  *diagnose.Run
	lastRun time.Time
}

// New creates a monitor. A nil collector gets a fresh one.
func New(cfg Config, ticker Ticker, collector *metrics.Collector) (*Monitor, error) {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if collector == nil {
		collector = metrics.NewCollector(metrics.Config{}, nil)
	}

	logger := slog.Default().With("component", "monitor")

	scheduler, err := NewScheduler(cfg.Schedule, logger)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		cfg:       cfg,
		ticker:    ticker,
		collector: collector,
		checker:   health.New(0),
		scheduler: scheduler,
		logger:    logger,
	}

	// Allow one missed tick before reporting the loop as stalled.
	staleAfter := 2*scheduler.Interval(time.Now()) + time.Minute
	m.checker.RegisterCheck("scheduler", health.Freshness(m.LastRun, staleAfter))

	return m, nil
}

// AddCheck registers an extra readiness check, such as the history store.
func (m *Monitor) AddCheck(name string, check health.CheckFunc) {
	m.checker.RegisterCheck(name, check)
}

// RunOnce performs one tick, publishes it to the metrics and keeps it as
// the latest report.
func (m *Monitor) RunOnce(ctx context.Context) diagnose.Run {
	run := m.ticker.Tick(ctx)

	diagnose.MetricsObserver{Collector: m.collector}.Observe(ctx, run)

	m.mu.Lock()
	m.latest = &run
	m.lastRun = run.StartedAt.Add(run.Duration)
	m.mu.Unlock()

	return run
}

// Latest returns the most recent run, if any.
func (m *Monitor) Latest() (diagnose.Run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.latest == nil {
		return diagnose.Run{}, false
	}
	return *m.latest, true
}

// LastRun returns when the latest run finished, or the zero time.
func (m *Monitor) LastRun() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lastRun
}

// NextRun returns the next scheduled tick once the monitor is started.
func (m *Monitor) NextRun() *time.Time {
	return m.scheduler.NextRun()
}

// Handler returns the monitor's HTTP routes.
func (m *Monitor) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", m.collector.Handler())
	health.Mount(r, m.checker, m.cfg.Version, m.cfg.Commit, m.cfg.BuildTime)
	r.Method(http.MethodGet, "/report", health.RateLimited(http.HandlerFunc(m.handleReport), reportRateLimit))

	return r
}

func (m *Monitor) handleReport(w http.ResponseWriter, r *http.Request) {
	run, ok := m.Latest()
	if !ok {
		http.Error(w, "no run yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(run)
}

// Start runs a first tick immediately, then serves HTTP and ticks on the
// schedule until ctx is done.
func (m *Monitor) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", m.cfg.ListenAddress, err)
	}
	return m.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (m *Monitor) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		m.logger.Info("monitor listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	m.RunOnce(ctx)

	if err := m.scheduler.Start(ctx, func(ctx context.Context) { m.RunOnce(ctx) }); err != nil {
		_ = srv.Close()
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		m.logger.Info("context cancelled, stopping monitor")
	case serveErr = <-errChan:
	}

	m.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), m.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		m.logger.Error("error during server shutdown", "error", err)
		if serveErr == nil {
			serveErr = fmt.Errorf("server shutdown error: %w", err)
		}
	}

	return serveErr
}
