package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"clipper/internal/config"
	"clipper/internal/logging"
	"clipper/internal/staging"
)

const instanceLockName = "clipper-serve.lock"

// Pruner removes history rows older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Server is the HTTP front end the daemon runs.
type Server interface {
	Start(ctx context.Context) error
	Stop()
}

// PruneResult summarizes one maintenance pass.
type PruneResult struct {
	Runs          int64
	Logs          int
	Intermediates int
}

// Daemon coordinates the API server and maintenance schedule and enforces
// single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	history Pruner
	server  Server

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	cron    *cron.Cron
	running atomic.Bool
	now     func() time.Time
}

// New constructs a daemon. history may be nil when run history is disabled.
func New(cfg *config.Config, server Server, history Pruner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || server == nil {
		return nil, errors.New("daemon requires config and server")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.DataDir, instanceLockName)
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		history:  history,
		server:   server,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		now:      time.Now,
	}, nil
}

// Start acquires the instance lock, starts the API, and schedules
// maintenance.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipper server is already running against this data directory")
	}

	schedule := d.cfg.Maintenance.PruneSchedule
	c := cron.New()
	if schedule != "" {
		if _, err := c.AddFunc(schedule, func() { d.Prune(ctx) }); err != nil {
			_ = d.lock.Unlock()
			return fmt.Errorf("schedule maintenance %q: %w", schedule, err)
		}
	}
	if err := d.server.Start(ctx); err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("start api: %w", err)
	}
	c.Start()

	d.mu.Lock()
	d.cron = c
	d.mu.Unlock()
	d.running.Store(true)
	d.logger.Info("clipper server started",
		logging.String("lock", d.lockPath),
		logging.String("prune_schedule", schedule),
		logging.String(logging.FieldEventType, "daemon_started"),
	)
	return nil
}

// Stop halts the schedule and the API and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Swap(false) {
		return
	}
	d.mu.Lock()
	c := d.cron
	d.cron = nil
	d.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
	d.server.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.logger.Info("clipper server stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Running reports whether Start has succeeded and Stop has not been called.
func (d *Daemon) Running() bool { return d.running.Load() }

// Prune removes history rows, log files, and stale intermediates past their
// retention windows.
// Failures are logged; the schedule keeps running.
func (d *Daemon) Prune(ctx context.Context) PruneResult {
	var result PruneResult
	if days := d.cfg.Maintenance.HistoryRetentionDays; days > 0 && d.history != nil {
		cutoff := d.now().AddDate(0, 0, -days)
		removed, err := d.history.Prune(ctx, cutoff)
		if err != nil {
			logging.WarnWithContext(d.logger, "history prune failed", "history_prune_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check history.db permissions"),
			)
		}
		result.Runs = removed
	}
	result.Logs = logging.Retain(d.logger, d.cfg.Paths.LogDir, d.cfg.Logging.RetentionDays)
	swept := staging.CleanStale(ctx,
		[]string{d.cfg.VODsDir(), d.cfg.HighlightsDir()},
		time.Duration(d.cfg.Maintenance.VODRetentionDays)*24*time.Hour,
		d.logger,
	)
	result.Intermediates = len(swept.Removed)
	d.logger.Info("maintenance pass complete",
		logging.Int64("runs_pruned", result.Runs),
		logging.Int("logs_pruned", result.Logs),
		logging.Int("intermediates_pruned", result.Intermediates),
		logging.Int64("bytes_reclaimed", swept.Bytes),
		logging.String(logging.FieldEventType, "maintenance_complete"),
	)
	return result
}
