package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"tagdock/internal/config"
	"tagdock/internal/deps"
	"tagdock/internal/intake"
	"tagdock/internal/logging"
	"tagdock/internal/records"
	"tagdock/internal/tags"
)

// Daemon owns the intake service lifecycle and enforces single-instance
// execution through a lock file.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *records.Store
	coordinator *intake.Coordinator
	generator   *tags.Generator

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	RecordsDBPath string
	LockFilePath  string
	Dependencies  []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *records.Store, coordinator *intake.Coordinator, generator *tags.Generator, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || coordinator == nil || generator == nil {
		return nil, errors.New("daemon requires config, store, coordinator, and generator")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "tagdockd.lock")
	d := &Daemon{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		coordinator: coordinator,
		generator:   generator,
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
	}

	server, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = server
	return d, nil
}

// Start acquires the daemon lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tagdock daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("tagdock daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("tagdock daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddr reports the bound API listener address, for tests and logs.
func (d *Daemon) APIAddr() string {
	if d.api == nil || d.api.listener == nil {
		return ""
	}
	return d.api.listener.Addr().String()
}

// Status summarizes the daemon's runtime state.
func (d *Daemon) Status() Status {
	return Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		RecordsDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
		Dependencies:  deps.CheckBinaries(deps.Required(d.cfg)),
	}
}
