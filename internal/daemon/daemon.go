package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/username/holiday-density/internal/density"
	"github.com/username/holiday-density/internal/manager"
)

// ErrRefreshRunning is returned when a refresh is requested while another one is in progress
var ErrRefreshRunning = errors.New("refresh already in progress")

// Computer computes a report for a range and country selection
type Computer interface {
	Compute(ctx context.Context, rng density.Range, countries []string) (*manager.Report, error)
}

// Saver persists a computed report
type Saver interface {
	Save(report *manager.Report) error
}

// Selection is the range and countries the daemon keeps fresh.
// An empty Range follows the current calendar or school year.
type Selection struct {
	Range     string
	Countries []string
}

// Daemon recomputes the selection at a fixed interval and writes the snapshot
type Daemon struct {
	computer  Computer
	saver     Saver
	selection Selection
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu          sync.Mutex // protects the fields below
	running     bool
	lastRunTime time.Time
	lastErr     error
}

// NewDaemon creates a new daemon instance
func NewDaemon(computer Computer, saver Saver, selection Selection, interval time.Duration, logger *zap.Logger) *Daemon {
	return &Daemon{
		computer:  computer,
		saver:     saver,
		selection: selection,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Start refreshes immediately and then on every tick until ctx is done or SIGINT/SIGTERM arrives
func (d *Daemon) Start(ctx context.Context) error {
	if d.interval <= 0 {
		return fmt.Errorf("invalid refresh interval: %s", d.interval)
	}
	if _, err := d.rangeAt(d.now()); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.logger.Info("Daemon started",
		zap.Duration("interval", d.interval),
		zap.String("range", d.selection.Range),
		zap.Strings("countries", d.selection.Countries))

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var wg sync.WaitGroup
	defer wg.Wait()

	run := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.runRefresh(ctx)
		}()
	}

	// Run initial refresh immediately
	run()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Daemon stopped")
			return nil

		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			cancel()
			return nil

		case <-ticker.C:
			run()
		}
	}
}

// runRefresh logs the outcome of a tick; overlapping ticks are skipped
func (d *Daemon) runRefresh(ctx context.Context) {
	err := d.Refresh(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrRefreshRunning):
		d.logger.Warn("Refresh already running, skipping tick")
	case ctx.Err() != nil:
		d.logger.Info("Refresh cancelled", zap.Error(err))
	default:
		d.logger.Error("Refresh failed", zap.Error(err))
	}
}

// Refresh computes the selection once and saves the snapshot
func (d *Daemon) Refresh(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrRefreshRunning
	}
	d.running = true
	d.mu.Unlock()

	err := d.refresh(ctx)

	d.mu.Lock()
	d.running = false
	d.lastErr = err
	if err == nil {
		d.lastRunTime = d.now()
	}
	d.mu.Unlock()

	return err
}

func (d *Daemon) refresh(ctx context.Context) error {
	rng, err := d.rangeAt(d.now())
	if err != nil {
		return err
	}

	d.logger.Info("Refreshing holiday density",
		zap.String("range", rng.String()),
		zap.Strings("countries", d.selection.Countries))

	report, err := d.computer.Compute(ctx, rng, d.selection.Countries)
	if err != nil {
		return fmt.Errorf("failed to compute report: %w", err)
	}

	if err := d.saver.Save(report); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	d.logger.Info("Refresh completed",
		zap.String("range", rng.String()),
		zap.Int("days", len(report.Days)))

	return nil
}

// rangeAt resolves the configured range, following the current year when none is set
func (d *Daemon) rangeAt(now time.Time) (density.Range, error) {
	if d.selection.Range == "" {
		return density.DefaultRange(now), nil
	}
	return density.ParseRange(d.selection.Range)
}

// Status describes the last refresh
type Status struct {
	Running     bool
	LastRunTime time.Time
	LastError   error
	NextRun     time.Time
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := Status{
		Running:     d.running,
		LastRunTime: d.lastRunTime,
		LastError:   d.lastErr,
	}
	if !d.lastRunTime.IsZero() {
		status.NextRun = d.lastRunTime.Add(d.interval)
	}
	return status
}
