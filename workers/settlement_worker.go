// Package workers runs the ledger's background jobs.
package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"typerbot/models"
	"typerbot/service"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// ErrSweepInProgress is returned when a sweep is requested while one runs
var ErrSweepInProgress = errors.New("settlement sweep already in progress")

// SweepRecorder receives the result of every sweep
type SweepRecorder interface {
	RecordSweep(result *models.SweepResult)
}

// SettlementWorker runs the settlement sweep on a fixed interval. At most one
// sweep runs at a time, whether scheduled or requested through Sweep.
type SettlementWorker struct {
	settlement service.SettlementService
	interval   time.Duration
	recorder   SweepRecorder

	running   sync.Mutex
	scheduler gocron.Scheduler
}

// NewSettlementWorker creates a worker; recorder may be nil
func NewSettlementWorker(settlement service.SettlementService, interval time.Duration, recorder SweepRecorder) *SettlementWorker {
	return &SettlementWorker{
		settlement: settlement,
		interval:   interval,
		recorder:   recorder,
	}
}

// Start schedules the sweep, first run immediately. The returned function
// stops the scheduler and waits for a running sweep to finish.
func (w *SettlementWorker) Start(ctx context.Context) (func(), error) {
	if w.interval <= 0 {
		return nil, fmt.Errorf("settlement interval must be positive, got %s", w.interval)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			w.runScheduled(ctx)
		}),
		gocron.WithName("settlement-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule settlement sweep: %w", err)
	}

	w.scheduler = scheduler
	scheduler.Start()
	log.WithField("interval", w.interval.String()).Info("Settlement worker started")

	return func() {
		log.Info("Settlement worker shutting down...")
		if err := scheduler.Shutdown(); err != nil {
			log.WithError(err).Warn("Settlement scheduler did not shut down cleanly")
		}
	}, nil
}

// Sweep runs one settlement pass now, unless one is already running
func (w *SettlementWorker) Sweep(ctx context.Context) (*models.SweepResult, error) {
	if !w.running.TryLock() {
		return nil, ErrSweepInProgress
	}
	defer w.running.Unlock()

	result, err := w.settlement.SettlePendingBets(ctx)
	if w.recorder != nil && result != nil {
		w.recorder.RecordSweep(result)
	}
	return result, err
}

func (w *SettlementWorker) runScheduled(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Settlement sweep panicked")
		}
	}()

	if ctx.Err() != nil {
		return
	}

	if _, err := w.Sweep(ctx); err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			log.Debug("Skipping scheduled sweep, another sweep is running")
			return
		}
		log.WithError(err).Error("Settlement sweep failed, retrying next tick")
	}
}
