package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/metrics"
)

// Runner is one feed processing pass.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler triggers the feed processor on a fixed interval. Passes are
// serialized in-process: a tick arriving while a pass is still in flight
// waits on the pass mutex rather than overlapping it.
type Scheduler struct {
	cron            *cron.Cron
	entryID         cron.EntryID
	intervalMinutes int
	runner          Runner
	metrics         *metrics.Metrics
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	passMu          sync.Mutex
	isRunning       bool
	mu              sync.RWMutex
}

// New creates a new scheduler
func New(intervalMinutes int, runner Runner, m *metrics.Metrics) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:            cron.New(cron.WithSeconds()),
		intervalMinutes: intervalMinutes,
		runner:          runner,
		metrics:         m,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}

	schedule := fmt.Sprintf("0 */%d * * * *", s.intervalMinutes)

	entryID, err := s.cron.AddFunc(schedule, s.runPass)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started with interval: %d minutes", s.intervalMinutes)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.cancel()
	s.cron.Remove(s.entryID)

	ctx := s.cron.Stop()

	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}

	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// RunOnce runs a single processing pass (for manual triggering)
func (s *Scheduler) RunOnce() error {
	logrus.Info("Running feed processing pass once")
	return s.pass()
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}

	entry := s.cron.Entry(s.entryID)
	return entry.Next
}

// GetLastRun returns the time of the last run
func (s *Scheduler) GetLastRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}

	entry := s.cron.Entry(s.entryID)
	return entry.Prev
}

// Wait waits for any in-flight pass to finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// runPass is the cron entry point; pass errors are logged, not propagated,
// since the next tick is the retry mechanism.
func (s *Scheduler) runPass() {
	if err := s.pass(); err != nil {
		logrus.Errorf("Feed processing pass failed: %v", err)
	}
}

func (s *Scheduler) pass() error {
	s.wg.Add(1)
	defer s.wg.Done()

	s.passMu.Lock()
	defer s.passMu.Unlock()

	if s.ctx.Err() != nil {
		logrus.Info("Scheduler shutting down, skipping pass")
		return nil
	}

	logrus.Info("Starting feed processing pass")
	startTime := time.Now()

	s.metrics.PassCount.Inc()
	err := s.runner.Run(s.ctx)

	duration := time.Since(startTime)
	s.metrics.PassDuration.Observe(duration.Seconds())
	logrus.Infof("Feed processing pass completed in %v", duration)

	return err
}
