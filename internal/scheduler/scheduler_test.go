package scheduler

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/metrics"
)

// dummyRunner implements Runner but does nothing
type dummyRunner struct {
	runs int
}

func (d *dummyRunner) Run(ctx context.Context) error {
	d.runs++
	return nil
}

func TestSchedulerRestart(t *testing.T) {
	m := metrics.NewMetricsWith(prometheus.NewRegistry())
	sched := New(60, &dummyRunner{}, m)

	if err := sched.Start(); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if !sched.IsRunning() {
		t.Fatalf("scheduler should be running after Start")
	}
	if err := sched.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if sched.IsRunning() {
		t.Fatalf("scheduler should not be running after Stop")
	}
	if err := sched.Start(); err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	if !sched.IsRunning() {
		t.Fatalf("scheduler should be running after second Start")
	}
	// context should be active
	if sched.ctx == nil || sched.ctx.Err() != nil {
		t.Fatalf("scheduler context should be active after restart")
	}
	sched.Stop()
}

func TestSchedulerDoubleStart(t *testing.T) {
	m := metrics.NewMetricsWith(prometheus.NewRegistry())
	sched := New(60, &dummyRunner{}, m)

	if err := sched.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := sched.Start(); err == nil {
		t.Fatalf("second Start should fail while running")
	}
	sched.Stop()
}

func TestRunOnce(t *testing.T) {
	m := metrics.NewMetricsWith(prometheus.NewRegistry())
	runner := &dummyRunner{}
	sched := New(60, runner, m)

	if err := sched.RunOnce(); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if runner.runs != 1 {
		t.Fatalf("expected 1 run, got %d", runner.runs)
	}
}
