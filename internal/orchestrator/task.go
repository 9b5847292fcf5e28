package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/logging"
	"github.com/preston-bernstein/football-data-service/internal/metrics"
)

// Status describes the recent health of one periodic task.
type Status struct {
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastAttempt         time.Time `json:"lastAttempt"`
	LastSuccess         time.Time `json:"lastSuccess"`
}

// IsReady reports whether the task has had a success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// cycleFunc runs one refresh and reports how many records it touched.
type cycleFunc func(ctx context.Context, stop <-chan struct{}) (int, error)

type task struct {
	name     string
	interval time.Duration
	run      cycleFunc
	logger   *slog.Logger
	metrics  *metrics.Recorder

	mu     sync.RWMutex
	status Status
}

// loop runs the task immediately and then on every tick until stop closes
// or ctx ends. A failing cycle never ends the loop.
func (t *task) loop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	logging.Info(t.logger, "sync task started", logging.FieldTask, t.name, logging.FieldDurationMS, t.interval.Milliseconds())
	t.cycle(ctx, stop)
	for {
		select {
		case <-ctx.Done():
			logging.Info(t.logger, "sync task stopped", logging.FieldTask, t.name)
			return
		case <-stop:
			logging.Info(t.logger, "sync task stopped", logging.FieldTask, t.name)
			return
		case <-ticker.C:
			t.cycle(ctx, stop)
		}
	}
}

func (t *task) cycle(ctx context.Context, stop <-chan struct{}) {
	start := time.Now()
	t.recordAttempt(start)

	count, err := t.run(ctx, stop)
	elapsed := time.Since(start)
	t.metrics.RecordSyncCycle(t.name, elapsed, err)
	if err != nil {
		logging.Error(t.logger, "sync cycle failed", err, logging.FieldTask, t.name, logging.FieldDurationMS, elapsed.Milliseconds())
		t.recordFailure(err)
		return
	}
	t.recordSuccess(start)
	logging.Debug(t.logger, "sync cycle complete",
		logging.FieldTask, t.name,
		logging.FieldCount, count,
		logging.FieldDurationMS, elapsed.Milliseconds(),
	)
}

func (t *task) recordAttempt(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.LastAttempt = at
}

func (t *task) recordSuccess(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.ConsecutiveFailures = 0
	t.status.LastError = ""
	t.status.LastSuccess = at
}

func (t *task) recordFailure(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.ConsecutiveFailures++
	t.status.LastError = err.Error()
}

func (t *task) snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}
