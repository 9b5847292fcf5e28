package providers

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultQuota  = 10
	defaultWindow = time.Minute
)

// WindowLimiter releases at most limit calls in any rolling window.
// Callers over the quota block until the oldest call ages out of the window;
// nothing is dropped.
type WindowLimiter struct {
	limit  int
	window time.Duration
	logger *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu   sync.Mutex
	sent []time.Time
}

// NewWindowLimiter returns a limiter for limit calls per window. Non-positive
// values fall back to 10 calls per minute.
func NewWindowLimiter(limit int, window time.Duration, logger *slog.Logger) *WindowLimiter {
	if limit <= 0 {
		limit = defaultQuota
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &WindowLimiter{
		limit:  limit,
		window: window,
		logger: logger,
		now:    time.Now,
		sleep:  sleepCtx,
		sent:   make([]time.Time, 0, limit),
	}
}

// Wait blocks until a call may be issued. It only fails when ctx is done.
func (l *WindowLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		wait, ok := l.reserve()
		if ok {
			return nil
		}
		logUpstream(ctx, l.logger, slog.LevelInfo, "throttle", "request quota reached, waiting",
			slog.Int("limit", l.limit),
			slog.Int64("wait_ms", wait.Milliseconds()),
		)
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Remaining reports how many calls could be issued right now without waiting.
func (l *WindowLimiter) Remaining() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return l.limit - len(l.sent)
}

func (l *WindowLimiter) reserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)
	if len(l.sent) < l.limit {
		l.sent = append(l.sent, now)
		return 0, true
	}
	wait := l.sent[0].Add(l.window).Sub(now)
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait, false
}

// prune drops timestamps that have left the window. Caller holds mu.
func (l *WindowLimiter) prune(now time.Time) {
	cut := 0
	for cut < len(l.sent) && now.Sub(l.sent[cut]) >= l.window {
		cut++
	}
	if cut > 0 {
		l.sent = append(l.sent[:0], l.sent[cut:]...)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
