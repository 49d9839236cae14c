package llm

import (
	"context"
	"log"
	"sync"
	"time"
)

// Rate limiter modes.
const (
	RateModeWait = "wait"
	RateModeSkip = "skip"
)

// Limiter grants request slots under a sliding-window per-minute budget
// shared by every caller in the process. A throttle response from the API
// puts the limiter into a cooldown that blocks new slots until it passes.
type Limiter struct {
	mu            sync.Mutex
	maxPerWindow  int
	window        time.Duration
	mode          string
	maxWait       time.Duration
	timestamps    []time.Time
	cooldownUntil time.Time

	// injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter builds a limiter admitting maxPerWindow requests per window.
// mode is RateModeWait (block until a slot frees, up to maxWait) or
// RateModeSkip (return ErrSkipped immediately when saturated).
func NewLimiter(maxPerWindow int, window time.Duration, mode string, maxWait time.Duration) *Limiter {
	if maxPerWindow < 1 {
		maxPerWindow = 1
	}
	if mode != RateModeSkip {
		mode = RateModeWait
	}
	return &Limiter{
		maxPerWindow: maxPerWindow,
		window:       window,
		mode:         mode,
		maxWait:      maxWait,
		now:          time.Now,
		sleep:        sleepCtx,
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

// Acquire blocks until a request slot is available and claims it. Returns
// ErrSkipped when the mode or the max-wait ceiling forbids waiting long
// enough, or the context error when ctx ends first.
func (l *Limiter) Acquire(ctx context.Context) error {
	waitLogged := false
	start := l.now()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		now := l.now()
		var waitFor time.Duration

		if now.Before(l.cooldownUntil) {
			waitFor = l.cooldownUntil.Sub(now)
		}
		l.prune(now)
		if len(l.timestamps) >= l.maxPerWindow {
			windowWait := l.window - now.Sub(l.timestamps[0]) + 50*time.Millisecond
			if windowWait > waitFor {
				waitFor = windowWait
			}
		}
		if waitFor <= 0 {
			l.timestamps = append(l.timestamps, now)
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		if l.mode == RateModeSkip {
			log.Printf("[llm] rate limit skip: rpm=%d wait=%s", l.maxPerWindow, waitFor)
			return ErrSkipped
		}
		if l.maxWait > 0 && l.now().Sub(start)+waitFor > l.maxWait {
			log.Printf("[llm] rate limit wait exceeds max_wait=%s (needed %s)", l.maxWait, waitFor)
			return ErrSkipped
		}
		if !waitLogged {
			log.Printf("[llm] rate limiter active: rpm=%d waiting=%s", l.maxPerWindow, waitFor)
			waitLogged = true
		}
		if waitFor < 50*time.Millisecond {
			waitFor = 50 * time.Millisecond
		}
		if err := l.sleep(ctx, waitFor); err != nil {
			return err
		}
	}
}

// Cooldown blocks slot grants for d from now. Extends but never shortens
// an active cooldown.
func (l *Limiter) Cooldown(d time.Duration) {
	if d < time.Second {
		d = time.Second
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	until := l.now().Add(d)
	if until.After(l.cooldownUntil) {
		l.cooldownUntil = until
	}
}

// prune drops timestamps older than the window. Callers hold the mutex.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	kept := l.timestamps[:0]
	for _, ts := range l.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.timestamps = kept
}
