package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a Limiter deterministically: sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) install(l *Limiter) {
	l.now = func() time.Time { return c.now }
	l.sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.now = c.now.Add(d)
		return nil
	}
}

func TestLimiterAdmitsUpToWindowBudget(t *testing.T) {
	clock := newFakeClock()
	lim := NewLimiter(5, time.Minute, RateModeSkip, 0)
	clock.install(lim)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, lim.Acquire(ctx))
		clock.now = clock.now.Add(time.Second)
	}

	err := lim.Acquire(ctx)
	assert.ErrorIs(t, err, ErrSkipped)
}

func TestLimiterWindowSlides(t *testing.T) {
	clock := newFakeClock()
	lim := NewLimiter(2, time.Minute, RateModeSkip, 0)
	clock.install(lim)

	ctx := context.Background()
	require.NoError(t, lim.Acquire(ctx))
	require.NoError(t, lim.Acquire(ctx))
	assert.ErrorIs(t, lim.Acquire(ctx), ErrSkipped)

	// first slot falls out of the window
	clock.now = clock.now.Add(61 * time.Second)
	assert.NoError(t, lim.Acquire(ctx))
}

func TestLimiterWaitModeBlocksThenAdmits(t *testing.T) {
	clock := newFakeClock()
	lim := NewLimiter(1, time.Minute, RateModeWait, 3*time.Minute)
	clock.install(lim)

	ctx := context.Background()
	require.NoError(t, lim.Acquire(ctx))

	before := clock.now
	require.NoError(t, lim.Acquire(ctx))
	assert.GreaterOrEqual(t, clock.now.Sub(before), time.Minute)
}

func TestLimiterWaitModeHonorsMaxWait(t *testing.T) {
	clock := newFakeClock()
	lim := NewLimiter(1, 10*time.Minute, RateModeWait, 30*time.Second)
	clock.install(lim)

	ctx := context.Background()
	require.NoError(t, lim.Acquire(ctx))

	err := lim.Acquire(ctx)
	assert.ErrorIs(t, err, ErrSkipped)
}

func TestLimiterCooldownBlocksSlots(t *testing.T) {
	clock := newFakeClock()
	lim := NewLimiter(5, time.Minute, RateModeSkip, 0)
	clock.install(lim)

	ctx := context.Background()
	lim.Cooldown(65 * time.Second)
	assert.ErrorIs(t, lim.Acquire(ctx), ErrSkipped)

	clock.now = clock.now.Add(66 * time.Second)
	assert.NoError(t, lim.Acquire(ctx))
}

func TestLimiterCooldownNeverShortens(t *testing.T) {
	clock := newFakeClock()
	lim := NewLimiter(5, time.Minute, RateModeSkip, 0)
	clock.install(lim)

	lim.Cooldown(2 * time.Minute)
	lim.Cooldown(10 * time.Second)

	clock.now = clock.now.Add(30 * time.Second)
	assert.ErrorIs(t, lim.Acquire(context.Background()), ErrSkipped)
}

func TestLimiterContextCancelled(t *testing.T) {
	clock := newFakeClock()
	lim := NewLimiter(1, time.Minute, RateModeWait, 3*time.Minute)
	clock.install(lim)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, lim.Acquire(ctx))

	cancel()
	assert.ErrorIs(t, lim.Acquire(ctx), context.Canceled)
}
