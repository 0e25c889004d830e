package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_InitialBurst(t *testing.T) {
	rl := NewRateLimiter(100) // burst of 10

	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow(), "request %d", i)
	}
	assert.False(t, rl.Allow(), "burst exhausted")
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(3600) // one token per second
	clock := time.Now()
	rl.now = func() time.Time { return clock }
	rl.lastTime = clock

	for rl.Allow() {
	}
	assert.Less(t, rl.Tokens(), 1.0)

	clock = clock.Add(2 * time.Second)
	assert.InDelta(t, 2.0, rl.Tokens(), 0.01)
}

func TestRateLimiter_Wait_ContextCancelled(t *testing.T) {
	rl := NewRateLimiter(1)
	require.True(t, rl.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, rl.Waits())
}

func TestRateLimited(t *testing.T) {
	calls := 0
	inner := CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		calls++
		return "ok", nil
	})

	rl := NewRateLimiter(1)
	c := RateLimited(inner, rl)

	out, err := c.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Complete(ctx, "s", "u")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "inner completer not called without a token")
}

func TestRateLimited_NilLimiter(t *testing.T) {
	inner := CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		return "direct", nil
	})

	out, err := RateLimited(inner, nil).Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "direct", out)
}
