package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket sized for an hourly completion budget.
type RateLimiter struct {
	mu sync.Mutex

	capacity   float64 // max tokens
	refillRate float64 // tokens per second
	interval   time.Duration

	tokens    float64
	lastTime  time.Time
	waitCount int

	now func() time.Time
}

// NewRateLimiter creates a limiter allowing perHour completions, with a
// burst of a tenth of that (at least one).
func NewRateLimiter(perHour int) *RateLimiter {
	if perHour <= 0 {
		perHour = 100
	}

	capacity := float64(perHour) / 10
	if capacity < 1 {
		capacity = 1
	}

	return &RateLimiter{
		capacity:   capacity,
		refillRate: float64(perHour) / 3600.0,
		interval:   100 * time.Millisecond,
		tokens:     capacity,
		lastTime:   time.Now(),
		now:        time.Now,
	}
}

// Allow takes a token if one is available right now.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refill()

		if rl.tokens >= 1 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}

		deficit := 1 - rl.tokens
		wait := time.Duration(deficit / rl.refillRate * float64(time.Second))
		if wait < rl.interval {
			wait = rl.interval
		}
		rl.waitCount++
		rl.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (rl *RateLimiter) refill() {
	now := rl.now()
	elapsed := now.Sub(rl.lastTime).Seconds()
	if elapsed <= 0 {
		return
	}
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}
	rl.lastTime = now
}

// Tokens returns the tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

// Waits returns how many times a caller had to wait for a token.
func (rl *RateLimiter) Waits() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.waitCount
}

// RateLimited wraps c so every completion first waits for a token from rl.
// A nil limiter returns c unchanged.
func RateLimited(c Completer, rl *RateLimiter) Completer {
	if rl == nil {
		return c
	}
	return CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		if err := rl.Wait(ctx); err != nil {
			return "", err
		}
		return c.Complete(ctx, system, user)
	})
}
