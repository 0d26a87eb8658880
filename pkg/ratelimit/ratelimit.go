package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Pacer enforces a fixed delay between sequential operations, with optional
// jitter. It is used to space out page fetches so the remote service's
// implicit rate limits are respected. Safe for concurrent use, though the
// collector only ever calls it from a single goroutine.
type Pacer struct {
	delay  time.Duration
	jitter float64 // 0.0 to 1.0, fraction of delay
}

// NewPacer creates a pacer with the given base delay. Jitter is clamped to
// [0, 1]; the effective wait is delay +/- (jitter * delay). A delay <= 0
// produces a pacer that never blocks.
func NewPacer(delay time.Duration, jitter float64) *Pacer {
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}
	return &Pacer{delay: delay, jitter: jitter}
}

// Wait blocks for the configured delay (with jitter applied), or until the
// context is canceled.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}

	d := p.delay
	if p.jitter > 0 {
		// Random factor in [-1, 1], scaled by the jitter fraction.
		factor := (rand.Float64() * 2) - 1.0
		d += time.Duration(float64(p.delay) * p.jitter * factor)
		if d < 0 {
			d = 0
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Delay reports the configured base delay.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}
