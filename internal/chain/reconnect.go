package chain

import (
	"math/rand"
	"time"
)

// DefaultReconnectDelay is the wait between a disconnect and the next connect
// attempt.
const DefaultReconnectDelay = 5 * time.Second

// ReconnectPolicy decides how long a Supervisor waits before the next connect
// attempt. attempt is 1 for the first reconnect after a successful
// subscription and grows until the next one succeeds.
type ReconnectPolicy interface {
	Delay(attempt int) time.Duration
}

// FixedDelay waits the same duration before every attempt and retries forever.
type FixedDelay time.Duration

func (f FixedDelay) Delay(int) time.Duration {
	return time.Duration(f)
}

// ExponentialBackoff multiplies the delay by Factor per attempt up to Max, with
// an optional Jitter fraction (0-1).
type ExponentialBackoff struct {
	Min    time.Duration
	Max    time.Duration
	Factor float64
	Jitter float64
}

func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	min := b.Min
	if min <= 0 {
		min = DefaultReconnectDelay
	}
	max := b.Max
	if max < min {
		max = min
	}
	factor := b.Factor
	if factor <= 1 {
		factor = 2
	}

	wait := min
	for i := 1; i < attempt; i++ {
		next := time.Duration(float64(wait) * factor)
		if next >= max {
			wait = max
			break
		}
		wait = next
	}

	if b.Jitter <= 0 {
		return wait
	}
	jitter := b.Jitter
	if jitter > 1 {
		jitter = 1
	}
	delta := float64(wait) * jitter
	return wait - time.Duration(delta) + time.Duration(rand.Float64()*2*delta)
}
