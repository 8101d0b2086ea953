package worker

import (
	"math/rand/v2"
	"time"
)

type BackoffConfig struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the wait before the given attempt is retried: Base doubled per
// prior attempt, capped at Max, plus up to 10% jitter.
func (b BackoffConfig) Delay(attempts int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = time.Minute
	}
	maxDelay := b.Max
	if maxDelay <= 0 {
		maxDelay = 6 * time.Hour
	}
	if attempts < 1 {
		attempts = 1
	}

	delay := base
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxDelay {
			delay = maxDelay
			break
		}
	}

	jitter := time.Duration(rand.Int64N(int64(delay)/10 + 1))
	if delay+jitter > maxDelay {
		return maxDelay
	}
	return delay + jitter
}
