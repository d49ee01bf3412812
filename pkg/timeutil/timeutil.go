package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// ComputeJitter returns a random duration in [0, max). Non-positive max yields 0.
func ComputeJitter(max time.Duration, rng *rand.Rand) time.Duration {
	if max <= 0 || rng == nil {
		return 0
	}
	return time.Duration(rng.Int63n(int64(max)))
}

// ExponentialBackoffDelay returns the delay before retry number backoffCount
// (1-based): initial * multiplier^(count-1), capped at the max duration,
// plus up to jitter of random noise.
func ExponentialBackoffDelay(
	backoffCount int,
	jitter time.Duration,
	rng *rand.Rand,
	backoffParam BackoffParam,
) time.Duration {
	if backoffCount < 1 {
		backoffCount = 1
	}

	delay := float64(backoffParam.InitialDuration()) *
		math.Pow(backoffParam.Multiplier(), float64(backoffCount-1))

	maxDuration := backoffParam.MaxDuration()
	if maxDuration > 0 && (delay > float64(maxDuration) || math.IsInf(delay, 1)) {
		delay = float64(maxDuration)
	}
	if delay < 0 || math.IsNaN(delay) {
		delay = 0
	}

	return time.Duration(delay) + ComputeJitter(jitter, rng)
}
