package timeutil

import "time"

// BackoffParam describes an exponential backoff: the first delay, the
// growth factor per retry and the ceiling. A zero ceiling means uncapped.
type BackoffParam struct {
	initialDuration time.Duration
	multiplier      float64
	maxDuration     time.Duration
}

func NewBackoffParam(
	initialDuration time.Duration,
	multiplier float64,
	maxDuration time.Duration,
) BackoffParam {
	return BackoffParam{
		initialDuration: initialDuration,
		multiplier:      multiplier,
		maxDuration:     maxDuration,
	}
}

func (b BackoffParam) InitialDuration() time.Duration { return b.initialDuration }
func (b BackoffParam) Multiplier() float64            { return b.multiplier }
func (b BackoffParam) MaxDuration() time.Duration     { return b.maxDuration }
