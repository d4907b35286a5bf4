package webhook

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy computes the delay before a retry. Attempt starts at 1.
type BackoffStrategy interface {
	NextInterval(attempt int) time.Duration
}

// ExponentialBackoff grows the delay by Multiplier per attempt, capped at MaxInterval,
// with a random spread of ±JitterFactor.
type ExponentialBackoff struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	JitterFactor    float64
}

func (e ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := e.InitialInterval
	if initial == 0 {
		initial = time.Second
	}
	maxInterval := e.MaxInterval
	if maxInterval == 0 {
		maxInterval = 30 * time.Second
	}
	multiplier := e.Multiplier
	if multiplier == 0 {
		multiplier = 2
	}

	interval := float64(initial) * math.Pow(multiplier, float64(attempt-1))
	if e.JitterFactor > 0 {
		interval *= 1 + (rand.Float64()*2-1)*e.JitterFactor
	}
	if interval > float64(maxInterval) {
		interval = float64(maxInterval)
	}
	return time.Duration(interval)
}

// FixedBackoff waits the same Interval before every retry.
type FixedBackoff struct {
	Interval time.Duration
}

func (f FixedBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return f.Interval
}

// DefaultBackoffStrategy is a short exponential backoff sized for conversion
// webhooks sent while a visitor waits for checkout to open.
func DefaultBackoffStrategy() BackoffStrategy {
	return ExponentialBackoff{
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2,
		JitterFactor:    0.1,
	}
}
