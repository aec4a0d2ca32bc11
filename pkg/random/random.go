package random

import (
	"math"
	"math/rand"
	"time"
)

// Randomize applies ±percent randomization to value
// Example: Randomize(100, 10) returns value in range [90, 110]
func Randomize(value float64, percent float64) float64 {
	if percent <= 0 {
		return value
	}

	variance := value * (percent / 100.0)
	offset := (rand.Float64()*2 - 1) * variance

	return value + offset
}

// Jitter applies ±percent randomization to a duration
func Jitter(d time.Duration, percent float64) time.Duration {
	return time.Duration(math.Round(Randomize(float64(d), percent)))
}

// Backoff returns the delay before retry number attempt (1-based):
// base doubled per previous attempt, capped at max, with ±percent jitter
func Backoff(attempt int, base, max time.Duration, percent float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := base
	for i := 1; i < attempt && delay < max; i++ {
		delay *= 2
	}
	if max > 0 && delay > max {
		delay = max
	}

	return Jitter(delay, percent)
}
