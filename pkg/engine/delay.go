package engine

import (
	"math/rand"
	"time"
)

// Jitter bounds for the per-character delay variation.
const (
	jitterMin  = 0.8
	jitterSpan = 0.4
)

// Delay derives the pause before the next character from a
// words-per-minute speed, assuming the conventional 5 characters per
// word. jitter is a multiplier, nominally in [0.8, 1.2), that keeps
// the pacing from looking mechanical.
//
// At 60 WPM the nominal delay is 200ms.
func Delay(wpm, jitter float64) time.Duration {
	charsPerSecond := (wpm * 5) / 60
	delayMs := 1000 / charsPerSecond
	return time.Duration(delayMs * jitter * float64(time.Millisecond))
}

// uniformJitter returns a jitter source drawing from [0.8, 1.2).
func uniformJitter(r *rand.Rand) func() float64 {
	return func() float64 {
		return jitterMin + jitterSpan*r.Float64()
	}
}
