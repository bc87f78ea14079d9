package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelayNominal(t *testing.T) {
	// 60 WPM = 300 chars/minute = 5 chars/second = 200ms per char.
	assert.Equal(t, 200*time.Millisecond, Delay(60, 1.0))
	assert.Equal(t, 100*time.Millisecond, Delay(120, 1.0))
	assert.Equal(t, 400*time.Millisecond, Delay(30, 1.0))
}

func TestDelayScalesInverselyWithSpeed(t *testing.T) {
	slow := Delay(40, 1.0)
	fast := Delay(80, 1.0)
	assert.Equal(t, slow, 2*fast)
}

func TestDelayJitterBounds(t *testing.T) {
	jitter := uniformJitter(rand.New(rand.NewSource(1)))

	lo := 160 * time.Millisecond
	hi := 240 * time.Millisecond
	var min, max time.Duration = hi, lo

	for i := 0; i < 10000; i++ {
		d := Delay(60, jitter())
		assert.GreaterOrEqual(t, d, lo)
		assert.Less(t, d, hi)
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}

	// The jitter should actually spread across the range.
	assert.Less(t, min, 180*time.Millisecond)
	assert.Greater(t, max, 220*time.Millisecond)
}
