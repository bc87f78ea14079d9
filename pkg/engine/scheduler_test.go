package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerSchedulerFires(t *testing.T) {
	s := NewTimerScheduler()
	done := make(chan struct{})

	s.Schedule(5*time.Millisecond, func() { close(done) })
	assert.True(t, s.Pending())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduled task never fired")
	}
	assert.False(t, s.Pending())
}

func TestTimerSchedulerCancel(t *testing.T) {
	s := NewTimerScheduler()
	var fired atomic.Int32

	s.Schedule(10*time.Millisecond, func() { fired.Add(1) })
	s.Cancel()
	assert.False(t, s.Pending())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestTimerSchedulerReplacePending(t *testing.T) {
	s := NewTimerScheduler()
	var first, second atomic.Int32

	s.Schedule(10*time.Millisecond, func() { first.Add(1) })
	s.Schedule(10*time.Millisecond, func() { second.Add(1) })

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load(), "replaced task must not fire")
	assert.Equal(t, int32(1), second.Load())
}

func TestTimerSchedulerCancelWithoutPending(t *testing.T) {
	s := NewTimerScheduler()
	s.Cancel()
	s.Cancel()
	assert.False(t, s.Pending())
}

func TestTimerSchedulerReschedulesFromTask(t *testing.T) {
	s := NewTimerScheduler()
	done := make(chan struct{})
	var count atomic.Int32

	var hop func()
	hop = func() {
		if count.Add(1) == 3 {
			close(done)
			return
		}
		s.Schedule(time.Millisecond, hop)
	}
	s.Schedule(time.Millisecond, hop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("chained scheduling stalled after %d hops", count.Load())
	}
}
