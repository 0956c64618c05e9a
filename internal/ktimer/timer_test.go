package ktimer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerFiresPeriodically(t *testing.T) {
	var count atomic.Int32
	tm := New(10*time.Millisecond, func() { count.Add(1) })
	defer tm.Close()

	deadline := time.Now().Add(200 * time.Millisecond)
	for count.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	assert.GreaterOrEqual(t, count.Load(), int32(3))
}

func TestTimerDoesNotFireAfterClose(t *testing.T) {
	var count atomic.Int32
	tm := New(10*time.Millisecond, func() { count.Add(1) })
	time.Sleep(15 * time.Millisecond)
	tm.Close()

	after := count.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, count.Load(), "timer fired after Close")
}

func TestSetNextExecReschedules(t *testing.T) {
	var count atomic.Int32
	tm := New(time.Hour, func() { count.Add(1) })
	defer tm.Close()

	tm.SetNextExec(time.Now().Add(10 * time.Millisecond))

	deadline := time.Now().Add(200 * time.Millisecond)
	for count.Load() < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	assert.GreaterOrEqual(t, count.Load(), int32(1), "timer didn't fire after SetNextExec moved it earlier")
}
