package services

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_RunsLastTriggerOnce(t *testing.T) {
	d := NewDebouncer(testDebounce)
	var runs, last atomic.Int32

	for i := int32(1); i <= 5; i++ {
		d.Trigger(func() {
			runs.Add(1)
			last.Store(i)
		})
	}
	assert.True(t, d.Pending())

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(3 * testDebounce)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, int32(5), last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(testDebounce)
	var runs atomic.Int32

	d.Trigger(func() { runs.Add(1) })
	d.Cancel()
	time.Sleep(3 * testDebounce)

	assert.Zero(t, runs.Load())
	assert.False(t, d.Pending())
}
