package inventory

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs atomic.Int32
	d := NewDebouncer(time.Hour, func() { runs.Add(1) })
	for i := 0; i < 10; i++ {
		d.Trigger()
	}
	assert.True(t, d.Pending())

	d.Flush()
	assert.Equal(t, int32(1), runs.Load())
	assert.False(t, d.Pending())

	d.Flush()
	assert.Equal(t, int32(1), runs.Load())
	d.Stop()
}

func TestDebouncerFiresAfterQuietPeriod(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs atomic.Int32
	d := NewDebouncer(5*time.Millisecond, func() { runs.Add(1) })
	d.Trigger()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
	d.Stop()
}

func TestDebouncerStopDropsPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs atomic.Int32
	d := NewDebouncer(time.Hour, func() { runs.Add(1) })
	d.Trigger()
	d.Stop()
	d.Trigger()
	d.Flush()

	assert.Equal(t, int32(0), runs.Load())
	assert.False(t, d.Pending())
}
