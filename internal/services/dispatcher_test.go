package services

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherRunsQueuedTasks(t *testing.T) {
	d := NewDispatcher(2, 16)

	var ran int32
	for i := 0; i < 10; i++ {
		ok := d.Enqueue(func(ctx context.Context) {
			atomic.AddInt32(&ran, 1)
		})
		assert.True(t, ok)
	}

	d.Stop()
	assert.Equal(t, int32(10), atomic.LoadInt32(&ran))
}

func TestDispatcherRejectsAfterStop(t *testing.T) {
	d := NewDispatcher(1, 4)
	d.Stop()

	ok := d.Enqueue(func(ctx context.Context) {})
	assert.False(t, ok)
}

func TestDispatcherStopIsIdempotent(t *testing.T) {
	d := NewDispatcher(1, 4)
	d.Stop()
	d.Stop()
}
