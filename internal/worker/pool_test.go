package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_StopDrainsQueue(t *testing.T) {
	p := NewPool(4)

	var done atomic.Int64
	for i := 0; i < 100; i++ {
		p.Submit(func() { done.Add(1) })
	}
	p.Stop()

	assert.EqualValues(t, 100, done.Load())
}

func TestPool_ZeroWorkersClampedToOne(t *testing.T) {
	p := NewPool(0)

	var done atomic.Int64
	p.Submit(func() { done.Add(1) })
	p.Stop()

	assert.EqualValues(t, 1, done.Load())
}
