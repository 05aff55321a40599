package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSubmit(t *testing.T) {
	p, err := NewPool("test", DefaultPool, &Config{
		Capacity:       4,
		ExpiryDuration: time.Second,
	})
	require.NoError(t, err)
	defer p.Release()

	var counter atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		err := p.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		})
		require.NoError(t, err)
	}

	wg.Wait()
	assert.Equal(t, int64(20), counter.Load())

	stats := p.Stats()
	assert.Equal(t, int64(20), stats.CompletedTasks)
	assert.Equal(t, int64(0), stats.FailedTasks)
}

func TestPoolSubmitAfterRelease(t *testing.T) {
	p, err := NewPool("closed", DefaultPool, nil)
	require.NoError(t, err)

	p.Release()

	err = p.Submit(func() {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPoolCapacityBound(t *testing.T) {
	p, err := NewPool("bounded", IngestPool, IngestPoolConfig())
	require.NoError(t, err)
	defer p.Release()

	assert.Equal(t, 8, p.Cap())
}
