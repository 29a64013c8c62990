package accrual

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPool struct {
	calls int32
	block chan struct{}
	err   error
}

func (p *countingPool) AccrueAll(ctx context.Context) error {
	atomic.AddInt32(&p.calls, 1)
	if p.block != nil {
		<-p.block
	}
	return p.err
}

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New(&countingPool{}, "every now and then")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	p := &countingPool{err: errors.New("db down")}
	w, err := New(p, "")
	require.NoError(t, err)

	w.Run()
	w.Run()
	assert.Equal(t, int32(2), atomic.LoadInt32(&p.calls))
}

func TestRunSkipsOverlappingTicks(t *testing.T) {
	p := &countingPool{block: make(chan struct{})}
	w, err := New(p, "")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		w.Run()
		close(done)
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&p.calls) == 1
	}, time.Second, time.Millisecond)

	w.Run()
	close(p.block)
	<-done

	assert.Equal(t, int32(1), atomic.LoadInt32(&p.calls))
}

func TestServe(t *testing.T) {
	p := &countingPool{}
	w, err := New(p, "@every 1s")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, w.Serve(ctx))
}
