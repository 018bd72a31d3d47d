package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPurger struct {
	calls   atomic.Int32
	lastAge atomic.Int32
	err     error
}

func (p *countingPurger) PurgeOldRejected(_ context.Context, maxAgeDays int) (int, error) {
	p.calls.Add(1)
	p.lastAge.Store(int32(maxAgeDays))
	return 1, p.err
}

func TestRetention_RunsImmediatelyAndThenOnInterval(t *testing.T) {
	p := &countingPurger{}
	job := NewRetention(p, 10*time.Millisecond, 30, nil)

	job.Start(context.Background())
	job.Start(context.Background())

	require.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	job.Stop()

	after := p.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, p.calls.Load(), "no runs after Stop")
	assert.Equal(t, int32(30), p.lastAge.Load())
}

func TestRetention_FirstRunHappensBeforeFirstTick(t *testing.T) {
	p := &countingPurger{}
	job := NewRetention(p, time.Hour, 7, nil)

	job.Start(context.Background())
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	job.Stop()
}

func TestRetention_ErrorsDoNotStopTheLoop(t *testing.T) {
	p := &countingPurger{err: errors.New("store down")}
	job := NewRetention(p, 5*time.Millisecond, 30, nil)

	job.Start(context.Background())
	require.Eventually(t, func() bool { return p.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	job.Stop()
	job.Stop()
}
