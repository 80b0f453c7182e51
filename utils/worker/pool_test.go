// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPoolRejectsZeroWorkers(t *testing.T) {
	require := require.New(t)

	_, err := NewPool("bad", 0)
	require.ErrorIs(err, ErrNoWorkers)
}

func TestPoolExecutesRequests(t *testing.T) {
	require := require.New(t)

	p, err := NewPool("test", 4)
	require.NoError(err)
	require.Equal("test", p.Name())

	p.Start()
	defer p.Shutdown()

	const requests = 64

	var (
		lock  sync.Mutex
		count int
		wg    sync.WaitGroup
	)
	wg.Add(requests)
	for i := 0; i < requests; i++ {
		p.Send(func() {
			lock.Lock()
			count++
			lock.Unlock()
			wg.Done()
		})
	}
	wg.Wait()

	require.Equal(requests, count)
}

func TestPoolSendBeforeStartIsNoOp(t *testing.T) {
	p, err := NewPool("idle", 1)
	require.NoError(t, err)

	// Must not block or panic.
	p.Send(func() {})
	p.Shutdown()
}

func TestPoolStartAfterShutdownIsNoOp(t *testing.T) {
	require := require.New(t)

	p, err := NewPool("late", 1)
	require.NoError(err)

	p.Start()
	p.Shutdown()
	p.Start()

	// The context stays stopped: the task is dropped, not executed.
	executed := make(chan struct{}, 1)
	p.Send(func() { executed <- struct{}{} })
	p.Shutdown()
	select {
	case <-executed:
		require.FailNow("task ran on a stopped context")
	default:
	}
}

func TestPoolShutdownIsIdempotent(t *testing.T) {
	p, err := NewPool("twice", 2)
	require.NoError(t, err)

	p.Start()
	p.Shutdown()
	p.Shutdown()

	// Send after shutdown must not block.
	p.Send(func() {})
}
