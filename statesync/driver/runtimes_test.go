// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainflow/chainflowgo/database/memdb"
	"github.com/chainflow/chainflowgo/statesync/metadata"
	"github.com/chainflow/chainflowgo/utils/logging"
	"github.com/chainflow/chainflowgo/utils/worker"
)

func newTestRuntimes(t *testing.T, config Config, store metadata.Store) *Runtimes {
	f := newTestFactory(t, config, store)

	dataClient, err := worker.NewPool("data-client", 1)
	require.NoError(t, err)
	storageService, err := worker.NewPool("storage-service", 1)
	require.NoError(t, err)
	streamingService, err := worker.NewPool("streaming-service", 1)
	require.NoError(t, err)

	return NewRuntimes(logging.NoLog{}, f, dataClient, storageService, streamingService)
}

func TestRuntimesBlockUntilCompleted(t *testing.T) {
	require := require.New(t)

	store := metadata.New(memdb.New())
	runtimes := newTestRuntimes(t, DefaultConfig(), store)
	defer runtimes.Shutdown()

	require.NoError(runtimes.BlockUntilCompleted())

	// A second call observes the already-settled driver.
	require.NoError(runtimes.BlockUntilCompleted())
}

func TestRuntimesBlockUntilCompletedOnDedicatedRuntime(t *testing.T) {
	require := require.New(t)

	config := DefaultConfig()
	config.DedicatedRuntime = true

	store := metadata.New(memdb.New())
	runtimes := newTestRuntimes(t, config, store)
	defer runtimes.Shutdown()

	require.NoError(runtimes.BlockUntilCompleted())
}

func TestRuntimesBlockUntilCompletedAfterShutdown(t *testing.T) {
	require := require.New(t)

	store := metadata.New(memdb.New())
	config := DefaultConfig()
	config.WaypointVersion = 1000

	runtimes := newTestRuntimes(t, config, store)
	runtimes.Shutdown()

	err := runtimes.BlockUntilCompleted()
	require.ErrorIs(err, ErrChannelClosed)
	require.ErrorContains(err, "state sync initialization failed")
}

func TestRuntimesShutdownStopsPools(t *testing.T) {
	require := require.New(t)

	store := metadata.New(memdb.New())
	runtimes := newTestRuntimes(t, DefaultConfig(), store)

	runtimes.Shutdown()

	// The owned pools no longer accept work.
	executed := make(chan struct{})
	runtimes.dataClient.Send(func() {
		close(executed)
	})
	select {
	case <-executed:
		require.FailNow("pool accepted work after shutdown")
	default:
	}
}
