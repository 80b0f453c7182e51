// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/chainflow/chainflowgo/database/memdb"
	"github.com/chainflow/chainflowgo/statesync/handlers"
	"github.com/chainflow/chainflowgo/statesync/metadata"
	"github.com/chainflow/chainflowgo/utils/logging"
)

type subscriptionRecorder struct {
	notified bool
	version  uint64
	err      error
}

func (s *subscriptionRecorder) NotifyInitialConfigs(syncedVersion uint64) error {
	if s.err != nil {
		return s.err
	}
	s.notified = true
	s.version = syncedVersion
	return nil
}

func newTestFactory(t *testing.T, config Config, store metadata.Store) *Factory {
	_, consensusHandler := handlers.NewConsensusNotificationPair()
	f, err := NewFactory(
		config,
		logging.NoLog{},
		prometheus.NewRegistry(),
		store,
		NewMetadataSynchronizer(store),
		&subscriptionRecorder{},
		handlers.NoOpMempoolNotifier{},
		consensusHandler,
	)
	require.NoError(t, err)
	return f
}

func TestFactoryAbortsOnSyncedVersionReadFailure(t *testing.T) {
	require := require.New(t)

	readErr := errors.New("db corrupted")
	store := &metadata.TestStore{T: t}
	store.Default(true)
	store.LastSyncedVersionF = func() (uint64, error) {
		return 0, readErr
	}

	recorder := &subscriptionRecorder{}
	_, consensusHandler := handlers.NewConsensusNotificationPair()
	_, err := NewFactory(
		DefaultConfig(),
		logging.NoLog{},
		prometheus.NewRegistry(),
		store,
		&TestSynchronizer{T: t, CantPendingWrites: true, CantSyncedVersion: true},
		recorder,
		handlers.NoOpMempoolNotifier{},
		consensusHandler,
	)
	require.ErrorIs(err, ErrFatalStartup)
	require.ErrorIs(err, readErr)

	// No broadcast was attempted and no driver task was spawned.
	require.False(recorder.notified)
}

func TestFactoryAbortsOnBroadcastFailure(t *testing.T) {
	require := require.New(t)

	broadcastErr := errors.New("subscriber buffer full")
	store := metadata.New(memdb.New())

	_, consensusHandler := handlers.NewConsensusNotificationPair()
	_, err := NewFactory(
		DefaultConfig(),
		logging.NoLog{},
		prometheus.NewRegistry(),
		store,
		&TestSynchronizer{T: t, CantPendingWrites: true, CantSyncedVersion: true},
		&subscriptionRecorder{err: broadcastErr},
		handlers.NoOpMempoolNotifier{},
		consensusHandler,
	)
	require.ErrorIs(err, ErrFatalStartup)
	require.ErrorIs(err, broadcastErr)
}

func TestFactoryBroadcastsLastSyncedVersion(t *testing.T) {
	require := require.New(t)

	store := metadata.New(memdb.New())
	require.NoError(store.SetLastSyncedVersion(1234))

	recorder := &subscriptionRecorder{}
	_, consensusHandler := handlers.NewConsensusNotificationPair()
	f, err := NewFactory(
		DefaultConfig(),
		logging.NoLog{},
		prometheus.NewRegistry(),
		store,
		NewMetadataSynchronizer(store),
		recorder,
		handlers.NoOpMempoolNotifier{},
		consensusHandler,
	)
	require.NoError(err)
	defer f.Shutdown()

	require.True(recorder.notified)
	require.Equal(uint64(1234), recorder.version)
}

func TestFactoryBootstrapResolvesImmediately(t *testing.T) {
	require := require.New(t)

	// Fresh node, waypoint already satisfied: the first waiter settles
	// right away.
	store := metadata.New(memdb.New())
	f := newTestFactory(t, DefaultConfig(), store)
	defer f.Shutdown()

	client := f.CreateDriverClient()
	defer client.Close()

	require.NoError(client.WaitUntilSettled(context.Background()))
}

func TestFactoryBootstrapWaitsForWaypoint(t *testing.T) {
	require := require.New(t)

	config := DefaultConfig()
	config.WaypointVersion = 100

	store := metadata.New(memdb.New())
	f := newTestFactory(t, config, store)
	defer f.Shutdown()

	client := f.CreateDriverClient()
	defer client.Close()

	done := make(chan error, 1)
	go func() {
		done <- client.WaitUntilSettled(context.Background())
	}()

	// The waiter parks until the waypoint commit lands.
	require.Eventually(func() bool {
		return testutil.ToFloat64(f.metrics.pendingWaiters) == 1
	}, time.Second, 10*time.Millisecond)

	require.True(f.CommitNotificationSender().NotifyCommit(50))
	select {
	case err := <-done:
		require.FailNow("waiter resolved before the waypoint", "err: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	require.True(f.CommitNotificationSender().NotifyCommit(100))
	require.NoError(<-done)

	// The commit was checkpointed.
	version, err := store.LastSyncedVersion()
	require.NoError(err)
	require.Equal(uint64(100), version)
}

func TestFactoryRecoveryFinishesPendingRequest(t *testing.T) {
	require := require.New(t)

	config := DefaultConfig()
	config.WaypointVersion = 0

	// The previous process crashed mid-sync toward version 100.
	store := metadata.New(memdb.New())
	require.NoError(store.SetLastSyncedVersion(50))
	require.NoError(store.StartSyncRequest(100))

	f := newTestFactory(t, config, store)
	defer f.Shutdown()

	client := f.CreateDriverClient()
	defer client.Close()

	done := make(chan error, 1)
	go func() {
		done <- client.WaitUntilSettled(context.Background())
	}()

	require.True(f.CommitNotificationSender().NotifyCommit(100))
	require.NoError(<-done)

	// Recovery cleared the crash marker.
	pending, err := store.PendingSyncRequest()
	require.NoError(err)
	require.Nil(pending)
}

func TestFactoryErrorNotificationFailsParkedWaiters(t *testing.T) {
	require := require.New(t)

	config := DefaultConfig()
	config.WaypointVersion = 1000

	store := metadata.New(memdb.New())
	f := newTestFactory(t, config, store)
	defer f.Shutdown()

	client := f.CreateDriverClient()
	defer client.Close()

	done := make(chan error, 1)
	go func() {
		done <- client.WaitUntilSettled(context.Background())
	}()

	require.Eventually(func() bool {
		return testutil.ToFloat64(f.metrics.pendingWaiters) == 1
	}, time.Second, 10*time.Millisecond)

	require.True(f.ErrorNotificationSender().NotifyError(42, errors.New("chain fork")))

	err := <-done
	require.ErrorIs(err, ErrDeliveryFailure)
	require.ErrorContains(err, "chain fork")
}

func TestFactoryShutdownDropsParkedWaiters(t *testing.T) {
	require := require.New(t)

	config := DefaultConfig()
	config.WaypointVersion = 1000

	store := metadata.New(memdb.New())
	f := newTestFactory(t, config, store)

	client := f.CreateDriverClient()
	defer client.Close()

	done := make(chan error, 1)
	go func() {
		done <- client.WaitUntilSettled(context.Background())
	}()

	require.Eventually(func() bool {
		return testutil.ToFloat64(f.metrics.pendingWaiters) == 1
	}, time.Second, 10*time.Millisecond)

	f.Shutdown()
	require.ErrorIs(<-done, ErrChannelClosed)

	// Clients created after shutdown fail fast.
	lateClient := f.CreateDriverClient()
	defer lateClient.Close()
	require.ErrorIs(lateClient.WaitUntilSettled(context.Background()), ErrChannelClosed)
}

func TestFactoryShutdownRacesIncomingWaiters(t *testing.T) {
	require := require.New(t)

	config := DefaultConfig()
	config.WaypointVersion = 1000

	// Waiters that enqueue concurrently with shutdown must all observe
	// closure. An envelope that lands in the queue after the control loop
	// stops consuming but before the queue shuts must not strand its
	// caller.
	for round := 0; round < 20; round++ {
		store := metadata.New(memdb.New())
		f := newTestFactory(t, config, store)
		client := f.CreateDriverClient()

		const waiters = 8
		results := make(chan error, waiters)
		start := make(chan struct{})
		for i := 0; i < waiters; i++ {
			go func() {
				<-start
				results <- client.WaitUntilSettled(context.Background())
			}()
		}
		close(start)
		f.Shutdown()

		for i := 0; i < waiters; i++ {
			require.ErrorIs(<-results, ErrChannelClosed)
		}
		client.Close()
	}
}

func TestFactoryConsensusSyncRequestRoundTrip(t *testing.T) {
	require := require.New(t)

	config := DefaultConfig()
	config.WaypointVersion = 0

	store := metadata.New(memdb.New())
	consensusClient, consensusHandler := handlers.NewConsensusNotificationPair()
	defer consensusClient.Close()

	f, err := NewFactory(
		config,
		logging.NoLog{},
		prometheus.NewRegistry(),
		store,
		NewMetadataSynchronizer(store),
		&subscriptionRecorder{},
		handlers.NoOpMempoolNotifier{},
		consensusHandler,
	)
	require.NoError(err)
	defer f.Shutdown()

	done := make(chan error, 1)
	go func() {
		done <- consensusClient.RequestSync(context.Background(), 75)
	}()

	// The request checkpoints an in-flight target before parking.
	require.Eventually(func() bool {
		pending, err := store.PendingSyncRequest()
		require.NoError(err)
		return pending != nil && pending.TargetVersion == 75
	}, time.Second, 10*time.Millisecond)

	require.True(f.CommitNotificationSender().NotifyCommit(75))
	require.NoError(<-done)

	// Reaching the target clears the checkpoint.
	require.Eventually(func() bool {
		pending, err := store.PendingSyncRequest()
		require.NoError(err)
		return pending == nil
	}, time.Second, 10*time.Millisecond)
}
