// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/chainflow/chainflowgo/statesync/events"
	"github.com/chainflow/chainflowgo/statesync/handlers"
	"github.com/chainflow/chainflowgo/statesync/metadata"
	"github.com/chainflow/chainflowgo/utils/buffer"
	"github.com/chainflow/chainflowgo/utils/logging"
	"github.com/chainflow/chainflowgo/utils/worker"
)

const driverRuntimeName = "state-sync-driver"

// Factory is the single assembly point of the state sync driver. It wires
// the notification queues, performs the one-time initial-configuration
// broadcast, spawns exactly one control loop, and mints driver clients.
type Factory struct {
	log           logging.Logger
	metadataStore metadata.Store
	metrics       *metrics

	clientSender *buffer.MailboxSender[*DriverNotification]
	commitSender *handlers.CommitNotificationSender
	errorSender  *handlers.ErrorNotificationSender

	// runtime is non-nil only if the factory owns a dedicated execution
	// context for the driver. Retaining it keeps the driver task alive
	// for the factory's lifetime.
	runtime worker.Pool

	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewFactory creates and spawns a new state sync driver.
//
// Before anything is spawned, the last known synced ledger version is
// broadcast to the on-chain config subscribers. Failure to read that
// version, or to deliver the broadcast, aborts construction with
// ErrFatalStartup: the node must not start a driver against inconsistent
// subscriber state.
func NewFactory(
	config Config,
	log logging.Logger,
	registerer prometheus.Registerer,
	metadataStore metadata.Store,
	synchronizer StorageSynchronizer,
	subscriptionService events.SubscriptionService,
	mempoolNotifier handlers.MempoolNotifier,
	consensusHandler *handlers.ConsensusNotificationHandler,
) (*Factory, error) {
	// Notify subscribers of the initial on-chain config values.
	syncedVersion, err := metadataStore.LastSyncedVersion()
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't fetch the initial synced version: %w", ErrFatalStartup, err)
	}
	if err := subscriptionService.NotifyInitialConfigs(syncedVersion); err != nil {
		return nil, fmt.Errorf("%w: couldn't notify subscribers of initial on-chain configs: %w", ErrFatalStartup, err)
	}

	driverMetrics, err := newMetrics(registerer)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't register metrics: %w", ErrFatalStartup, err)
	}

	// Create the client notification queue and listener.
	clientSender, clientReceiver := buffer.NewMailbox[*DriverNotification]()
	clientListener := &ClientNotificationListener{receiver: clientReceiver}

	// Create the remaining notification pipelines.
	commitSender, commitListener := handlers.NewCommitNotificationPair()
	errorSender, errorListener := handlers.NewErrorNotificationPair()
	mempoolHandler := handlers.NewMempoolNotificationHandler(log, mempoolNotifier)

	d := newDriver(
		config,
		log,
		driverMetrics,
		metadataStore,
		synchronizer,
		clientListener,
		commitListener,
		errorListener,
		consensusHandler,
		mempoolHandler,
	)

	f := &Factory{
		log:           log,
		metadataStore: metadataStore,
		metrics:       driverMetrics,
		clientSender:  clientSender,
		commitSender:  commitSender,
		errorSender:   errorSender,
		stopped:       make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel

	// Create a dedicated execution context for the driver (if required)
	// and spawn exactly one control loop.
	if config.DedicatedRuntime {
		runtime, err := worker.NewPool(driverRuntimeName, 1)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("%w: couldn't create the driver runtime: %w", ErrFatalStartup, err)
		}
		runtime.Start()
		f.runtime = runtime
		runtime.Send(func() {
			defer close(f.stopped)
			d.run(ctx)
		})
	} else {
		go func() {
			defer close(f.stopped)
			d.run(ctx)
		}()
	}

	return f, nil
}

// CreateDriverClient returns a new client bound to the factory's queue.
// It may be called any number of times and is valid while the factory
// lives.
func (f *Factory) CreateDriverClient() *DriverClient {
	return newDriverClient(
		f.metadataStore,
		f.clientSender.Clone(),
		f.metrics,
	)
}

// CommitNotificationSender returns the send half the storage
// synchronizer's commit path pushes into.
func (f *Factory) CommitNotificationSender() *handlers.CommitNotificationSender {
	return f.commitSender
}

// ErrorNotificationSender returns the send half the storage
// synchronizer's failure path pushes into.
func (f *Factory) ErrorNotificationSender() *handlers.ErrorNotificationSender {
	return f.errorSender
}

// Shutdown stops the control loop and, if owned, the driver's execution
// context. Pending waiters observe ErrChannelClosed.
func (f *Factory) Shutdown() {
	f.cancel()
	f.clientSender.Close()
	f.commitSender.Close()
	f.errorSender.Close()
	<-f.stopped
	if f.runtime != nil {
		f.runtime.Shutdown()
	}
}
