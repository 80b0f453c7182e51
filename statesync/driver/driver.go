// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package driver implements the state sync driver's completion
// notification pipeline: the client handles node subsystems use to learn
// when the node has bootstrapped or recovered, the queues that carry
// those requests, and the control loop that fulfills them.
package driver

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chainflow/chainflowgo/statesync/handlers"
	"github.com/chainflow/chainflowgo/statesync/metadata"
	"github.com/chainflow/chainflowgo/utils/logging"
)

// StorageSynchronizer is the driver's view of the component that executes
// and commits fetched ledger data. Chunk execution itself is out of the
// driver's hands; the driver only needs progress information.
type StorageSynchronizer interface {
	// PendingWrites reports whether fetched data is still queued for
	// commit.
	PendingWrites() bool

	// SyncedVersion returns the highest ledger version committed to
	// storage.
	SyncedVersion() (uint64, error)
}

// Driver is the state sync driver's control loop. It is the sole consumer
// of the client notification listener and the commit/error/consensus
// pipelines; exactly one instance is spawned by the factory.
type Driver struct {
	log           logging.Logger
	config        Config
	metrics       *metrics
	metadataStore metadata.Store
	synchronizer  StorageSynchronizer

	clientListener   *ClientNotificationListener
	commitListener   *handlers.CommitNotificationListener
	errorListener    *handlers.ErrorNotificationListener
	consensusHandler *handlers.ConsensusNotificationHandler
	mempoolHandler   *handlers.MempoolNotificationHandler

	lock             sync.Mutex
	syncedVersion    uint64
	settled          bool
	pendingClients   []*DriverNotification
	pendingConsensus []*handlers.ConsensusSyncRequest

	running sync.WaitGroup
}

func newDriver(
	config Config,
	log logging.Logger,
	metrics *metrics,
	metadataStore metadata.Store,
	synchronizer StorageSynchronizer,
	clientListener *ClientNotificationListener,
	commitListener *handlers.CommitNotificationListener,
	errorListener *handlers.ErrorNotificationListener,
	consensusHandler *handlers.ConsensusNotificationHandler,
	mempoolHandler *handlers.MempoolNotificationHandler,
) *Driver {
	return &Driver{
		log:              log,
		config:           config,
		metrics:          metrics,
		metadataStore:    metadataStore,
		synchronizer:     synchronizer,
		clientListener:   clientListener,
		commitListener:   commitListener,
		errorListener:    errorListener,
		consensusHandler: consensusHandler,
		mempoolHandler:   mempoolHandler,
	}
}

// run executes the control loop until [ctx] is cancelled. It is spawned
// exactly once, by the factory.
func (d *Driver) run(ctx context.Context) {
	if err := d.initializeSyncState(); err != nil {
		d.log.Error("failed to initialize sync state",
			zap.Error(err),
		)
	}

	d.running.Add(4)
	go d.processClientNotifications(ctx)
	go d.processCommitNotifications(ctx)
	go d.processErrorNotifications(ctx)
	go d.processConsensusRequests(ctx)
	d.running.Wait()

	// The loop is exiting for good. Shut the queues so producers fail
	// fast instead of enqueueing envelopes nobody will resolve. Envelopes
	// that were pushed but never consumed are still owned by a blocked
	// caller, so drop each one to signal closure rather than letting it
	// strand the caller.
	for _, notification := range d.clientListener.Shutdown() {
		notification.Drop()
	}
	d.commitListener.Shutdown()
	d.errorListener.Shutdown()
	buffered := d.consensusHandler.Shutdown()

	d.lock.Lock()
	defer d.lock.Unlock()
	for _, notification := range d.pendingClients {
		notification.Drop()
		d.metrics.pendingWaiters.Dec()
	}
	d.pendingClients = nil
	for _, request := range append(d.pendingConsensus, buffered...) {
		request.Respond(ErrChannelClosed)
	}
	d.pendingConsensus = nil
}

func (d *Driver) initializeSyncState() error {
	syncedVersion, err := d.synchronizer.SyncedVersion()
	if err != nil {
		return fmt.Errorf("couldn't fetch synced version: %w", err)
	}

	d.lock.Lock()
	defer d.lock.Unlock()
	d.syncedVersion = syncedVersion
	d.metrics.syncedVersion.Set(float64(syncedVersion))
	d.refreshSettledLocked()
	return nil
}

// Assumes [d.lock] is held.
func (d *Driver) refreshSettledLocked() {
	if d.settled {
		return
	}
	if d.syncedVersion < d.config.WaypointVersion {
		return
	}
	if d.synchronizer.PendingWrites() {
		return
	}

	pendingRequest, err := d.metadataStore.PendingSyncRequest()
	if err != nil {
		d.log.Warn("couldn't read pending sync request",
			zap.Error(err),
		)
		return
	}
	if pendingRequest != nil && pendingRequest.TargetVersion > d.syncedVersion {
		return
	}
	if pendingRequest != nil {
		if err := d.metadataStore.FinishSyncRequest(); err != nil {
			d.log.Warn("couldn't finish pending sync request",
				zap.Error(err),
			)
			return
		}
	}

	d.settled = true
	d.log.Info("state sync reached a terminal status",
		zap.Uint64("syncedVersion", d.syncedVersion),
		zap.Uint64("waypointVersion", d.config.WaypointVersion),
	)

	for _, notification := range d.pendingClients {
		notification.Resolve(nil)
		d.metrics.markResolved(nil)
		d.metrics.pendingWaiters.Dec()
	}
	d.pendingClients = nil
}

func (d *Driver) processClientNotifications(ctx context.Context) {
	defer d.running.Done()

	for {
		notification, ok := d.clientListener.Next(ctx)
		if !ok {
			if d.clientListener.IsTerminated() {
				d.log.Debug("client notification listener terminated")
			}
			return
		}

		d.lock.Lock()
		if d.settled {
			d.lock.Unlock()
			notification.Resolve(nil)
			d.metrics.markResolved(nil)
			continue
		}
		d.pendingClients = append(d.pendingClients, notification)
		d.metrics.pendingWaiters.Inc()
		d.lock.Unlock()
	}
}

func (d *Driver) processCommitNotifications(ctx context.Context) {
	defer d.running.Done()

	for {
		notification, ok := d.commitListener.Next(ctx)
		if !ok {
			return
		}
		d.metrics.commitsReceived.Inc()
		d.handleCommit(ctx, notification)
	}
}

func (d *Driver) handleCommit(ctx context.Context, notification handlers.CommitNotification) {
	d.lock.Lock()
	if notification.Version > d.syncedVersion {
		d.syncedVersion = notification.Version
		d.metrics.syncedVersion.Set(float64(d.syncedVersion))
		if err := d.metadataStore.SetLastSyncedVersion(d.syncedVersion); err != nil {
			d.log.Warn("couldn't checkpoint synced version",
				zap.Uint64("version", d.syncedVersion),
				zap.Error(err),
			)
		}
	}
	d.refreshSettledLocked()

	// Answer the consensus sync requests this commit satisfies.
	remaining := d.pendingConsensus[:0]
	var satisfied []*handlers.ConsensusSyncRequest
	for _, request := range d.pendingConsensus {
		if request.TargetVersion <= d.syncedVersion {
			satisfied = append(satisfied, request)
		} else {
			remaining = append(remaining, request)
		}
	}
	d.pendingConsensus = remaining

	// Once the last in-flight consensus target is reached, clear the crash
	// marker its StartSyncRequest checkpointed.
	if len(satisfied) > 0 && len(remaining) == 0 {
		d.finishSatisfiedSyncRequestLocked()
	}
	d.lock.Unlock()

	for _, request := range satisfied {
		request.Respond(nil)
	}

	d.mempoolHandler.NotifyCommit(ctx, notification.Version)
}

// Assumes [d.lock] is held.
func (d *Driver) finishSatisfiedSyncRequestLocked() {
	pendingRequest, err := d.metadataStore.PendingSyncRequest()
	if err != nil {
		d.log.Warn("couldn't read pending sync request",
			zap.Error(err),
		)
		return
	}
	if pendingRequest == nil || pendingRequest.TargetVersion > d.syncedVersion {
		return
	}
	if err := d.metadataStore.FinishSyncRequest(); err != nil {
		d.log.Warn("couldn't finish pending sync request",
			zap.Error(err),
		)
	}
}

func (d *Driver) processErrorNotifications(ctx context.Context) {
	defer d.running.Done()

	for {
		notification, ok := d.errorListener.Next(ctx)
		if !ok {
			return
		}

		d.log.Error("storage synchronizer reported a failure",
			zap.Uint64("version", notification.Version),
			zap.Error(notification.Err),
		)

		// The in-flight attempt failed; every parked waiter observes the
		// failure once. Later calls start fresh attempts.
		failure := fmt.Errorf("%w: %w", ErrDeliveryFailure, notification.Err)

		d.lock.Lock()
		pending := d.pendingClients
		d.pendingClients = nil
		d.lock.Unlock()

		for _, clientNotification := range pending {
			clientNotification.Resolve(failure)
			d.metrics.markResolved(failure)
			d.metrics.pendingWaiters.Dec()
		}
	}
}

func (d *Driver) processConsensusRequests(ctx context.Context) {
	defer d.running.Done()

	for {
		request, ok := d.consensusHandler.Next(ctx)
		if !ok {
			return
		}

		d.lock.Lock()
		if request.TargetVersion <= d.syncedVersion {
			d.lock.Unlock()
			request.Respond(nil)
			continue
		}
		if err := d.metadataStore.StartSyncRequest(request.TargetVersion); err != nil {
			d.lock.Unlock()
			request.Respond(err)
			continue
		}
		d.pendingConsensus = append(d.pendingConsensus, request)
		d.lock.Unlock()
	}
}
