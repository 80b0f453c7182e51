// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainflow/chainflowgo/statesync/metadata"
	"github.com/chainflow/chainflowgo/utils/buffer"
	"github.com/chainflow/chainflowgo/utils/oneshot"
)

// NotificationKind discriminates what terminal status a caller is waiting
// for.
type NotificationKind int

const (
	// AwaitBootstrap waits for the node's first full bootstrap.
	AwaitBootstrap NotificationKind = iota
	// AwaitRecovery waits for state sync to recover after a restart that
	// interrupted an in-flight sync.
	AwaitRecovery
)

func (k NotificationKind) String() string {
	switch k {
	case AwaitBootstrap:
		return "bootstrap"
	case AwaitRecovery:
		return "recovery"
	default:
		return fmt.Sprintf("unknown kind: %d", k)
	}
}

// DriverNotification is the envelope clients enqueue for the driver. It
// carries the send half of the caller's completion channel; whoever
// consumes the envelope must resolve or drop it.
type DriverNotification struct {
	Kind NotificationKind

	completion *oneshot.Sender[error]
}

// Resolve delivers the completion result exactly once. nil reports
// success. Resolving an already resolved or dropped envelope is a no-op.
func (n *DriverNotification) Resolve(err error) {
	_ = n.completion.Send(err)
}

// Drop releases the envelope without a result; the waiting caller
// observes ErrChannelClosed.
func (n *DriverNotification) Drop() {
	n.completion.Drop()
}

// DriverClient is the handle every component interested in the driver's
// terminal status holds. Handles are minted by the factory and are
// stateless beyond their queue and store references; each call creates a
// fresh completion channel.
type DriverClient struct {
	metadataStore metadata.Store
	sender        *buffer.MailboxSender[*DriverNotification]
	metrics       *metrics
}

func newDriverClient(
	metadataStore metadata.Store,
	sender *buffer.MailboxSender[*DriverNotification],
	metrics *metrics,
) *DriverClient {
	return &DriverClient{
		metadataStore: metadataStore,
		sender:        sender,
		metrics:       metrics,
	}
}

// WaitUntilSettled blocks until the driver reaches the terminal status
// decided at this call's enqueue time: recovery if a pending sync request
// was persisted, bootstrap otherwise.
//
// The metadata read and the enqueue are not atomic with respect to the
// driver's own transitions; a pending request may complete in between, in
// which case the caller waits for the kind decided at read time.
//
// The call is idempotent: each invocation creates an independent
// completion channel and is satisfied exactly once. No internal timeout
// is applied; callers bound the wait through [ctx].
func (c *DriverClient) WaitUntilSettled(ctx context.Context) error {
	pendingRequest, err := c.metadataStore.PendingSyncRequest()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMetadataRead, err)
	}

	kind := AwaitBootstrap
	if pendingRequest != nil {
		kind = AwaitRecovery
	}

	completionSender, completionReceiver := oneshot.NewChannel[error]()
	notification := &DriverNotification{
		Kind:       kind,
		completion: completionSender,
	}
	if !c.sender.Push(notification) {
		// The driver task has exited; fail without waiting.
		return ErrChannelClosed
	}
	c.metrics.clientRequests.WithLabelValues(kind.String()).Inc()

	result, err := completionReceiver.Wait(ctx)
	switch {
	case errors.Is(err, oneshot.ErrClosed):
		return ErrChannelClosed
	case err != nil:
		return err
	default:
		return result
	}
}

// Close releases this handle's send half. Once every client is closed the
// driver's listener terminates after draining.
func (c *DriverClient) Close() {
	c.sender.Close()
}

// ClientNotificationListener is the driver-side receive end of the client
// notification queue. It is exclusively owned by the driver's control
// loop and holds no business logic.
type ClientNotificationListener struct {
	receiver *buffer.MailboxReceiver[*DriverNotification]
}

// Next blocks until an envelope is available. Returns false when [ctx] is
// cancelled or when the queue is permanently closed and drained;
// [ClientNotificationListener.IsTerminated] distinguishes the two.
func (l *ClientNotificationListener) Next(ctx context.Context) (*DriverNotification, bool) {
	return l.receiver.Next(ctx)
}

// IsTerminated returns true once every client handle has been closed and
// no buffered envelopes remain.
func (l *ClientNotificationListener) IsTerminated() bool {
	return l.receiver.IsTerminated()
}

// Shutdown fails future sends and returns the buffered envelopes. The
// caller owns the returned envelopes and must resolve or drop each one.
func (l *ClientNotificationListener) Shutdown() []*DriverNotification {
	return l.receiver.Shutdown()
}
