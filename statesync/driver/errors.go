// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import "errors"

var (
	// ErrChannelClosed is returned when the counterpart half of a
	// completion channel was dropped before delivery: the driver exited,
	// or the caller abandoned its wait.
	ErrChannelClosed = errors.New("completion channel closed before delivery")

	// ErrDeliveryFailure wraps the driver's own error when a bootstrap or
	// recovery attempt explicitly failed.
	ErrDeliveryFailure = errors.New("state sync delivery failed")

	// ErrMetadataRead is returned when the persisted-state query itself
	// failed; no notification is enqueued in that case.
	ErrMetadataRead = errors.New("couldn't read sync metadata")

	// ErrFatalStartup reports a startup invariant violation at factory
	// construction time. It is never recoverable; the process must not
	// proceed to serve traffic.
	ErrFatalStartup = errors.New("fatal state sync startup invariant violated")
)
