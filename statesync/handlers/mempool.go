// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/chainflow/chainflowgo/utils/logging"
)

// MempoolNotifier is implemented by the mempool to learn about committed
// ledger versions, so that it can evict transactions that landed on chain.
type MempoolNotifier interface {
	NotifyCommittedVersion(ctx context.Context, version uint64) error
}

// MempoolNotificationHandler forwards commit notifications to the mempool.
// Delivery is best effort; the sync pipeline never stalls on the mempool.
type MempoolNotificationHandler struct {
	log      logging.Logger
	notifier MempoolNotifier
}

func NewMempoolNotificationHandler(log logging.Logger, notifier MempoolNotifier) *MempoolNotificationHandler {
	return &MempoolNotificationHandler{
		log:      log,
		notifier: notifier,
	}
}

func (h *MempoolNotificationHandler) NotifyCommit(ctx context.Context, version uint64) {
	if err := h.notifier.NotifyCommittedVersion(ctx, version); err != nil {
		h.log.Warn("failed to notify mempool of commit",
			zap.Uint64("version", version),
			zap.Error(err),
		)
	}
}

var _ MempoolNotifier = NoOpMempoolNotifier{}

// NoOpMempoolNotifier backs nodes that run without a mempool.
type NoOpMempoolNotifier struct{}

func (NoOpMempoolNotifier) NotifyCommittedVersion(context.Context, uint64) error {
	return nil
}
