// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package handlers

import (
	"context"
	"errors"

	"github.com/chainflow/chainflowgo/utils/buffer"
	"github.com/chainflow/chainflowgo/utils/oneshot"
)

var ErrConsensusChannelClosed = errors.New("consensus notification channel closed")

// ConsensusSyncRequest asks the driver to sync the ledger to
// [TargetVersion] and carries the completion channel the driver answers
// on.
type ConsensusSyncRequest struct {
	TargetVersion uint64

	completion *oneshot.Sender[error]
}

// Respond fulfills the request exactly once. nil reports success.
func (r *ConsensusSyncRequest) Respond(err error) {
	_ = r.completion.Send(err)
}

// NewConsensusNotificationPair returns the client handle held by the
// consensus subsystem and the handler consumed by the driver.
func NewConsensusNotificationPair() (*ConsensusSyncClient, *ConsensusNotificationHandler) {
	sender, receiver := buffer.NewMailbox[*ConsensusSyncRequest]()
	return &ConsensusSyncClient{sender: sender},
		&ConsensusNotificationHandler{receiver: receiver}
}

// ConsensusSyncClient is the consensus subsystem's handle to the driver.
type ConsensusSyncClient struct {
	sender *buffer.MailboxSender[*ConsensusSyncRequest]
}

// RequestSync asks the driver to sync to [targetVersion] and waits for the
// driver's answer.
func (c *ConsensusSyncClient) RequestSync(ctx context.Context, targetVersion uint64) error {
	completionSender, completionReceiver := oneshot.NewChannel[error]()
	request := &ConsensusSyncRequest{
		TargetVersion: targetVersion,
		completion:    completionSender,
	}
	if !c.sender.Push(request) {
		return ErrConsensusChannelClosed
	}

	result, err := completionReceiver.Wait(ctx)
	if err != nil {
		return err
	}
	return result
}

func (c *ConsensusSyncClient) Close() {
	c.sender.Close()
}

// ConsensusNotificationHandler is the driver-side receive end of the
// consensus sync-request pipeline.
type ConsensusNotificationHandler struct {
	receiver *buffer.MailboxReceiver[*ConsensusSyncRequest]
}

func (h *ConsensusNotificationHandler) Next(ctx context.Context) (*ConsensusSyncRequest, bool) {
	return h.receiver.Next(ctx)
}

func (h *ConsensusNotificationHandler) IsTerminated() bool {
	return h.receiver.IsTerminated()
}

// Shutdown fails future sends and returns the buffered requests. The
// caller owns the returned requests and must Respond to each one.
func (h *ConsensusNotificationHandler) Shutdown() []*ConsensusSyncRequest {
	return h.receiver.Shutdown()
}
