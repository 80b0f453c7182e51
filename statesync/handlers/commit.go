// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package handlers wires the notification pipelines that feed the state
// sync driver. Each pipeline is an unbounded queue with a send half owned
// by a producer subsystem and a listener owned by the driver.
package handlers

import (
	"context"

	"github.com/chainflow/chainflowgo/utils/buffer"
)

// CommitNotification reports that ledger data up to [Version] was
// committed to storage.
type CommitNotification struct {
	Version uint64
}

// NewCommitNotificationPair returns the send half given to the storage
// synchronizer's commit path and the listener consumed by the driver.
func NewCommitNotificationPair() (*CommitNotificationSender, *CommitNotificationListener) {
	sender, receiver := buffer.NewMailbox[CommitNotification]()
	return &CommitNotificationSender{sender: sender},
		&CommitNotificationListener{receiver: receiver}
}

type CommitNotificationSender struct {
	sender *buffer.MailboxSender[CommitNotification]
}

// NotifyCommit enqueues a commit notification. Returns false if the driver
// has stopped listening.
func (s *CommitNotificationSender) NotifyCommit(version uint64) bool {
	return s.sender.Push(CommitNotification{Version: version})
}

func (s *CommitNotificationSender) Close() {
	s.sender.Close()
}

type CommitNotificationListener struct {
	receiver *buffer.MailboxReceiver[CommitNotification]
}

func (l *CommitNotificationListener) Next(ctx context.Context) (CommitNotification, bool) {
	return l.receiver.Next(ctx)
}

func (l *CommitNotificationListener) IsTerminated() bool {
	return l.receiver.IsTerminated()
}

// Shutdown discards buffered notifications and fails future sends.
func (l *CommitNotificationListener) Shutdown() {
	l.receiver.Shutdown()
}
