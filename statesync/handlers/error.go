// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package handlers

import (
	"context"

	"github.com/chainflow/chainflowgo/utils/buffer"
)

// ErrorNotification reports that applying ledger data at [Version] failed.
type ErrorNotification struct {
	Version uint64
	Err     error
}

// NewErrorNotificationPair returns the send half given to the storage
// synchronizer's failure path and the listener consumed by the driver.
func NewErrorNotificationPair() (*ErrorNotificationSender, *ErrorNotificationListener) {
	sender, receiver := buffer.NewMailbox[ErrorNotification]()
	return &ErrorNotificationSender{sender: sender},
		&ErrorNotificationListener{receiver: receiver}
}

type ErrorNotificationSender struct {
	sender *buffer.MailboxSender[ErrorNotification]
}

// NotifyError enqueues an error notification. Returns false if the driver
// has stopped listening.
func (s *ErrorNotificationSender) NotifyError(version uint64, err error) bool {
	return s.sender.Push(ErrorNotification{Version: version, Err: err})
}

func (s *ErrorNotificationSender) Close() {
	s.sender.Close()
}

type ErrorNotificationListener struct {
	receiver *buffer.MailboxReceiver[ErrorNotification]
}

func (l *ErrorNotificationListener) Next(ctx context.Context) (ErrorNotification, bool) {
	return l.receiver.Next(ctx)
}

func (l *ErrorNotificationListener) IsTerminated() bool {
	return l.receiver.IsTerminated()
}

// Shutdown discards buffered notifications and fails future sends.
func (l *ErrorNotificationListener) Shutdown() {
	l.receiver.Shutdown()
}
