// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package buffer

import (
	"context"
	"sync"

	"github.com/chainflow/chainflowgo/utils"
)

// NewMailbox returns the two halves of an unbounded multi-producer,
// single-consumer queue.
//
// Producers hold [MailboxSender] handles. Push never blocks and fails only
// after the receiver has shut down. The receiver observes the end of the
// queue only after every sender handle has been closed and every buffered
// element has been consumed.
func NewMailbox[T any]() (*MailboxSender[T], *MailboxReceiver[T]) {
	m := &mailbox[T]{
		buf:  NewUnboundedDeque[T](defaultInitSize),
		wake: make(chan struct{}, 1),
	}
	m.senders = 1
	return &MailboxSender[T]{m: m}, &MailboxReceiver[T]{m: m}
}

type mailbox[T any] struct {
	lock     sync.Mutex
	buf      Deque[T]
	senders  int
	shutdown bool

	// wake has capacity 1. It is signaled on every push, on the close of
	// the last sender handle, and on shutdown.
	wake chan struct{}
}

func (m *mailbox[T]) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// MailboxSender is the producer half of a mailbox. A handle may be shared
// by value only through Clone; each handle must be closed exactly once.
type MailboxSender[T any] struct {
	m      *mailbox[T]
	closed bool
}

// Push enqueues [elt]. Returns false if this handle has been closed or the
// receiver has shut down, in which case the element is dropped.
func (s *MailboxSender[T]) Push(elt T) bool {
	s.m.lock.Lock()
	defer s.m.lock.Unlock()

	if s.closed || s.m.shutdown {
		return false
	}

	s.m.buf.PushRight(elt)
	s.m.signal()
	return true
}

// Clone returns a new sender handle feeding the same mailbox. A clone of a
// closed handle is itself closed.
func (s *MailboxSender[T]) Clone() *MailboxSender[T] {
	s.m.lock.Lock()
	defer s.m.lock.Unlock()

	if s.closed {
		return &MailboxSender[T]{m: s.m, closed: true}
	}
	s.m.senders++
	return &MailboxSender[T]{m: s.m}
}

// Close releases this handle. Once every handle is closed the receiver
// drains the remaining elements and then terminates.
func (s *MailboxSender[T]) Close() {
	s.m.lock.Lock()
	defer s.m.lock.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.m.senders--
	if s.m.senders == 0 {
		s.m.signal()
	}
}

// MailboxReceiver is the consumer half of a mailbox. It must be owned by
// exactly one consumer.
type MailboxReceiver[T any] struct {
	m *mailbox[T]
}

// Next blocks until an element is available, the queue has terminated, or
// [ctx] is cancelled. Returns false both on cancellation and on
// termination; [MailboxReceiver.IsTerminated] distinguishes the two, and
// after a cancellation Next may be called again.
func (r *MailboxReceiver[T]) Next(ctx context.Context) (T, bool) {
	for {
		r.m.lock.Lock()
		if r.m.shutdown {
			r.m.lock.Unlock()
			return utils.Zero[T](), false
		}
		if elt, ok := r.m.buf.PopLeft(); ok {
			r.m.lock.Unlock()
			return elt, true
		}
		if r.m.senders == 0 {
			r.m.lock.Unlock()
			return utils.Zero[T](), false
		}
		r.m.lock.Unlock()

		select {
		case <-r.m.wake:
		case <-ctx.Done():
			return utils.Zero[T](), false
		}
	}
}

// IsTerminated returns true once the queue will never yield another
// element: either the receiver shut down, or every sender handle closed
// and the buffer drained.
func (r *MailboxReceiver[T]) IsTerminated() bool {
	r.m.lock.Lock()
	defer r.m.lock.Unlock()

	if r.m.shutdown {
		return true
	}
	return r.m.senders == 0 && r.m.buf.Len() == 0
}

// Len returns the number of buffered elements.
func (r *MailboxReceiver[T]) Len() int {
	r.m.lock.Lock()
	defer r.m.lock.Unlock()

	if r.m.shutdown {
		return 0
	}
	return r.m.buf.Len()
}

// Shutdown causes every future Push to fail and returns the buffered
// elements, left to right. Intended for the consumer's teardown path: the
// consumer owns the returned elements and must fail or release any that
// carry completion handles.
func (r *MailboxReceiver[T]) Shutdown() []T {
	r.m.lock.Lock()
	defer r.m.lock.Unlock()

	if r.m.shutdown {
		return nil
	}
	r.m.shutdown = true
	remaining := r.m.buf.List()
	r.m.buf = NewUnboundedDeque[T](2)
	r.m.signal()
	return remaining
}
