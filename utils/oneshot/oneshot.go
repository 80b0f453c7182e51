// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package oneshot provides a single-use, single-value channel pair.
//
// Exactly one value may travel from the sender to the receiver. Dropping
// the sender without sending surfaces ErrClosed to the receiver.
package oneshot

import (
	"context"
	"errors"
	"sync"

	"github.com/chainflow/chainflowgo/utils"
)

var (
	ErrClosed      = errors.New("oneshot channel closed before a value was sent")
	ErrAlreadyUsed = errors.New("oneshot sender already used")
)

// NewChannel returns a linked sender/receiver pair.
func NewChannel[T any]() (*Sender[T], *Receiver[T]) {
	ch := make(chan T, 1)
	return &Sender[T]{ch: ch}, &Receiver[T]{ch: ch}
}

// Sender is the producer half of a one-shot channel. It accepts exactly
// one value and consumes itself on use; Send and Drop are safe to call
// from any goroutine, but only the first call has an effect.
type Sender[T any] struct {
	lock sync.Mutex
	used bool
	ch   chan<- T
}

// Send delivers [value] to the receiver. The delivery is buffered, so a
// receiver that abandoned its wait never blocks the caller; the value is
// silently discarded.
func (s *Sender[T]) Send(value T) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.used {
		return ErrAlreadyUsed
	}
	s.used = true

	s.ch <- value
	close(s.ch)
	return nil
}

// Drop releases the sender without delivering a value. The receiver
// observes ErrClosed. Dropping an already used sender is a no-op.
func (s *Sender[T]) Drop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.used {
		return
	}
	s.used = true

	close(s.ch)
}

// Receiver is the consumer half of a one-shot channel. It must be waited
// on by at most one goroutine.
type Receiver[T any] struct {
	ch <-chan T
}

// Wait blocks until the value is delivered, the sender is dropped, or
// [ctx] is cancelled. Returns ErrClosed if the sender was dropped without
// sending.
func (r *Receiver[T]) Wait(ctx context.Context) (T, error) {
	select {
	case value, ok := <-r.ch:
		if !ok {
			return utils.Zero[T](), ErrClosed
		}
		return value, nil
	case <-ctx.Done():
		return utils.Zero[T](), ctx.Err()
	}
}
