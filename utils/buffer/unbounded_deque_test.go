// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnboundedDeque(t *testing.T) {
	require := require.New(t)

	deque := NewUnboundedDeque[int](2)
	require.Zero(deque.Len())
	require.Empty(deque.List())

	_, ok := deque.PopLeft()
	require.False(ok)
	_, ok = deque.PopRight()
	require.False(ok)

	deque.PushRight(1)
	deque.PushRight(2)
	deque.PushLeft(0)
	require.Equal(3, deque.Len())
	require.Equal([]int{0, 1, 2}, deque.List())

	got, ok := deque.PeekLeft()
	require.True(ok)
	require.Equal(0, got)
	got, ok = deque.PeekRight()
	require.True(ok)
	require.Equal(2, got)

	got, ok = deque.PopLeft()
	require.True(ok)
	require.Equal(0, got)
	got, ok = deque.PopRight()
	require.True(ok)
	require.Equal(2, got)
	require.Equal(1, deque.Len())
}

func TestUnboundedDequeResize(t *testing.T) {
	require := require.New(t)

	deque := NewUnboundedDeque[int](2)
	for i := 0; i < 100; i++ {
		deque.PushRight(i)
	}
	require.Equal(100, deque.Len())

	for i := 0; i < 100; i++ {
		got, ok := deque.PopLeft()
		require.True(ok)
		require.Equal(i, got)
	}
	require.Zero(deque.Len())
}

func TestUnboundedDequeWrapAround(t *testing.T) {
	require := require.New(t)

	deque := NewUnboundedDeque[int](4)
	for i := 0; i < 64; i++ {
		deque.PushRight(i)
		got, ok := deque.PopLeft()
		require.True(ok)
		require.Equal(i, got)
	}
	require.Zero(deque.Len())
}
