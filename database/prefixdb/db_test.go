// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prefixdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainflow/chainflowgo/database"
	"github.com/chainflow/chainflowgo/database/memdb"
)

func TestPrefixIsolation(t *testing.T) {
	require := require.New(t)

	base := memdb.New()
	a := New([]byte("a"), base)
	b := New([]byte("b"), base)

	key := []byte("key")
	require.NoError(a.Put(key, []byte("from a")))

	has, err := b.Has(key)
	require.NoError(err)
	require.False(has)

	require.NoError(b.Put(key, []byte("from b")))

	got, err := a.Get(key)
	require.NoError(err)
	require.Equal([]byte("from a"), got)

	got, err = b.Get(key)
	require.NoError(err)
	require.Equal([]byte("from b"), got)

	require.NoError(a.Delete(key))
	_, err = a.Get(key)
	require.ErrorIs(err, database.ErrNotFound)

	got, err = b.Get(key)
	require.NoError(err)
	require.Equal([]byte("from b"), got)
}

func TestCloseLeavesBaseOpen(t *testing.T) {
	require := require.New(t)

	base := memdb.New()
	pre := New([]byte("p"), base)

	require.NoError(pre.Close())
	require.ErrorIs(pre.Put([]byte("k"), []byte("v")), database.ErrClosed)

	require.NoError(base.Put([]byte("k"), []byte("v")))
}
