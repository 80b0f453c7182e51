// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainflow/chainflowgo/database/memdb"
)

func TestPendingSyncRequestLifecycle(t *testing.T) {
	require := require.New(t)

	store := New(memdb.New())

	pending, err := store.PendingSyncRequest()
	require.NoError(err)
	require.Nil(pending)

	require.NoError(store.StartSyncRequest(100))

	pending, err = store.PendingSyncRequest()
	require.NoError(err)
	require.NotNil(pending)
	require.Equal(uint64(100), pending.TargetVersion)

	// Restarting a request overwrites the previous target.
	require.NoError(store.StartSyncRequest(250))
	pending, err = store.PendingSyncRequest()
	require.NoError(err)
	require.Equal(uint64(250), pending.TargetVersion)

	require.NoError(store.FinishSyncRequest())

	pending, err = store.PendingSyncRequest()
	require.NoError(err)
	require.Nil(pending)

	err = store.FinishSyncRequest()
	require.ErrorIs(err, errNoPendingRequest)
}

func TestLastSyncedVersion(t *testing.T) {
	require := require.New(t)

	store := New(memdb.New())

	version, err := store.LastSyncedVersion()
	require.NoError(err)
	require.Zero(version)

	require.NoError(store.SetLastSyncedVersion(42))

	version, err = store.LastSyncedVersion()
	require.NoError(err)
	require.Equal(uint64(42), version)
}

func TestReadFailurePropagates(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	store := New(db)
	require.NoError(db.Close())

	_, err := store.PendingSyncRequest()
	require.Error(err)
	_, err = store.LastSyncedVersion()
	require.Error(err)
}
