// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import "testing"

var _ StorageSynchronizer = (*TestSynchronizer)(nil)

// TestSynchronizer is a test double for StorageSynchronizer.
type TestSynchronizer struct {
	T *testing.T

	CantPendingWrites,
	CantSyncedVersion bool

	PendingWritesF func() bool
	SyncedVersionF func() (uint64, error)
}

func (s *TestSynchronizer) PendingWrites() bool {
	if s.PendingWritesF != nil {
		return s.PendingWritesF()
	}
	if s.CantPendingWrites && s.T != nil {
		s.T.Fatal("Unexpectedly called PendingWrites")
	}
	return false
}

func (s *TestSynchronizer) SyncedVersion() (uint64, error) {
	if s.SyncedVersionF != nil {
		return s.SyncedVersionF()
	}
	if s.CantSyncedVersion && s.T != nil {
		s.T.Fatal("Unexpectedly called SyncedVersion")
	}
	return 0, nil
}
