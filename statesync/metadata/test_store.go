// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metadata

import "testing"

var _ Store = (*TestStore)(nil)

// TestStore is a test double for Store. If a function is set it is called;
// otherwise, if the corresponding Cant flag is set, the test fails.
type TestStore struct {
	T *testing.T

	CantPendingSyncRequest,
	CantStartSyncRequest,
	CantFinishSyncRequest,
	CantLastSyncedVersion,
	CantSetLastSyncedVersion bool

	PendingSyncRequestF   func() (*PendingSyncRequest, error)
	StartSyncRequestF     func(targetVersion uint64) error
	FinishSyncRequestF    func() error
	LastSyncedVersionF    func() (uint64, error)
	SetLastSyncedVersionF func(version uint64) error
}

// Default sets the Cant flags to [cant].
func (s *TestStore) Default(cant bool) {
	s.CantPendingSyncRequest = cant
	s.CantStartSyncRequest = cant
	s.CantFinishSyncRequest = cant
	s.CantLastSyncedVersion = cant
	s.CantSetLastSyncedVersion = cant
}

func (s *TestStore) PendingSyncRequest() (*PendingSyncRequest, error) {
	if s.PendingSyncRequestF != nil {
		return s.PendingSyncRequestF()
	}
	if s.CantPendingSyncRequest && s.T != nil {
		s.T.Fatal("Unexpectedly called PendingSyncRequest")
	}
	return nil, nil
}

func (s *TestStore) StartSyncRequest(targetVersion uint64) error {
	if s.StartSyncRequestF != nil {
		return s.StartSyncRequestF(targetVersion)
	}
	if s.CantStartSyncRequest && s.T != nil {
		s.T.Fatal("Unexpectedly called StartSyncRequest")
	}
	return nil
}

func (s *TestStore) FinishSyncRequest() error {
	if s.FinishSyncRequestF != nil {
		return s.FinishSyncRequestF()
	}
	if s.CantFinishSyncRequest && s.T != nil {
		s.T.Fatal("Unexpectedly called FinishSyncRequest")
	}
	return nil
}

func (s *TestStore) LastSyncedVersion() (uint64, error) {
	if s.LastSyncedVersionF != nil {
		return s.LastSyncedVersionF()
	}
	if s.CantLastSyncedVersion && s.T != nil {
		s.T.Fatal("Unexpectedly called LastSyncedVersion")
	}
	return 0, nil
}

func (s *TestStore) SetLastSyncedVersion(version uint64) error {
	if s.SetLastSyncedVersionF != nil {
		return s.SetLastSyncedVersionF(version)
	}
	if s.CantSetLastSyncedVersion && s.T != nil {
		s.T.Fatal("Unexpectedly called SetLastSyncedVersion")
	}
	return nil
}
