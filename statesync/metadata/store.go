// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metadata persists the state sync driver's crash-recovery state,
// separate from the ledger itself.
package metadata

import (
	"errors"
	"fmt"

	"github.com/chainflow/chainflowgo/database"
)

var (
	lastSyncedVersionKey  = []byte("last_synced_version")
	pendingSyncRequestKey = []byte("pending_sync_request")

	errNoPendingRequest = errors.New("no pending sync request to finish")

	_ Store = (*store)(nil)
)

// PendingSyncRequest records that a sync target was requested but not yet
// confirmed complete as of the last checkpoint. Its existence across a
// restart implies the process crashed mid-sync.
type PendingSyncRequest struct {
	TargetVersion uint64
}

// Store reads and writes the driver's persisted sync metadata.
//
// The pending sync request is written by the driver's commit path and read
// by any number of driver clients; readers may observe a stale record.
type Store interface {
	// PendingSyncRequest returns the unfinished sync request, or nil if no
	// sync was in flight as of the last checkpoint.
	PendingSyncRequest() (*PendingSyncRequest, error)

	// StartSyncRequest checkpoints a new in-flight sync target.
	StartSyncRequest(targetVersion uint64) error

	// FinishSyncRequest clears the in-flight sync target.
	FinishSyncRequest() error

	// LastSyncedVersion returns the highest ledger version confirmed
	// synced, or 0 for a node that has never synced.
	LastSyncedVersion() (uint64, error)

	// SetLastSyncedVersion checkpoints the highest synced ledger version.
	SetLastSyncedVersion(version uint64) error
}

type store struct {
	db database.Database
}

// New returns a Store persisting into [db].
func New(db database.Database) Store {
	return &store{db: db}
}

func (s *store) PendingSyncRequest() (*PendingSyncRequest, error) {
	target, err := database.GetUInt64(s.db, pendingSyncRequestKey)
	if err == database.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("couldn't read pending sync request: %w", err)
	}
	return &PendingSyncRequest{TargetVersion: target}, nil
}

func (s *store) StartSyncRequest(targetVersion uint64) error {
	return database.PutUInt64(s.db, pendingSyncRequestKey, targetVersion)
}

func (s *store) FinishSyncRequest() error {
	had, err := database.HasAndDelete(s.db, pendingSyncRequestKey)
	if err != nil {
		return err
	}
	if !had {
		return errNoPendingRequest
	}
	return nil
}

func (s *store) LastSyncedVersion() (uint64, error) {
	version, err := database.GetUInt64(s.db, lastSyncedVersionKey)
	if err == database.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("couldn't read last synced version: %w", err)
	}
	return version, nil
}

func (s *store) SetLastSyncedVersion(version uint64) error {
	return database.PutUInt64(s.db, lastSyncedVersionKey, version)
}
