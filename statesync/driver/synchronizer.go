// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import "github.com/chainflow/chainflowgo/statesync/metadata"

var _ StorageSynchronizer = (*metadataSynchronizer)(nil)

// metadataSynchronizer reports sync progress straight from the metadata
// store. It backs deployments where the real chunk executor runs out of
// process and only checkpoints through the store.
type metadataSynchronizer struct {
	store metadata.Store
}

// NewMetadataSynchronizer returns a StorageSynchronizer view over [store].
func NewMetadataSynchronizer(store metadata.Store) StorageSynchronizer {
	return &metadataSynchronizer{store: store}
}

func (*metadataSynchronizer) PendingWrites() bool {
	return false
}

func (s *metadataSynchronizer) SyncedVersion() (uint64, error) {
	return s.store.LastSyncedVersion()
}
