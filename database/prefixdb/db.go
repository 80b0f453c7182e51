// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package prefixdb partitions a database's key space by prepending a
// static prefix to every key.
package prefixdb

import (
	"sync"

	"github.com/chainflow/chainflowgo/database"
)

var _ database.Database = (*Database)(nil)

// Database partitions a database into a sub-database by prefixing all keys
// with a unique value.
type Database struct {
	lock   sync.RWMutex
	prefix []byte
	db     database.Database
	closed bool
}

// New returns a new prefixed database
func New(prefix []byte, db database.Database) *Database {
	return &Database{
		prefix: prefix,
		db:     db,
	}
}

func (db *Database) Has(key []byte) (bool, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return false, database.ErrClosed
	}
	return db.db.Has(db.prefixedKey(key))
}

func (db *Database) Get(key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return nil, database.ErrClosed
	}
	return db.db.Get(db.prefixedKey(key))
}

func (db *Database) Put(key, value []byte) error {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return database.ErrClosed
	}
	return db.db.Put(db.prefixedKey(key), value)
}

func (db *Database) Delete(key []byte) error {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.closed {
		return database.ErrClosed
	}
	return db.db.Delete(db.prefixedKey(key))
}

// Close marks this wrapper closed. The underlying database is left open;
// it may back other prefixed partitions.
func (db *Database) Close() error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.closed {
		return database.ErrClosed
	}
	db.closed = true
	return nil
}

func (db *Database) prefixedKey(key []byte) []byte {
	prefixedKey := make([]byte, len(db.prefix)+len(key))
	copy(prefixedKey, db.prefix)
	copy(prefixedKey[len(db.prefix):], key)
	return prefixedKey
}
