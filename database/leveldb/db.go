// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package leveldb provides a persistent key-value store backed by
// goleveldb.
package leveldb

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"go.uber.org/zap"

	"github.com/chainflow/chainflowgo/database"
	"github.com/chainflow/chainflowgo/utils/logging"
)

const (
	// Name is the name of this database for database switches
	Name = "leveldb"

	// 16 KiB is the goleveldb default; a larger block size amortizes
	// compression and disk reads for the mostly-sequential write load of a
	// syncing node.
	blockSize = 64 * opt.KiB

	writeBufferSize = 16 * opt.MiB
	handleCap       = 1024
	bitsPerKey      = 10
)

var _ database.Database = (*Database)(nil)

// Database is a persistent key-value store backed by a goleveldb instance.
type Database struct {
	log logging.Logger
	db  *leveldb.DB
}

// New returns a wrapped LevelDB object stored at [file].
func New(file string, log logging.Logger) (*Database, error) {
	db, err := leveldb.OpenFile(file, &opt.Options{
		BlockSize:              blockSize,
		WriteBuffer:            writeBufferSize,
		OpenFilesCacheCapacity: handleCap,
		Filter:                 filter.NewBloomFilter(bitsPerKey),
	})
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		log.Warn("database corrupted, attempting recovery",
			zap.String("file", file),
		)
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &Database{
		log: log,
		db:  db,
	}, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	has, err := db.db.Has(key, nil)
	return has, updateError(err)
}

func (db *Database) Get(key []byte) ([]byte, error) {
	value, err := db.db.Get(key, nil)
	return value, updateError(err)
}

func (db *Database) Put(key []byte, value []byte) error {
	return updateError(db.db.Put(key, value, nil))
}

func (db *Database) Delete(key []byte) error {
	return updateError(db.db.Delete(key, nil))
}

func (db *Database) Close() error {
	return updateError(db.db.Close())
}

// updateError casts goleveldb's sentinel errors to their database
// equivalents so that callers only ever match against one error set.
func updateError(err error) error {
	switch err {
	case leveldb.ErrClosed:
		return database.ErrClosed
	case leveldb.ErrNotFound:
		return database.ErrNotFound
	default:
		return err
	}
}
