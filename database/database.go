// Copyright (C) 2021-2024, Chainflow, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package database defines the interface of the key-value stores the node
// persists its operational state into.
package database

import (
	"errors"
	"io"
)

var (
	ErrClosed   = errors.New("closed")
	ErrNotFound = errors.New("not found")
)

// KeyValueReader wraps the Has and Get methods of a backing data store.
type KeyValueReader interface {
	// Has retrieves if a key is present in the key-value data store.
	//
	// Note: [key] is safe to modify and read after calling Has.
	Has(key []byte) (bool, error)

	// Get retrieves the given key if it's present in the key-value data
	// store. Returns ErrNotFound if the key is absent.
	//
	// Note: [key] is safe to modify and read after calling Get.
	// The returned byte slice is safe to read, but cannot be modified.
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put method of a backing data store.
type KeyValueWriter interface {
	// Put inserts the given value into the key-value data store.
	//
	// Note: [key] and [value] are safe to modify and read after calling Put.
	Put(key []byte, value []byte) error
}

// KeyValueDeleter wraps the Delete method of a backing data store.
type KeyValueDeleter interface {
	// Delete removes the key from the key-value data store.
	//
	// Note: [key] is safe to modify and read after calling Delete.
	Delete(key []byte) error
}

// KeyValueReaderWriter allows read/write acccess to a backing data store.
type KeyValueReaderWriter interface {
	KeyValueReader
	KeyValueWriter
}

// Database contains all the methods required to interact with a key-value
// data store.
type Database interface {
	KeyValueReader
	KeyValueWriter
	KeyValueDeleter
	io.Closer
}
