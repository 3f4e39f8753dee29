// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package depot

//go:generate mockgen -source store.go -destination store_mocks.go -package depot

import (
	"errors"

	"github.com/0xsoniclabs/bincount/common"
)

// ErrNotFound is returned when accessing a record that does not exist.
var ErrNotFound = errors.New("depot: not found")

// Store is a key/value store for the records of a depot. Keys are non-empty
// strings, values are opaque byte slices.
type Store interface {
	// Set stores a copy of the given value under the given key.
	Set(key string, value []byte) error
	// Get returns the value stored under the given key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Delete removes the given key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys returns all keys in ascending order.
	Keys() ([]string, error)
	// Flush writes buffered changes to persistent storage.
	Flush() error
	// Close flushes and releases all resources of the store.
	Close() error
	// GetMemoryFootprint provides the size of the store in memory.
	GetMemoryFootprint() *common.MemoryFootprint
}
