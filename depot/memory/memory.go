// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"maps"
	"slices"
	"unsafe"

	"github.com/0xsoniclabs/bincount/common"
	"github.com/0xsoniclabs/bincount/depot"
)

// Store is an in-memory depot.Store implementation - it maps keys to values
type Store struct {
	data map[string][]byte
}

// NewStore constructs a new, empty instance of Store.
func NewStore() *Store {
	return &Store{data: map[string][]byte{}}
}

// Set a value of a key
func (m *Store) Set(key string, value []byte) error {
	m.data[key] = slices.Clone(value)
	return nil
}

// Get a value of the key
func (m *Store) Get(key string) ([]byte, error) {
	value, found := m.data[key]
	if !found {
		return nil, depot.ErrNotFound
	}
	return slices.Clone(value), nil
}

func (m *Store) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func (m *Store) Keys() ([]string, error) {
	return slices.Sorted(maps.Keys(m.data)), nil
}

// Flush the store
func (m *Store) Flush() error {
	return nil // no-op for in-memory database
}

// Close the store
func (m *Store) Close() error {
	return nil // no-op for in-memory database
}

// GetMemoryFootprint provides the size of the store in memory in bytes
func (m *Store) GetMemoryFootprint() *common.MemoryFootprint {
	size := unsafe.Sizeof(*m)
	for key, value := range m.data {
		size += unsafe.Sizeof(key) + uintptr(len(key)) + unsafe.Sizeof(value) + uintptr(len(value))
	}
	return common.NewMemoryFootprint(size)
}
