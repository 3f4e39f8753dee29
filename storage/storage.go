// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package storage

//go:generate mockgen -source storage.go -destination storage_mocks.go -package storage

import (
	"errors"
	"fmt"

	"github.com/0xsoniclabs/bincount/common"
	"github.com/0xsoniclabs/bincount/common/largeint"
)

// ErrOutOfRange is returned when addressing a bin the storage does not have.
var ErrOutOfRange = errors.New("storage: bin out of range")

// Storage holds the counts of the bins of a histogram. Bins are addressed by
// their linear index in [0, Size()). Counts never overflow; operations fail
// only for invalid bins or if the memory for growing a count is refused.
type Storage interface {
	// Size returns the number of bins.
	Size() int
	// Increment adds one to the count of the given bin.
	Increment(bin int) error
	// AddUint64 adds the given amount to the count of the given bin.
	AddUint64(bin int, amount uint64) error
	// Add adds the given amount to the count of the given bin.
	Add(bin int, amount *largeint.Int) error
	// Get returns a copy of the count of the given bin.
	Get(bin int) (largeint.Int, error)
	// Reset sets all counts to zero. It must not run concurrently with other
	// operations.
	Reset()
	// Concurrent reports whether updates and reads may be issued from multiple
	// goroutines at the same time.
	Concurrent() bool
	// GetMemoryFootprint provides the size of the storage in memory.
	GetMemoryFootprint() *common.MemoryFootprint
}

// Factory creates a storage with the given number of bins.
type Factory func(bins int) (Storage, error)

// CheckBin returns an error if bin is not a valid index for the given size.
func CheckBin(bin, size int) error {
	if bin < 0 || bin >= size {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, bin, size)
	}
	return nil
}
