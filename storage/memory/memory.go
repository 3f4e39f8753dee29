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
	"fmt"
	"unsafe"

	"github.com/0xsoniclabs/bincount/common"
	"github.com/0xsoniclabs/bincount/common/largeint"
	"github.com/0xsoniclabs/bincount/storage"
)

// Storage is an in-memory storage.Storage implementation holding one
// largeint.Int per bin. It is not safe for concurrent use.
type Storage struct {
	bins  []largeint.Int
	alloc largeint.Allocator // nil for the heap
}

// NewStorage creates a storage with the given number of bins, all holding
// zero. Growth of the counts is served by the given allocator, or by the heap
// if it is nil.
func NewStorage(bins int, alloc largeint.Allocator) (*Storage, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("memory storage needs at least one bin, got %d", bins)
	}
	res := &Storage{
		bins:  make([]largeint.Int, bins),
		alloc: alloc,
	}
	res.Reset()
	return res, nil
}

// Factory returns a storage.Factory producing memory storages sharing the
// given allocator.
func Factory(alloc largeint.Allocator) storage.Factory {
	return func(bins int) (storage.Storage, error) {
		return NewStorage(bins, alloc)
	}
}

func (s *Storage) Size() int {
	return len(s.bins)
}

func (s *Storage) Increment(bin int) error {
	if err := storage.CheckBin(bin, len(s.bins)); err != nil {
		return err
	}
	return s.bins[bin].Increment()
}

func (s *Storage) AddUint64(bin int, amount uint64) error {
	if err := storage.CheckBin(bin, len(s.bins)); err != nil {
		return err
	}
	return s.bins[bin].AddUint64(amount)
}

func (s *Storage) Add(bin int, amount *largeint.Int) error {
	if err := storage.CheckBin(bin, len(s.bins)); err != nil {
		return err
	}
	return s.bins[bin].Add(amount)
}

func (s *Storage) Get(bin int) (largeint.Int, error) {
	if err := storage.CheckBin(bin, len(s.bins)); err != nil {
		return largeint.Int{}, err
	}
	return s.bins[bin].Clone(), nil
}

func (s *Storage) Concurrent() bool {
	return false
}

// Reset sets all counts to zero, returning grown memory to the allocator.
func (s *Storage) Reset() {
	for i := range s.bins {
		s.bins[i].Release()
		if s.alloc != nil {
			s.bins[i] = largeint.NewWithAllocator(s.alloc)
		}
	}
}

// GetMemoryFootprint provides the size of the storage in memory in bytes.
func (s *Storage) GetMemoryFootprint() *common.MemoryFootprint {
	words := 0
	for i := range s.bins {
		words += s.bins[i].Len()
	}
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*s))
	counts := common.NewMemoryFootprint(uintptr(len(s.bins))*unsafe.Sizeof(largeint.Int{}) + uintptr(words)*8)
	counts.SetNote(fmt.Sprintf("(bins: %d, words: %d)", len(s.bins), words))
	mf.AddChild("counts", counts)
	return mf
}
