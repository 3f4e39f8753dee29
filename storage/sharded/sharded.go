// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package sharded provides a bin storage supporting concurrent updates.
//
// Each bin has a fixed-width counter updated with atomic operations. Only if
// an update would overflow it, the update is instead applied to an
// arbitrary-precision overflow count of the bin, protected by the lock of the
// shard the bin belongs to. The count of a bin is the sum of both parts.
// Bins never contend with each other on the fast path, and only bins of the
// same shard contend on the slow path.
package sharded

import (
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/0xsoniclabs/bincount/common"
	"github.com/0xsoniclabs/bincount/common/largeint"
	"github.com/0xsoniclabs/bincount/storage"
	"go.uber.org/zap"
)

// DefaultShards is the number of shards used if none is configured.
const DefaultShards = 16

// Storage is a storage.Storage implementation safe for concurrent use.
type Storage struct {
	counts []atomic.Uint64
	shards []shard
	alloc  largeint.Allocator // nil for the heap
	logger *zap.Logger
}

type shard struct {
	mu       sync.Mutex
	overflow map[int]*largeint.Int
}

// NewStorage creates a storage with the given number of bins distributed over
// the given number of shards. Growth of overflow counts is served by the given
// allocator, or by the heap if it is nil.
func NewStorage(bins, shards int, alloc largeint.Allocator, logger *zap.Logger) (*Storage, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("sharded storage needs at least one bin, got %d", bins)
	}
	if shards <= 0 {
		return nil, fmt.Errorf("sharded storage needs at least one shard, got %d", shards)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	res := &Storage{
		counts: make([]atomic.Uint64, bins),
		shards: make([]shard, min(shards, bins)),
		alloc:  alloc,
		logger: logger,
	}
	for i := range res.shards {
		res.shards[i].overflow = map[int]*largeint.Int{}
	}
	return res, nil
}

// Factory returns a storage.Factory producing sharded storages.
func Factory(shards int, alloc largeint.Allocator, logger *zap.Logger) storage.Factory {
	return func(bins int) (storage.Storage, error) {
		return NewStorage(bins, shards, alloc, logger)
	}
}

func (s *Storage) Size() int {
	return len(s.counts)
}

func (s *Storage) Increment(bin int) error {
	return s.AddUint64(bin, 1)
}

func (s *Storage) AddUint64(bin int, amount uint64) error {
	if err := storage.CheckBin(bin, len(s.counts)); err != nil {
		return err
	}
	count := &s.counts[bin]
	for {
		old := count.Load()
		sum, carry := bits.Add64(old, amount, 0)
		if carry != 0 {
			return s.addToOverflow(bin, func(x *largeint.Int) error {
				return x.AddUint64(amount)
			})
		}
		if count.CompareAndSwap(old, sum) {
			return nil
		}
	}
}

func (s *Storage) Add(bin int, amount *largeint.Int) error {
	if value, ok := amount.Uint64(); ok {
		return s.AddUint64(bin, value)
	}
	if err := storage.CheckBin(bin, len(s.counts)); err != nil {
		return err
	}
	return s.addToOverflow(bin, func(x *largeint.Int) error {
		return x.Add(amount)
	})
}

// addToOverflow applies an update which does not fit the fixed-width count
// of a bin. The fixed-width part is folded into a new overflow count together
// with the update, which replaces the old overflow count only if all steps
// succeed and no fast-path update interfered.
func (s *Storage) addToOverflow(bin int, add func(*largeint.Int) error) error {
	shard := s.shardOf(bin)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	current := shard.overflow[bin]
	for {
		fixed := s.counts[bin].Load()
		next := largeint.NewWithAllocator(s.alloc)
		if err := s.combine(&next, current, fixed, add); err != nil {
			next.Release()
			return fmt.Errorf("failed to update overflow count of bin %d: %w", bin, err)
		}
		if s.counts[bin].CompareAndSwap(fixed, 0) {
			if current != nil {
				current.Release()
			} else {
				s.logger.Debug("bin count exceeds fixed-width range", zap.Int("bin", bin))
			}
			shard.overflow[bin] = &next
			return nil
		}
		next.Release()
	}
}

func (s *Storage) combine(next, current *largeint.Int, fixed uint64, add func(*largeint.Int) error) error {
	if current != nil {
		if err := next.Add(current); err != nil {
			return err
		}
	}
	if err := next.AddUint64(fixed); err != nil {
		return err
	}
	return add(next)
}

func (s *Storage) Get(bin int) (largeint.Int, error) {
	if err := storage.CheckBin(bin, len(s.counts)); err != nil {
		return largeint.Int{}, err
	}
	shard := s.shardOf(bin)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	res := largeint.FromUint64(s.counts[bin].Load())
	if x, found := shard.overflow[bin]; found {
		if err := res.Add(x); err != nil {
			return largeint.Int{}, err
		}
	}
	return res, nil
}

func (s *Storage) Concurrent() bool {
	return true
}

// Reset sets all counts to zero. It must not run concurrently with updates.
func (s *Storage) Reset() {
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.Lock()
		for bin, x := range shard.overflow {
			x.Release()
			delete(shard.overflow, bin)
		}
		shard.mu.Unlock()
	}
	for i := range s.counts {
		s.counts[i].Store(0)
	}
}

// Overflowed returns the number of bins whose count exceeded the fixed-width
// range at some point since the last reset.
func (s *Storage) Overflowed() int {
	res := 0
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.Lock()
		res += len(shard.overflow)
		shard.mu.Unlock()
	}
	return res
}

func (s *Storage) shardOf(bin int) *shard {
	return &s.shards[bin%len(s.shards)]
}

// GetMemoryFootprint provides the size of the storage in memory in bytes.
func (s *Storage) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*s))
	mf.AddChild("counts", common.NewMemoryFootprint(uintptr(len(s.counts))*unsafe.Sizeof(atomic.Uint64{})))
	words, entries := 0, 0
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.Lock()
		for _, x := range shard.overflow {
			words += x.Len()
		}
		entries += len(shard.overflow)
		shard.mu.Unlock()
	}
	overflow := common.NewMemoryFootprint(uintptr(entries)*(unsafe.Sizeof(0)+unsafe.Sizeof(largeint.Int{})) + uintptr(words)*8)
	overflow.SetNote(fmt.Sprintf("(bins: %d)", entries))
	mf.AddChild("overflow", overflow)
	return mf
}
