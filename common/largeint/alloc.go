// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package largeint

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/pbnjay/memory"
)

// ErrAllocation is returned when the words of an Int can not be grown.
var ErrAllocation = errors.New("largeint: allocation failed")

// wordSize is the number of bytes of a single word.
const wordSize = 8

// Allocator is the memory policy for the word sequence of an Int. Every word
// beyond the first one an Int holds is obtained through its allocator.
type Allocator interface {
	// Grow returns a word slice of the given length with the content of words
	// as its prefix and zeros in the remaining positions. The given words are
	// no longer used by the caller once Grow succeeds. If the memory can not be
	// provided, an error wrapping ErrAllocation is returned.
	Grow(words []uint64, length int) ([]uint64, error)
	// Free returns the given words, previously obtained from Grow, to the
	// allocator.
	Free(words []uint64)
}

// HeapAllocator serves all requests from the Go heap. It never fails.
type HeapAllocator struct{}

var heap Allocator = HeapAllocator{}

func (HeapAllocator) Grow(words []uint64, length int) ([]uint64, error) {
	res := make([]uint64, length, max(length, 2*cap(words)))
	copy(res, words)
	return res, nil
}

func (HeapAllocator) Free([]uint64) {}

// Budget is an Allocator limiting the total number of words held by all Ints
// sharing it. It is safe for concurrent use. Capacity is charged, not length,
// and the first word of each Int is free of charge.
type Budget struct {
	limit int64 // in words
	inUse atomic.Int64
}

// maxBudgetWords caps the limit of a budget such that its size in bytes fits
// into a uint64.
const maxBudgetWords = math.MaxUint64 / wordSize

// NewBudget creates a budget allowing Ints to grow by up to the given number
// of bytes in total.
func NewBudget(bytes uint64) *Budget {
	return &Budget{limit: int64(min(bytes/wordSize, maxBudgetWords))}
}

// NewBudgetFromSystem creates a budget covering the given fraction of the
// physical memory of the host. If the amount of physical memory can not be
// determined, the budget is unlimited.
func NewBudgetFromSystem(fraction float64) (*Budget, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("memory fraction must be in (0,1], got %v", fraction)
	}
	total := memory.TotalMemory()
	if total == 0 {
		return NewBudget(math.MaxUint64), nil
	}
	return NewBudget(uint64(float64(total) * fraction)), nil
}

// Limit returns the number of bytes the budget covers.
func (b *Budget) Limit() uint64 {
	return uint64(b.limit) * wordSize
}

// InUse returns the number of bytes currently charged to the budget.
func (b *Budget) InUse() uint64 {
	return uint64(b.inUse.Load()) * wordSize
}

func (b *Budget) Grow(words []uint64, length int) ([]uint64, error) {
	have := cap(words)
	// Prefer doubling for amortized constant growth; fall back to the exact
	// length if the budget is too tight for it.
	for _, capacity := range []int{max(length, 2*have), length} {
		if b.charge(int64(capacity - max(have, 1))) {
			res := make([]uint64, length, capacity)
			copy(res, words)
			return res, nil
		}
	}
	return nil, fmt.Errorf("%w: growing to %d words exceeds budget of %d bytes (%d in use)",
		ErrAllocation, length, b.Limit(), b.InUse())
}

func (b *Budget) Free(words []uint64) {
	if n := cap(words) - 1; n > 0 {
		b.inUse.Add(-int64(n))
	}
}

// charge reserves the given number of words, reporting whether they fit.
func (b *Budget) charge(words int64) bool {
	for {
		cur := b.inUse.Load()
		if cur+words > b.limit {
			return false
		}
		if b.inUse.CompareAndSwap(cur, cur+words) {
			return true
		}
	}
}
