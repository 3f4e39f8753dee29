// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package largeint provides Int, a non-negative integer which can grow
// arbitrarily large (until its allocator refuses to provide more memory). It
// is intended to be used as the count of a histogram bin, where it must never
// overflow silently and where it must interoperate with fixed-width unsigned
// integers and with floating point weights.
//
// Int only supports the operations a bin counter needs: increment, addition,
// comparison, and a lossy conversion to float64. It is not a general purpose
// arbitrary-precision library; use math/big for that.
//
// Internally, an Int is a sequence of 64-bit words forming the digits of a
// base 2^64 numeral, least significant word first. The sequence is never empty
// and, if it has more than one word, its most significant word is not zero.
// Thus, the number of words is a canonical measure of the magnitude of the
// value, which is exploited by the comparison operations.
//
// An Int is a mutable value without internal synchronization. It must not be
// copied by assignment after it has been modified; use Clone instead.
package largeint

import (
	"math"
	"math/bits"
	"slices"
)

// Int is a non-negative integer of unbounded magnitude. The zero value is
// ready to use and represents 0.
type Int struct {
	words []uint64 // least significant word first; nil is interpreted as [0]
	alloc Allocator
}

// maxWord is the maximum value a single word can hold.
const maxWord = math.MaxUint64

// zero is the read-only word sequence representing 0 for an uninitialized Int.
var zero = [1]uint64{0}

// New creates an Int holding 0, growing its words on the heap.
func New() Int {
	return Int{words: []uint64{0}}
}

// FromUint64 creates an Int holding the given value.
func FromUint64(value uint64) Int {
	return Int{words: []uint64{value}}
}

// NewWithAllocator creates an Int holding 0 whose growth is served by the
// given allocator. The first word is not charged to the allocator.
func NewWithAllocator(alloc Allocator) Int {
	return Int{words: []uint64{0}, alloc: alloc}
}

// FromUint64WithAllocator creates an Int holding the given value whose growth
// is served by the given allocator.
func FromUint64WithAllocator(value uint64, alloc Allocator) Int {
	return Int{words: []uint64{value}, alloc: alloc}
}

// Set assigns the given fixed-width value to x. Capacity obtained so far is
// retained for future growth.
func (x *Int) Set(value uint64) {
	if len(x.words) == 0 {
		x.words = []uint64{value}
		return
	}
	x.words = x.words[:1]
	x.words[0] = value
}

// Clone creates an independent copy of x. The copy grows on the heap.
func (x *Int) Clone() Int {
	return Int{words: slices.Clone(x.digits())}
}

// Release returns the memory of x to its allocator and resets x to 0.
func (x *Int) Release() {
	if len(x.words) > 0 {
		x.allocator().Free(x.words)
	}
	x.words = []uint64{0}
}

// SetAllocator makes the given allocator serve the future growth of x; nil
// selects the heap. Words x has grown beyond the first one are moved into
// memory of the new allocator and returned to the old one. If the new
// allocator refuses, x keeps its words and allocator and an error is returned.
func (x *Int) SetAllocator(alloc Allocator) error {
	if cap(x.words) > 1 {
		target := alloc
		if target == nil {
			target = heap
		}
		words, err := target.Grow(x.words[:1:1], len(x.words))
		if err != nil {
			return err
		}
		copy(words, x.words)
		x.allocator().Free(x.words)
		x.words = words
	}
	x.alloc = alloc
	return nil
}

// Len returns the number of words used to represent x.
func (x *Int) Len() int {
	return len(x.digits())
}

// Words returns a copy of the words of x, least significant word first.
func (x *Int) Words() []uint64 {
	return slices.Clone(x.digits())
}

// Increment adds 1 to x. It fails only if x needs to grow and its allocator
// refuses to provide the memory, in which case x is left unchanged.
func (x *Int) Increment() error {
	x.init()
	if err := x.reserveCarry(0); err != nil {
		return err
	}
	x.propagate(0)
	return nil
}

// AddUint64 adds the given fixed-width value to x. On failure x is unchanged.
func (x *Int) AddUint64(value uint64) error {
	x.init()
	sum := x.words[0]
	if safeAdd(&sum, value) {
		x.words[0] = sum
		return nil
	}
	if err := x.reserveCarry(1); err != nil {
		return err
	}
	x.words[0] += value // keeps the remainder modulo 2^64
	x.propagate(1)
	return nil
}

// Add adds o to x. Adding x to itself doubles x. On failure x is unchanged.
func (x *Int) Add(o *Int) error {
	if x == o {
		snapshot := slices.Clone(o.digits())
		return x.addWords(snapshot)
	}
	return x.addWords(o.digits())
}

// addWords adds the canonical number represented by src to x.
func (x *Int) addWords(src []uint64) error {
	x.init()
	n := max(len(x.words), len(src))
	length := n
	// Once capacity for n+1 words exists, a final carry can always be placed
	// without consulting the allocator. Otherwise the carry-out is determined
	// up front to request exactly the required memory before mutating.
	if cap(x.words) <= n && carriesOut(x.words, src) {
		length = n + 1
	}
	if err := x.extend(length); err != nil {
		return err
	}

	carry := false
	i := 0
	for ; i < len(src); i++ {
		digit := src[i]
		if carry {
			if !safeIncrement(&digit) {
				// digit + carry == 2^64: the word stays, the carry moves on
				continue
			}
			carry = false
		}
		if !safeAdd(&x.words[i], digit) {
			x.words[i] += digit
			carry = true
		}
	}
	if carry {
		x.propagate(i)
	}
	return nil
}

// Float64 returns the value of x as a floating point number. The conversion is
// exact up to 2^53 and an approximation beyond that. Values exceeding the range
// of float64 are reported as +Inf.
func (x *Int) Float64() float64 {
	result := 0.0
	for i, word := range x.digits() {
		result += math.Ldexp(float64(word), 64*i)
	}
	return result
}

// digits returns the words of x, substituting the zero sequence if x has not
// been initialized. The result must not be modified.
func (x *Int) digits() []uint64 {
	if len(x.words) == 0 {
		return zero[:]
	}
	return x.words
}

func (x *Int) init() {
	if len(x.words) == 0 {
		x.words = []uint64{0}
	}
}

func (x *Int) allocator() Allocator {
	if x.alloc == nil {
		return heap
	}
	return x.alloc
}

// extend makes x hold the given number of words, filling new words with
// zeros. Memory beyond the current capacity is requested from the allocator;
// if it is refused, x is not modified.
func (x *Int) extend(length int) error {
	if length <= len(x.words) {
		return nil
	}
	if length <= cap(x.words) {
		old := len(x.words)
		x.words = x.words[:length]
		clear(x.words[old:])
		return nil
	}
	words, err := x.allocator().Grow(x.words, length)
	if err != nil {
		return err
	}
	x.words = words
	return nil
}

// reserveCarry makes sure a carry entering at word i can be propagated, by
// growing x if all words from i on hold the maximum value.
func (x *Int) reserveCarry(i int) error {
	if firstBelowMax(x.words, i) < len(x.words) {
		return nil
	}
	return x.extend(len(x.words) + 1)
}

// propagate adds a carry of one at word i. Words holding the maximum value wrap
// to zero and pass the carry on. Required memory must have been reserved.
func (x *Int) propagate(i int) {
	j := firstBelowMax(x.words, i)
	if j == len(x.words) {
		x.words = append(x.words, 0)
	}
	clear(x.words[i:j])
	x.words[j]++
}

// firstBelowMax returns the index of the first word at or after i which does
// not hold the maximum value, or len(words) if there is none.
func firstBelowMax(words []uint64, i int) int {
	for i < len(words) && words[i] == maxWord {
		i++
	}
	return i
}

// carriesOut reports whether adding a and b produces a carry beyond the longer
// of the two.
func carriesOut(a, b []uint64) bool {
	var carry uint64
	for i := range max(len(a), len(b)) {
		_, carry = bits.Add64(wordAt(a, i), wordAt(b, i), carry)
	}
	return carry != 0
}

func wordAt(words []uint64, i int) uint64 {
	if i < len(words) {
		return words[i]
	}
	return 0
}

// safeIncrement increments w unless it holds the maximum word value. It
// reports whether w was incremented.
func safeIncrement(w *uint64) bool {
	if *w < maxWord {
		*w++
		return true
	}
	return false
}

// safeAdd adds u to w unless the sum exceeds the maximum word value. It
// reports whether w was updated.
func safeAdd(w *uint64, u uint64) bool {
	if maxWord-*w >= u {
		*w += u
		return true
	}
	return false
}
