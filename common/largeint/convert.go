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
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strconv"

	"github.com/holiman/uint256"
)

var (
	// ErrEmpty is returned when restoring an Int from an empty word sequence.
	ErrEmpty = errors.New("largeint: empty word sequence")
	// ErrNonCanonical is returned when restoring an Int from a word sequence
	// with a leading zero word.
	ErrNonCanonical = errors.New("largeint: leading zero word")
	// ErrNegative is returned when converting a negative big.Int.
	ErrNegative = errors.New("largeint: negative value")
)

// FromWords creates an Int from the given words, least significant word
// first. The words must be in canonical form: at least one word, and no zero
// most significant word unless it is the only one.
func FromWords(words []uint64) (Int, error) {
	if err := checkCanonical(words); err != nil {
		return Int{}, err
	}
	return Int{words: slices.Clone(words)}, nil
}

func checkCanonical(words []uint64) error {
	if len(words) == 0 {
		return ErrEmpty
	}
	if len(words) > 1 && words[len(words)-1] == 0 {
		return fmt.Errorf("%w: %d words with zero most significant word", ErrNonCanonical, len(words))
	}
	return nil
}

// FromUint256 creates an Int holding the given 256-bit value.
func FromUint256(v *uint256.Int) Int {
	return Int{words: slices.Clone(trim(v[:]))}
}

// FromBig creates an Int holding the given value, which must not be negative.
func FromBig(v *big.Int) (Int, error) {
	if v.Sign() < 0 {
		return Int{}, fmt.Errorf("%w: %v", ErrNegative, v)
	}
	bytes := v.Bytes() // big-endian
	words := make([]uint64, max(1, (len(bytes)+wordSize-1)/wordSize))
	for i := range words {
		end := len(bytes) - i*wordSize
		start := max(0, end-wordSize)
		var buffer [wordSize]byte
		copy(buffer[wordSize-(end-start):], bytes[start:end])
		words[i] = binary.BigEndian.Uint64(buffer[:])
	}
	return Int{words: words}, nil
}

// AddUint256 adds the given 256-bit value to x. On failure x is unchanged.
func (x *Int) AddUint256(v *uint256.Int) error {
	return x.addWords(trim(v[:]))
}

// IsUint64 reports whether x can be represented as a uint64.
func (x *Int) IsUint64() bool {
	return x.Len() == 1
}

// Uint64 returns the value of x and whether it fits into a uint64. If it
// does not, the least significant word is returned.
func (x *Int) Uint64() (uint64, bool) {
	words := x.digits()
	return words[0], len(words) == 1
}

// Uint256 returns the value of x and whether it fits into 256 bits. If it
// does not, the value is truncated to its least significant 256 bits.
func (x *Int) Uint256() (uint256.Int, bool) {
	var res uint256.Int
	words := x.digits()
	copy(res[:], words)
	return res, len(words) <= len(res)
}

// Big returns the value of x as a big.Int.
func (x *Int) Big() *big.Int {
	words := x.digits()
	bytes := make([]byte, len(words)*wordSize)
	for i, w := range words {
		binary.BigEndian.PutUint64(bytes[len(bytes)-(i+1)*wordSize:], w)
	}
	return new(big.Int).SetBytes(bytes)
}

// String returns the decimal representation of x.
func (x *Int) String() string {
	if value, ok := x.Uint64(); ok {
		return strconv.FormatUint(value, 10)
	}
	return x.Big().String()
}

// trim removes leading zero words, keeping at least one word.
func trim(words []uint64) []uint64 {
	n := len(words)
	for n > 1 && words[n-1] == 0 {
		n--
	}
	return words[:n]
}
