// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package axis maps values to bin indices. An axis divides the value range
// into a fixed number of bins; values not covered by any bin are reported with
// index -1 and are not counted.
package axis

import (
	"golang.org/x/exp/constraints"
)

// Kind identifies the type of an axis, for instance in its encoding.
type Kind uint8

const (
	KindBinary Kind = iota + 1
	KindInteger
	KindRegular
)

func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindInteger:
		return "integer"
	case KindRegular:
		return "regular"
	}
	return "unknown"
}

// Outside is the index reported for values not covered by an axis.
const Outside = -1

// Axis computes the bin index of a value.
type Axis interface {
	// Index returns the index of the bin covering the given value, or Outside.
	Index(value float64) int
	// Size returns the number of bins.
	Size() int
	// Kind returns the type of the axis.
	Kind() Kind
	// Metadata returns the user supplied label of the axis.
	Metadata() string
	// Value returns the lower edge (or the value) of the bin with the given index.
	Value(index int) float64
}

// IndexOf computes the bin index of a value of any numeric type.
func IndexOf[T constraints.Integer | constraints.Float](a Axis, value T) int {
	return a.Index(float64(value))
}

// Equal reports whether two axes have the same kind, binning and metadata.
func Equal(a, b Axis) bool {
	if a.Kind() != b.Kind() || a.Size() != b.Size() || a.Metadata() != b.Metadata() {
		return false
	}
	for i := range a.Size() {
		if a.Value(i) != b.Value(i) {
			return false
		}
	}
	return true
}
