// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package axis

// Binary is an axis with two bins, for false (0) and true (any other value).
type Binary struct {
	meta string
}

func NewBinary(meta string) *Binary {
	return &Binary{meta: meta}
}

func (a *Binary) Index(value float64) int {
	if value == 0 {
		return 0
	}
	return 1
}

func (a *Binary) Size() int        { return 2 }
func (a *Binary) Kind() Kind       { return KindBinary }
func (a *Binary) Metadata() string { return a.meta }

func (a *Binary) Value(index int) float64 {
	if index == 0 {
		return 0
	}
	return 1
}

// Bin returns the truth value represented by the bin with the given index.
func (a *Binary) Bin(index int) bool {
	return index != 0
}

// Inclusive reports whether every value is covered by a bin, which is always
// the case for a binary axis.
func (a *Binary) Inclusive() bool {
	return true
}
