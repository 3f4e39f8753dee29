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

import (
	"fmt"
	"math"
)

// Regular is an axis splitting [lo, hi) into bins of equal width.
type Regular struct {
	bins   int
	lo, hi float64
	meta   string
}

func NewRegular(bins int, lo, hi float64, meta string) (*Regular, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("regular axis needs at least one bin, got %d", bins)
	}
	if math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsNaN(hi) || math.IsInf(hi, 0) || lo >= hi {
		return nil, fmt.Errorf("invalid regular axis range [%v,%v)", lo, hi)
	}
	return &Regular{bins: bins, lo: lo, hi: hi, meta: meta}, nil
}

func (a *Regular) Index(value float64) int {
	if !(value >= a.lo && value < a.hi) {
		return Outside
	}
	// rounding may push values just below hi into a non-existing bin
	return min(int((value-a.lo)/(a.hi-a.lo)*float64(a.bins)), a.bins-1)
}

func (a *Regular) Size() int        { return a.bins }
func (a *Regular) Kind() Kind       { return KindRegular }
func (a *Regular) Metadata() string { return a.meta }

func (a *Regular) Value(index int) float64 {
	return a.lo + (a.hi-a.lo)*float64(index)/float64(a.bins)
}

// Range returns the lower and upper edge of the axis.
func (a *Regular) Range() (lo, hi float64) {
	return a.lo, a.hi
}
