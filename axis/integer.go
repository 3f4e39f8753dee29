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

// Integer is an axis with one bin per integer in [start, stop). Values are
// rounded down before being mapped.
type Integer struct {
	start, stop int64
	meta        string
}

func NewInteger(start, stop int64, meta string) (*Integer, error) {
	if start >= stop {
		return nil, fmt.Errorf("invalid integer axis range [%d,%d)", start, stop)
	}
	return &Integer{start: start, stop: stop, meta: meta}, nil
}

func (a *Integer) Index(value float64) int {
	v := math.Floor(value)
	if !(v >= float64(a.start) && v < float64(a.stop)) {
		return Outside
	}
	return int(int64(v) - a.start)
}

func (a *Integer) Size() int        { return int(a.stop - a.start) }
func (a *Integer) Kind() Kind       { return KindInteger }
func (a *Integer) Metadata() string { return a.meta }

func (a *Integer) Value(index int) float64 {
	return float64(a.start + int64(index))
}

// Range returns the first and one-past-last integer covered by the axis.
func (a *Integer) Range() (start, stop int64) {
	return a.start, a.stop
}
