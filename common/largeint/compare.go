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
	"golang.org/x/exp/constraints"
)

// Comparisons come in three flavours:
//   - Int vs Int and Int vs uint64 form total orders. They are decided on the
//     words of the Int, exploiting that a multi-word Int exceeds any uint64.
//   - Int vs float64 is a partial order inherited from the floating point
//     domain through Float64. NaN is unordered; large values are approximate.
//
// Less-or-equal and greater-or-equal are derived differently for the two
// cases: for total orders as the negation of the opposite strict relation,
// for the partial order as the disjunction of strict relation and equality.

// Cmp compares x and y and returns -1, 0, or +1 if x is less than, equal to,
// or greater than y.
func (x *Int) Cmp(y *Int) int {
	a, b := x.digits(), y.digits()
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Equal reports whether x == y.
func (x *Int) Equal(y *Int) bool {
	a, b := x.digits(), y.digits()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (x *Int) NotEqual(y *Int) bool       { return !x.Equal(y) }
func (x *Int) Less(y *Int) bool           { return x.Cmp(y) < 0 }
func (x *Int) Greater(y *Int) bool        { return y.Less(x) }
func (x *Int) LessOrEqual(y *Int) bool    { return !y.Less(x) }
func (x *Int) GreaterOrEqual(y *Int) bool { return !x.Less(y) }

// CmpUint64 compares x with a fixed-width value.
func (x *Int) CmpUint64(u uint64) int {
	switch {
	case x.LessUint64(u):
		return -1
	case x.GreaterUint64(u):
		return 1
	}
	return 0
}

// EqualUint64 reports whether x == u.
func (x *Int) EqualUint64(u uint64) bool {
	words := x.digits()
	return len(words) == 1 && words[0] == u
}

// LessUint64 reports whether x < u.
func (x *Int) LessUint64(u uint64) bool {
	words := x.digits()
	return len(words) == 1 && words[0] < u
}

// GreaterUint64 reports whether x > u.
func (x *Int) GreaterUint64(u uint64) bool {
	words := x.digits()
	return len(words) > 1 || words[0] > u
}

func (x *Int) NotEqualUint64(u uint64) bool       { return !x.EqualUint64(u) }
func (x *Int) LessOrEqualUint64(u uint64) bool    { return !x.GreaterUint64(u) }
func (x *Int) GreaterOrEqualUint64(u uint64) bool { return !x.LessUint64(u) }

func (x *Int) EqualFloat64(f float64) bool    { return x.Float64() == f }
func (x *Int) NotEqualFloat64(f float64) bool { return !x.EqualFloat64(f) }
func (x *Int) LessFloat64(f float64) bool     { return x.Float64() < f }
func (x *Int) GreaterFloat64(f float64) bool  { return x.Float64() > f }

func (x *Int) LessOrEqualFloat64(f float64) bool {
	return x.LessFloat64(f) || x.EqualFloat64(f)
}

func (x *Int) GreaterOrEqualFloat64(f float64) bool {
	return x.GreaterFloat64(f) || x.EqualFloat64(f)
}

// CompareUnsigned compares x with a value of any unsigned integer type. The
// result is -1, 0, or +1 if x is less than, equal to, or greater than u.
func CompareUnsigned[U constraints.Unsigned](x *Int, u U) int {
	return x.CmpUint64(uint64(u))
}

// CompareFloat compares x with a value of any floating point type. The second
// result is false if the two are unordered, which is the case for NaN.
func CompareFloat[F constraints.Float](x *Int, f F) (int, bool) {
	v := float64(f)
	switch {
	case x.LessFloat64(v):
		return -1, true
	case x.GreaterFloat64(v):
		return 1, true
	case x.EqualFloat64(v):
		return 0, true
	}
	return 0, false
}

// The following functions cover comparisons with the scalar as the left-hand
// operand, i.e. UnsignedLess(u, x) reports whether u < x.

func UnsignedEqual[U constraints.Unsigned](u U, x *Int) bool    { return x.EqualUint64(uint64(u)) }
func UnsignedNotEqual[U constraints.Unsigned](u U, x *Int) bool { return x.NotEqualUint64(uint64(u)) }
func UnsignedLess[U constraints.Unsigned](u U, x *Int) bool     { return x.GreaterUint64(uint64(u)) }
func UnsignedGreater[U constraints.Unsigned](u U, x *Int) bool  { return x.LessUint64(uint64(u)) }

func UnsignedLessOrEqual[U constraints.Unsigned](u U, x *Int) bool {
	return x.GreaterOrEqualUint64(uint64(u))
}

func UnsignedGreaterOrEqual[U constraints.Unsigned](u U, x *Int) bool {
	return x.LessOrEqualUint64(uint64(u))
}

func FloatEqual[F constraints.Float](f F, x *Int) bool    { return x.EqualFloat64(float64(f)) }
func FloatNotEqual[F constraints.Float](f F, x *Int) bool { return x.NotEqualFloat64(float64(f)) }
func FloatLess[F constraints.Float](f F, x *Int) bool     { return x.GreaterFloat64(float64(f)) }
func FloatGreater[F constraints.Float](f F, x *Int) bool  { return x.LessFloat64(float64(f)) }

func FloatLessOrEqual[F constraints.Float](f F, x *Int) bool {
	return x.GreaterOrEqualFloat64(float64(f))
}

func FloatGreaterOrEqual[F constraints.Float](f F, x *Int) bool {
	return x.LessOrEqualFloat64(float64(f))
}
