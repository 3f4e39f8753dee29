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
	"math"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

const max64 = math.MaxUint64

// requireCanonical checks the invariants every reachable Int must satisfy.
func requireCanonical(t *testing.T, x *Int) {
	t.Helper()
	words := x.Words()
	require.NotEmpty(t, words, "word sequence must never be empty")
	if len(words) > 1 {
		require.NotZero(t, words[len(words)-1], "leading zero word in %v", words)
	}
}

// requireValue checks that x holds the value of the given reference.
func requireValue(t *testing.T, want *big.Int, x *Int) {
	t.Helper()
	requireCanonical(t, x)
	require.Equal(t, 0, want.Cmp(x.Big()), "want %v, got %v", want, x.Big())
}

func mustFromWords(t *testing.T, words ...uint64) Int {
	t.Helper()
	x, err := FromWords(words)
	require.NoError(t, err)
	return x
}

// randomWords produces canonical word sequences biased towards values
// triggering carry propagation.
func randomWords(r *rand.Rand) []uint64 {
	words := make([]uint64, 1+r.Intn(4))
	for i := range words {
		switch r.Intn(4) {
		case 0:
			words[i] = 0
		case 1:
			words[i] = max64
		case 2:
			words[i] = max64 - uint64(r.Intn(3))
		default:
			words[i] = r.Uint64()
		}
	}
	if len(words) > 1 && words[len(words)-1] == 0 {
		words[len(words)-1] = 1
	}
	return words
}

func TestInt_New_IsZero(t *testing.T) {
	x := New()
	require.Equal(t, []uint64{0}, x.Words())
	require.True(t, x.EqualUint64(0))
}

func TestInt_ZeroValue_IsUsableAsZero(t *testing.T) {
	var x Int
	require.Equal(t, 1, x.Len())
	require.True(t, x.EqualUint64(0))
	require.NoError(t, x.Increment())
	require.Equal(t, []uint64{1}, x.Words())
}

func TestInt_FromUint64_HoldsValue(t *testing.T) {
	x := FromUint64(42)
	require.Equal(t, []uint64{42}, x.Words())
}

func TestInt_Increment_AddsOne(t *testing.T) {
	x := FromUint64(41)
	require.NoError(t, x.Increment())
	require.Equal(t, []uint64{42}, x.Words())
}

func TestInt_Increment_CarriesAtWordBoundary(t *testing.T) {
	x := FromUint64(max64)
	require.NoError(t, x.Increment())
	require.Equal(t, 2, x.Len())
	require.Equal(t, []uint64{0, 1}, x.Words())
}

func TestInt_Increment_PropagatesThroughMaximalWords(t *testing.T) {
	x := mustFromWords(t, max64, max64, max64)
	require.NoError(t, x.Increment())
	require.Equal(t, []uint64{0, 0, 0, 1}, x.Words())

	y := mustFromWords(t, max64, max64, 7)
	require.NoError(t, y.Increment())
	require.Equal(t, []uint64{0, 0, 8}, y.Words())
}

func TestInt_Increment_MatchesReference(t *testing.T) {
	starts := [][]uint64{
		{0},
		{max64 - 10},
		{max64 - 3, max64},
		{max64 - 2, max64, max64, 3},
	}
	for _, start := range starts {
		x := mustFromWords(t, start...)
		want := x.Big()
		one := big.NewInt(1)
		for range 20 {
			require.NoError(t, x.Increment())
			want.Add(want, one)
			requireValue(t, want, &x)
		}
	}
}

func TestInt_Increment_EqualsFromUint64OfSumWhenItFits(t *testing.T) {
	x := FromUint64(1000)
	for range 500 {
		require.NoError(t, x.Increment())
	}
	want := FromUint64(1500)
	require.True(t, x.Equal(&want))
}

func TestInt_AddUint64_WithoutOverflowStaysSingleWord(t *testing.T) {
	x := New()
	require.NoError(t, x.AddUint64(max64))
	require.Equal(t, []uint64{max64}, x.Words())
}

func TestInt_AddUint64_KeepsRemainderAndCarries(t *testing.T) {
	x := mustFromWords(t, max64-1, max64)
	require.NoError(t, x.AddUint64(3))
	require.Equal(t, []uint64{1, 0, 1}, x.Words())
}

func TestInt_AddUint64_MatchesReference(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for range 1000 {
		x := mustFromWords(t, randomWords(r)...)
		u := r.Uint64()
		if r.Intn(2) == 0 {
			u = max64 - uint64(r.Intn(5))
		}
		want := new(big.Int).Add(x.Big(), new(big.Int).SetUint64(u))
		require.NoError(t, x.AddUint64(u))
		requireValue(t, want, &x)
	}
}

func TestInt_ConcreteScenario(t *testing.T) {
	x := New()
	require.NoError(t, x.AddUint64(max64))
	require.Equal(t, []uint64{max64}, x.Words())

	require.NoError(t, x.Increment())
	require.Equal(t, []uint64{0, 1}, x.Words())

	require.NoError(t, x.AddUint64(5))
	require.Equal(t, []uint64{5, 1}, x.Words())

	want, ok := new(big.Int).SetString("18446744073709551621", 10) // 2^64 + 5
	require.True(t, ok)
	requireValue(t, want, &x)
}

func TestInt_Add_ExtendsToLongerOperand(t *testing.T) {
	x := FromUint64(5)
	y := mustFromWords(t, 0, 0, 7)
	require.NoError(t, x.Add(&y))
	require.Equal(t, []uint64{5, 0, 7}, x.Words())
	require.Equal(t, []uint64{0, 0, 7}, y.Words())
}

func TestInt_Add_CarryOnOperandDigitAtMaximum(t *testing.T) {
	x := mustFromWords(t, 1, 3)
	y := mustFromWords(t, max64, max64, 1)
	want := new(big.Int).Add(x.Big(), y.Big())
	require.NoError(t, x.Add(&y))
	requireValue(t, want, &x)
	require.Equal(t, []uint64{0, 3, 2}, x.Words())
}

func TestInt_Add_CarryBeyondBothOperands(t *testing.T) {
	x := mustFromWords(t, max64, max64)
	y := FromUint64(1)
	require.NoError(t, x.Add(&y))
	require.Equal(t, []uint64{0, 0, 1}, x.Words())
}

func TestInt_Add_MatchesReference(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for range 1000 {
		x := mustFromWords(t, randomWords(r)...)
		y := mustFromWords(t, randomWords(r)...)
		want := new(big.Int).Add(x.Big(), y.Big())
		require.NoError(t, x.Add(&y))
		requireValue(t, want, &x)
	}
}

func TestInt_Add_IsCommutativeAndAssociative(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	for range 200 {
		a := mustFromWords(t, randomWords(r)...)
		b := mustFromWords(t, randomWords(r)...)
		c := mustFromWords(t, randomWords(r)...)

		ab := a.Clone()
		require.NoError(t, ab.Add(&b))
		ba := b.Clone()
		require.NoError(t, ba.Add(&a))
		require.True(t, ab.Equal(&ba))
		require.Equal(t, ab.Words(), ba.Words())

		abc := ab.Clone()
		require.NoError(t, abc.Add(&c))
		bc := b.Clone()
		require.NoError(t, bc.Add(&c))
		aBC := a.Clone()
		require.NoError(t, aBC.Add(&bc))
		require.True(t, abc.Equal(&aBC))
		require.Equal(t, abc.Words(), aBC.Words())
	}
}

func TestInt_Add_SelfAdditionDoubles(t *testing.T) {
	x := mustFromWords(t, max64, max64)
	require.NoError(t, x.Add(&x))
	require.Equal(t, []uint64{max64 - 1, max64, 1}, x.Words())

	r := rand.New(rand.NewSource(3))
	for range 200 {
		y := mustFromWords(t, randomWords(r)...)
		want := new(big.Int).Lsh(y.Big(), 1)
		require.NoError(t, y.Add(&y))
		requireValue(t, want, &y)
	}
}

func TestInt_Add_ReusesCapacityForFinalCarry(t *testing.T) {
	x := mustFromWords(t, max64, max64, max64)
	x.Set(max64)
	y := FromUint64(1)
	require.NoError(t, x.Add(&y))
	require.Equal(t, []uint64{0, 1}, x.Words())
}

func TestInt_Set_ReplacesValue(t *testing.T) {
	x := mustFromWords(t, 1, 2, 3)
	x.Set(9)
	require.Equal(t, []uint64{9}, x.Words())
	require.NoError(t, x.Increment())
	require.Equal(t, []uint64{10}, x.Words())
}

func TestInt_Clone_IsIndependent(t *testing.T) {
	x := mustFromWords(t, max64, 1)
	y := x.Clone()
	require.NoError(t, x.Increment())
	require.Equal(t, []uint64{max64, 1}, y.Words())
	require.Equal(t, []uint64{0, 2}, x.Words())
}

func TestInt_Words_ReturnsCopy(t *testing.T) {
	x := FromUint64(1)
	words := x.Words()
	words[0] = 7
	require.Equal(t, []uint64{1}, x.Words())
}

func TestInt_Release_ResetsToZero(t *testing.T) {
	x := mustFromWords(t, 1, 2)
	x.Release()
	require.Equal(t, []uint64{0}, x.Words())
}

func TestInt_Float64_ConvertsPositionally(t *testing.T) {
	tests := map[string]struct {
		words []uint64
		want  float64
	}{
		"zero":       {[]uint64{0}, 0},
		"small":      {[]uint64{12345}, 12345},
		"2^53":       {[]uint64{1 << 53}, 1 << 53},
		"2^64":       {[]uint64{0, 1}, math.Ldexp(1, 64)},
		"2^64+2^12":  {[]uint64{1 << 12, 1}, math.Ldexp(1, 64) + 4096},
		"3*2^128":    {[]uint64{0, 0, 3}, 3 * math.Ldexp(1, 128)},
		"beyond max": {append(make([]uint64, 16), 1), math.Inf(1)},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			x := mustFromWords(t, test.words...)
			require.Equal(t, test.want, x.Float64())
		})
	}
}

func TestInt_Float64_FoldsMostSignificantWordLast(t *testing.T) {
	// 2^128 + 2^75 + 2^63: adding the top word first would round the tie
	// 2^128 + 2^75 down to 2^128 and lose the lowest word.
	x := mustFromWords(t, 1<<63, 1<<11, 1)
	want := math.Ldexp(1, 128) + math.Ldexp(1, 76)
	require.Equal(t, want, x.Float64())
	require.True(t, x.EqualFloat64(want))

	reference, _ := new(big.Float).SetInt(x.Big()).Float64()
	require.Equal(t, reference, x.Float64())
}

func TestInt_Float64_IsCloseToReferenceForLargeValues(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for range 100 {
		x := mustFromWords(t, randomWords(r)...)
		want, _ := new(big.Float).SetInt(x.Big()).Float64()
		require.InEpsilon(t, want+1, x.Float64()+1, 1e-15)
	}
}

func BenchmarkInt_Increment(b *testing.B) {
	x := New()
	for b.Loop() {
		_ = x.Increment()
	}
}

func BenchmarkInt_AddUint64(b *testing.B) {
	x := New()
	for b.Loop() {
		_ = x.AddUint64(max64 / 3)
	}
}

func BenchmarkInt_Add(b *testing.B) {
	x := New()
	y, _ := FromWords([]uint64{max64, max64 / 3, 1})
	for b.Loop() {
		_ = x.Add(&y)
	}
}
