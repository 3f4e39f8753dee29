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
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestBinary_MapsFalseAndTrue(t *testing.T) {
	a := NewBinary("flag")
	require.Equal(t, 2, a.Size())
	require.Equal(t, 0, a.Index(0))
	require.Equal(t, 1, a.Index(1))
	require.Equal(t, 1, a.Index(-3.5))
	require.False(t, a.Bin(0))
	require.True(t, a.Bin(1))
	require.True(t, a.Inclusive())
	require.Equal(t, "flag", a.Metadata())
	require.Equal(t, 1, IndexOf(a, uint8(1)))
}

func TestInteger_MapsEachIntegerToOwnBin(t *testing.T) {
	a, err := NewInteger(-2, 3, "")
	require.NoError(t, err)
	require.Equal(t, 5, a.Size())
	require.Equal(t, 0, a.Index(-2))
	require.Equal(t, 0, a.Index(-1.5))
	require.Equal(t, 4, a.Index(2.99))
	require.Equal(t, Outside, a.Index(3))
	require.Equal(t, Outside, a.Index(-2.01))
	require.Equal(t, Outside, a.Index(math.NaN()))
	require.Equal(t, 2, IndexOf(a, int8(0)))
	require.Equal(t, -1.0, a.Value(1))
	start, stop := a.Range()
	require.Equal(t, int64(-2), start)
	require.Equal(t, int64(3), stop)
}

func TestInteger_RejectsEmptyRange(t *testing.T) {
	_, err := NewInteger(3, 3, "")
	require.Error(t, err)
}

func TestRegular_SplitsRangeEvenly(t *testing.T) {
	a, err := NewRegular(4, 0, 1, "x")
	require.NoError(t, err)
	require.Equal(t, 0, a.Index(0))
	require.Equal(t, 1, a.Index(0.25))
	require.Equal(t, 3, a.Index(0.999999))
	require.Equal(t, Outside, a.Index(1))
	require.Equal(t, Outside, a.Index(-0.1))
	require.Equal(t, Outside, a.Index(math.NaN()))
	require.Equal(t, 0.5, a.Value(2))
	lo, hi := a.Range()
	require.Equal(t, 0.0, lo)
	require.Equal(t, 1.0, hi)
}

func TestRegular_RejectsInvalidParameters(t *testing.T) {
	_, err := NewRegular(0, 0, 1, "")
	require.Error(t, err)
	_, err = NewRegular(1, 1, 0, "")
	require.Error(t, err)
	_, err = NewRegular(1, 0, math.Inf(1), "")
	require.Error(t, err)
}

func TestEqual_ComparesKindBinningAndMetadata(t *testing.T) {
	i1, _ := NewInteger(0, 3, "a")
	i2, _ := NewInteger(0, 3, "a")
	i3, _ := NewInteger(0, 3, "b")
	i4, _ := NewInteger(1, 4, "a")
	r1, _ := NewRegular(3, 0, 3, "a")

	require.True(t, Equal(i1, i2))
	require.False(t, Equal(i1, i3))
	require.False(t, Equal(i1, i4))
	require.False(t, Equal(i1, r1))
	require.True(t, Equal(NewBinary("m"), NewBinary("m")))
}

func TestCodec_RoundTrip(t *testing.T) {
	integer, _ := NewInteger(-5, 7, "int")
	regular, _ := NewRegular(10, -1.5, 2.5, "reg")
	for _, a := range []Axis{NewBinary("bin"), integer, regular} {
		t.Run(a.Kind().String(), func(t *testing.T) {
			data, err := Marshal(a)
			require.NoError(t, err)
			b, err := Unmarshal(data)
			require.NoError(t, err)
			require.True(t, Equal(a, b))
			require.Equal(t, a, b)
		})
	}
}

func TestCodec_RejectsIncompatibleKind(t *testing.T) {
	regular, _ := NewRegular(1, 0, 1, "")
	data, err := Marshal(regular)
	require.NoError(t, err)

	_, err = Unmarshal(data, KindInteger)
	require.ErrorIs(t, err, ErrIncompatibleKind)

	_, err = Unmarshal(data, KindInteger, KindRegular)
	require.NoError(t, err)
}

func TestCodec_RejectsUnknownKindAndVersion(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, kindField, protowire.VarintType)
	b = protowire.AppendVarint(b, 99)
	_, err := Unmarshal(b)
	require.ErrorIs(t, err, ErrUnknownKind)

	b = nil
	b = protowire.AppendTag(b, kindField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(KindBinary))
	b = protowire.AppendTag(b, versionField, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	_, err = Unmarshal(b)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestCodec_RejectsInvalidParameters(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, kindField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(KindInteger))
	b = protowire.AppendTag(b, versionField, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)
	_, err := Unmarshal(b) // start == stop == 0
	require.ErrorIs(t, err, ErrMalformed)

	_, err = Unmarshal([]byte{0x08})
	require.ErrorIs(t, err, ErrMalformed)
}
