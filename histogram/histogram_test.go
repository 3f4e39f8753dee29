// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package histogram

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/0xsoniclabs/bincount/axis"
	"github.com/0xsoniclabs/bincount/common/largeint"
	"github.com/0xsoniclabs/bincount/storage"
	"github.com/0xsoniclabs/bincount/storage/memory"
	"github.com/0xsoniclabs/bincount/storage/sharded"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func newAxes(t *testing.T) []axis.Axis {
	t.Helper()
	integer, err := axis.NewInteger(0, 3, "i")
	require.NoError(t, err)
	regular, err := axis.NewRegular(4, 0, 1, "r")
	require.NoError(t, err)
	return []axis.Axis{integer, regular}
}

func newHistogram(t *testing.T, factory storage.Factory) *Histogram {
	t.Helper()
	h, err := New(newAxes(t), factory)
	require.NoError(t, err)
	return h
}

func requireCount(t *testing.T, h *Histogram, want uint64, indices ...int) {
	t.Helper()
	count, err := h.At(indices...)
	require.NoError(t, err)
	require.True(t, count.EqualUint64(want), "bin %v: want %d, got %v", indices, want, &count)
}

func TestHistogram_New_UsesRowMajorLayout(t *testing.T) {
	h := newHistogram(t, memory.Factory(nil))
	require.Equal(t, 12, h.Size())
	require.Equal(t, []int{4, 1}, h.strides)
	require.Len(t, h.Axes(), 2)
}

func TestHistogram_New_RejectsInvalidAxes(t *testing.T) {
	_, err := New(nil, memory.Factory(nil))
	require.Error(t, err)

	huge, err := axis.NewRegular(1<<20, 0, 1, "")
	require.NoError(t, err)
	_, err = New([]axis.Axis{huge, huge}, memory.Factory(nil))
	require.Error(t, err)
}

func TestHistogram_New_RejectsBinCountsOverflowingInt(t *testing.T) {
	wide, err := axis.NewInteger(0, 1<<62+1, "")
	require.NoError(t, err)
	fine, err := axis.NewRegular(1<<31, 0, 1, "")
	require.NoError(t, err)

	factory := func(bins int) (storage.Storage, error) {
		t.Fatalf("storage of %d bins must not be requested", bins)
		return nil, nil
	}
	_, err = New([]axis.Axis{wide, fine}, factory)
	require.ErrorContains(t, err, "exceeds")
	_, err = New([]axis.Axis{fine, wide}, factory)
	require.ErrorContains(t, err, "exceeds")
}

func TestHistogram_New_PropagatesStorageFailure(t *testing.T) {
	injected := errors.New("injected")
	_, err := New(newAxes(t), func(int) (storage.Storage, error) { return nil, injected })
	require.ErrorIs(t, err, injected)
}

func TestHistogram_Fill_CountsSamplesInTheirBins(t *testing.T) {
	h := newHistogram(t, memory.Factory(nil))
	require.NoError(t, h.Fill(0, 0.1))
	require.NoError(t, h.Fill(0, 0.2))
	require.NoError(t, h.Fill(2, 0.9))
	requireCount(t, h, 2, 0, 0)
	requireCount(t, h, 1, 2, 3)
	requireCount(t, h, 0, 1, 1)
}

func TestHistogram_Fill_DropsSamplesOutsideAxes(t *testing.T) {
	h := newHistogram(t, memory.Factory(nil))
	require.NoError(t, h.Fill(5, 0.1))
	require.NoError(t, h.Fill(0, 1.5))
	require.NoError(t, h.Fill(math.NaN(), 0.5))
	total, err := h.Total()
	require.NoError(t, err)
	require.True(t, total.EqualUint64(0))
}

func TestHistogram_Fill_RejectsWrongNumberOfValues(t *testing.T) {
	h := newHistogram(t, memory.Factory(nil))
	require.ErrorIs(t, h.Fill(1), ErrDimension)
	require.ErrorIs(t, h.FillN(2, 1, 0.5, 3), ErrDimension)
	_, err := h.At(1)
	require.ErrorIs(t, err, ErrDimension)
	_, err = h.At(3, 0)
	require.ErrorIs(t, err, storage.ErrOutOfRange)
}

func TestHistogram_Fill_UsesStorageOperations(t *testing.T) {
	ctrl := gomock.NewController(t)
	bins := storage.NewMockStorage(ctrl)
	bins.EXPECT().Size().Return(12).AnyTimes()
	weight := largeint.FromUint64(7)
	gomock.InOrder(
		bins.EXPECT().Increment(6),
		bins.EXPECT().AddUint64(11, uint64(3)),
		bins.EXPECT().Add(0, &weight),
	)

	h := newHistogram(t, func(int) (storage.Storage, error) { return bins, nil })
	require.NoError(t, h.Fill(1, 0.5))
	require.NoError(t, h.FillN(3, 2, 0.75))
	require.NoError(t, h.FillCounter(&weight, 0, 0))
}

func TestHistogram_Fill_PropagatesStorageErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	bins := storage.NewMockStorage(ctrl)
	bins.EXPECT().Size().Return(12).AnyTimes()
	bins.EXPECT().Increment(gomock.Any()).Return(largeint.ErrAllocation)

	h := newHistogram(t, func(int) (storage.Storage, error) { return bins, nil })
	require.ErrorIs(t, h.Fill(1, 0.5), largeint.ErrAllocation)
}

func TestHistogram_New_RejectsStorageOfWrongSize(t *testing.T) {
	ctrl := gomock.NewController(t)
	bins := storage.NewMockStorage(ctrl)
	bins.EXPECT().Size().Return(3).AnyTimes()
	_, err := New(newAxes(t), func(int) (storage.Storage, error) { return bins, nil })
	require.Error(t, err)
}

func TestHistogram_FillN_CountsBeyondFixedWidthRange(t *testing.T) {
	for name, factory := range map[string]storage.Factory{
		"memory":  memory.Factory(nil),
		"sharded": sharded.Factory(2, nil, zap.NewNop()),
	} {
		t.Run(name, func(t *testing.T) {
			h := newHistogram(t, factory)
			for range 3 {
				require.NoError(t, h.FillN(math.MaxUint64, 1, 0.5))
			}
			count, err := h.At(1, 2)
			require.NoError(t, err)
			require.Equal(t, []uint64{math.MaxUint64 - 2, 2}, count.Words())
		})
	}
}

func TestHistogram_FillParallel_EqualsSequentialFill(t *testing.T) {
	samples := make([][]float64, 0, 3000)
	for i := range 3000 {
		samples = append(samples, []float64{float64(i % 4), float64(i%10) / 10})
	}
	sequential := newHistogram(t, memory.Factory(nil))
	require.NoError(t, sequential.FillParallel(context.Background(), samples, 4))

	parallel := newHistogram(t, sharded.Factory(4, nil, zap.NewNop()))
	require.NoError(t, parallel.FillParallel(context.Background(), samples, 8))

	equal, err := sequential.Equal(parallel)
	require.NoError(t, err)
	require.True(t, equal)

	total, err := parallel.Total()
	require.NoError(t, err)
	// samples with the first value 3 are outside the integer axis
	require.True(t, total.EqualUint64(2250), "got %v", &total)
}

func TestHistogram_FillParallelN_CountsWeightsConcurrently(t *testing.T) {
	samples := make([][]float64, 0, 1000)
	for i := range 1000 {
		samples = append(samples, []float64{float64(i % 3), 0.5})
	}
	h := newHistogram(t, sharded.Factory(4, nil, zap.NewNop()))
	require.NoError(t, h.FillParallelN(context.Background(), math.MaxUint64, samples, 8))

	want := largeint.New()
	for range 334 {
		require.NoError(t, want.AddUint64(math.MaxUint64))
	}
	got, err := h.At(0, 2)
	require.NoError(t, err)
	require.True(t, got.Equal(&want), "got %v, want %v", &got, &want)

	sequential := newHistogram(t, memory.Factory(nil))
	require.NoError(t, sequential.FillParallelN(context.Background(), math.MaxUint64, samples, 8))
	equal, err := sequential.Equal(h)
	require.NoError(t, err)
	require.True(t, equal)
}

func TestHistogram_FillParallel_StopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := newHistogram(t, sharded.Factory(4, nil, zap.NewNop()))
	err := h.FillParallel(ctx, [][]float64{{0, 0}, {1, 0}}, 2)
	require.ErrorIs(t, err, context.Canceled)
}

func TestHistogram_Merge_EqualsFillingTheUnion(t *testing.T) {
	a := newHistogram(t, memory.Factory(nil))
	b := newHistogram(t, memory.Factory(nil))
	union := newHistogram(t, memory.Factory(nil))
	for i := range 100 {
		values := []float64{float64(i % 3), float64(i%7) / 7}
		target := a
		if i%2 == 0 {
			target = b
		}
		require.NoError(t, target.Fill(values...))
		require.NoError(t, union.Fill(values...))
	}
	require.NoError(t, b.FillN(math.MaxUint64, 2, 0.1))
	require.NoError(t, union.FillN(math.MaxUint64, 2, 0.1))

	require.NoError(t, a.Merge(b))
	equal, err := a.Equal(union)
	require.NoError(t, err)
	require.True(t, equal)
}

func TestHistogram_Merge_RejectsIncompatibleAxes(t *testing.T) {
	a := newHistogram(t, memory.Factory(nil))
	other, err := axis.NewInteger(0, 12, "")
	require.NoError(t, err)
	b, err := New([]axis.Axis{other}, memory.Factory(nil))
	require.NoError(t, err)
	require.ErrorIs(t, a.Merge(b), ErrIncompatible)

	equal, err := a.Equal(b)
	require.NoError(t, err)
	require.False(t, equal)
}

func TestHistogram_MeanAndVariance(t *testing.T) {
	h := newHistogram(t, memory.Factory(nil))
	require.NoError(t, h.FillN(3, 0, 0.1))
	require.NoError(t, h.FillN(1, 2, 0.6))

	mean, err := h.Mean(0)
	require.NoError(t, err)
	require.InDelta(t, 0.5, mean, 1e-12)
	variance, err := h.Variance(0)
	require.NoError(t, err)
	require.InDelta(t, 0.75, variance, 1e-12)

	// bin centers of the regular axis are 0.125 and 0.625
	mean, err = h.Mean(1)
	require.NoError(t, err)
	require.InDelta(t, 0.25, mean, 1e-12)

	_, err = h.Mean(2)
	require.ErrorIs(t, err, ErrDimension)
}

func TestHistogram_Mean_FailsWithoutEntries(t *testing.T) {
	h := newHistogram(t, memory.Factory(nil))
	_, err := h.Mean(0)
	require.ErrorIs(t, err, ErrNoEntries)
	_, err = h.Variance(1)
	require.ErrorIs(t, err, ErrNoEntries)
}

func TestHistogram_Reset_ClearsCounts(t *testing.T) {
	h := newHistogram(t, memory.Factory(nil))
	require.NoError(t, h.Fill(1, 0.5))
	h.Reset()
	requireCount(t, h, 0, 1, 2)
}

func TestHistogram_GetMemoryFootprint_IncludesBins(t *testing.T) {
	h := newHistogram(t, memory.Factory(nil))
	fp := h.GetMemoryFootprint()
	require.NotNil(t, fp.GetChild("bins"))
	require.Greater(t, fp.Total(), fp.GetChild("bins").Total())
}
