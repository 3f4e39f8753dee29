// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package histogram combines axes and a bin storage into a multi-dimensional
// histogram counting samples without ever overflowing.
//
// The bins of all axes form a row-major grid; the first axis varies slowest.
// Samples with a value outside any axis are dropped.
package histogram

import (
	"context"
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/0xsoniclabs/bincount/axis"
	"github.com/0xsoniclabs/bincount/common"
	"github.com/0xsoniclabs/bincount/common/largeint"
	"github.com/0xsoniclabs/bincount/storage"
	"golang.org/x/sync/errgroup"
)

// maxBins limits the number of bins of a histogram.
const maxBins = 1 << 31

var (
	// ErrIncompatible is returned when combining histograms with different axes.
	ErrIncompatible = errors.New("histogram: incompatible axes")
	// ErrDimension is returned if the number of values or indices does not
	// match the number of axes.
	ErrDimension = errors.New("histogram: dimension mismatch")
	// ErrNoEntries is returned when computing statistics of an empty histogram.
	ErrNoEntries = errors.New("histogram: no entries")
)

// Histogram counts samples in the bins spanned by its axes. Whether it is safe
// for concurrent use depends on its storage.
type Histogram struct {
	axes    []axis.Axis
	strides []int
	storage storage.Storage
}

// New creates a histogram over the given axes, with bins held by a storage
// obtained from the given factory.
func New(axes []axis.Axis, factory storage.Factory) (*Histogram, error) {
	if len(axes) == 0 {
		return nil, errors.New("histogram needs at least one axis")
	}
	size, err := binCount(axes)
	if err != nil {
		return nil, err
	}
	strides := make([]int, len(axes))
	for i, stride := len(axes)-1, 1; i >= 0; i-- {
		strides[i] = stride
		stride *= axes[i].Size()
	}
	bins, err := factory(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage for %d bins: %w", size, err)
	}
	if bins.Size() != size {
		return nil, fmt.Errorf("storage provides %d bins, needed %d", bins.Size(), size)
	}
	return &Histogram{
		axes:    axes,
		strides: strides,
		storage: bins,
	}, nil
}

// binCount returns the number of bins spanned by the given axes, failing if
// it exceeds maxBins.
func binCount(axes []axis.Axis) (int, error) {
	size := 1
	for i, a := range axes {
		n := a.Size()
		if n <= 0 {
			return 0, fmt.Errorf("axis %d has %d bins", i, n)
		}
		if size > maxBins/n {
			return 0, fmt.Errorf("histogram exceeds %d bins", maxBins)
		}
		size *= n
	}
	return size, nil
}

// Axes returns the axes of the histogram.
func (h *Histogram) Axes() []axis.Axis {
	return h.axes
}

// Size returns the total number of bins.
func (h *Histogram) Size() int {
	return h.storage.Size()
}

// Fill counts a sample with the given value per axis.
func (h *Histogram) Fill(values ...float64) error {
	bin, ok, err := h.binOf(values)
	if err != nil || !ok {
		return err
	}
	return h.storage.Increment(bin)
}

// FillN counts a sample with the given weight.
func (h *Histogram) FillN(weight uint64, values ...float64) error {
	bin, ok, err := h.binOf(values)
	if err != nil || !ok {
		return err
	}
	return h.storage.AddUint64(bin, weight)
}

// FillCounter counts a sample with an arbitrary-precision weight.
func (h *Histogram) FillCounter(weight *largeint.Int, values ...float64) error {
	bin, ok, err := h.binOf(values)
	if err != nil || !ok {
		return err
	}
	return h.storage.Add(bin, weight)
}

// FillParallel fills the given samples using up to the given number of
// goroutines. Samples are filled sequentially if the storage does not support
// concurrent updates. On error or cancellation some samples may have been
// counted.
func (h *Histogram) FillParallel(ctx context.Context, samples [][]float64, workers int) error {
	return h.fillParallel(ctx, samples, workers, h.Fill)
}

// FillParallelN is like FillParallel, counting every sample with the given
// weight.
func (h *Histogram) FillParallelN(ctx context.Context, weight uint64, samples [][]float64, workers int) error {
	return h.fillParallel(ctx, samples, workers, func(values ...float64) error {
		return h.FillN(weight, values...)
	})
}

func (h *Histogram) fillParallel(ctx context.Context, samples [][]float64, workers int, fill func(...float64) error) error {
	if workers <= 1 || !h.storage.Concurrent() {
		return fillAll(ctx, samples, fill)
	}
	group, ctx := errgroup.WithContext(ctx)
	chunk := (len(samples) + workers - 1) / workers
	for start := 0; start < len(samples); start += chunk {
		part := samples[start:min(start+chunk, len(samples))]
		group.Go(func() error {
			return fillAll(ctx, part, fill)
		})
	}
	return group.Wait()
}

func fillAll(ctx context.Context, samples [][]float64, fill func(...float64) error) error {
	for _, values := range samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fill(values...); err != nil {
			return err
		}
	}
	return nil
}

// At returns the count of the bin with the given index per axis.
func (h *Histogram) At(indices ...int) (largeint.Int, error) {
	if len(indices) != len(h.axes) {
		return largeint.Int{}, fmt.Errorf("%w: %d indices for %d axes", ErrDimension, len(indices), len(h.axes))
	}
	bin := 0
	for i, index := range indices {
		if index < 0 || index >= h.axes[i].Size() {
			return largeint.Int{}, fmt.Errorf("%w: index %d of axis %d", storage.ErrOutOfRange, index, i)
		}
		bin += index * h.strides[i]
	}
	return h.storage.Get(bin)
}

// Total returns the sum of all bin counts.
func (h *Histogram) Total() (largeint.Int, error) {
	res := largeint.New()
	for bin := range h.storage.Size() {
		count, err := h.storage.Get(bin)
		if err != nil {
			return largeint.Int{}, err
		}
		if err := res.Add(&count); err != nil {
			return largeint.Int{}, err
		}
	}
	return res, nil
}

// Merge adds the counts of other to h. Both must have equal axes. If an
// update fails, bins merged before remain updated.
func (h *Histogram) Merge(other *Histogram) error {
	if !h.compatible(other) {
		return ErrIncompatible
	}
	for bin := range other.storage.Size() {
		count, err := other.storage.Get(bin)
		if err != nil {
			return err
		}
		if count.EqualUint64(0) {
			continue
		}
		if err := h.storage.Add(bin, &count); err != nil {
			return fmt.Errorf("failed to merge bin %d: %w", bin, err)
		}
	}
	return nil
}

// Equal reports whether h and other have equal axes and equal counts.
func (h *Histogram) Equal(other *Histogram) (bool, error) {
	if !h.compatible(other) {
		return false, nil
	}
	for bin := range h.storage.Size() {
		a, err := h.storage.Get(bin)
		if err != nil {
			return false, err
		}
		b, err := other.storage.Get(bin)
		if err != nil {
			return false, err
		}
		if a.NotEqual(&b) {
			return false, nil
		}
	}
	return true, nil
}

func (h *Histogram) compatible(other *Histogram) bool {
	if len(h.axes) != len(other.axes) {
		return false
	}
	for i := range h.axes {
		if !axis.Equal(h.axes[i], other.axes[i]) {
			return false
		}
	}
	return true
}

// Mean computes the mean of the samples projected onto the given axis, using
// bin centers. Counts are converted to float64, so large counts contribute
// approximately.
func (h *Histogram) Mean(axisIndex int) (float64, error) {
	projection, err := h.project(axisIndex)
	if err != nil {
		return 0, err
	}
	return projection.mean()
}

// Variance computes the population variance of the samples projected onto the
// given axis, using bin centers.
func (h *Histogram) Variance(axisIndex int) (float64, error) {
	projection, err := h.project(axisIndex)
	if err != nil {
		return 0, err
	}
	mean, err := projection.mean()
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for i, weight := range projection.weights {
		d := projection.centers[i] - mean
		sum += weight * d * d
	}
	return sum / projection.total, nil
}

type projection struct {
	centers []float64
	weights []float64
	total   float64
}

func (p *projection) mean() (float64, error) {
	if p.total == 0 {
		return 0, ErrNoEntries
	}
	sum := 0.0
	for i, weight := range p.weights {
		sum += weight * p.centers[i]
	}
	return sum / p.total, nil
}

func (h *Histogram) project(axisIndex int) (*projection, error) {
	if axisIndex < 0 || axisIndex >= len(h.axes) {
		return nil, fmt.Errorf("%w: no axis %d in %d axes", ErrDimension, axisIndex, len(h.axes))
	}
	a := h.axes[axisIndex]
	res := &projection{
		centers: make([]float64, a.Size()),
		weights: make([]float64, a.Size()),
	}
	for i := range res.centers {
		res.centers[i] = center(a, i)
	}
	stride := h.strides[axisIndex]
	for bin := range h.storage.Size() {
		count, err := h.storage.Get(bin)
		if err != nil {
			return nil, err
		}
		weight := count.Float64()
		res.weights[(bin/stride)%a.Size()] += weight
		res.total += weight
	}
	if math.IsInf(res.total, 0) {
		return nil, errors.New("histogram counts exceed floating point range")
	}
	return res, nil
}

// center returns the representative value of a bin. Regular bins are
// represented by their mid-point, all others by their value.
func center(a axis.Axis, index int) float64 {
	if a.Kind() == axis.KindRegular {
		return (a.Value(index) + a.Value(index+1)) / 2
	}
	return a.Value(index)
}

// Reset sets all counts to zero.
func (h *Histogram) Reset() {
	h.storage.Reset()
}

// GetMemoryFootprint provides the size of the histogram in memory in bytes.
func (h *Histogram) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*h) + uintptr(len(h.strides))*unsafe.Sizeof(0))
	mf.AddChild("bins", h.storage.GetMemoryFootprint())
	return mf
}

// binOf computes the linear bin index of a sample. The second result is false
// if the sample is outside the histogram.
func (h *Histogram) binOf(values []float64) (int, bool, error) {
	if len(values) != len(h.axes) {
		return 0, false, fmt.Errorf("%w: %d values for %d axes", ErrDimension, len(values), len(h.axes))
	}
	bin := 0
	for i, value := range values {
		index := h.axes[i].Index(value)
		if index == axis.Outside {
			return 0, false, nil
		}
		bin += index * h.strides[i]
	}
	return bin, true, nil
}
