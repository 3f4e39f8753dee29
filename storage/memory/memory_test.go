// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"math"
	"testing"

	"github.com/0xsoniclabs/bincount/common/largeint"
	"github.com/0xsoniclabs/bincount/storage"
	"github.com/stretchr/testify/require"
)

var _ storage.Storage = (*Storage)(nil)

func TestStorage_GrowthIsChargedToAllocator(t *testing.T) {
	budget := largeint.NewBudget(1024)
	s, err := NewStorage(2, budget)
	require.NoError(t, err)
	require.NoError(t, s.AddUint64(0, math.MaxUint64))
	require.NoError(t, s.Increment(0))
	require.Positive(t, budget.InUse())

	s.Reset()
	require.Zero(t, budget.InUse())
}

func TestStorage_RefusedGrowthIsReported(t *testing.T) {
	s, err := NewStorage(1, largeint.NewBudget(0))
	require.NoError(t, err)
	require.NoError(t, s.AddUint64(0, math.MaxUint64))
	require.ErrorIs(t, s.Increment(0), largeint.ErrAllocation)

	count, err := s.Get(0)
	require.NoError(t, err)
	require.True(t, count.EqualUint64(math.MaxUint64))
}

func TestStorage_GetMemoryFootprint_CountsWords(t *testing.T) {
	s, err := NewStorage(3, nil)
	require.NoError(t, err)
	require.NoError(t, s.AddUint64(2, math.MaxUint64))
	require.NoError(t, s.Increment(2))
	require.Contains(t, s.GetMemoryFootprint().String(), "(bins: 3, words: 4)")
}
