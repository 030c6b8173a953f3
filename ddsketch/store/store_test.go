// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2026 axiomstream, Inc.

package store

import (
	"testing"

	"github.com/axiomstream/ddsketch-go/ddsketch/encoding"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
)

func newStores(t *testing.T) map[string]Store {
	lowest, err := NewCollapsingLowestDenseStore(20)
	assert.NoError(t, err)
	highest, err := NewCollapsingHighestDenseStore(20)
	assert.NoError(t, err)
	return map[string]Store{
		"unbounded":         NewUnboundedDenseStore(),
		"collapsingLowest":  lowest,
		"collapsingHighest": highest,
		"sparse":            NewSparseStore(),
	}
}

func TestEmptyStore(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.True(t, s.IsEmpty())
			assert.Equal(t, float64(0), s.GetTotalCount())
			_, err := s.GetMinIndex()
			assert.Error(t, err)
			_, err = s.GetMaxIndex()
			assert.Error(t, err)
			assert.Empty(t, s.Bins())
		})
	}
}

func TestAddAndTotalCount(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			s.Add(3)
			s.Add(3)
			s.AddWithCount(5, 2.5)
			assert.False(t, s.IsEmpty())
			assert.Equal(t, 4.5, s.GetTotalCount())
			assert.Equal(t, float64(2), s.GetCount(3))
			assert.Equal(t, 2.5, s.GetCount(5))
			assert.Equal(t, float64(0), s.GetCount(1000))
		})
	}
}

func TestNegativeAndZeroCountIgnored(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			s.AddWithCount(1, -5)
			s.AddWithCount(1, 0)
			assert.True(t, s.IsEmpty())
		})
	}
}

func TestMinMaxIndex(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, idx := range []int{-3, 10, 2, -7, 5} {
				s.Add(idx)
			}
			min, err := s.GetMinIndex()
			assert.NoError(t, err)
			assert.Equal(t, -7, min)
			max, err := s.GetMaxIndex()
			assert.NoError(t, err)
			assert.Equal(t, 10, max)
		})
	}
}

func TestAscendingAndDescendingIterOrder(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, idx := range []int{4, -1, 9, 2} {
				s.Add(idx)
			}
			var ascending []int
			it := s.GetAscendingIter()
			for bin, ok := it(); ok; bin, ok = it() {
				ascending = append(ascending, bin.Index())
			}
			assert.Equal(t, []int{-1, 2, 4, 9}, ascending)

			var descending []int
			dit := s.GetDescendingIter()
			for bin, ok := dit(); ok; bin, ok = dit() {
				descending = append(descending, bin.Index())
			}
			assert.Equal(t, []int{9, 4, 2, -1}, descending)
		})
	}
}

func TestCopyIsIndependent(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			s.Add(1)
			c := s.Copy()
			c.Add(1)
			assert.Equal(t, float64(1), s.GetTotalCount())
			assert.Equal(t, float64(2), c.GetTotalCount())
		})
	}
}

func TestClear(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			s.Add(1)
			s.Add(2)
			s.Clear()
			assert.True(t, s.IsEmpty())
			assert.Empty(t, s.Bins())
		})
	}
}

func TestMergeWith(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			s.Add(1)
			s.Add(2)
			other := NewUnboundedDenseStore()
			other.Add(2)
			other.Add(3)
			s.MergeWith(other)
			assert.Equal(t, float64(4), s.GetTotalCount())
			assert.Equal(t, float64(1), s.GetCount(1))
			assert.Equal(t, float64(2), s.GetCount(2))
			assert.Equal(t, float64(1), s.GetCount(3))
		})
	}
}

func TestCollapsingLowestDenseStoreCollapsesLowEnd(t *testing.T) {
	s, err := NewCollapsingLowestDenseStore(3)
	assert.NoError(t, err)
	s.Add(0)
	s.Add(1)
	s.Add(2)
	s.Add(10)
	// window can only span 3 buckets; 0, 1 and 2 collapse into the floor.
	min, err := s.GetMinIndex()
	assert.NoError(t, err)
	max, err := s.GetMaxIndex()
	assert.NoError(t, err)
	assert.Equal(t, 10, max)
	assert.Equal(t, max-min+1 <= 3, true)
	assert.Equal(t, float64(4), s.GetTotalCount())
}

func TestCollapsingHighestDenseStoreCollapsesHighEnd(t *testing.T) {
	s, err := NewCollapsingHighestDenseStore(3)
	assert.NoError(t, err)
	s.Add(0)
	s.Add(10)
	s.Add(11)
	s.Add(12)
	min, err := s.GetMinIndex()
	assert.NoError(t, err)
	max, err := s.GetMaxIndex()
	assert.NoError(t, err)
	assert.Equal(t, 0, min)
	assert.Equal(t, max-min+1 <= 3, true)
	assert.Equal(t, float64(4), s.GetTotalCount())
}

func TestCollapsingStoreNeverExceedsCapacity(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(50, 200)
	var indices []int32
	f.Fuzz(&indices)

	lowest, err := NewCollapsingLowestDenseStore(16)
	assert.NoError(t, err)
	highest, err := NewCollapsingHighestDenseStore(16)
	assert.NoError(t, err)

	for _, idx := range indices {
		lowest.Add(int(idx % 1000))
		highest.Add(int(idx % 1000))
	}

	if !lowest.IsEmpty() {
		min, _ := lowest.GetMinIndex()
		max, _ := lowest.GetMaxIndex()
		assert.LessOrEqual(t, max-min+1, 16)
	}
	if !highest.IsEmpty() {
		min, _ := highest.GetMinIndex()
		max, _ := highest.GetMaxIndex()
		assert.LessOrEqual(t, max-min+1, 16)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, idx := range []int{-5, -1, 0, 3, 8} {
				s.AddWithCount(idx, float64(idx+10))
			}

			w := encoding.NewWriter(32)
			assert.NoError(t, s.Encode(w, encoding.FlagTypePositiveStore))

			r := encoding.NewReader(w.Bytes())
			flag, err := encoding.DecodeFlag(r)
			assert.NoError(t, err)
			mode, err := BinEncodingModeOfSubFlag(flag.SubFlag())
			assert.NoError(t, err)

			decoded := NewUnboundedDenseStore()
			assert.NoError(t, decoded.DecodeAndMergeWith(r, mode))

			for _, idx := range []int{-5, -1, 0, 3, 8} {
				assert.Equal(t, s.GetCount(idx), decoded.GetCount(idx))
			}
			assert.Equal(t, s.GetTotalCount(), decoded.GetTotalCount())
		})
	}
}
