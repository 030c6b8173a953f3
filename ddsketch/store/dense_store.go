// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2026 axiomstream, Inc. for modifications

package store

import (
	"math"

	"github.com/axiomstream/ddsketch-go/ddsketch/mapping"
)

// denseArrayLengthOverhead is the slack allocated beyond the index range a
// growth actually needs, so that nearby future inserts don't immediately
// trigger another reallocation.
const denseArrayLengthOverhead = 64

// denseStore is the dense-array bin storage shared by UnboundedDenseStore,
// CollapsingLowestDenseStore and CollapsingHighestDenseStore: counts[i]
// holds the count at bucket index (i+offset). It implements the mechanics
// of growing and collapsing the array; the collapsing policy itself (when
// to collapse, which end) belongs to the three wrappers.
type denseStore struct {
	counts   []float64
	offset   int
	minIndex int
	maxIndex int
	count    float64
}

func newDenseStore() denseStore {
	return denseStore{minIndex: math.MaxInt32, maxIndex: math.MinInt32}
}

func (s *denseStore) IsEmpty() bool {
	return s.count == 0
}

func (s *denseStore) GetTotalCount() float64 {
	return s.count
}

func (s *denseStore) GetMinIndex() (int, error) {
	if s.IsEmpty() {
		return 0, errEmptyStore
	}
	return s.minIndex, nil
}

func (s *denseStore) GetMaxIndex() (int, error) {
	if s.IsEmpty() {
		return 0, errEmptyStore
	}
	return s.maxIndex, nil
}

func (s *denseStore) GetCount(index int) float64 {
	if s.IsEmpty() || index < s.minIndex || index > s.maxIndex {
		return 0
	}
	return s.counts[index-s.offset]
}

func (s *denseStore) GetSum(m mapping.IndexMapping) float64 {
	var sum float64
	for i := s.minIndex; i <= s.maxIndex; i++ {
		if c := s.counts[i-s.offset]; c != 0 {
			sum += c * m.Value(i)
		}
	}
	return sum
}

func (s *denseStore) Clear() {
	s.counts = nil
	s.offset = 0
	s.minIndex = math.MaxInt32
	s.maxIndex = math.MinInt32
	s.count = 0
}

func (s *denseStore) Bins() []Bin {
	if s.IsEmpty() {
		return nil
	}
	bins := make([]Bin, 0, s.maxIndex-s.minIndex+1)
	for i := s.minIndex; i <= s.maxIndex; i++ {
		if c := s.counts[i-s.offset]; c != 0 {
			bins = append(bins, Bin{index: i, count: c})
		}
	}
	return bins
}

func (s *denseStore) GetAscendingIter() BinIterator {
	i := s.minIndex
	return func() (Bin, bool) {
		for i <= s.maxIndex {
			idx := i
			i++
			if c := s.counts[idx-s.offset]; c != 0 {
				return Bin{index: idx, count: c}, true
			}
		}
		return Bin{}, false
	}
}

func (s *denseStore) GetDescendingIter() BinIterator {
	i := s.maxIndex
	return func() (Bin, bool) {
		for i >= s.minIndex {
			idx := i
			i--
			if c := s.counts[idx-s.offset]; c != 0 {
				return Bin{index: idx, count: c}, true
			}
		}
		return Bin{}, false
	}
}

// extendRange grows the backing array, if needed, so that [newMin, newMax]
// union the existing active range is addressable, and widens minIndex/
// maxIndex to cover it. Growth reallocates to the smallest length (plus a
// fixed denseArrayLengthOverhead of slack above it) that covers the new
// active range, shifting existing counts into place. Growth is not
// geometric: a range that keeps widening upward reallocates about once every
// denseArrayLengthOverhead new indices, and a range that keeps widening
// downward reallocates on every new lower index.
func (s *denseStore) extendRange(newMin, newMax int) {
	if newMin < s.minIndex {
		s.minIndex = newMin
	}
	if newMax > s.maxIndex {
		s.maxIndex = newMax
	}

	if s.counts == nil {
		length := s.maxIndex - s.minIndex + 1 + denseArrayLengthOverhead
		s.counts = make([]float64, length)
		s.offset = s.minIndex
		return
	}

	if s.minIndex >= s.offset && s.maxIndex < s.offset+len(s.counts) {
		return
	}

	newOffset := s.offset
	if s.minIndex < newOffset {
		newOffset = s.minIndex
	}
	shift := s.offset - newOffset
	required := s.maxIndex - newOffset + 1
	newCounts := make([]float64, required+denseArrayLengthOverhead)
	copy(newCounts[shift:], s.counts)
	s.counts = newCounts
	s.offset = newOffset
}

func (s *denseStore) incrCount(index int, count float64) {
	s.counts[index-s.offset] += count
	s.count += count
}

// collapseBelow merges the mass of every bin below newMinIndex into the bin
// at newMinIndex and pins minIndex there. The array must already cover
// newMinIndex (callers extend the range before collapsing). Total count is
// unchanged: mass only moves, it is never created or destroyed.
func (s *denseStore) collapseBelow(newMinIndex int) {
	if newMinIndex <= s.minIndex {
		return
	}
	var collapsed float64
	end := newMinIndex
	if s.maxIndex+1 < end {
		end = s.maxIndex + 1
	}
	for i := s.minIndex; i < end; i++ {
		pos := i - s.offset
		collapsed += s.counts[pos]
		s.counts[pos] = 0
	}
	s.minIndex = newMinIndex
	if s.maxIndex < newMinIndex {
		s.maxIndex = newMinIndex
	}
	s.counts[newMinIndex-s.offset] += collapsed
}

// collapseAbove is the symmetric counterpart of collapseBelow: it merges
// everything above newMaxIndex into the bin at newMaxIndex and pins
// maxIndex there.
func (s *denseStore) collapseAbove(newMaxIndex int) {
	if newMaxIndex >= s.maxIndex {
		return
	}
	var collapsed float64
	start := newMaxIndex + 1
	if s.minIndex > start {
		start = s.minIndex
	}
	for i := start; i <= s.maxIndex; i++ {
		pos := i - s.offset
		collapsed += s.counts[pos]
		s.counts[pos] = 0
	}
	s.maxIndex = newMaxIndex
	if s.minIndex > newMaxIndex {
		s.minIndex = newMaxIndex
	}
	s.counts[newMaxIndex-s.offset] += collapsed
}

func (s *denseStore) cloneInto() denseStore {
	countsCopy := make([]float64, len(s.counts))
	copy(countsCopy, s.counts)
	return denseStore{
		counts:   countsCopy,
		offset:   s.offset,
		minIndex: s.minIndex,
		maxIndex: s.maxIndex,
		count:    s.count,
	}
}
