// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2021 GraphMetrics for original work
// Copyright 2026 axiomstream, Inc. for modifications

package store

import (
	"math"
	"sort"

	"github.com/axiomstream/ddsketch-go/ddsketch/encoding"
	"github.com/axiomstream/ddsketch-go/ddsketch/mapping"
)

// SparseStore is a hash-map backed store: memory is proportional to the
// number of distinct non-empty bins rather than the width of the active
// index range, which suits distributions with a few widely scattered
// values where a dense array would waste space on the gaps between them.
type SparseStore struct {
	bins     map[int]float64
	count    float64
	minIndex int
	maxIndex int
}

// NewSparseStore builds an empty SparseStore.
func NewSparseStore() *SparseStore {
	return &SparseStore{bins: make(map[int]float64), minIndex: math.MaxInt32, maxIndex: math.MinInt32}
}

func (s *SparseStore) Add(index int) {
	s.AddWithCount(index, 1)
}

func (s *SparseStore) AddWithCount(index int, count float64) {
	if count <= 0 {
		return
	}
	if index > s.maxIndex {
		s.maxIndex = index
	}
	if index < s.minIndex {
		s.minIndex = index
	}
	s.bins[index] += count
	s.count += count
}

func (s *SparseStore) AddBin(bin Bin) {
	if bin.IsEmpty() {
		return
	}
	s.AddWithCount(bin.Index(), bin.Count())
}

func (s *SparseStore) GetCount(index int) float64 {
	return s.bins[index]
}

func (s *SparseStore) GetTotalCount() float64 {
	return s.count
}

func (s *SparseStore) GetMinIndex() (int, error) {
	if s.IsEmpty() {
		return 0, errEmptyStore
	}
	return s.minIndex, nil
}

func (s *SparseStore) GetMaxIndex() (int, error) {
	if s.IsEmpty() {
		return 0, errEmptyStore
	}
	return s.maxIndex, nil
}

func (s *SparseStore) GetSum(m mapping.IndexMapping) float64 {
	var sum float64
	for k, v := range s.bins {
		sum += v * m.Value(k)
	}
	return sum
}

func (s *SparseStore) IsEmpty() bool {
	return s.count == 0
}

func (s *SparseStore) Clear() {
	s.bins = make(map[int]float64)
	s.count = 0
	s.minIndex = math.MaxInt32
	s.maxIndex = math.MinInt32
}

func (s *SparseStore) Copy() Store {
	bins := make(map[int]float64, len(s.bins))
	for k, v := range s.bins {
		bins[k] = v
	}
	return &SparseStore{
		bins:     bins,
		count:    s.count,
		minIndex: s.minIndex,
		maxIndex: s.maxIndex,
	}
}

// sortedKeys returns this store's active indices in ascending order. Go
// maps iterate in randomized order, so any operation that needs a
// deterministic index order goes through this.
func (s *SparseStore) sortedKeys() []int {
	keys := make([]int, 0, len(s.bins))
	for k := range s.bins {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (s *SparseStore) Bins() []Bin {
	keys := s.sortedKeys()
	bins := make([]Bin, 0, len(keys))
	for _, k := range keys {
		bins = append(bins, Bin{index: k, count: s.bins[k]})
	}
	return bins
}

func (s *SparseStore) GetAscendingIter() BinIterator {
	keys := s.sortedKeys()
	i := 0
	return func() (Bin, bool) {
		if i >= len(keys) {
			return Bin{}, false
		}
		k := keys[i]
		i++
		return Bin{index: k, count: s.bins[k]}, true
	}
}

func (s *SparseStore) GetDescendingIter() BinIterator {
	keys := s.sortedKeys()
	i := len(keys) - 1
	return func() (Bin, bool) {
		if i < 0 {
			return Bin{}, false
		}
		k := keys[i]
		i--
		return Bin{index: k, count: s.bins[k]}, true
	}
}

func (s *SparseStore) MergeWith(other Store) {
	if other.IsEmpty() {
		return
	}
	if o, ok := other.(*SparseStore); ok {
		for k, v := range o.bins {
			s.AddWithCount(k, v)
		}
		return
	}
	it := other.GetAscendingIter()
	for bin, ok := it(); ok; bin, ok = it() {
		s.AddBin(bin)
	}
}

func (s *SparseStore) Encode(w *encoding.Writer, flagType encoding.FlagType) error {
	return encodeIndexedDeltas(s, w, flagType)
}

func (s *SparseStore) DecodeAndMergeWith(r *encoding.Reader, mode BinEncodingMode) error {
	return decodeAndMergeGeneric(s, r, mode)
}
