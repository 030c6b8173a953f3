// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications
// Copyright 2026 axiomstream, Inc. for modifications

package store

import (
	"fmt"

	"github.com/axiomstream/ddsketch-go/ddsketch/encoding"
)

// CollapsingLowestDenseStore is a dense array store bounded to at most
// maxCapacity active bins. When an insert would widen the active range past
// maxCapacity, the lowest bins are merged together into the bin at the new
// floor of the window - trading resolution on the smallest observed values
// (which matters least for upper-tail quantiles) to keep memory bounded.
type CollapsingLowestDenseStore struct {
	denseStore
	maxCapacity int
}

// NewCollapsingLowestDenseStore builds an empty store that never holds more
// than maxCapacity active bins.
func NewCollapsingLowestDenseStore(maxCapacity int) (*CollapsingLowestDenseStore, error) {
	if maxCapacity < 1 {
		return nil, fmt.Errorf("maxCapacity must be at least 1, got %d", maxCapacity)
	}
	return &CollapsingLowestDenseStore{denseStore: newDenseStore(), maxCapacity: maxCapacity}, nil
}

func (s *CollapsingLowestDenseStore) Add(index int) {
	s.AddWithCount(index, 1)
}

func (s *CollapsingLowestDenseStore) AddWithCount(index int, count float64) {
	if count <= 0 {
		return
	}
	if s.IsEmpty() {
		s.extendRange(index, index)
		s.incrCount(index, count)
		return
	}

	newMin, newMax := s.minIndex, s.maxIndex
	if index < newMin {
		newMin = index
	}
	if index > newMax {
		newMax = index
	}

	if newMax-newMin+1 > s.maxCapacity {
		s.extendRange(newMin, newMax)
		collapsedMinIndex := newMax - s.maxCapacity + 1
		s.collapseBelow(collapsedMinIndex)
		if index < collapsedMinIndex {
			index = collapsedMinIndex
		}
		s.incrCount(index, count)
		return
	}

	s.extendRange(newMin, newMax)
	s.incrCount(index, count)
}

func (s *CollapsingLowestDenseStore) AddBin(bin Bin) {
	if bin.IsEmpty() {
		return
	}
	s.AddWithCount(bin.Index(), bin.Count())
}

func (s *CollapsingLowestDenseStore) Copy() Store {
	return &CollapsingLowestDenseStore{denseStore: s.cloneInto(), maxCapacity: s.maxCapacity}
}

func (s *CollapsingLowestDenseStore) MergeWith(other Store) {
	if other.IsEmpty() {
		return
	}
	it := other.GetDescendingIter()
	for bin, ok := it(); ok; bin, ok = it() {
		s.AddWithCount(bin.Index(), bin.Count())
	}
}

func (s *CollapsingLowestDenseStore) Encode(w *encoding.Writer, flagType encoding.FlagType) error {
	return encodeContiguous(s, w, flagType)
}

func (s *CollapsingLowestDenseStore) DecodeAndMergeWith(r *encoding.Reader, mode BinEncodingMode) error {
	return decodeAndMergeGeneric(s, r, mode)
}
