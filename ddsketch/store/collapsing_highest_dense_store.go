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

// CollapsingHighestDenseStore is the symmetric counterpart of
// CollapsingLowestDenseStore: when an insert would widen the active range
// past maxCapacity, the highest bins are merged together into the bin at
// the new ceiling of the window.
type CollapsingHighestDenseStore struct {
	denseStore
	maxCapacity int
}

// NewCollapsingHighestDenseStore builds an empty store that never holds
// more than maxCapacity active bins.
func NewCollapsingHighestDenseStore(maxCapacity int) (*CollapsingHighestDenseStore, error) {
	if maxCapacity < 1 {
		return nil, fmt.Errorf("maxCapacity must be at least 1, got %d", maxCapacity)
	}
	return &CollapsingHighestDenseStore{denseStore: newDenseStore(), maxCapacity: maxCapacity}, nil
}

func (s *CollapsingHighestDenseStore) Add(index int) {
	s.AddWithCount(index, 1)
}

func (s *CollapsingHighestDenseStore) AddWithCount(index int, count float64) {
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
		collapsedMaxIndex := newMin + s.maxCapacity - 1
		s.collapseAbove(collapsedMaxIndex)
		if index > collapsedMaxIndex {
			index = collapsedMaxIndex
		}
		s.incrCount(index, count)
		return
	}

	s.extendRange(newMin, newMax)
	s.incrCount(index, count)
}

func (s *CollapsingHighestDenseStore) AddBin(bin Bin) {
	if bin.IsEmpty() {
		return
	}
	s.AddWithCount(bin.Index(), bin.Count())
}

func (s *CollapsingHighestDenseStore) Copy() Store {
	return &CollapsingHighestDenseStore{denseStore: s.cloneInto(), maxCapacity: s.maxCapacity}
}

func (s *CollapsingHighestDenseStore) MergeWith(other Store) {
	if other.IsEmpty() {
		return
	}
	it := other.GetDescendingIter()
	for bin, ok := it(); ok; bin, ok = it() {
		s.AddWithCount(bin.Index(), bin.Count())
	}
}

func (s *CollapsingHighestDenseStore) Encode(w *encoding.Writer, flagType encoding.FlagType) error {
	return encodeContiguous(s, w, flagType)
}

func (s *CollapsingHighestDenseStore) DecodeAndMergeWith(r *encoding.Reader, mode BinEncodingMode) error {
	return decodeAndMergeGeneric(s, r, mode)
}
