// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications
// Copyright 2026 axiomstream, Inc. for modifications

package store

import "github.com/axiomstream/ddsketch-go/ddsketch/encoding"

// UnboundedDenseStore is a dense array store that grows to cover whatever
// index range is inserted, with no collapsing. Memory is proportional to
// the width of the observed range, not the number of observations.
type UnboundedDenseStore struct {
	denseStore
}

// NewUnboundedDenseStore builds an empty UnboundedDenseStore.
func NewUnboundedDenseStore() *UnboundedDenseStore {
	return &UnboundedDenseStore{denseStore: newDenseStore()}
}

func (s *UnboundedDenseStore) Add(index int) {
	s.AddWithCount(index, 1)
}

func (s *UnboundedDenseStore) AddWithCount(index int, count float64) {
	if count <= 0 {
		return
	}
	s.extendRange(index, index)
	s.incrCount(index, count)
}

func (s *UnboundedDenseStore) AddBin(bin Bin) {
	if bin.IsEmpty() {
		return
	}
	s.AddWithCount(bin.Index(), bin.Count())
}

func (s *UnboundedDenseStore) Copy() Store {
	return &UnboundedDenseStore{denseStore: s.cloneInto()}
}

func (s *UnboundedDenseStore) MergeWith(other Store) {
	if other.IsEmpty() {
		return
	}
	it := other.GetDescendingIter()
	for bin, ok := it(); ok; bin, ok = it() {
		s.AddWithCount(bin.Index(), bin.Count())
	}
}

func (s *UnboundedDenseStore) Encode(w *encoding.Writer, flagType encoding.FlagType) error {
	return encodeContiguous(s, w, flagType)
}

func (s *UnboundedDenseStore) DecodeAndMergeWith(r *encoding.Reader, mode BinEncodingMode) error {
	return decodeAndMergeGeneric(s, r, mode)
}
