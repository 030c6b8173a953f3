// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications
// Copyright 2026 axiomstream, Inc. for modifications

// Package store implements the bin store: a conceptually sparse mapping from
// integer bucket index to non-negative real count, with three strategies
// (UnboundedDenseStore, CollapsingLowestDenseStore, CollapsingHighestDenseStore,
// plus the legacy SparseStore) trading memory for tail fidelity.
package store

import (
	"fmt"

	"github.com/axiomstream/ddsketch-go/ddsketch/encoding"
	"github.com/axiomstream/ddsketch-go/ddsketch/mapping"
)

// BinIterator yields bins in a fixed order (ascending or descending by
// index) until exhausted. It is finite and not restartable: a merge
// consumes it once, mirroring the Rust/Java streaming iterators this codec
// was modeled on.
type BinIterator func() (Bin, bool)

// BinEncodingMode selects the payload layout of an encoded store block.
type BinEncodingMode byte

const (
	// BinEncodingContiguousCounts encodes the first bin's index, a bin
	// count N, then N counts for consecutive indices starting there.
	// Compact for dense, gap-free ranges.
	BinEncodingContiguousCounts BinEncodingMode = 1
	// BinEncodingIndexedDeltas encodes a bin count N followed by N
	// (index-delta, count) pairs. Compact for sparse, scattered ranges.
	BinEncodingIndexedDeltas BinEncodingMode = 2
)

// BinEncodingModeOfSubFlag reconstructs a BinEncodingMode from a store
// block's flag sub-flag bits.
func BinEncodingModeOfSubFlag(subFlag byte) (BinEncodingMode, error) {
	switch m := BinEncodingMode(subFlag); m {
	case BinEncodingContiguousCounts, BinEncodingIndexedDeltas:
		return m, nil
	default:
		return 0, fmt.Errorf("unknown bin encoding mode %d", subFlag)
	}
}

// Store is a mapping from bucket index to non-negative count. All
// implementations maintain total_count, min_index and max_index as bins are
// added; GetMinIndex/GetMaxIndex are undefined on an empty store, so callers
// must gate on IsEmpty first.
type Store interface {
	// Add increments index's count by 1.
	Add(index int)
	// AddWithCount increments index's count by count. A negative count is
	// ignored; a zero count is a no-op.
	AddWithCount(index int, count float64)
	// AddBin merges a single bin into the store.
	AddBin(bin Bin)

	GetCount(index int) float64
	GetTotalCount() float64
	GetMinIndex() (int, error)
	GetMaxIndex() (int, error)
	GetSum(mapping mapping.IndexMapping) float64

	IsEmpty() bool
	Clear()
	Copy() Store

	// Bins returns every non-empty bin in ascending index order.
	Bins() []Bin
	// GetAscendingIter and GetDescendingIter return a one-shot bin stream
	// in the named order.
	GetAscendingIter() BinIterator
	GetDescendingIter() BinIterator

	// MergeWith folds another store's bins into this one.
	MergeWith(other Store)

	// Encode appends this store's block (flag + payload) to w, under the
	// given FlagType (PositiveStore or NegativeStore).
	Encode(w *encoding.Writer, flagType encoding.FlagType) error
	// DecodeAndMergeWith reads a store block payload (the flag has already
	// been consumed) encoded under mode, merging it into this store.
	DecodeAndMergeWith(r *encoding.Reader, mode BinEncodingMode) error
}
