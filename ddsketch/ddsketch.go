// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications
// Copyright 2026 axiomstream, Inc. for modifications

// Package ddsketch implements a relative-error quantile sketch: a
// fixed-memory structure that ingests real-valued samples and answers
// quantile, min, max, sum and count queries with a guaranteed relative error
// on the returned value, not its rank. It composes one IndexMapping with two
// Stores (for positive and negative values) and a zero-value counter.
package ddsketch

import (
	"fmt"
	"math"

	"github.com/axiomstream/ddsketch-go/ddsketch/encoding"
	"github.com/axiomstream/ddsketch-go/ddsketch/mapping"
	"github.com/axiomstream/ddsketch-go/ddsketch/store"
)

// DDSketch is single-threaded: it performs no internal synchronization, and
// every operation runs to completion without suspending. Callers needing
// concurrent ingest should shard one sketch per producer and MergeWith
// periodically, rather than share a sketch across goroutines.
type DDSketch struct {
	indexMapping    mapping.IndexMapping
	minIndexedValue float64
	maxIndexedValue float64
	positiveStore   store.Store
	negativeStore   store.Store
	zeroCount       float64
}

func newFromMapping(m mapping.IndexMapping, positive, negative store.Store) *DDSketch {
	return &DDSketch{
		indexMapping:    m,
		minIndexedValue: math.Max(0, m.MinIndexableValue()),
		maxIndexedValue: m.MaxIndexableValue(),
		positiveStore:   positive,
		negativeStore:   negative,
	}
}

// LogCubicUnboundedDense builds a sketch using the cubic-interpolated
// mapping and two unbounded dense stores. This is the general-purpose
// default: accurate, with memory proportional to the width of the observed
// value range rather than bounded up front.
func LogCubicUnboundedDense(relativeAccuracy float64) (*DDSketch, error) {
	m, err := mapping.NewLogCubicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return newFromMapping(m, store.NewUnboundedDenseStore(), store.NewUnboundedDenseStore()), nil
}

// LogCubicCollapsingLowestDense builds a sketch using the cubic-interpolated
// mapping and two stores bounded to maxBins bins each, collapsing the
// smallest-magnitude tail first.
func LogCubicCollapsingLowestDense(relativeAccuracy float64, maxBins int) (*DDSketch, error) {
	m, err := mapping.NewLogCubicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	positive, err := store.NewCollapsingLowestDenseStore(maxBins)
	if err != nil {
		return nil, err
	}
	negative, err := store.NewCollapsingLowestDenseStore(maxBins)
	if err != nil {
		return nil, err
	}
	return newFromMapping(m, positive, negative), nil
}

// LogCubicCollapsingHighestDense builds a sketch using the cubic-interpolated
// mapping and two stores bounded to maxBins bins each, collapsing the
// largest-magnitude tail first.
func LogCubicCollapsingHighestDense(relativeAccuracy float64, maxBins int) (*DDSketch, error) {
	m, err := mapping.NewLogCubicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	positive, err := store.NewCollapsingHighestDenseStore(maxBins)
	if err != nil {
		return nil, err
	}
	negative, err := store.NewCollapsingHighestDenseStore(maxBins)
	if err != nil {
		return nil, err
	}
	return newFromMapping(m, positive, negative), nil
}

// LogarithmicUnboundedDense builds a sketch using the exact logarithmic
// mapping and two unbounded dense stores. The logarithmic mapping needs
// about 1% fewer buckets than LogCubic for the same accuracy, and its
// Index/Value computation has no interpolation error beyond floating point
// precision.
func LogarithmicUnboundedDense(relativeAccuracy float64) (*DDSketch, error) {
	m, err := mapping.NewLogarithmicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return newFromMapping(m, store.NewUnboundedDenseStore(), store.NewUnboundedDenseStore()), nil
}

// LogarithmicCollapsingLowestDense is the logarithmic-mapping counterpart of
// LogCubicCollapsingLowestDense.
func LogarithmicCollapsingLowestDense(relativeAccuracy float64, maxBins int) (*DDSketch, error) {
	m, err := mapping.NewLogarithmicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	positive, err := store.NewCollapsingLowestDenseStore(maxBins)
	if err != nil {
		return nil, err
	}
	negative, err := store.NewCollapsingLowestDenseStore(maxBins)
	if err != nil {
		return nil, err
	}
	return newFromMapping(m, positive, negative), nil
}

// LogarithmicCollapsingHighestDense is the logarithmic-mapping counterpart
// of LogCubicCollapsingHighestDense.
func LogarithmicCollapsingHighestDense(relativeAccuracy float64, maxBins int) (*DDSketch, error) {
	m, err := mapping.NewLogarithmicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	positive, err := store.NewCollapsingHighestDenseStore(maxBins)
	if err != nil {
		return nil, err
	}
	negative, err := store.NewCollapsingHighestDenseStore(maxBins)
	if err != nil {
		return nil, err
	}
	return newFromMapping(m, positive, negative), nil
}

// LogCubicSparse builds a sketch using the cubic-interpolated mapping and
// two SparseStores, which trade the dense stores' O(range-width) memory for
// O(distinct bins): a good fit when values are few and widely scattered.
func LogCubicSparse(relativeAccuracy float64) (*DDSketch, error) {
	m, err := mapping.NewLogCubicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return newFromMapping(m, store.NewSparseStore(), store.NewSparseStore()), nil
}

// LogarithmicSparse is the logarithmic-mapping counterpart of LogCubicSparse.
func LogarithmicSparse(relativeAccuracy float64) (*DDSketch, error) {
	m, err := mapping.NewLogarithmicMapping(relativeAccuracy)
	if err != nil {
		return nil, err
	}
	return newFromMapping(m, store.NewSparseStore(), store.NewSparseStore()), nil
}

// Accept records value with a weight of 1. Equivalent to AcceptWithCount(value, 1).
func (s *DDSketch) Accept(value float64) {
	s.AcceptWithCount(value, 1)
}

// AcceptWithCount records value with the given weight. A negative count is
// silently dropped, as is any value outside [-maxIndexedValue,
// maxIndexedValue]: accept never errors, since a sketch is typically inline
// on a metrics hot path and must not fail on data.
//
// count is passed through to whichever bucket value routes to, not a
// constant 1 - a value accepted once with AcceptWithCount(v, 100)
// contributes the same count as accepting it 100 times via Accept(v).
func (s *DDSketch) AcceptWithCount(value, count float64) {
	if count < 0 {
		return
	}
	if value < -s.maxIndexedValue || value > s.maxIndexedValue {
		return
	}

	switch {
	case value > s.minIndexedValue:
		s.positiveStore.AddWithCount(s.indexMapping.Index(value), count)
	case value < -s.minIndexedValue:
		s.negativeStore.AddWithCount(s.indexMapping.Index(-value), count)
	default:
		s.zeroCount += count
	}
}

// IsEmpty reports whether the sketch has accepted no values.
func (s *DDSketch) IsEmpty() bool {
	return s.zeroCount == 0 && s.positiveStore.IsEmpty() && s.negativeStore.IsEmpty()
}

// Clear resets the sketch to empty, discarding every accepted value.
func (s *DDSketch) Clear() {
	s.positiveStore.Clear()
	s.negativeStore.Clear()
	s.zeroCount = 0
}

// GetCount returns the total weighted count of accepted values.
func (s *DDSketch) GetCount() float64 {
	return s.zeroCount + s.positiveStore.GetTotalCount() + s.negativeStore.GetTotalCount()
}

// GetSum returns the approximate sum of accepted values, or false if the
// sketch is empty.
func (s *DDSketch) GetSum() (float64, bool) {
	if s.GetCount() <= 0 {
		return 0, false
	}
	return s.positiveStore.GetSum(s.indexMapping) - s.negativeStore.GetSum(s.indexMapping), true
}

// GetMax returns the approximate maximum accepted value, or false if empty.
func (s *DDSketch) GetMax() (float64, bool) {
	switch {
	case !s.positiveStore.IsEmpty():
		maxIndex, _ := s.positiveStore.GetMaxIndex()
		return s.indexMapping.Value(maxIndex), true
	case s.zeroCount > 0:
		return 0, true
	case !s.negativeStore.IsEmpty():
		minIndex, _ := s.negativeStore.GetMinIndex()
		return -s.indexMapping.Value(minIndex), true
	default:
		return 0, false
	}
}

// GetMin returns the approximate minimum accepted value, or false if empty.
func (s *DDSketch) GetMin() (float64, bool) {
	switch {
	case !s.negativeStore.IsEmpty():
		maxIndex, _ := s.negativeStore.GetMaxIndex()
		return -s.indexMapping.Value(maxIndex), true
	case s.zeroCount > 0:
		return 0, true
	case !s.positiveStore.IsEmpty():
		minIndex, _ := s.positiveStore.GetMinIndex()
		return s.indexMapping.Value(minIndex), true
	default:
		return 0, false
	}
}

// GetAverage returns the approximate mean of accepted values, or false if empty.
func (s *DDSketch) GetAverage() (float64, bool) {
	count := s.GetCount()
	if count <= 0 {
		return 0, false
	}
	sum, _ := s.GetSum()
	return sum / count, true
}

// GetValueAtQuantile returns the approximate value at quantile q (in
// [0, 1]), or false if q is out of range or the sketch is empty.
//
// rank = q*(count-1); bins are scanned negative-descending, then the zero
// bucket, then positive-ascending, accumulating n; the first bin with
// n > rank (strict) determines the answer.
func (s *DDSketch) GetValueAtQuantile(q float64) (float64, bool) {
	if q < 0 || q > 1 {
		return 0, false
	}
	count := s.GetCount()
	if count <= 0 {
		return 0, false
	}
	rank := q * (count - 1)

	var n float64
	it := s.negativeStore.GetDescendingIter()
	for bin, ok := it(); ok; bin, ok = it() {
		n += bin.Count()
		if n > rank {
			return -s.indexMapping.Value(bin.Index()), true
		}
	}

	n += s.zeroCount
	if n > rank {
		return 0, true
	}

	pit := s.positiveStore.GetAscendingIter()
	for bin, ok := pit(); ok; bin, ok = pit() {
		n += bin.Count()
		if n > rank {
			return s.indexMapping.Value(bin.Index()), true
		}
	}

	return 0, false
}

// MergeWith folds other's accepted values into s. It fails if the two
// sketches' mappings are not equal: merging across incompatible mappings
// would silently corrupt the relative-accuracy guarantee.
func (s *DDSketch) MergeWith(other *DDSketch) error {
	if !s.indexMapping.Equals(other.indexMapping) {
		return fmt.Errorf("cannot merge sketches with different index mappings")
	}
	s.negativeStore.MergeWith(other.negativeStore)
	s.positiveStore.MergeWith(other.positiveStore)
	s.zeroCount += other.zeroCount
	return nil
}

// Encode serializes the sketch to the custom binary codec: the mapping
// block, the zero-count block (only if non-zero), the positive-store block,
// then the negative-store block.
func (s *DDSketch) Encode() ([]byte, error) {
	w := encoding.NewWriter(64)
	if err := s.indexMapping.Encode(w); err != nil {
		return nil, err
	}
	if s.zeroCount != 0 {
		if err := w.WriteFlag(encoding.FlagZeroCount); err != nil {
			return nil, err
		}
		w.WriteVarFloat64(s.zeroCount)
	}
	if err := s.positiveStore.Encode(w, encoding.FlagTypePositiveStore); err != nil {
		return nil, err
	}
	if err := s.negativeStore.Encode(w, encoding.FlagTypeNegativeStore); err != nil {
		return nil, err
	}
	return w.Trim(), nil
}

// Decode reconstructs a sketch from bytes produced by Encode. The stores are
// rebuilt as UnboundedDenseStore regardless of what produced them, since the
// wire format carries only bin contents, not a collapsing policy. Decode
// fails if no IndexMapping block is present in the stream.
func Decode(data []byte) (*DDSketch, error) {
	r := encoding.NewReader(data)
	positive := store.NewUnboundedDenseStore()
	negative := store.NewUnboundedDenseStore()
	var m mapping.IndexMapping
	var zeroCount float64

	for r.HasRemaining() {
		flag, err := encoding.DecodeFlag(r)
		if err != nil {
			return nil, err
		}
		flagType, err := flag.Type()
		if err != nil {
			return nil, err
		}
		switch flagType {
		case encoding.FlagTypePositiveStore:
			mode, err := store.BinEncodingModeOfSubFlag(flag.SubFlag())
			if err != nil {
				return nil, err
			}
			if err := positive.DecodeAndMergeWith(r, mode); err != nil {
				return nil, err
			}
		case encoding.FlagTypeNegativeStore:
			mode, err := store.BinEncodingModeOfSubFlag(flag.SubFlag())
			if err != nil {
				return nil, err
			}
			if err := negative.DecodeAndMergeWith(r, mode); err != nil {
				return nil, err
			}
		case encoding.FlagTypeIndexMapping:
			decoded, err := mapping.DecodeIndexMapping(r, flag.SubFlag())
			if err != nil {
				return nil, err
			}
			m = decoded
		case encoding.FlagTypeSketchFeatures:
			if err := decodeSketchFeature(r, flag, &zeroCount); err != nil {
				return nil, err
			}
		}
	}

	if m == nil {
		return nil, fmt.Errorf("no IndexMapping decoded")
	}
	sketch := newFromMapping(m, positive, negative)
	sketch.zeroCount = zeroCount
	return sketch, nil
}

// DecodeAndMergeWith decodes bytes produced by Encode and merges the result
// into s in place. Unlike Decode, it fails if an IndexMapping block appears
// in the stream that does not equal s's own mapping.
func (s *DDSketch) DecodeAndMergeWith(data []byte) error {
	r := encoding.NewReader(data)
	for r.HasRemaining() {
		flag, err := encoding.DecodeFlag(r)
		if err != nil {
			return err
		}
		flagType, err := flag.Type()
		if err != nil {
			return err
		}
		switch flagType {
		case encoding.FlagTypePositiveStore:
			mode, err := store.BinEncodingModeOfSubFlag(flag.SubFlag())
			if err != nil {
				return err
			}
			if err := s.positiveStore.DecodeAndMergeWith(r, mode); err != nil {
				return err
			}
		case encoding.FlagTypeNegativeStore:
			mode, err := store.BinEncodingModeOfSubFlag(flag.SubFlag())
			if err != nil {
				return err
			}
			if err := s.negativeStore.DecodeAndMergeWith(r, mode); err != nil {
				return err
			}
		case encoding.FlagTypeIndexMapping:
			decoded, err := mapping.DecodeIndexMapping(r, flag.SubFlag())
			if err != nil {
				return err
			}
			if !s.indexMapping.Equals(decoded) {
				return fmt.Errorf("unmatched IndexMapping")
			}
		case encoding.FlagTypeSketchFeatures:
			if err := decodeSketchFeature(r, flag, &s.zeroCount); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeSketchFeature handles a SketchFeatures block: zero_count is
// accumulated; every other well-known flag (count/sum/min/max summary
// statistics) is a forward-compatible read-past, since the sketch
// recomputes those from its stores rather than trusting a stale summary.
func decodeSketchFeature(r *encoding.Reader, flag encoding.Flag, zeroCount *float64) error {
	if flag.Equal(encoding.FlagZeroCount) {
		v, err := r.ReadVarFloat64()
		if err != nil {
			return err
		}
		*zeroCount += v
		return nil
	}
	switch flag.Marker() {
	case encoding.FlagCount.Marker(), encoding.FlagSum.Marker(), encoding.FlagMin.Marker(), encoding.FlagMax.Marker():
		_, err := r.ReadVarFloat64()
		return err
	default:
		return fmt.Errorf("unknown SketchFeatures sub-flag %d", flag.SubFlag())
	}
}
