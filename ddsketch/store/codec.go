// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2026 axiomstream, Inc.

package store

import (
	"fmt"

	"github.com/axiomstream/ddsketch-go/ddsketch/encoding"
)

// encodeContiguous writes a ContiguousCounts block: the signed varint index
// of the first bin, a count N, then N var-doubles for every index in
// [firstIndex, firstIndex+N), including zero-count gaps. It suits dense
// stores, whose active range has few or no gaps.
func encodeContiguous(s Store, w *encoding.Writer, flagType encoding.FlagType) error {
	if err := w.WriteFlag(encoding.FlagWithType(flagType, byte(BinEncodingContiguousCounts))); err != nil {
		return err
	}
	if s.IsEmpty() {
		w.WriteVarint64(0)
		w.WriteUvarint64(0)
		return nil
	}
	minIndex, err := s.GetMinIndex()
	if err != nil {
		return err
	}
	maxIndex, err := s.GetMaxIndex()
	if err != nil {
		return err
	}
	w.WriteVarint64(int64(minIndex))
	w.WriteUvarint64(uint64(maxIndex - minIndex + 1))
	for i := minIndex; i <= maxIndex; i++ {
		w.WriteVarFloat64(s.GetCount(i))
	}
	return nil
}

func decodeContiguous(s Store, r *encoding.Reader) error {
	firstIndex, err := r.ReadVarint64()
	if err != nil {
		return err
	}
	n, err := r.ReadUvarint64()
	if err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		c, err := r.ReadVarFloat64()
		if err != nil {
			return err
		}
		if c != 0 {
			s.AddWithCount(int(firstIndex)+int(i), c)
		}
	}
	return nil
}

// encodeIndexedDeltas writes an IndexedDeltas block: a count N followed by N
// (index-delta, count) pairs, the delta being relative to the previous bin's
// index (zero for the first). It suits sparse stores, whose active bins may
// be scattered far apart.
func encodeIndexedDeltas(s Store, w *encoding.Writer, flagType encoding.FlagType) error {
	if err := w.WriteFlag(encoding.FlagWithType(flagType, byte(BinEncodingIndexedDeltas))); err != nil {
		return err
	}
	bins := s.Bins()
	w.WriteUvarint64(uint64(len(bins)))
	prevIndex := 0
	for _, b := range bins {
		w.WriteVarint64(int64(b.Index() - prevIndex))
		w.WriteVarFloat64(b.Count())
		prevIndex = b.Index()
	}
	return nil
}

func decodeIndexedDeltas(s Store, r *encoding.Reader) error {
	n, err := r.ReadUvarint64()
	if err != nil {
		return err
	}
	index := 0
	for i := uint64(0); i < n; i++ {
		delta, err := r.ReadVarint64()
		if err != nil {
			return err
		}
		index += int(delta)
		c, err := r.ReadVarFloat64()
		if err != nil {
			return err
		}
		s.AddWithCount(index, c)
	}
	return nil
}

// decodeAndMergeGeneric dispatches to the decoder matching mode, merging the
// result into s. Every Store implementation's DecodeAndMergeWith delegates
// here so the wire format is shared regardless of which side encoded it:
// a sparse store can decode a contiguous block and vice versa.
func decodeAndMergeGeneric(s Store, r *encoding.Reader, mode BinEncodingMode) error {
	switch mode {
	case BinEncodingContiguousCounts:
		return decodeContiguous(s, r)
	case BinEncodingIndexedDeltas:
		return decodeIndexedDeltas(s, r)
	default:
		return fmt.Errorf("unsupported bin encoding mode %d", mode)
	}
}
