// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications
// Copyright 2026 axiomstream, Inc. for modifications

package store

import "errors"

var errNegativeCount = errors.New("count cannot be negative")

// Bin is a (index, count) pair: the number of values that mapped to a given
// bucket index. Count is a non-negative finite real; fractional counts are
// allowed since a store may be merged from weighted observations.
type Bin struct {
	index int
	count float64
}

// NewBin builds a Bin, rejecting a negative count.
func NewBin(index int, count float64) (Bin, error) {
	if count < 0 {
		return Bin{}, errNegativeCount
	}
	return Bin{index: index, count: count}, nil
}

func (b Bin) Index() int {
	return b.index
}

func (b Bin) Count() float64 {
	return b.count
}

// IsEmpty reports whether the bin carries no count.
func (b Bin) IsEmpty() bool {
	return b.count == 0
}
