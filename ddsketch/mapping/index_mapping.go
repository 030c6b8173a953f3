// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications
// Copyright 2026 axiomstream, Inc. for modifications

package mapping

import (
	"fmt"

	"github.com/axiomstream/ddsketch-go/ddsketch/encoding"
)

const (
	expOverflow      = 7.094361393031e+02      // The value at which math.Exp overflows
	minNormalFloat64 = 2.2250738585072014e-308 // 2^(-1022)
)

// Layout selects the interpolation IndexMapping uses to approximate log2.
type Layout byte

const (
	// LayoutLog is the exact (math.Log-based) mapping: slower per insert, no
	// interpolation error beyond floating point precision.
	LayoutLog Layout = iota
	// LayoutLogCubic interpolates log2 with a cubic polynomial on the
	// mantissa instead of calling math.Log, reaching the same relative
	// accuracy with about 1% more buckets than LayoutLog.
	LayoutLogCubic
)

func (l Layout) String() string {
	switch l {
	case LayoutLog:
		return "Log"
	case LayoutLogCubic:
		return "LogCubic"
	default:
		return fmt.Sprintf("Layout(%d)", byte(l))
	}
}

// IndexMapping is a bijection between positive real values and bucket
// indices, guaranteeing |value(index(v)) - v| / v <= RelativeAccuracy() for
// any v in [MinIndexableValue(), MaxIndexableValue()].
type IndexMapping interface {
	Layout() Layout
	Equals(other IndexMapping) bool
	Index(value float64) int
	Value(index int) float64
	RelativeAccuracy() float64
	MinIndexableValue() float64
	MaxIndexableValue() float64
	Gamma() float64
	IndexOffset() float64

	// Encode appends this mapping's IndexMapping block (flag + gamma +
	// indexOffset) to w.
	Encode(w *encoding.Writer) error
}

// NewWithRelativeAccuracy builds a mapping of the given layout whose gamma is
// chosen so that the guaranteed relative error is exactly relativeAccuracy.
func NewWithRelativeAccuracy(layout Layout, relativeAccuracy float64) (IndexMapping, error) {
	switch layout {
	case LayoutLog:
		return NewLogarithmicMapping(relativeAccuracy)
	case LayoutLogCubic:
		return NewLogCubicMapping(relativeAccuracy)
	default:
		return nil, fmt.Errorf("unknown index mapping layout %v", layout)
	}
}

// NewWithGammaOffset builds a mapping of the given layout directly from a
// gamma base and index offset, as produced when decoding an IndexMapping
// codec block.
func NewWithGammaOffset(layout Layout, gamma, indexOffset float64) (IndexMapping, error) {
	switch layout {
	case LayoutLog:
		return NewLogarithmicMappingWithGamma(gamma, indexOffset)
	case LayoutLogCubic:
		return NewLogCubicMappingWithGamma(gamma, indexOffset)
	default:
		return nil, fmt.Errorf("unknown index mapping layout %v", layout)
	}
}

// layoutOfSubFlag reconstructs the Layout encoded in an IndexMapping flag's
// sub-flag bits.
func layoutOfSubFlag(subFlag byte) (Layout, error) {
	switch subFlag {
	case 0:
		return LayoutLog, nil
	case 1:
		return LayoutLogCubic, nil
	default:
		return 0, fmt.Errorf("unknown index mapping sub-flag %d", subFlag)
	}
}

// DecodeIndexMapping reconstructs an IndexMapping from an already-read
// IndexMapping flag and the two little-endian doubles that follow it.
func DecodeIndexMapping(r *encoding.Reader, subFlag byte) (IndexMapping, error) {
	layout, err := layoutOfSubFlag(subFlag)
	if err != nil {
		return nil, err
	}
	gamma, err := r.ReadFloat64LE()
	if err != nil {
		return nil, err
	}
	indexOffset, err := r.ReadFloat64LE()
	if err != nil {
		return nil, err
	}
	return NewWithGammaOffset(layout, gamma, indexOffset)
}

// encodeMappingBlock writes the IndexMapping flag followed by gamma and
// indexOffset as little-endian doubles, per the codec's §4.4 mapping block.
func encodeMappingBlock(w *encoding.Writer, layout Layout, gamma, indexOffset float64) error {
	if err := w.WriteFlag(encoding.FlagWithType(encoding.FlagTypeIndexMapping, subFlagForLayout(layout))); err != nil {
		return err
	}
	w.WriteFloat64LE(gamma)
	w.WriteFloat64LE(indexOffset)
	return nil
}

func subFlagForLayout(layout Layout) byte {
	switch layout {
	case LayoutLogCubic:
		return 1
	default:
		return 0
	}
}

func withinTolerance(x, y, tolerance float64) bool {
	if x == 0 || y == 0 {
		return absFloat64(x) <= tolerance && absFloat64(y) <= tolerance
	}
	return absFloat64(x-y) <= tolerance*maxFloat64(absFloat64(x), absFloat64(y))
}

func absFloat64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func maxFloat64(x, y float64) float64 {
	if x > y {
		return x
	}
	return y
}
