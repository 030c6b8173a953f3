// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2026 axiomstream, Inc. for modifications

package mapping

import (
	"fmt"
	"math"

	"github.com/axiomstream/ddsketch-go/ddsketch/encoding"
)

// LogarithmicMapping is the exact IndexMapping: index(v) is computed from
// math.Log(v) with no further approximation. It is the simplest mapping to
// reason about and the one the relative-accuracy formula gamma=(1+a)/(1-a)
// is defined against.
type LogarithmicMapping struct {
	relativeAccuracy float64
	multiplier       float64
	indexOffset      float64
}

// NewLogarithmicMapping builds a LogarithmicMapping with the given
// guaranteed relative accuracy, in (0, 1).
func NewLogarithmicMapping(relativeAccuracy float64) (*LogarithmicMapping, error) {
	if relativeAccuracy <= 0 || relativeAccuracy >= 1 {
		return nil, fmt.Errorf("the relative accuracy must be between 0 and 1")
	}
	gamma := (1 + relativeAccuracy) / (1 - relativeAccuracy)
	return NewLogarithmicMappingWithGamma(gamma, 0)
}

// NewLogarithmicMappingWithGamma builds a LogarithmicMapping directly from a
// gamma base (must be > 1) and an index offset.
func NewLogarithmicMappingWithGamma(gamma, indexOffset float64) (*LogarithmicMapping, error) {
	if math.IsNaN(gamma) || math.IsInf(gamma, 0) || gamma <= 1 {
		return nil, fmt.Errorf("gamma must be finite and greater than 1")
	}
	return &LogarithmicMapping{
		relativeAccuracy: (gamma - 1) / (gamma + 1),
		multiplier:       1 / math.Log(gamma),
		indexOffset:      indexOffset,
	}, nil
}

func (m *LogarithmicMapping) Layout() Layout { return LayoutLog }

func (m *LogarithmicMapping) Equals(other IndexMapping) bool {
	o, ok := other.(*LogarithmicMapping)
	if !ok {
		return false
	}
	const tol = 1e-9
	return withinTolerance(m.multiplier, o.multiplier, tol) && withinTolerance(m.indexOffset, o.indexOffset, tol)
}

func (m *LogarithmicMapping) Index(value float64) int {
	index := math.Log(value)*m.multiplier + m.indexOffset
	if index >= 0 {
		return int(index)
	}
	return int(index) - 1
}

func (m *LogarithmicMapping) Value(index int) float64 {
	return math.Exp((float64(index)-m.indexOffset)/m.multiplier) * (1 + m.relativeAccuracy)
}

func (m *LogarithmicMapping) RelativeAccuracy() float64 {
	return m.relativeAccuracy
}

func (m *LogarithmicMapping) Gamma() float64 {
	return math.Exp(1 / m.multiplier)
}

func (m *LogarithmicMapping) IndexOffset() float64 {
	return m.indexOffset
}

func (m *LogarithmicMapping) MinIndexableValue() float64 {
	return math.Max(
		math.Exp((math.MinInt32-m.indexOffset)/m.multiplier+1), // so that index >= MinInt32
		minNormalFloat64*(1+m.relativeAccuracy)/(1-m.relativeAccuracy),
	)
}

func (m *LogarithmicMapping) MaxIndexableValue() float64 {
	return math.Min(
		math.Exp((math.MaxInt32-m.indexOffset)/m.multiplier-1), // so that index <= MaxInt32
		math.Exp(expOverflow)/(1+m.relativeAccuracy),           // so that math.Exp does not overflow
	)
}

func (m *LogarithmicMapping) Encode(w *encoding.Writer) error {
	return encodeMappingBlock(w, LayoutLog, m.Gamma(), m.indexOffset)
}
