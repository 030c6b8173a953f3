// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.
// Copyright 2026 axiomstream, Inc. for modifications

package mapping

import (
	"math"
	"testing"

	"github.com/axiomstream/ddsketch-go/ddsketch/encoding"
	"github.com/stretchr/testify/assert"
)

const (
	testMaxRelativeAccuracy      = 1 - 1e-3
	testMinRelativeAccuracy      = 1e-7
	floatingPointAcceptableError = 1e-12
)

var multiplierStep = 1 + math.Sqrt(2)*1e2

func evaluateRelativeAccuracy(t *testing.T, expected, actual, relativeAccuracy float64) {
	assert.True(t, expected >= 0)
	assert.True(t, actual >= 0)
	if expected == 0 {
		assert.InDelta(t, 0, actual, floatingPointAcceptableError)
	} else {
		assert.LessOrEqual(t, math.Abs(expected-actual)/expected, relativeAccuracy+floatingPointAcceptableError)
	}
}

func evaluateMappingAccuracy(t *testing.T, m IndexMapping, relativeAccuracy float64) {
	for value := m.MinIndexableValue(); value < m.MaxIndexableValue(); value *= multiplierStep {
		mappedValue := m.Value(m.Index(value))
		evaluateRelativeAccuracy(t, value, mappedValue, relativeAccuracy)
	}
	value := m.MaxIndexableValue()
	evaluateRelativeAccuracy(t, value, m.Value(m.Index(value)), relativeAccuracy)
}

func TestLogarithmicMappingAccuracy(t *testing.T) {
	for ra := testMaxRelativeAccuracy; ra >= testMinRelativeAccuracy; ra *= testMaxRelativeAccuracy * testMaxRelativeAccuracy {
		m, err := NewLogarithmicMapping(ra)
		assert.NoError(t, err)
		evaluateMappingAccuracy(t, m, ra)
	}
}

func TestLogCubicMappingAccuracy(t *testing.T) {
	for ra := testMaxRelativeAccuracy; ra >= testMinRelativeAccuracy; ra *= testMaxRelativeAccuracy * testMaxRelativeAccuracy {
		m, err := NewLogCubicMapping(ra)
		assert.NoError(t, err)
		evaluateMappingAccuracy(t, m, ra)
	}
}

func TestLogarithmicMappingEquivalence(t *testing.T) {
	relativeAccuracy := 0.01
	gamma := (1 + relativeAccuracy) / (1 - relativeAccuracy)
	m1, err := NewLogarithmicMapping(relativeAccuracy)
	assert.NoError(t, err)
	m2, err := NewLogarithmicMappingWithGamma(gamma, 0)
	assert.NoError(t, err)
	assert.True(t, m1.Equals(m2))
}

func TestLogCubicMappingEquivalence(t *testing.T) {
	relativeAccuracy := 0.01
	m1, err := NewLogCubicMapping(relativeAccuracy)
	assert.NoError(t, err)
	m2, err := NewLogCubicMappingWithGamma(m1.Gamma(), m1.IndexOffset())
	assert.NoError(t, err)
	assert.True(t, m1.Equals(m2))
}

func TestInvalidRelativeAccuracy(t *testing.T) {
	for _, ra := range []float64{-0.1, 0, 1, 1.5} {
		_, err := NewLogarithmicMapping(ra)
		assert.Error(t, err)
		_, err = NewLogCubicMapping(ra)
		assert.Error(t, err)
	}
}

func TestInvalidGamma(t *testing.T) {
	for _, gamma := range []float64{0, 1, -2, math.NaN()} {
		_, err := NewLogarithmicMappingWithGamma(gamma, 0)
		assert.Error(t, err)
		_, err = NewLogCubicMappingWithGamma(gamma, 0)
		assert.Error(t, err)
	}
}

func TestNotEqualDifferentLayouts(t *testing.T) {
	logM, err := NewLogarithmicMapping(0.01)
	assert.NoError(t, err)
	cubicM, err := NewLogCubicMapping(0.01)
	assert.NoError(t, err)
	assert.False(t, logM.Equals(cubicM))
	assert.False(t, cubicM.Equals(logM))
}

func TestMappingRoundTripThroughCodec(t *testing.T) {
	for _, layout := range []Layout{LayoutLog, LayoutLogCubic} {
		m, err := NewWithRelativeAccuracy(layout, 0.02)
		assert.NoError(t, err)

		w := encoding.NewWriter(16)
		assert.NoError(t, m.Encode(w))

		r := encoding.NewReader(w.Bytes())
		flag, err := encoding.DecodeFlag(r)
		assert.NoError(t, err)
		decoded, err := DecodeIndexMapping(r, flag.SubFlag())
		assert.NoError(t, err)
		assert.True(t, m.Equals(decoded))
		assert.Equal(t, layout, decoded.Layout())
	}
}
