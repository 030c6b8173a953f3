// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications (as LinearlyInterpolatedMapping)
// Copyright 2026 axiomstream, Inc. for modifications

package mapping

import (
	"fmt"
	"math"

	"github.com/axiomstream/ddsketch-go/ddsketch/encoding"
)

// Coefficients of the cubic polynomial approximating log2 on the mantissa of
// a float64, i.e. on t = significand - 1 in [0, 1). They sum to 1 so the
// polynomial agrees with the next exponent's t=0 value at the t=1 boundary,
// and are chosen to minimize the polynomial's worst-case deviation from the
// true log2 on that interval.
const (
	cubicA = 6.0 / 35.0
	cubicB = -3.0 / 5.0
	cubicC = 10.0 / 7.0

	// cubicGammaFactor is 1/cubicC, the reciprocal of the polynomial's slope
	// at t=0. It scales the multiplier so that the interpolated log keeps the
	// requested relative accuracy (DESIGN.md records how the value was
	// checked). With it, LogCubicMapping uses about 1% more buckets than
	// LogarithmicMapping at equal relative accuracy (a factor of 0.7/ln 2).
	cubicGammaFactor = 7.0 / 10.0
)

// LogCubicMapping approximates log2(v) with a cubic polynomial evaluated on
// the mantissa of v's IEEE-754 representation, combined with the unbiased
// exponent. It reaches the same guaranteed relative accuracy as
// LogarithmicMapping with a cubic evaluation per insert instead of a call to
// math.Log. It does not need fewer buckets than LogarithmicMapping: over the
// same value range it uses about 1% more.
type LogCubicMapping struct {
	gamma                 float64
	relativeAccuracy      float64
	multiplier            float64
	normalizedIndexOffset float64
}

// NewLogCubicMapping builds a LogCubicMapping with the given guaranteed
// relative accuracy, in (0, 1).
func NewLogCubicMapping(relativeAccuracy float64) (*LogCubicMapping, error) {
	if relativeAccuracy <= 0 || relativeAccuracy >= 1 {
		return nil, fmt.Errorf("the relative accuracy must be between 0 and 1")
	}
	return NewLogCubicMappingWithGamma(math.Exp2(math.Log1p(2*relativeAccuracy/(1-relativeAccuracy))), 0)
}

// NewLogCubicMappingWithGamma builds a LogCubicMapping directly from a gamma
// base (must be > 1) and an index offset.
func NewLogCubicMappingWithGamma(gamma, indexOffset float64) (*LogCubicMapping, error) {
	if math.IsNaN(gamma) || math.IsInf(gamma, 0) || gamma <= 1 {
		return nil, fmt.Errorf("gamma must be finite and greater than 1")
	}
	m := &LogCubicMapping{
		gamma:            gamma,
		relativeAccuracy: 1 - 2/(1+math.Exp(math.Log2(gamma))),
		multiplier:       cubicGammaFactor / math.Log2(gamma),
	}
	m.normalizedIndexOffset = indexOffset - m.approximateLog(1)*m.multiplier
	return m, nil
}

func (m *LogCubicMapping) Layout() Layout { return LayoutLogCubic }

func (m *LogCubicMapping) Equals(other IndexMapping) bool {
	o, ok := other.(*LogCubicMapping)
	if !ok {
		return false
	}
	const tol = 1e-9
	return withinTolerance(m.multiplier, o.multiplier, tol) && withinTolerance(m.normalizedIndexOffset, o.normalizedIndexOffset, tol)
}

func (m *LogCubicMapping) Index(value float64) int {
	index := m.approximateLog(value)*m.multiplier + m.normalizedIndexOffset
	if index >= 0 {
		return int(index)
	}
	return int(index) - 1
}

func (m *LogCubicMapping) Value(index int) float64 {
	return m.approximateInverseLog((float64(index)-m.normalizedIndexOffset)/m.multiplier) * (1 + m.relativeAccuracy)
}

// approximateLog returns an approximation of log2(x) built from the exact
// binary exponent of x and a cubic interpolation of the mantissa.
func (m *LogCubicMapping) approximateLog(x float64) float64 {
	bits := math.Float64bits(x)
	exponent := getExponent(bits)
	mantissa := getSignificandPlusOne(bits)
	return ((cubicA*mantissa+cubicB)*mantissa+cubicC)*mantissa + exponent
}

// approximateInverseLog is the exact inverse of approximateLog.
func (m *LogCubicMapping) approximateInverseLog(x float64) float64 {
	exponent := math.Floor(x)
	mantissa := solveCubic(x - exponent)
	return buildFloat64(int(exponent), mantissa)
}

// solveCubic finds the unique t in [0, 1) such that
// cubicA*t^3 + cubicB*t^2 + cubicC*t == y, for y in [0, 1). The cubic's
// derivative (3*cubicA*t^2 + 2*cubicB*t + cubicC) stays positive on [0, 1],
// so it is monotonic there and Newton's method converges from any t0 in
// range; a handful of iterations is enough for float64 precision.
func solveCubic(y float64) float64 {
	t := y
	for i := 0; i < 7; i++ {
		f := ((cubicA*t+cubicB)*t+cubicC)*t - y
		fPrime := (3*cubicA*t+2*cubicB)*t + cubicC
		t -= f / fPrime
	}
	return t
}

func (m *LogCubicMapping) RelativeAccuracy() float64 {
	return m.relativeAccuracy
}

func (m *LogCubicMapping) Gamma() float64 {
	return m.gamma
}

func (m *LogCubicMapping) IndexOffset() float64 {
	return m.normalizedIndexOffset + m.approximateLog(1)*m.multiplier
}

func (m *LogCubicMapping) MinIndexableValue() float64 {
	return math.Max(
		math.Exp2((math.MinInt32-m.normalizedIndexOffset)/m.multiplier-m.approximateLog(1)+1),
		minNormalFloat64*(1+m.relativeAccuracy)/(1-m.relativeAccuracy),
	)
}

func (m *LogCubicMapping) MaxIndexableValue() float64 {
	return math.Min(
		math.Exp2((math.MaxInt32-m.normalizedIndexOffset)/m.multiplier-m.approximateLog(1)-1),
		math.Exp(expOverflow)/(1+m.relativeAccuracy),
	)
}

func (m *LogCubicMapping) Encode(w *encoding.Writer) error {
	return encodeMappingBlock(w, LayoutLogCubic, m.Gamma(), m.IndexOffset())
}
