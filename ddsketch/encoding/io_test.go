// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2026 axiomstream, Inc.

package encoding

import (
	"testing"

	"github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
)

func TestVarintRoundTrip(t *testing.T) {
	fuzzer := fuzz.New()
	var values []int64
	fuzzer.NilChance(0).NumElements(200, 200).Fuzz(&values)

	w := NewWriter(16)
	for _, v := range values {
		w.WriteVarint64(v)
	}
	r := NewReader(w.Bytes())
	for _, v := range values {
		got, err := r.ReadVarint64()
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
	assert.False(t, r.HasRemaining())
}

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 40, ^uint64(0)}
	w := NewWriter(16)
	for _, v := range cases {
		w.WriteUvarint64(v)
	}
	r := NewReader(w.Bytes())
	for _, v := range cases {
		got, err := r.ReadUvarint64()
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestFloat64LERoundTrip(t *testing.T) {
	cases := []float64{0, 1, -1, 3.14159, 1e300, -1e-300}
	w := NewWriter(8 * len(cases))
	for _, v := range cases {
		w.WriteFloat64LE(v)
	}
	r := NewReader(w.Bytes())
	for _, v := range cases {
		got, err := r.ReadFloat64LE()
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestVarFloat64RoundTrip(t *testing.T) {
	cases := []float64{0, 1, 2, 0.5, 123456, -42, 3.14159, 1e-7}
	for _, v := range cases {
		w := NewWriter(16)
		w.WriteVarFloat64(v)
		r := NewReader(w.Bytes())
		got, err := r.ReadVarFloat64()
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestVarFloat64SmallMagnitudesAreShort(t *testing.T) {
	// Round counts (the common case for bin counts) must encode compactly.
	for _, v := range []float64{1, 2, 3, 10, 100} {
		w := NewWriter(16)
		w.WriteVarFloat64(v)
		assert.LessOrEqual(t, len(w.Bytes()), 3)
	}
}

func TestFlagEncodeDecode(t *testing.T) {
	f := FlagWithType(FlagTypeIndexMapping, 1)
	w := NewWriter(1)
	assert.NoError(t, w.WriteFlag(f))
	r := NewReader(w.Bytes())
	decoded, err := DecodeFlag(r)
	assert.NoError(t, err)
	assert.True(t, f.Equal(decoded))

	typ, err := decoded.Type()
	assert.NoError(t, err)
	assert.Equal(t, FlagTypeIndexMapping, typ)
	assert.Equal(t, byte(1), decoded.SubFlag())
}

func TestReadByteTruncated(t *testing.T) {
	r := NewReader(nil)
	assert.False(t, r.HasRemaining())
	_, err := r.ReadByte()
	assert.Error(t, err)
}
