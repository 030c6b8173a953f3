// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// Copyright 2020 Datadog, Inc. for original work
// Copyright 2021 GraphMetrics for modifications
// Copyright 2026 axiomstream, Inc. for modifications

package encoding

import "fmt"

// FlagType is the 2-bit block class carried in the low bits of every Flag.
type FlagType byte

const (
	FlagTypeSketchFeatures FlagType = 0b00
	FlagTypePositiveStore  FlagType = 0b01
	FlagTypeIndexMapping   FlagType = 0b10
	FlagTypeNegativeStore  FlagType = 0b11
)

// Flag is the single byte that starts every block of the custom binary codec.
// Bits [1:0] hold the FlagType; bits [7:2] hold a type-specific sub-flag.
type Flag struct {
	marker byte
}

// NewFlag wraps a raw marker byte read off the wire.
func NewFlag(marker byte) Flag {
	return Flag{marker: marker}
}

// FlagWithType builds a flag from a type and sub-flag, as the sender does.
func FlagWithType(flagType FlagType, subFlag byte) Flag {
	return Flag{marker: byte(flagType) | (subFlag << 2)}
}

// Well-known SketchFeatures sub-flags.
var (
	FlagZeroCount = FlagWithType(FlagTypeSketchFeatures, 1)
	FlagCount     = FlagWithType(FlagTypeSketchFeatures, 0x28)
	FlagSum       = FlagWithType(FlagTypeSketchFeatures, 0x21)
	FlagMin       = FlagWithType(FlagTypeSketchFeatures, 0x22)
	FlagMax       = FlagWithType(FlagTypeSketchFeatures, 0x23)
)

// Marker returns the raw byte, e.g. to compare well-known SketchFeatures flags.
func (f Flag) Marker() byte {
	return f.marker
}

// SubFlag returns bits [7:2].
func (f Flag) SubFlag() byte {
	return f.marker >> 2
}

// Type decodes bits [1:0], failing on a FlagType this codec version doesn't know.
func (f Flag) Type() (FlagType, error) {
	switch t := FlagType(f.marker & 3); t {
	case FlagTypeSketchFeatures, FlagTypePositiveStore, FlagTypeIndexMapping, FlagTypeNegativeStore:
		return t, nil
	default:
		return 0, fmt.Errorf("unknown flag type %d", t)
	}
}

// Equal compares two flags by their raw marker, the only state they carry.
func (f Flag) Equal(other Flag) bool {
	return f.marker == other.marker
}

// Encode writes the flag's single byte.
func (f Flag) Encode(w *Writer) error {
	return w.WriteByte(f.marker)
}

// DecodeFlag reads a single flag byte off the stream.
func DecodeFlag(r *Reader) (Flag, error) {
	b, err := r.ReadByte()
	if err != nil {
		return Flag{}, err
	}
	return NewFlag(b), nil
}
