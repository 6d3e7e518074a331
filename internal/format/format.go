// Package format describes the numeric element kinds accepted at the
// stretcher boundary and converts between them and the float64 working
// representation.
//
// The descriptor table is fixed for the process lifetime. Every function in
// this package only reads it, so concurrent use needs no locking.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/go-audio-stretcher/internal/simdops"
)

// ElementKind identifies the numeric type of a single sample.
type ElementKind int

const (
	// Float32 is the default kind: IEEE-754 single precision, no scaling.
	Float32 ElementKind = iota
	// Uint8 is an unsigned 8-bit quantized sample.
	Uint8
	// Int8 is a signed 8-bit quantized sample.
	Int8
	// Int16 is a signed 16-bit quantized sample.
	Int16
	// Int32 is a signed 32-bit quantized sample.
	Int32
	// Float64 is IEEE-754 double precision, no scaling.
	Float64

	numKinds
)

// Descriptor holds the scaling parameters of one element kind.
type Descriptor struct {
	Kind    ElementKind
	Name    string
	Scale   float64 // full-scale value; 1 for floating kinds
	Min     float64 // lower clamp bound (Clamped only)
	Max     float64 // upper clamp bound (Clamped only)
	Clamped bool
	Size    int // bytes per element
}

var descriptors = [numKinds]Descriptor{
	Float32: {Kind: Float32, Name: "float32", Scale: 1, Size: 4},
	Uint8:   {Kind: Uint8, Name: "uint8", Scale: uint8Scale, Min: 0, Max: math.MaxUint8, Clamped: true, Size: 1},
	Int8:    {Kind: Int8, Name: "int8", Scale: int8Scale, Min: math.MinInt8, Max: math.MaxInt8, Clamped: true, Size: 1},
	Int16:   {Kind: Int16, Name: "int16", Scale: int16Scale, Min: math.MinInt16, Max: math.MaxInt16, Clamped: true, Size: 2},
	Int32:   {Kind: Int32, Name: "int32", Scale: int32Scale, Min: math.MinInt32, Max: math.MaxInt32, Clamped: true, Size: 4},
	Float64: {Kind: Float64, Name: "float64", Scale: 1, Size: 8},
}

// Scale factors of the quantized kinds.
const (
	uint8Scale = 255.0
	int8Scale  = 128.0
	int16Scale = 32768.0
	int32Scale = 2147483648.0
)

// Valid reports whether k is a known element kind.
func (k ElementKind) Valid() bool {
	return k >= 0 && k < numKinds
}

// IsFloat reports whether k is a floating kind (no quantization).
func (k ElementKind) IsFloat() bool {
	return k == Float32 || k == Float64
}

func (k ElementKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
	return descriptors[k].Name
}

// Describe returns the descriptor of k.
func Describe(k ElementKind) (Descriptor, error) {
	if !k.Valid() {
		return Descriptor{}, fmt.Errorf("%w: unknown element kind %d", ErrUnsupportedInput, int(k))
	}
	return descriptors[k], nil
}

// Kinds returns all element kinds in declaration order.
func Kinds() []ElementKind {
	kinds := make([]ElementKind, 0, numKinds)
	for k := range numKinds {
		kinds = append(kinds, k)
	}
	return kinds
}

// KindByName resolves a kind from its name ("int16", "float32", ...).
func KindByName(name string) (ElementKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, d := range descriptors {
		if d.Name == name {
			return d.Kind, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown element kind %q", ErrUnsupportedInput, name)
}

// clip limits x to [lo, hi].
func clip(lo, hi, x float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Dequantize scales quantized samples into the working representation in
// place. The clamp is applied to the scale factor, not to the samples:
// x *= clip(min, max, 1/scale). Floating kinds are left untouched.
func Dequantize(samples []float64, k ElementKind) error {
	d, err := Describe(k)
	if err != nil {
		return err
	}
	if k.IsFloat() {
		return nil
	}
	factor := clip(d.Min, d.Max, 1.0/d.Scale)
	if len(samples) > 0 {
		simdops.For[float64]().Scale(samples, samples, factor)
	}
	return nil
}

// Quantize maps working samples onto the integer grid of k in place:
// x = clip(min, max, round(x*scale)), with NaN mapped to 0. Floating kinds
// are left untouched.
func Quantize(samples []float64, k ElementKind) error {
	d, err := Describe(k)
	if err != nil {
		return err
	}
	if k.IsFloat() {
		return nil
	}
	for i, x := range samples {
		if math.IsNaN(x) {
			x = 0
		}
		samples[i] = clip(d.Min, d.Max, math.Round(x*d.Scale))
	}
	return nil
}

// CheckFinite returns ErrType for the first NaN or infinite sample.
func CheckFinite(samples []float64) error {
	for i, x := range samples {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: element %d is %v, not a finite number", ErrType, i, x)
		}
	}
	return nil
}
