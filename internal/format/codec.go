package format

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Sample is the set of Go element types that map onto an ElementKind.
type Sample interface {
	float32 | float64 | uint8 | int8 | int16 | int32
}

// KindOf returns the element kind matching T.
func KindOf[T Sample]() ElementKind {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case uint8:
		return Uint8
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	}
	return Float32
}

// ToFloat64 converts a typed sample slice to the working representation.
// Every element passes through float32 first, the way numeric arrays are
// cast to the 32-bit floating kind before entering the pipeline.
func ToFloat64(values any) ([]float64, ElementKind, error) {
	switch v := values.(type) {
	case []float32:
		return widen(v), Float32, nil
	case []float64:
		return widen(v), Float64, nil
	case []uint8:
		return widen(v), Uint8, nil
	case []int8:
		return widen(v), Int8, nil
	case []int16:
		return widen(v), Int16, nil
	case []int32:
		return widen(v), Int32, nil
	case nil:
		return nil, 0, fmt.Errorf("%w: nil sample slice", ErrType)
	default:
		return nil, 0, fmt.Errorf("%w: unsupported element type %T", ErrUnsupportedInput, values)
	}
}

func widen[T Sample](v []T) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(float32(x))
	}
	return out
}

// Cast converts working samples to a typed slice of kind k.
// Conversion truncates toward zero like a C cast; callers quantize first.
func Cast(samples []float64, k ElementKind) (any, error) {
	switch k {
	case Float32:
		return narrow[float32](samples), nil
	case Float64:
		out := make([]float64, len(samples))
		copy(out, samples)
		return out, nil
	case Uint8:
		return narrow[uint8](samples), nil
	case Int8:
		return narrow[int8](samples), nil
	case Int16:
		return narrow[int16](samples), nil
	case Int32:
		return narrow[int32](samples), nil
	default:
		return nil, fmt.Errorf("%w: cannot cast to element kind %d", ErrAllocation, int(k))
	}
}

func narrow[T Sample](samples []float64) []T {
	out := make([]T, len(samples))
	for i, x := range samples {
		out[i] = T(x)
	}
	return out
}

// DecodeBytes reinterprets raw bytes as elements of kind k in native byte
// order and returns them in the working representation.
func DecodeBytes(b []byte, k ElementKind) ([]float64, error) {
	d, err := Describe(k)
	if err != nil {
		return nil, err
	}
	if len(b)%d.Size != 0 {
		return nil, fmt.Errorf("%w: buffer size %d is not a multiple of %s element size %d",
			ErrType, len(b), d.Name, d.Size)
	}

	n := len(b) / d.Size
	out := make([]float64, n)
	order := binary.NativeEndian
	for i := range n {
		p := b[i*d.Size : (i+1)*d.Size]
		var v float64
		switch k {
		case Float32:
			v = float64(math.Float32frombits(order.Uint32(p)))
		case Float64:
			v = float64(float32(math.Float64frombits(order.Uint64(p))))
		case Uint8:
			v = float64(p[0])
		case Int8:
			v = float64(int8(p[0]))
		case Int16:
			v = float64(int16(order.Uint16(p)))
		case Int32:
			v = float64(float32(int32(order.Uint32(p))))
		}
		out[i] = v
	}
	return out, nil
}

// EncodeBytes serializes working samples as elements of kind k in native
// byte order. Samples are cast, not quantized.
func EncodeBytes(samples []float64, k ElementKind) ([]byte, error) {
	d, err := Describe(k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	out := make([]byte, len(samples)*d.Size)
	order := binary.NativeEndian
	for i, x := range samples {
		p := out[i*d.Size : (i+1)*d.Size]
		switch k {
		case Float32:
			order.PutUint32(p, math.Float32bits(float32(x)))
		case Float64:
			order.PutUint64(p, math.Float64bits(x))
		case Uint8:
			p[0] = uint8(x)
		case Int8:
			p[0] = uint8(int8(x))
		case Int16:
			order.PutUint16(p, uint16(int16(x)))
		case Int32:
			order.PutUint32(p, uint32(int32(x)))
		}
	}
	return out, nil
}
