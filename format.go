package stretcher

import (
	"fmt"

	"github.com/tphakala/go-audio-stretcher/internal/format"
)

// ElementKind identifies the numeric type of a sample.
type ElementKind = format.ElementKind

// Element kinds.
const (
	Float32 = format.Float32
	Uint8   = format.Uint8
	Int8    = format.Int8
	Int16   = format.Int16
	Int32   = format.Int32
	Float64 = format.Float64
)

// ElementKindByName resolves a kind from its name, such as "int16".
func ElementKindByName(name string) (ElementKind, error) {
	return format.KindByName(name)
}

// Unpack converts d to float64 samples in [-1, 1] for quantized kinds and
// reports the element kind that was used. Arrays use their own kind; lists
// and byte buffers use kind. NaN and infinite elements give ErrType.
func Unpack(d Data, kind ElementKind) ([]float64, ElementKind, error) {
	if _, err := Classify(d); err != nil {
		return nil, kind, err
	}

	var samples []float64
	var err error
	switch v := d.(type) {
	case *Array:
		samples, kind, err = format.ToFloat64(v.values)
	case List:
		samples, err = unpackList(v)
	case Bytes:
		samples, err = format.DecodeBytes(v, kind)
	}
	if err != nil {
		return nil, kind, err
	}
	if err := format.CheckFinite(samples); err != nil {
		return nil, kind, err
	}

	if err := format.Dequantize(samples, kind); err != nil {
		return nil, kind, err
	}
	return samples, kind, nil
}

func unpackList(l List) ([]float64, error) {
	out := make([]float64, len(l))
	for i, e := range l {
		x, ok := realNumber(e)
		if !ok {
			return nil, fmt.Errorf("%w: list element %d is %T, not a real number", ErrType, i, e)
		}
		out[i] = float64(float32(x))
	}
	return out, nil
}

func realNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

// Pack quantizes samples for kind and builds a container of the requested
// kind. Lists hold float64 elements for floating kinds and int64
// elements otherwise.
func Pack(samples []float64, kind ElementKind, container ContainerKind) (Data, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown element kind %d", ErrAllocation, int(kind))
	}
	q := make([]float64, len(samples))
	copy(q, samples)
	if err := format.Quantize(q, kind); err != nil {
		return nil, err
	}

	switch container {
	case ContainerList:
		out := make(List, len(q))
		for i, x := range q {
			if kind.IsFloat() {
				out[i] = x
			} else {
				out[i] = int64(x)
			}
		}
		return out, nil
	case ContainerArray:
		values, err := format.Cast(q, kind)
		if err != nil {
			return nil, err
		}
		return &Array{shape: []int{len(q)}, kind: kind, values: values}, nil
	case ContainerBytes:
		b, err := format.EncodeBytes(q, kind)
		if err != nil {
			return nil, err
		}
		return Bytes(b), nil
	default:
		return nil, fmt.Errorf("%w: unknown container %v", ErrAllocation, container)
	}
}
