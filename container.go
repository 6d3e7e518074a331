package stretcher

import (
	"fmt"

	"github.com/tphakala/go-audio-stretcher/internal/format"
)

// ContainerKind identifies the shape of a Data value.
type ContainerKind int

const (
	// ContainerList is a sequence of individual numbers.
	ContainerList ContainerKind = iota
	// ContainerArray is a typed numeric array.
	ContainerArray
	// ContainerBytes is a raw byte buffer of native-endian elements.
	ContainerBytes
)

func (c ContainerKind) String() string {
	switch c {
	case ContainerList:
		return "list"
	case ContainerArray:
		return "array"
	case ContainerBytes:
		return "bytes"
	default:
		return fmt.Sprintf("ContainerKind(%d)", int(c))
	}
}

// Data is audio in one of the accepted containers: *Array, List or Bytes.
// Stretch returns the same container kind it was given.
type Data interface {
	container() ContainerKind
}

// List holds samples as individual numbers. Elements may be any Go real
// number type; their scale is given by Config.Format.
type List []any

// Bytes holds samples as raw native-endian elements of Config.Format.
type Bytes []byte

// Array is a typed numeric array. Its element kind comes from the Go
// element type and overrides Config.Format.
type Array struct {
	shape  []int
	kind   ElementKind
	values any
}

func (List) container() ContainerKind   { return ContainerList }
func (Bytes) container() ContainerKind  { return ContainerBytes }
func (*Array) container() ContainerKind { return ContainerArray }

// NewArray wraps a one-dimensional sample slice without copying it.
func NewArray[T format.Sample](values []T) *Array {
	return &Array{
		shape:  []int{len(values)},
		kind:   format.KindOf[T](),
		values: values,
	}
}

// newArray2D flattens rows into an array of shape (rows, columns).
func newArray2D[T format.Sample](rows [][]T) *Array {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	flat := make([]T, 0, len(rows)*cols)
	for _, r := range rows {
		flat = append(flat, r...)
	}
	return &Array{
		shape:  []int{len(rows), cols},
		kind:   format.KindOf[T](),
		values: flat,
	}
}

// Shape returns the array dimensions.
func (a *Array) Shape() []int { return a.shape }

// Kind returns the element kind.
func (a *Array) Kind() ElementKind { return a.kind }

// Len returns the total number of elements.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.shape {
		n *= d
	}
	return n
}

// Values returns the underlying typed slice, such as []float32 or []int16.
func (a *Array) Values() any { return a.values }

// ArrayValues returns the elements of a as []T, or false when the element
// type differs.
func ArrayValues[T format.Sample](a *Array) ([]T, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.values.([]T)
	return v, ok
}

// Classify reports the container kind of d. Nil values and arrays that are
// not one-dimensional are rejected with ErrUnsupportedInput.
func Classify(d Data) (ContainerKind, error) {
	switch v := d.(type) {
	case nil:
		return 0, fmt.Errorf("%w: nil data", ErrUnsupportedInput)
	case *Array:
		if v == nil {
			return 0, fmt.Errorf("%w: nil array", ErrUnsupportedInput)
		}
		if len(v.shape) != 1 {
			return 0, fmt.Errorf("%w: array must be one-dimensional, got %d dimensions",
				ErrUnsupportedInput, len(v.shape))
		}
		return ContainerArray, nil
	default:
		return v.container(), nil
	}
}

// FromValue maps a Go value onto Data: []byte becomes Bytes, []any
// becomes List, typed numeric slices and slices of rows become arrays.
// Since []uint8 is []byte, one-dimensional uint8 arrays need NewArray.
func FromValue(v any) (Data, error) {
	switch x := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil value", ErrUnsupportedInput)
	case Data:
		return x, nil
	case []byte:
		return Bytes(x), nil
	case []any:
		return List(x), nil
	case []float32:
		return NewArray(x), nil
	case []float64:
		return NewArray(x), nil
	case []int8:
		return NewArray(x), nil
	case []int16:
		return NewArray(x), nil
	case []int32:
		return NewArray(x), nil
	case [][]float32:
		return newArray2D(x), nil
	case [][]float64:
		return newArray2D(x), nil
	case [][]uint8:
		return newArray2D(x), nil
	case [][]int8:
		return newArray2D(x), nil
	case [][]int16:
		return newArray2D(x), nil
	case [][]int32:
		return newArray2D(x), nil
	default:
		return nil, fmt.Errorf("%w: cannot stretch %T", ErrUnsupportedInput, v)
	}
}
