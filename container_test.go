package stretcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		data    Data
		want    ContainerKind
		wantErr bool
	}{
		{"list", List{1, 2}, ContainerList, false},
		{"empty list", List(nil), ContainerList, false},
		{"bytes", Bytes{0, 0}, ContainerBytes, false},
		{"array", NewArray([]float32{0}), ContainerArray, false},
		{"nil", nil, 0, true},
		{"nil array", (*Array)(nil), 0, true},
		{"matrix", newArray2D([][]int16{{1, 2}, {3, 4}}), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.data)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  ContainerKind
		kind  ElementKind
	}{
		{"bytes", []byte{1, 2}, ContainerBytes, 0},
		{"any slice", []any{1.0}, ContainerList, 0},
		{"float32", []float32{1}, ContainerArray, Float32},
		{"float64", []float64{1}, ContainerArray, Float64},
		{"int8", []int8{1}, ContainerArray, Int8},
		{"int16", []int16{1}, ContainerArray, Int16},
		{"int32", []int32{1}, ContainerArray, Int32},
		{"data", List{1}, ContainerList, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FromValue(tt.value)
			require.NoError(t, err)
			got, err := Classify(d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if arr, ok := d.(*Array); ok {
				assert.Equal(t, tt.kind, arr.Kind())
				assert.Equal(t, 1, arr.Len())
			}
		})
	}
}

func TestFromValue_Rejects(t *testing.T) {
	for _, v := range []any{nil, "audio", []int64{1}, 3.5, map[string]int{}} {
		_, err := FromValue(v)
		require.ErrorIs(t, err, ErrUnsupportedInput, "%T", v)
	}
}

func TestFromValue_Matrix(t *testing.T) {
	d, err := FromValue([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	arr := d.(*Array)
	assert.Equal(t, []int{2, 3}, arr.Shape())
	assert.Equal(t, 6, arr.Len())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, arr.Values())
}

func TestContainerKind_String(t *testing.T) {
	assert.Equal(t, "list", ContainerList.String())
	assert.Equal(t, "array", ContainerArray.String())
	assert.Equal(t, "bytes", ContainerBytes.String())
	assert.Equal(t, "ContainerKind(7)", ContainerKind(7).String())
}
