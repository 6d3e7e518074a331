package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubicStage_Ratio(t *testing.T) {
	for _, ratio := range []float64{0.5, 0.8, 1.25, 2.0} {
		c := NewCubicStage(ratio)
		out := c.Process(make([]float64, 1000))
		assert.InDelta(t, 1000*ratio, float64(len(out)), 2, "ratio %v", ratio)
	}
}

func TestCubicStage_UnityIsDelay(t *testing.T) {
	c := NewCubicStage(1.0)
	input := make([]float64, 64)
	for i := range input {
		input[i] = math.Sin(float64(i) / 5)
	}
	out := c.Process(input)
	require.Len(t, out, len(input))

	lat := c.Latency()
	for i := lat; i < len(out); i++ {
		assert.InDelta(t, input[i-lat], out[i], 1e-12, "sample %d", i)
	}
}

func TestCubicStage_ChunkingAndReset(t *testing.T) {
	input := make([]float64, 500)
	for i := range input {
		input[i] = math.Cos(float64(i) / 7)
	}

	whole := NewCubicStage(0.75).Process(input)

	c := NewCubicStage(0.75)
	var chunked []float64
	for off := 0; off < len(input); off += 37 {
		chunked = append(chunked, c.Process(input[off:min(off+37, len(input))])...)
	}
	assert.InDeltaSlice(t, whole, chunked, 1e-12)

	c.Reset()
	assert.InDeltaSlice(t, whole, c.Process(input), 1e-12)
	assert.Empty(t, c.Process(nil))
}
