package mathutil

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-stretcher/internal/testutil"
)

func TestBesselI0(t *testing.T) {
	tests := []struct {
		name      string
		x         float64
		expected  float64
		tolerance float64
	}{
		{"zero", 0, 1, 1e-12},
		{"half", 0.5, 1.063483344, 1e-7},
		{"one", 1, 1.266065848, 1e-7},
		{"three", 3, 4.880792565, 1e-7},
		{"four", 4, 11.30192217, 1e-6},
		{"ten", 10, 2815.716628, 1e-6},
		{"negative", -1, 1.266065848, 1e-7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertRelativeError(t, tt.expected, BesselI0(tt.x), tt.tolerance)
		})
	}
}

func TestKaiserBeta(t *testing.T) {
	assert.InDelta(t, 0.0, KaiserBeta(15), 1e-12)
	assert.InDelta(t, 0.1102*(80-8.7), KaiserBeta(80), 1e-12)
	assert.Greater(t, KaiserBeta(40), 0.0)
	assert.Less(t, KaiserBeta(40), KaiserBeta(60))
}

func TestFilterLength(t *testing.T) {
	n := FilterLength(80, 0.025)
	assert.Equal(t, 1, n%2, "length must be odd")
	assert.InDelta(t, 201, n, 2)

	assert.Equal(t, MaxTaps, FilterLength(120, 0))
	assert.Equal(t, MinTaps, FilterLength(10, 0.4))
}

func TestKaiserWindow(t *testing.T) {
	w := KaiserWindow(33, 8)
	require.Len(t, w, 33)
	assert.InDelta(t, 1.0, w[16], 1e-12)
	for i := range w {
		assert.InDelta(t, w[i], w[len(w)-1-i], 1e-12)
	}

	assert.Empty(t, KaiserWindow(0, 8))
	assert.Equal(t, []float64{1}, KaiserWindow(1, 8))
}

func TestLowPassResponse(t *testing.T) {
	const cutoff, transition, att = 0.2, 0.05, 80.0
	h := LowPass(cutoff, transition, att)

	response := func(f float64) float64 {
		var acc complex128
		for i, c := range h {
			acc += complex(c, 0) * cmplx.Exp(complex(0, -2*math.Pi*f*float64(i)))
		}
		return cmplx.Abs(acc)
	}

	assert.InDelta(t, 1.0, response(0), 1e-9, "unity DC gain")
	assert.InDelta(t, 1.0, response(cutoff-transition), 0.01, "passband")
	assert.Less(t, 20*math.Log10(response(cutoff+transition)), -60.0, "stopband")
}
