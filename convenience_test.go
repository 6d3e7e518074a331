package stretcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-stretcher/internal/testutil"
)

func TestStretchFloat32(t *testing.T) {
	in := testutil.Sine[float32](10000, 440, RateCD, 0.5)
	out, err := StretchFloat32(context.Background(), in, RateCD, 1.5, DefaultQuality)
	require.NoError(t, err)
	assert.Len(t, out, 15000)
	testutil.AssertAllInRange(t, out, -1, 1)
}

func TestStretchFloat64(t *testing.T) {
	in := testutil.Sine[float64](10000, 440, RateDAT, 0.5)
	out, err := StretchFloat64(context.Background(), in, RateDAT, 0.5, 3)
	require.NoError(t, err)
	assert.Len(t, out, 5000)
}

func TestStretchInt16(t *testing.T) {
	sine := testutil.Sine[float64](8000, 440, RateDAT, 0.5)
	in := make([]int16, len(sine))
	for i, x := range sine {
		in[i] = int16(x * 32767)
	}
	out, err := StretchInt16(context.Background(), in, RateDAT, 2, 6)
	require.NoError(t, err)
	assert.Len(t, out, 16000)
	testutil.AssertRelativeError(t, testutil.RMS(sine)*32768, testutil.RMS(toFloat(out[2048:14000])), 0.25)
}

func TestStretchFloat32_InvalidQuality(t *testing.T) {
	_, err := StretchFloat32(context.Background(), make([]float32, 10), RateCD, 1, 7)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestRatioForDuration(t *testing.T) {
	ratio, err := RatioForDuration(44100, 44100, 2.5)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, ratio, 1e-12)

	for _, tc := range []struct {
		frames, rate int
		seconds      float64
	}{
		{0, 44100, 1},
		{100, 0, 1},
		{100, 44100, 0},
		{100, 44100, -1},
	} {
		_, err := RatioForDuration(tc.frames, tc.rate, tc.seconds)
		require.ErrorIs(t, err, ErrConfiguration)
	}
}

func toFloat(s []int16) []float64 {
	out := make([]float64, len(s))
	for i, x := range s {
		out[i] = float64(x)
	}
	return out
}
