package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-stretcher/internal/testutil"
)

func TestLowPassImpulseResponse(t *testing.T) {
	f := newLowPass(2)
	impulse := make([]float64, len(f.taps)+8)
	impulse[0] = 1

	out := f.process(impulse)
	require.Len(t, out, len(impulse))
	assert.InDeltaSlice(t, f.taps, out[:len(f.taps)], 1e-12)
	assert.Equal(t, (len(f.taps)-1)/2, f.delay())
}

func TestLowPassChunkingInvariance(t *testing.T) {
	in := testutil.Sine[float64](3000, 1000, 48000, 0.5)

	whole := newLowPass(1.5).process(in)

	f := newLowPass(1.5)
	var chunked []float64
	for off := 0; off < len(in); off += 317 {
		chunked = append(chunked, f.process(in[off:min(off+317, len(in))])...)
	}
	assert.InDeltaSlice(t, whole, chunked, 1e-12)
}

func TestLowPassRejectsAboveShiftedNyquist(t *testing.T) {
	const sr = 48000.0
	// After a pitch shift of 2 the new Nyquist is 12 kHz of the stretched signal.
	pass := newLowPass(2).process(testutil.Sine[float64](8192, 2000, sr, 0.5))
	stop := newLowPass(2).process(testutil.Sine[float64](8192, 18000, sr, 0.5))

	settled := len(newLowPass(2).taps)
	assert.InDelta(t, 0.5/1.41421356, testutil.RMS(pass[settled:]), 0.01)
	assert.Less(t, testutil.RMS(stop[settled:]), 1e-3)
}
