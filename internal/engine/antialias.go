package engine

import (
	"github.com/tphakala/go-audio-stretcher/internal/mathutil"
	"github.com/tphakala/go-audio-stretcher/internal/simdops"
)

// lowPass is a streaming linear-phase FIR applied to the stretched
// signal before the cubic stage decimates it for upward pitch shifts.
type lowPass struct {
	taps []float64
	buf  []float64 // last len(taps)-1 inputs followed by the current block
	dot  func(a, b []float64) float64
}

func newLowPass(pitchScale float64) *lowPass {
	nyquist := 0.5 / pitchScale
	taps := mathutil.LowPass(nyquist*antiAliasPassband, nyquist*antiAliasTransition, antiAliasAttenuation)
	return &lowPass{
		taps: taps,
		buf:  make([]float64, len(taps)-1),
		dot:  simdops.For[float64]().DotProductUnsafe,
	}
}

// delay returns the group delay in samples.
func (f *lowPass) delay() int {
	return (len(f.taps) - 1) / 2
}

func (f *lowPass) process(block []float64) []float64 {
	f.buf = append(f.buf, block...)
	out := make([]float64, len(block))
	n := len(f.taps)
	for i := range out {
		out[i] = f.dot(f.taps, f.buf[i:i+n])
	}
	keep := copy(f.buf, f.buf[len(block):])
	f.buf = f.buf[:keep]
	return out
}
