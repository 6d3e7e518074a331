package engine

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// formantShifter compensates the spectral envelope movement caused by
// resampling a pitch-shifted signal. The envelope is estimated by
// liftering the real cepstrum of each frame.
type formantShifter struct {
	fft    *fourier.FFT
	pitch  float64
	lifter int
	logMag []complex128
	cep    []float64
	env    []complex128
	smooth []float64

	maxLogGain float64
}

func newFormantShifter(size, sampleRate int, pitch float64) *formantShifter {
	bins := size/2 + 1
	lifter := int(float64(sampleRate) / formantLifterHz)
	lifter = max(1, min(lifter, size/2-1))
	return &formantShifter{
		fft:    fourier.NewFFT(size),
		pitch:  pitch,
		lifter: lifter,
		logMag: make([]complex128, bins),
		cep:    make([]float64, size),
		env:    make([]complex128, bins),
		smooth: make([]float64, bins),

		maxLogGain: math.Log(formantMaxGain),
	}
}

// correct rescales mag in place so that after resampling by 1/pitch the
// original envelope is restored.
func (f *formantShifter) correct(mag []float64) {
	for b, m := range mag {
		f.logMag[b] = complex(math.Log(max(m, magnitudeFloor)), 0)
	}
	f.cep = f.fft.Sequence(f.cep, f.logMag)
	n := len(f.cep)
	scale := 1 / float64(n)
	for i := range f.cep {
		if i >= f.lifter && i <= n-f.lifter {
			f.cep[i] = 0
			continue
		}
		f.cep[i] *= scale
	}
	f.env = f.fft.Coefficients(f.env, f.cep)
	for b, c := range f.env {
		f.smooth[b] = real(c)
	}

	last := len(mag) - 1
	for b := range mag {
		src := float64(b) * f.pitch
		var target float64
		if src >= float64(last) {
			target = f.smooth[last]
		} else {
			i := int(src)
			frac := src - float64(i)
			target = f.smooth[i]*(1-frac) + f.smooth[i+1]*frac
		}
		gain := max(-f.maxLogGain, min(target-f.smooth[b], f.maxLogGain))
		mag[b] *= math.Exp(gain)
	}
}
