package engine

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// analyser windows a frame and computes its magnitude and phase spectra.
type analyser struct {
	size   int
	bins   int
	fft    *fourier.FFT
	window []float64
	frame  []float64
	spec   []complex128
	mag    []float64
	phase  []float64
	prev   []float64 // magnitudes of the previous frame
}

func newAnalyser(size int) *analyser {
	bins := size/2 + 1
	return &analyser{
		size:   size,
		bins:   bins,
		fft:    fourier.NewFFT(size),
		window: hann(size),
		frame:  make([]float64, size),
		spec:   make([]complex128, bins),
		mag:    make([]float64, bins),
		phase:  make([]float64, bins),
		prev:   make([]float64, bins),
	}
}

// hann returns a periodic Hann window.
func hann(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}
	return w
}

func (a *analyser) analyse(frame []float64) {
	for i, x := range frame {
		a.frame[i] = x * a.window[i]
	}
	a.spec = a.fft.Coefficients(a.spec, a.frame)
	for b, c := range a.spec {
		a.mag[b] = cmplx.Abs(c)
		a.phase[b] = cmplx.Phase(c)
	}
}

// rotate stores the current magnitudes as the previous frame's.
func (a *analyser) rotate() {
	copy(a.prev, a.mag)
}

// vocoder resynthesises analysed frames at the synthesis hop, advancing
// each bin's phase by its instantaneous frequency.
type vocoder struct {
	*analyser
	hs          int
	independent bool
	resetFrom   int // first bin reset on a transient
	norm        float64

	prevPhase  []float64
	synthPhase []float64
	peaks      []int
	out        []float64
	ola        []float64
	emitted    []float64
	started    bool

	formant *formantShifter
}

func newVocoder(size, hs int, independent bool, resetFrom int, formant *formantShifter) *vocoder {
	a := newAnalyser(size)
	return &vocoder{
		analyser:    a,
		hs:          hs,
		independent: independent,
		resetFrom:   resetFrom,
		norm:        1 / (float64(size) * hannSquaredGain),
		prevPhase:   make([]float64, a.bins),
		synthPhase:  make([]float64, a.bins),
		peaks:       make([]int, 0, a.bins/2),
		out:         make([]float64, size),
		ola:         make([]float64, size),
		emitted:     make([]float64, hs),
		formant:     formant,
	}
}

// synthesise overlap-adds the current analysed frame and returns the next
// hs completed output samples. The returned slice is reused by later calls.
func (v *vocoder) synthesise(hop float64, transient bool) []float64 {
	switch {
	case !v.started:
		copy(v.synthPhase, v.phase)
		v.started = true
	case v.independent:
		for b := range v.bins {
			v.synthPhase[b] += v.advance(b, hop)
		}
	default:
		v.lockedAdvance(hop)
	}
	if transient && v.started {
		copy(v.synthPhase[v.resetFrom:], v.phase[v.resetFrom:])
	}
	copy(v.prevPhase, v.phase)

	if v.formant != nil {
		v.formant.correct(v.mag)
	}

	for b := range v.bins {
		v.spec[b] = cmplx.Rect(v.mag[b], v.synthPhase[b])
	}
	// DC and Nyquist bins are real in a real sequence.
	v.spec[0] = complex(real(v.spec[0]), 0)
	v.spec[v.bins-1] = complex(real(v.spec[v.bins-1]), 0)

	v.out = v.fft.Sequence(v.out, v.spec)
	for i, x := range v.out {
		v.ola[i] += x * v.window[i] * v.norm
	}

	copy(v.emitted, v.ola[:v.hs])
	copy(v.ola, v.ola[v.hs:])
	clear(v.ola[v.size-v.hs:])
	return v.emitted
}

// advance returns the synthesis phase increment of bin b.
func (v *vocoder) advance(b int, hop float64) float64 {
	omega := 2 * math.Pi * float64(b) / float64(v.size)
	deviation := princarg(v.phase[b] - v.prevPhase[b] - omega*hop)
	return (omega + deviation/hop) * float64(v.hs)
}

// lockedAdvance advances spectral peaks and locks every other bin to the
// phase relationship it has with the peak of its region.
func (v *vocoder) lockedAdvance(hop float64) {
	v.peaks = v.peaks[:0]
	for b := range v.bins {
		if v.isPeak(b) {
			v.peaks = append(v.peaks, b)
		}
	}
	if len(v.peaks) == 0 {
		for b := range v.bins {
			v.synthPhase[b] += v.advance(b, hop)
		}
		return
	}

	lo := 0
	for i, p := range v.peaks {
		hi := v.bins
		if i+1 < len(v.peaks) {
			hi = (p + v.peaks[i+1]) / 2
		}
		v.synthPhase[p] += v.advance(p, hop)
		for b := lo; b < hi; b++ {
			if b != p {
				v.synthPhase[b] = v.synthPhase[p] + v.phase[b] - v.phase[p]
			}
		}
		lo = hi
	}
}

func (v *vocoder) isPeak(b int) bool {
	m := v.mag[b]
	if m < magnitudeFloor {
		return false
	}
	for d := 1; d <= peakNeighbours; d++ {
		if b-d >= 0 && v.mag[b-d] > m {
			return false
		}
		if b+d < v.bins && v.mag[b+d] >= m {
			return false
		}
	}
	return true
}

// princarg wraps a phase into (-pi, pi].
func princarg(phase float64) float64 {
	return phase - 2*math.Pi*math.Round(phase/(2*math.Pi))
}
