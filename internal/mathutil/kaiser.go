// Package mathutil provides the filter design math used by the engine.
package mathutil

import (
	"math"

	"github.com/tphakala/go-audio-stretcher/internal/simdops"
)

// Polynomial approximation of I₀ (Abramowitz & Stegun 9.8.1 and 9.8.2).
const (
	besselKnee = 3.75

	kaiserHighAtt    = 50.0
	kaiserMediumAtt  = 21.0
	kaiserLengthBase = 8.0
	kaiserLengthMul  = 2.285

	// MinTaps and MaxTaps bound the designed filter length.
	MinTaps = 3
	MaxTaps = 2047
)

var (
	besselSmall = [...]float64{1.0, 3.5156229, 3.0899424, 1.2067492, 0.2659732, 0.0360768, 0.0045813}
	besselLarge = [...]float64{
		0.39894228, 0.01328592, 0.00225319, -0.00157565, 0.00916281,
		-0.02057706, 0.02635537, -0.01647633, 0.00392377,
	}
)

// BesselI0 returns the modified Bessel function of the first kind, order zero.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)
	if ax < besselKnee {
		t := (x / besselKnee) * (x / besselKnee)
		return horner(besselSmall[:], t)
	}
	return math.Exp(ax) / math.Sqrt(ax) * horner(besselLarge[:], besselKnee/ax)
}

// horner evaluates c[0] + c[1]·t + c[2]·t² + ...
func horner(c []float64, t float64) float64 {
	acc := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		acc = acc*t + c[i]
	}
	return acc
}

// KaiserBeta maps a stopband attenuation in dB to the Kaiser window β.
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserHighAtt:
		return 0.1102 * (attenuation - 8.7)
	case attenuation >= kaiserMediumAtt:
		d := attenuation - kaiserMediumAtt
		return 0.5842*math.Pow(d, 0.4) + 0.07886*d
	default:
		return 0
	}
}

// FilterLength estimates the odd tap count reaching attenuation dB with a
// transition band of width transition (fraction of the sample rate).
func FilterLength(attenuation, transition float64) int {
	if transition <= 0 {
		return MaxTaps
	}
	n := int(math.Ceil((attenuation - kaiserLengthBase) / (kaiserLengthMul * 2 * math.Pi * transition)))
	n |= 1
	return min(max(n, MinTaps), MaxTaps)
}

// KaiserWindow returns a symmetric Kaiser window of the given length.
func KaiserWindow(length int, beta float64) []float64 {
	w := make([]float64, max(length, 0))
	if length == 1 {
		w[0] = 1
	}
	if length < 2 {
		return w
	}
	centre := float64(length-1) / 2
	norm := BesselI0(beta)
	for i := range w {
		x := (float64(i) - centre) / centre
		w[i] = BesselI0(beta*math.Sqrt(1-x*x)) / norm
	}
	return w
}

// LowPass designs a Kaiser-windowed sinc low-pass with unity DC gain.
// cutoff and transition are fractions of the sample rate, cutoff in (0, 0.5).
func LowPass(cutoff, transition, attenuation float64) []float64 {
	taps := FilterLength(attenuation, transition)
	h := KaiserWindow(taps, KaiserBeta(attenuation))
	centre := float64(taps-1) / 2
	for i := range h {
		x := float64(i) - centre
		if x == 0 {
			h[i] *= 2 * cutoff
			continue
		}
		h[i] *= math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
	}

	ops := simdops.For[float64]()
	if sum := ops.Sum(h); sum != 0 {
		ops.Scale(h, h, 1/sum)
	}
	return h
}
