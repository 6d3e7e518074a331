package engine

import (
	"github.com/tphakala/go-audio-stretcher/internal/simdops"
)

// onset returns the detection function value of a frame given its
// magnitude spectrum and that of the previous frame. Values lie in [0, 1].
func onset(detector Options, mag, prev []float64) float64 {
	switch detector {
	case OptionDetectorPercussive:
		return percussiveOnset(mag, prev)
	case OptionDetectorSoft:
		return spectralFlux(mag, prev)
	default:
		return compoundWeight*percussiveOnset(mag, prev) + (1-compoundWeight)*spectralFlux(mag, prev)
	}
}

// percussiveOnset is the fraction of audible bins that rose by at least 3 dB.
func percussiveOnset(mag, prev []float64) float64 {
	rising, audible := 0, 0
	for b, m := range mag {
		if m < magnitudeFloor {
			continue
		}
		audible++
		if prev[b] < magnitudeFloor || m >= prev[b]*percussiveRise {
			rising++
		}
	}
	if audible == 0 {
		return 0
	}
	return float64(rising) / float64(audible)
}

// spectralFlux is the positive magnitude change relative to frame energy.
func spectralFlux(mag, prev []float64) float64 {
	total := simdops.For[float64]().Sum(mag)
	if total < magnitudeFloor {
		return 0
	}
	var rise float64
	for b, m := range mag {
		if d := m - prev[b]; d > 0 {
			rise += d
		}
	}
	return rise / total
}

// pickTransients marks local maxima of the detection curve above the
// threshold. Adjacent frames are never both marked.
func pickTransients(curve []float64) []bool {
	marks := make([]bool, len(curve))
	for i, v := range curve {
		if v < transientThreshold {
			continue
		}
		if i > 0 && (curve[i-1] > v || marks[i-1]) {
			continue
		}
		if i+1 < len(curve) && curve[i+1] > v {
			continue
		}
		marks[i] = true
	}
	return marks
}
