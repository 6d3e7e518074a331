// Package testutil provides reusable test helpers for stretcher tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-audio-stretcher/internal/simdops"
)

// Sine returns n samples of a sine wave at freq Hz and the given amplitude.
func Sine[F simdops.Float](n int, freq, sampleRate, amplitude float64) []F {
	out := make([]F, n)
	for i := range out {
		out[i] = F(amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return out
}

// Clicks returns n samples of silence with a unit impulse every period samples.
func Clicks[F simdops.Float](n, period int) []F {
	out := make([]F, n)
	for i := 0; i < n; i += period {
		out[i] = 1
	}
	return out
}

// RMS returns the root mean square level of s.
func RMS[F simdops.Float](s []F) float64 {
	if len(s) == 0 {
		return 0
	}
	return math.Sqrt(float64(simdops.Energy(s)) / float64(len(s)))
}

// ZeroCrossings counts sign changes in s.
func ZeroCrossings[F simdops.Float](s []F) int {
	count := 0
	for i := 1; i < len(s); i++ {
		if (s[i-1] < 0) != (s[i] < 0) {
			count++
		}
	}
	return count
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf[F simdops.Float](t *testing.T, s []F, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(float64(v)) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(float64(v), 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange[F simdops.Float](t *testing.T, s []F, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if float64(v) < minVal || float64(v) > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, float64(v), minVal, maxVal)
		}
	}
	return true
}

// AssertSilent verifies that every element is within tolerance of zero.
func AssertSilent[F simdops.Float](t *testing.T, s []F, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.Abs(float64(v)) > tolerance {
			return assert.Fail(t, "signal not silent",
				"s[%d]=%e exceeds %e", i, float64(v), tolerance)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}
