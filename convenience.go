package stretcher

import (
	"context"
	"fmt"
	"math"
)

// StretchFloat32 stretches float32 samples by ratio using the given
// quality preset.
func StretchFloat32(ctx context.Context, samples []float32, sampleRate int, ratio float64, quality int) ([]float32, error) {
	return stretchSlice(ctx, samples, sampleRate, ratio, quality)
}

// StretchFloat64 stretches float64 samples by ratio using the given
// quality preset.
func StretchFloat64(ctx context.Context, samples []float64, sampleRate int, ratio float64, quality int) ([]float64, error) {
	return stretchSlice(ctx, samples, sampleRate, ratio, quality)
}

// StretchInt16 stretches 16-bit PCM samples by ratio using the given
// quality preset. Samples are scaled by 1/32768 on input and quantized
// back with clamping on output.
func StretchInt16(ctx context.Context, samples []int16, sampleRate int, ratio float64, quality int) ([]int16, error) {
	return stretchSlice(ctx, samples, sampleRate, ratio, quality)
}

func stretchSlice[T float32 | float64 | int16](ctx context.Context, samples []T, sampleRate int, ratio float64, quality int) ([]T, error) {
	cfg := DefaultConfig()
	cfg.SampleRate = sampleRate
	cfg.Ratio = ratio
	cfg.Quality = quality

	out, err := Stretch(ctx, NewArray(samples), &cfg)
	if err != nil {
		return nil, err
	}
	values, ok := ArrayValues[T](out.(*Array))
	if !ok {
		return nil, &Error{Op: "pack", Err: fmt.Errorf("%w: unexpected element type", ErrAllocation)}
	}
	return values, nil
}

// RatioForDuration returns the ratio that stretches frames samples at
// sampleRate to last seconds.
func RatioForDuration(frames, sampleRate int, seconds float64) (float64, error) {
	switch {
	case frames <= 0:
		return 0, fmt.Errorf("%w: input has no frames", ErrConfiguration)
	case sampleRate <= 0:
		return 0, fmt.Errorf("%w: sample rate must be positive", ErrConfiguration)
	case !(seconds > 0) || math.IsInf(seconds, 0):
		return 0, fmt.Errorf("%w: duration must be positive and finite, got %v", ErrConfiguration, seconds)
	}
	return seconds * float64(sampleRate) / float64(frames), nil
}
