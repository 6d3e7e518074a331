// Package stretcher provides audio time-stretching in pure Go.
//
// Audio is stretched to a new duration without changing its pitch, using a
// phase vocoder with Rubber Band compatible option flags. Processing is
// offline and two-pass: the whole signal is studied for transients first,
// then processed in fixed-size chunks while output is drained from the
// engine as it becomes available.
//
// # Features
//
//   - Seven quality (crispness) presets from long-window "mushy" to
//     short-window "percussive"
//   - Transient detection with crisp, mixed or smooth phase resets
//   - Optional pitch scaling with formant preservation
//   - Lists, typed arrays and raw byte buffers of float32, float64, uint8,
//     int8, int16 or int32 samples
//   - Optional worker goroutine for the engine
//   - SIMD vector kernels via github.com/tphakala/simd
//   - Pure Go implementation with no CGO dependencies
//
// # Quick Start
//
// For a typed slice:
//
//	out, err := stretcher.StretchFloat32(ctx, samples, 44100, 1.5, stretcher.DefaultQuality)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For any container and full control:
//
//	cfg := stretcher.DefaultConfig()
//	cfg.Format = stretcher.Int16
//	cfg.SampleRate = 44100
//	cfg.Ratio = 0.8
//	cfg.Quality = 6
//	out, err := stretcher.Stretch(ctx, stretcher.Bytes(pcm), &cfg)
//
// # Formats
//
// Quantized kinds are scaled into floating point on input and quantized
// back with clamping on output:
//
//	kind     scale        range
//	uint8    255          [0, 255]
//	int8     128          [-128, 127]
//	int16    32768        [-32768, 32767]
//	int32    2147483648   [-2147483648, 2147483647]
//
// Arrays carry their own element kind. Lists and byte buffers are read
// with [Config.Format]. The output always uses the input's container kind.
//
// # Thread Safety
//
// [Stretch] and the convenience functions are safe for concurrent use.
// Each call owns its engine.
package stretcher
