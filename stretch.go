package stretcher

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/tphakala/go-audio-stretcher/internal/engine"
	"github.com/tphakala/go-audio-stretcher/internal/pipeline"
)

// Config holds stretching configuration.
type Config struct {
	// Format is the element kind of List and Bytes input, and of their
	// output. Arrays carry their own kind.
	Format ElementKind

	// SampleRate of the audio in Hz.
	SampleRate int

	// Ratio is output duration divided by input duration.
	Ratio float64

	// Quality selects a preset from 0 (mushy) to 6 (percussive).
	Quality int

	// Formants preserves the spectral envelope when PitchScale is not 1.
	Formants bool

	// Precise uses exact fractional analysis hops.
	Precise bool

	// PitchScale is the frequency multiplier. 0 means 1.0.
	PitchScale float64

	// Threaded runs the engine on a worker goroutine.
	Threaded bool

	// ChunkSize is the number of samples per engine call. 0 means 1024.
	ChunkSize int

	// PollInterval is the wait between polls while draining output.
	// 0 means 10ms.
	PollInterval time.Duration

	// MaxWait bounds how long draining waits for output that never comes.
	// 0 waits until the engine finishes.
	MaxWait time.Duration

	// Logger receives debug diagnostics. nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when Stretch gets nil.
func DefaultConfig() Config {
	return Config{
		Format:     Float32,
		SampleRate: DefaultSampleRate,
		Ratio:      1.0,
		Quality:    DefaultQuality,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !c.Format.Valid() {
		return fmt.Errorf("%w: unknown element kind %d", ErrUnsupportedInput, int(c.Format))
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrConfiguration)
	}
	if !(c.Ratio > 0) || math.IsInf(c.Ratio, 0) {
		return fmt.Errorf("%w: ratio must be positive and finite, got %v", ErrConfiguration, c.Ratio)
	}
	if c.Quality < MinQuality || c.Quality > MaxQuality {
		return fmt.Errorf("%w: quality %d out of range [%d, %d]", ErrConfiguration, c.Quality, MinQuality, MaxQuality)
	}
	if c.PitchScale < 0 || math.IsNaN(c.PitchScale) || math.IsInf(c.PitchScale, 0) {
		return fmt.Errorf("%w: pitch scale must be positive and finite, got %v", ErrConfiguration, c.PitchScale)
	}
	if c.ChunkSize < 0 || c.PollInterval < 0 || c.MaxWait < 0 {
		return fmt.Errorf("%w: chunk size, poll interval and max wait must not be negative", ErrConfiguration)
	}
	return nil
}

// Options returns the engine option bitmask for c.
func (c *Config) Options() (Options, error) {
	opts, err := MakeOptions(c.Quality, c.Formants, c.Precise)
	if err != nil {
		return 0, err
	}
	if c.Threaded {
		return opts | OptionThreadingAlways, nil
	}
	return opts | OptionThreadingNever, nil
}

// Stretch time-stretches mono audio by cfg.Ratio and returns it in the
// container kind it came in. A nil cfg means DefaultConfig.
//
// Errors are *Error values wrapping ErrConfiguration, ErrUnsupportedInput,
// ErrType, ErrAllocation, ErrDrainTimeout or a context error.
func Stretch(ctx context.Context, data Data, cfg *Config) (Data, error) {
	if cfg == nil {
		def := DefaultConfig()
		cfg = &def
	}
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Op: "validate", Err: err}
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, &Error{Op: "validate", Err: err}
	}

	container, err := Classify(data)
	if err != nil {
		return nil, &Error{Op: "classify", Err: err}
	}
	samples, kind, err := Unpack(data, cfg.Format)
	if err != nil {
		return nil, &Error{Op: "unpack", Err: err}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("stretching",
		"container", container,
		"kind", kind,
		"samples", len(samples),
		"ratio", cfg.Ratio,
		"preset", PresetName(cfg.Quality),
		"options", opts)

	p := pipeline.New(pipeline.Config{
		ChunkSize:    cfg.ChunkSize,
		PollInterval: cfg.PollInterval,
		MaxWait:      cfg.MaxWait,
		Logger:       logger,
	})
	out, err := p.TransformFloat64(ctx, samples, pipeline.Request{
		SampleRate: cfg.SampleRate,
		Channels:   1,
		Ratio:      cfg.Ratio,
		PitchScale: cfg.PitchScale,
		Options:    opts,
	})
	if err != nil {
		return nil, &Error{Op: "stretch", Err: err}
	}

	result, err := Pack(out, kind, container)
	if err != nil {
		return nil, &Error{Op: "pack", Err: err}
	}
	return result, nil
}

// Info describes the engine geometry selected by a configuration.
type Info = engine.Info

// Inspect returns the engine geometry cfg selects, without processing.
// A nil cfg means DefaultConfig.
func Inspect(cfg *Config) (Info, error) {
	if cfg == nil {
		def := DefaultConfig()
		cfg = &def
	}
	if err := cfg.Validate(); err != nil {
		return Info{}, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return Info{}, err
	}
	pitch := cfg.PitchScale
	if pitch == 0 {
		pitch = 1
	}
	e, err := engine.New(cfg.SampleRate, 1, opts, cfg.Ratio, pitch)
	if err != nil {
		return Info{}, err
	}
	defer e.Close()
	return e.Info(), nil
}
