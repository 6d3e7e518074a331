// Package pipeline drives a stretching engine over a whole signal: a
// study pass and a process pass over fixed-size chunks, followed by a
// drain loop that polls the engine until it reports completion.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/tphakala/go-audio-stretcher/internal/engine"
	"github.com/tphakala/go-audio-stretcher/internal/simdops"
)

// DefaultPollInterval is the wait between polls of an engine that has no
// output ready yet.
const DefaultPollInterval = 10 * time.Millisecond

// ErrDrainTimeout indicates the engine produced nothing for longer than
// Config.MaxWait while draining.
var ErrDrainTimeout = errors.New("engine output drain timed out")

// Engine is the narrow contract the pipeline needs from a stretcher.
type Engine interface {
	SetExpectedInputDuration(samples int)
	Study(samples []float32, final bool) error
	Process(samples []float32, final bool) error
	// Available returns the samples ready, 0 when more may come later,
	// or a negative value once the engine has finished.
	Available() int
	Retrieve(dst []float32) int
	Close() error
}

// EngineFactory constructs an engine for one Transform call.
type EngineFactory func(sampleRate, channels int, options engine.Options, timeRatio, pitchScale float64) (Engine, error)

// NewEngine is the default factory backed by the phase vocoder engine.
func NewEngine(sampleRate, channels int, options engine.Options, timeRatio, pitchScale float64) (Engine, error) {
	return engine.New(sampleRate, channels, options, timeRatio, pitchScale)
}

// Config configures a Stretcher. Zero values select defaults.
type Config struct {
	ChunkSize    int
	PollInterval time.Duration
	// MaxWait bounds consecutive idle time in the drain loop. Zero waits
	// for as long as the engine keeps reporting that output will come.
	MaxWait   time.Duration
	Logger    *slog.Logger
	NewEngine EngineFactory
}

// Request describes one stretching operation.
type Request struct {
	SampleRate int
	Channels   int
	Ratio      float64
	PitchScale float64 // 0 means 1.0
	Options    engine.Options
}

func (r *Request) validate() error {
	switch {
	case r.Channels != 1:
		return fmt.Errorf("%w: only mono audio is supported, got %d channels", engine.ErrConfiguration, r.Channels)
	case r.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate must be positive, got %d", engine.ErrConfiguration, r.SampleRate)
	case !(r.Ratio > 0) || math.IsInf(r.Ratio, 0):
		return fmt.Errorf("%w: ratio must be positive and finite, got %v", engine.ErrConfiguration, r.Ratio)
	case r.PitchScale < 0 || math.IsNaN(r.PitchScale) || math.IsInf(r.PitchScale, 0):
		return fmt.Errorf("%w: pitch scale must be positive and finite, got %v", engine.ErrConfiguration, r.PitchScale)
	}
	return nil
}

// Stretcher runs the two-pass protocol. It is safe for concurrent use;
// every Transform call owns its engine.
type Stretcher struct {
	chunkSize    int
	pollInterval time.Duration
	maxWait      time.Duration
	logger       *slog.Logger
	newEngine    EngineFactory
}

// New creates a Stretcher from cfg.
func New(cfg Config) *Stretcher {
	s := &Stretcher{
		chunkSize:    cfg.ChunkSize,
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
		logger:       cfg.Logger,
		newEngine:    cfg.NewEngine,
	}
	if s.chunkSize <= 0 {
		s.chunkSize = DefaultChunkSize
	}
	if s.pollInterval <= 0 {
		s.pollInterval = DefaultPollInterval
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.newEngine == nil {
		s.newEngine = NewEngine
	}
	return s
}

// Transform stretches input and returns the result clamped to [-1, 1].
func (s *Stretcher) Transform(ctx context.Context, input []float32, req Request) ([]float32, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	pitch := req.PitchScale
	if pitch == 0 {
		pitch = 1
	}

	eng, err := s.newEngine(req.SampleRate, req.Channels, req.Options, req.Ratio, pitch)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	defer func() {
		if cerr := eng.Close(); cerr != nil {
			s.logger.Warn("engine close failed", "error", cerr)
		}
	}()

	log := s.logger.With("samples", len(input), "ratio", req.Ratio, "pitch", pitch)
	start := time.Now()

	if err := s.study(ctx, eng, input); err != nil {
		return nil, err
	}
	log.Debug("study pass complete", "elapsed", time.Since(start))

	d := &collector{
		eng: eng,
		out: make([]float32, 0, int(math.Round(float64(len(input))*req.Ratio))),
	}
	if err := s.process(ctx, d, input); err != nil {
		return nil, err
	}
	log.Debug("process pass complete", "retrieved", d.total, "elapsed", time.Since(start))

	if err := s.drain(ctx, d); err != nil {
		return nil, err
	}
	log.Debug("drain complete", "retrieved", d.total, "polls", d.polls, "elapsed", time.Since(start))

	simdops.Clamp(d.out, -1, 1)
	return d.out, nil
}

// TransformFloat64 is Transform for float64 samples.
func (s *Stretcher) TransformFloat64(ctx context.Context, input []float64, req Request) ([]float64, error) {
	in := make([]float32, len(input))
	for i, x := range input {
		in[i] = float32(x)
	}
	out, err := s.Transform(ctx, in, req)
	if err != nil {
		return nil, err
	}
	result := make([]float64, len(out))
	for i, x := range out {
		result[i] = float64(x)
	}
	return result, nil
}

func (s *Stretcher) study(ctx context.Context, eng Engine, input []float32) error {
	eng.SetExpectedInputDuration(len(input))
	w := NewChunkWindow(input, s.chunkSize)
	for w.Step() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := eng.Study(w.Slice(), w.Final()); err != nil {
			return fmt.Errorf("study at offset %d: %w", w.Offset(), err)
		}
	}
	return nil
}

func (s *Stretcher) process(ctx context.Context, d *collector, input []float32) error {
	if len(input) == 0 {
		if err := d.eng.Process(nil, true); err != nil {
			return fmt.Errorf("process empty input: %w", err)
		}
		return nil
	}

	w := NewChunkWindow(input, s.chunkSize)
	for w.Step() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.eng.Process(w.Slice(), w.Final()); err != nil {
			return fmt.Errorf("process at offset %d: %w", w.Offset(), err)
		}
		if n := d.eng.Available(); n > 0 {
			d.retrieve(n)
		}
	}
	return nil
}

func (s *Stretcher) drain(ctx context.Context, d *collector) error {
	var idle time.Duration
	timer := time.NewTimer(s.pollInterval)
	defer timer.Stop()

	for {
		n := d.eng.Available()
		switch {
		case n < 0:
			return nil
		case n > 0:
			d.retrieve(n)
			idle = 0
			continue
		}

		if s.maxWait > 0 && idle >= s.maxWait {
			return fmt.Errorf("%w: no output for %v after %d samples", ErrDrainTimeout, idle, d.total)
		}
		timer.Reset(s.pollInterval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		idle += s.pollInterval
		d.polls++
	}
}

// collector accumulates engine output.
type collector struct {
	eng     Engine
	out     []float32
	scratch []float32
	total   int
	polls   int
}

func (d *collector) retrieve(count int) {
	if cap(d.scratch) < count {
		d.scratch = make([]float32, count)
	}
	d.scratch = d.scratch[:count]
	got := d.eng.Retrieve(d.scratch)
	d.out = append(d.out, d.scratch[:got]...)
	d.total += got
}
