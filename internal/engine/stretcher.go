package engine

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// Stretcher is a mono phase-vocoder time stretcher with optional pitch
// scaling. Offline use is a two-pass protocol: Study the whole input,
// then Process it, draining output with Available and Retrieve as it
// becomes ready.
//
// With OptionThreadingAlways, Process hands input to a worker goroutine
// and returns immediately; Available reports 0 until the worker has
// produced more output. All methods must be called from one goroutine.
type Stretcher struct {
	sampleRate int
	options    Options
	timeRatio  float64
	pitchScale float64
	size       int
	hs         int
	ha         float64
	kMin       int
	expected   int

	// study pass
	study      *framer
	studyA     *analyser
	curve      []float64
	transients []bool
	studied    bool

	// process pass
	proc          *framer
	voc           *vocoder
	antiAlias     *lowPass
	resampler     *CubicStage
	resampleSkip  int
	frame         []float64
	pending       []float64
	emitted       int
	lastDf        float64
	sinceTrans    int
	processing    bool
	processClosed bool

	out      *RingBuffer
	finished atomic.Bool
	scratch  []float64

	jobs   chan job
	wg     sync.WaitGroup
	closed bool
}

type job struct {
	samples []float32
	final   bool
}

// Info describes the processing geometry of a Stretcher.
type Info struct {
	WindowSize   int
	SynthesisHop int
	AnalysisHop  float64
	Options      Options
	Transients   int // transients found by the study pass
}

// New creates a stretcher for mono audio. timeRatio is the output to
// input duration ratio; pitchScale is the frequency multiplier.
func New(sampleRate, channels int, options Options, timeRatio, pitchScale float64) (*Stretcher, error) {
	switch {
	case sampleRate <= 0:
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrConfiguration, sampleRate)
	case channels != 1:
		return nil, fmt.Errorf("%w: only mono is supported, got %d channels", ErrConfiguration, channels)
	case !(timeRatio > 0) || math.IsInf(timeRatio, 0):
		return nil, fmt.Errorf("%w: time ratio must be positive and finite, got %v", ErrConfiguration, timeRatio)
	case !(pitchScale > 0) || math.IsInf(pitchScale, 0):
		return nil, fmt.Errorf("%w: pitch scale must be positive and finite, got %v", ErrConfiguration, pitchScale)
	}

	size := windowSize(options, sampleRate)
	hs := size / overlapFactor
	ha := float64(hs) / (timeRatio * pitchScale)
	kMin := 1 - (size/2)/hs

	resetFrom := 0
	switch options.transients() {
	case OptionTransientsMixed:
		resetFrom = min(size/2, int(math.Ceil(mixedResetHz*float64(size)/float64(sampleRate))))
	case OptionTransientsSmooth:
		resetFrom = size/2 + 1
	}

	var formant *formantShifter
	var antiAlias *lowPass
	var resampler *CubicStage
	skip := 0
	if pitchScale != 1 {
		resampler = NewCubicStage(1 / pitchScale)
		delay := resampler.Latency()
		if pitchScale > 1 {
			antiAlias = newLowPass(pitchScale)
			delay += antiAlias.delay()
		}
		skip = int(math.Round(float64(delay) / pitchScale))
		if options.formants() {
			formant = newFormantShifter(size, sampleRate, pitchScale)
		}
	}

	s := &Stretcher{
		sampleRate:   sampleRate,
		options:      options,
		timeRatio:    timeRatio,
		pitchScale:   pitchScale,
		size:         size,
		hs:           hs,
		ha:           ha,
		kMin:         kMin,
		expected:     -1,
		study:        newFramer(size, ha, options.precise(), kMin),
		studyA:       newAnalyser(size),
		proc:         newFramer(size, ha, options.precise(), kMin),
		voc:          newVocoder(size, hs, options.independent(), resetFrom, formant),
		antiAlias:    antiAlias,
		resampler:    resampler,
		resampleSkip: skip,
		frame:        make([]float64, size),
		out:          NewRingBuffer(defaultRingCapacity),
	}
	return s, nil
}

// windowSize picks the analysis window for the options, scaled with the
// sample rate.
func windowSize(options Options, sampleRate int) int {
	size := windowSizeStandard
	switch options.window() {
	case OptionWindowShort:
		size = windowSizeShort
	case OptionWindowLong:
		size = windowSizeLong
	}
	switch {
	case sampleRate >= highSampleRate:
		size *= 2
	case sampleRate <= lowSampleRate:
		size /= 2
	}
	return max(size, minWindowSize)
}

// SetExpectedInputDuration declares the total input length in samples.
func (s *Stretcher) SetExpectedInputDuration(samples int) {
	if samples >= 0 {
		s.expected = samples
	}
}

// Info returns the processing geometry.
func (s *Stretcher) Info() Info {
	n := 0
	for _, t := range s.transients {
		if t {
			n++
		}
	}
	return Info{
		WindowSize:   s.size,
		SynthesisHop: s.hs,
		AnalysisHop:  s.ha,
		Options:      s.options,
		Transients:   n,
	}
}

// Latency returns how many input samples the process pass must receive
// before the first output sample can be retrieved. Output itself is
// aligned with the input.
func (s *Stretcher) Latency() int {
	first := (s.size / 2) / s.hs
	return int(math.Ceil(float64(first)*s.ha)) + s.size/2 + 1
}

// Study feeds a chunk of the first pass. Study is a no-op in real-time
// mode.
func (s *Stretcher) Study(samples []float32, final bool) error {
	if s.closed {
		return ErrClosed
	}
	if s.options.realTime() {
		return nil
	}
	if s.processing {
		return fmt.Errorf("%w: study after process", ErrFinished)
	}
	if s.studied {
		return fmt.Errorf("%w: study pass already complete", ErrFinished)
	}

	s.study.push(samples, final)
	target := s.stretchedLength(s.study)
	for s.study.ready() && s.wantFrame(s.study.k, target) {
		s.study.next(s.frame)
		s.studyA.analyse(s.frame)
		s.curve = append(s.curve, onset(s.options.detector(), s.studyA.mag, s.studyA.prev))
		s.studyA.rotate()
	}

	if final {
		s.studied = true
		s.transients = pickTransients(s.curve)
		s.study.in.Clear()
	}
	return nil
}

// Process feeds a chunk of the second pass.
func (s *Stretcher) Process(samples []float32, final bool) error {
	if s.closed {
		return ErrClosed
	}
	if s.processClosed {
		return fmt.Errorf("%w: process after final chunk", ErrFinished)
	}
	s.processing = true
	if final {
		s.processClosed = true
	}

	if !s.options.threaded() {
		s.feed(samples, final)
		return nil
	}

	if s.jobs == nil {
		s.startWorker()
	}
	s.jobs <- job{samples: append([]float32(nil), samples...), final: final}
	return nil
}

// Available returns the number of samples ready to retrieve, 0 if more
// may arrive later, or -1 once all output has been retrieved.
func (s *Stretcher) Available() int {
	if n := s.out.Available(); n > 0 {
		return n
	}
	if s.finished.Load() && s.out.Available() == 0 {
		return -1
	}
	return 0
}

// Retrieve moves up to len(dst) ready samples into dst and returns how
// many were written.
func (s *Stretcher) Retrieve(dst []float32) int {
	if cap(s.scratch) < len(dst) {
		s.scratch = make([]float64, len(dst))
	}
	buf := s.scratch[:len(dst)]
	n := s.out.ReadInto(buf)
	for i, x := range buf[:n] {
		dst[i] = float32(x)
	}
	return n
}

// Close stops the worker goroutine, if any, and drops unretrieved
// output. Close is idempotent.
func (s *Stretcher) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.jobs != nil {
		close(s.jobs)
		s.wg.Wait()
	}
	s.out.Clear()
	return nil
}

func (s *Stretcher) startWorker() {
	s.jobs = make(chan job, workerQueueDepth)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for j := range s.jobs {
			s.feed(j.samples, j.final)
		}
	}()
}

// stretchedLength returns the vocoder output length for the input seen
// by f, or -1 while it is unknown.
func (s *Stretcher) stretchedLength(f *framer) int {
	n := s.expected
	if f.final {
		n = f.received
	}
	if n < 0 {
		return -1
	}
	return int(math.Round(float64(n) * s.timeRatio * s.pitchScale))
}

// wantFrame reports whether frame k contributes output before target.
func (s *Stretcher) wantFrame(k, target int) bool {
	return target < 0 || k*s.hs-s.size/2 < target
}

// outputLimit returns how much output may be released so far.
func (s *Stretcher) outputLimit() int {
	n := s.proc.received
	if s.proc.final {
		return int(math.Round(float64(n) * s.timeRatio))
	}
	return int(math.Floor(float64(n) * s.timeRatio))
}

func (s *Stretcher) feed(samples []float32, final bool) {
	s.proc.push(samples, final)
	target := s.stretchedLength(s.proc)

	for s.proc.ready() && s.wantFrame(s.proc.k, target) {
		k := s.proc.next(s.frame)
		s.voc.analyse(s.frame)
		transient := s.isTransient(k)
		s.voc.rotate()

		block := s.voc.synthesise(s.proc.hopBefore(k), transient)
		if pos := k*s.hs - s.size/2; pos < 0 {
			block = block[min(-pos, len(block)):]
		}
		s.emit(block)
	}

	if !final {
		s.release(s.outputLimit())
		return
	}

	if s.resampler != nil {
		tail := s.resampler.Latency() + cubicInterpolationPoints
		if s.antiAlias != nil {
			tail += s.antiAlias.delay()
		}
		s.emit(make([]float64, tail))
	}
	limit := s.outputLimit()
	if short := limit - s.emitted - len(s.pending); short > 0 {
		s.pending = append(s.pending, make([]float64, short)...)
	}
	s.release(limit)
	s.pending = s.pending[:0]
	s.finished.Store(true)
}

// emit queues stretched samples, resampling them when pitch scaling.
func (s *Stretcher) emit(block []float64) {
	if len(block) == 0 {
		return
	}
	if s.antiAlias != nil {
		block = s.antiAlias.process(block)
	}
	if s.resampler != nil {
		block = s.resampler.Process(block)
		if s.resampleSkip > 0 {
			n := min(s.resampleSkip, len(block))
			block = block[n:]
			s.resampleSkip -= n
		}
	}
	s.pending = append(s.pending, block...)
}

// release moves queued samples to the output buffer up to limit.
func (s *Stretcher) release(limit int) {
	n := min(len(s.pending), limit-s.emitted)
	if n <= 0 {
		return
	}
	s.out.Write(s.pending[:n])
	s.emitted += n
	s.pending = append(s.pending[:0], s.pending[n:]...)
}

// isTransient decides whether frame k starts a transient, from the study
// pass when available and causally otherwise.
func (s *Stretcher) isTransient(k int) bool {
	if s.options.transients() == OptionTransientsSmooth {
		return false
	}
	if s.studied {
		i := k - s.kMin
		return i >= 0 && i < len(s.transients) && s.transients[i]
	}

	df := onset(s.options.detector(), s.voc.mag, s.voc.prev)
	s.sinceTrans++
	hit := df >= transientThreshold && df > s.lastDf && s.sinceTrans > 1
	s.lastDf = df
	if hit {
		s.sinceTrans = 0
	}
	return hit
}
