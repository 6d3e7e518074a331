package engine

import "math"

// framer slices a mono input stream into overlapping analysis frames.
// Frame k is centred on input position k*ha, so frame kMin starts before
// the first sample and is zero padded on the left. Positions past the end
// of a finished stream read as silence.
//
// Elastic framing rounds each frame centre to a whole sample. Precise
// framing keeps the fractional centre and reads the frame by linear
// interpolation.
type framer struct {
	in       *RingBuffer
	size     int
	ha       float64
	precise  bool
	base     int // absolute index of the first sample held in the ring
	received int
	final    bool
	k        int // next frame index
	span     []float64
}

func newFramer(size int, ha float64, precise bool, kMin int) *framer {
	return &framer{
		in:      NewRingBuffer(defaultRingCapacity),
		size:    size,
		ha:      ha,
		precise: precise,
		k:       kMin,
		span:    make([]float64, size+1),
	}
}

// start returns the first input position read by frame k and the
// fractional offset from it.
func (f *framer) start(k int) (int, float64) {
	pos := float64(k)*f.ha - float64(f.size/2)
	if !f.precise {
		return int(math.Round(pos)), 0
	}
	whole := math.Floor(pos)
	return int(whole), pos - whole
}

// hopBefore returns the analysis hop leading into frame k.
func (f *framer) hopBefore(k int) float64 {
	if f.precise {
		return f.ha
	}
	a, _ := f.start(k)
	b, _ := f.start(k - 1)
	if a <= b {
		return f.ha
	}
	return float64(a - b)
}

func (f *framer) push(samples []float32, final bool) {
	f.in.WriteFloat32(samples)
	f.received += len(samples)
	if final {
		f.final = true
	}
}

// ready reports whether the next frame has all the input it reads.
func (f *framer) ready() bool {
	start, _ := f.start(f.k)
	return f.final || start+f.size+1 <= f.received
}

// next fills dst with the next frame and returns its index.
func (f *framer) next(dst []float64) int {
	k := f.k
	f.k++

	start, frac := f.start(k)
	if drop := min(start, f.received) - f.base; drop > 0 {
		f.base += f.in.Discard(drop)
	}

	span := f.span
	if frac == 0 {
		span = span[:f.size]
	}
	clear(span)
	lo := max(start, f.base)
	hi := min(start+len(span), f.received)
	if hi > lo {
		f.in.PeekInto(span[lo-start:hi-start], lo-f.base)
	}

	if frac == 0 {
		copy(dst, span)
		return k
	}
	for i := range dst[:f.size] {
		dst[i] = span[i]*(1-frac) + span[i+1]*frac
	}
	return k
}
