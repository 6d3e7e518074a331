package pipeline

import "github.com/tphakala/go-audio-stretcher/internal/simdops"

// DefaultChunkSize is the number of samples handed to the engine per call.
const DefaultChunkSize = 1024

// ChunkWindow is a cursor over a borrowed sample slice that yields
// consecutive fixed-size windows. The last window may be shorter.
//
//	w := NewChunkWindow(samples, 1024)
//	for w.Step() {
//		feed(w.Slice(), w.Final())
//	}
type ChunkWindow[F simdops.Float] struct {
	buf       []F
	chunkSize int
	offset    int
}

// NewChunkWindow returns a window positioned before the first chunk.
// A non-positive chunkSize selects DefaultChunkSize.
func NewChunkWindow[F simdops.Float](buf []F, chunkSize int) *ChunkWindow[F] {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkWindow[F]{
		buf:       buf,
		chunkSize: chunkSize,
		offset:    -chunkSize,
	}
}

// Step advances to the next chunk and reports whether it holds samples.
func (w *ChunkWindow[F]) Step() bool {
	w.offset += w.chunkSize
	return w.offset < len(w.buf)
}

// Offset returns the index of the first sample of the current chunk.
func (w *ChunkWindow[F]) Offset() int { return w.offset }

// Remaining returns the samples from the current offset to the end.
func (w *ChunkWindow[F]) Remaining() int { return len(w.buf) - w.offset }

// Size returns the length of the current chunk.
func (w *ChunkWindow[F]) Size() int { return min(w.chunkSize, w.Remaining()) }

// Final reports whether the current chunk is the last one.
func (w *ChunkWindow[F]) Final() bool { return w.chunkSize >= w.Remaining() }

// Slice returns the current chunk. It aliases the underlying buffer but
// has no spare capacity, so appending to it never overwrites later input.
func (w *ChunkWindow[F]) Slice() []F {
	end := w.offset + w.Size()
	return w.buf[w.offset:end:end]
}
