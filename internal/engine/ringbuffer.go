package engine

import (
	"sync"
)

// RingBuffer implements a growable circular buffer of samples.
// The engine uses one for pending input and one for retrievable output;
// the output buffer is shared with the worker goroutine in threaded mode.
type RingBuffer struct {
	data     []float64
	capacity int
	size     int
	readPos  int
	writePos int
	mu       sync.Mutex
}

// NewRingBuffer creates a new ring buffer with the specified capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}

	return &RingBuffer{
		data:     make([]float64, capacity),
		capacity: capacity,
	}
}

// Write adds samples to the buffer, growing it when needed.
func (b *RingBuffer) Write(samples []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	needed := len(samples)
	if needed == 0 {
		return
	}

	if b.size+needed > b.capacity {
		b.grow(b.size + needed)
	}

	// First segment up to the physical end, then the wrapped remainder.
	n := copy(b.data[b.writePos:], samples)
	if n < needed {
		copy(b.data, samples[n:])
	}
	b.writePos = (b.writePos + needed) % b.capacity
	b.size += needed
}

// WriteFloat32 adds float32 samples to the buffer.
func (b *RingBuffer) WriteFloat32(samples []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(samples) == 0 {
		return
	}
	if b.size+len(samples) > b.capacity {
		b.grow(b.size + len(samples))
	}
	for _, s := range samples {
		b.data[b.writePos] = float64(s)
		b.writePos = (b.writePos + 1) % b.capacity
	}
	b.size += len(samples)
}

// ReadInto moves up to len(dst) samples into dst and returns the count.
func (b *RingBuffer) ReadInto(dst []float64) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := min(len(dst), b.size)
	if n == 0 {
		return 0
	}
	b.copyOut(dst[:n], 0)
	b.advance(n)
	return n
}

// PeekInto copies up to len(dst) samples starting skip samples past the
// read position into dst, without consuming them. Returns the count copied.
func (b *RingBuffer) PeekInto(dst []float64, skip int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if skip < 0 || skip >= b.size {
		return 0
	}
	n := min(len(dst), b.size-skip)
	b.copyOut(dst[:n], skip)
	return n
}

// Discard drops up to n samples from the read side and returns the count.
func (b *RingBuffer) Discard(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n = min(n, b.size)
	if n <= 0 {
		return 0
	}
	b.advance(n)
	return n
}

// Available returns the number of samples available for reading.
func (b *RingBuffer) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Clear removes all samples from the buffer.
func (b *RingBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.size = 0
	b.readPos = 0
	b.writePos = 0
}

// copyOut copies len(dst) samples starting skip past readPos. Caller holds mu.
func (b *RingBuffer) copyOut(dst []float64, skip int) {
	start := (b.readPos + skip) % b.capacity
	n := copy(dst, b.data[start:min(start+len(dst), b.capacity)])
	if n < len(dst) {
		copy(dst[n:], b.data[:len(dst)-n])
	}
}

// advance consumes n samples. Caller holds mu.
func (b *RingBuffer) advance(n int) {
	b.readPos = (b.readPos + n) % b.capacity
	b.size -= n
}

// grow increases the buffer capacity to at least the specified size.
func (b *RingBuffer) grow(minCapacity int) {
	newCapacity := b.capacity
	for newCapacity < minCapacity {
		newCapacity *= bufferGrowthFactor
	}

	newData := make([]float64, newCapacity)
	if b.size > 0 {
		if b.readPos < b.writePos {
			copy(newData, b.data[b.readPos:b.writePos])
		} else {
			n1 := copy(newData, b.data[b.readPos:])
			copy(newData[n1:], b.data[:b.writePos])
		}
	}

	b.data = newData
	b.capacity = newCapacity
	b.readPos = 0
	b.writePos = b.size
}
