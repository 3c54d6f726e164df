// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Buffer is a single mono channel of float64 samples at a fixed rate.
// A Buffer is never modified after construction; every transformation
// returns a new one.
type Buffer struct {
	samples    []float64
	sampleRate int
}

// NewBuffer takes ownership of samples. The caller must not modify the slice
// afterwards.
func NewBuffer(samples []float64, sampleRate int) Buffer {
	return Buffer{samples: samples, sampleRate: sampleRate}
}

func (b Buffer) SampleRate() int { return b.sampleRate }
func (b Buffer) Len() int        { return len(b.samples) }

// Channels is always 1: buffers only exist after downmixing.
func (b Buffer) Channels() int { return 1 }

// Duration in seconds.
func (b Buffer) Duration() float64 {
	if b.sampleRate <= 0 {
		return 0
	}
	return float64(len(b.samples)) / float64(b.sampleRate)
}

// At returns sample i.
func (b Buffer) At(i int) float64 { return b.samples[i] }

// Samples returns a copy of the sample data.
func (b Buffer) Samples() []float64 {
	out := make([]float64, len(b.samples))
	copy(out, b.samples)
	return out
}

// Peak is the largest absolute sample value, 0 for an empty buffer.
func (b Buffer) Peak() float64 {
	if len(b.samples) == 0 {
		return 0
	}
	return floats.Norm(b.samples, math.Inf(1))
}

// IsSilent reports whether every sample is exactly zero. Empty buffers are
// silent.
func (b Buffer) IsSilent() bool {
	for _, s := range b.samples {
		if s != 0 {
			return false
		}
	}
	return true
}

// bufferSource streams a Buffer through the Source interface so it can feed
// the streaming processors in this package.
type bufferSource struct {
	buf Buffer
	pos int
}

// NewBufferSource returns a mono Source reading from b.
func NewBufferSource(b Buffer) Source {
	return &bufferSource{buf: b}
}

func (s *bufferSource) SampleRate() int { return s.buf.sampleRate }
func (s *bufferSource) Channels() int   { return 1 }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.buf.samples) {
		return 0, io.EOF
	}
	n := min(len(dst), len(s.buf.samples)-s.pos)
	for i := range n {
		dst[i] = float32(s.buf.samples[s.pos+i])
	}
	s.pos += n
	if s.pos >= len(s.buf.samples) {
		return n, io.EOF
	}
	return n, nil
}
