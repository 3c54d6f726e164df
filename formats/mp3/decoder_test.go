// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// chunkedReader simulates gomp3.Decoder, handing out at most chunk bytes
// per Read regardless of the buffer size.
type chunkedReader struct {
	sampleRate int
	data       []byte
	chunk      int
	err        error
}

func (m *chunkedReader) SampleRate() int { return m.sampleRate }

func (m *chunkedReader) Read(buf []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(m.data) == 0 {
		return 0, io.EOF
	}
	n := len(buf)
	if m.chunk > 0 && n > m.chunk {
		n = m.chunk
	}
	n = copy(buf[:n], m.data)
	m.data = m.data[n:]
	return n, nil
}

func pcmBytes(samples ...int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

func newTestSource(data []byte, chunk int) *source {
	return &source{
		dec:        &chunkedReader{sampleRate: 44100, data: data, chunk: chunk},
		sampleRate: 44100,
		buf:        make([]byte, 64),
	}
}

func drain(t *testing.T, src *source, size int) []float32 {
	t.Helper()

	var out []float32
	dst := make([]float32, size)
	for range 10000 {
		n, err := src.ReadSamples(dst)
		out = append(out, dst[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	t.Fatal("source never reached EOF")
	return nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("This is not MP3 data")} {
		if _, err := (Decoder{}).Decode(bytes.NewReader(data)); err == nil {
			t.Errorf("Decode(%q) error = nil, want error", data)
		}
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := newTestSource(nil, 0)
	if src.SampleRate() != 44100 || src.Channels() != 2 {
		t.Errorf("metadata = %d Hz, %d ch", src.SampleRate(), src.Channels())
	}
	if src.BufSize() != 32 {
		t.Errorf("BufSize() = %d, want 32", src.BufSize())
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestSource_Conversion(t *testing.T) {
	t.Parallel()

	got := drain(t, newTestSource(pcmBytes(0, 16384, -16384, -32768, 1, -1), 0), 16)
	want := []float32{0, 0.5, -0.5, -1, 1.0 / 32768, -1.0 / 32768}

	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSource_OddByteReads(t *testing.T) {
	t.Parallel()

	in := []int16{1000, -2000, 3000, -4000, 5000, -6000, 7000}
	want := drain(t, newTestSource(pcmBytes(in...), 0), 16)

	for _, chunk := range []int{1, 3, 5, 7} {
		got := drain(t, newTestSource(pcmBytes(in...), chunk), 4)
		if len(got) != len(want) {
			t.Fatalf("chunk %d: got %d samples, want %d", chunk, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("chunk %d: sample %d = %v, want %v", chunk, i, got[i], want[i])
			}
		}
	}
}

func TestSource_EmptyDst(t *testing.T) {
	t.Parallel()

	n, err := newTestSource(pcmBytes(1, 2), 0).ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v", n, err)
	}
}

func TestSource_StickyEOF(t *testing.T) {
	t.Parallel()

	src := newTestSource(pcmBytes(1, 2), 0)
	drain(t, src, 8)
	if n, err := src.ReadSamples(make([]float32, 8)); n != 0 || err != io.EOF {
		t.Errorf("read after EOF = %d, %v", n, err)
	}
}

func TestSource_DecoderError(t *testing.T) {
	t.Parallel()

	src := &source{dec: &chunkedReader{err: io.ErrUnexpectedEOF}, buf: make([]byte, 8)}
	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v, want wrapped io.ErrUnexpectedEOF", err)
	}
}

func TestSource_BufferGrows(t *testing.T) {
	t.Parallel()

	src := newTestSource(make([]byte, 4000), 0)
	if _, err := src.ReadSamples(make([]float32, 1000)); err != nil && err != io.EOF {
		t.Fatal(err)
	}
	if cap(src.buf) < 2000 {
		t.Errorf("buffer capacity = %d, want >= 2000", cap(src.buf))
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	data := make([]byte, 1<<16)
	dst := make([]float32, 4096)

	for b.Loop() {
		src := newTestSource(data, 0)
		for {
			if _, err := src.ReadSamples(dst); err != nil {
				break
			}
		}
	}
}
