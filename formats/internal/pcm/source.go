// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts go-audio integer decoders (WAV, AIFF) to audio.Source.
package pcm

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audlab/utils"
)

// Reader is the part of wav.Decoder and aiff.Decoder the Source needs.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source streams integer PCM as float32 in [-1, 1).
type Source struct {
	dec        Reader
	format     *goaudio.Format
	sampleRate int
	channels   int
	bitDepth   int
	// offset is subtracted before scaling; 128 for unsigned 8-bit WAV data.
	offset int
	scale  float32
	intBuf *goaudio.IntBuffer
	done   bool
}

// NewSource wraps dec. Set unsigned for containers that store 8-bit samples
// as unsigned bytes.
func NewSource(dec Reader, format *goaudio.Format, bitDepth int, unsigned bool) *Source {
	s := &Source{
		dec:        dec,
		format:     format,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   bitDepth,
		scale:      float32(utils.PCMScale(bitDepth)),
	}
	if unsigned && bitDepth == 8 {
		s.offset = 128
	}
	return s
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BitDepth() int   { return s.bitDepth }
func (s *Source) Close() error    { return nil }

func (s *Source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.done {
		return 0, io.EOF
	}
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, len(dst)),
			Format:         s.format,
			SourceBitDepth: s.bitDepth,
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("reading pcm: %w", err)
	}
	n = min(n, len(dst))

	for i := range n {
		dst[i] = float32(s.intBuf.Data[i]-s.offset) / s.scale
	}

	// go-audio fills the whole buffer unless the data chunk ran out.
	if n < len(dst) || err != nil {
		s.done = true
		return n, io.EOF
	}
	return n, nil
}

// ReadSeeker returns r itself when it can seek, otherwise buffers it in
// memory. go-audio decoders need to seek over the chunk table.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// ValidDepth reports whether bitDepth is an integer PCM depth the go-audio
// decoders produce.
func ValidDepth(bitDepth int) bool {
	switch bitDepth {
	case 8, 16, 24, 32:
		return true
	}
	return false
}
