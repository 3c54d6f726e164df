// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/ik5/audlab/audio"
	"github.com/ik5/audlab/utils"
)

var ErrNoChannels = errors.New("flac stream has no channels")

// blockReader yields one decoded FLAC frame at a time as per-channel sample
// slices. It exists so tests can feed blocks without a real bitstream.
type blockReader interface {
	next() ([][]int32, error)
	close() error
}

type streamBlocks struct {
	stream *flac.Stream
}

func (b streamBlocks) next() ([][]int32, error) {
	f, err := b.stream.ParseNext()
	if err != nil {
		return nil, err
	}
	block := make([][]int32, len(f.Subframes))
	for ch, sf := range f.Subframes {
		block[ch] = sf.Samples
	}
	return block, nil
}

func (b streamBlocks) close() error { return b.stream.Close() }

type source struct {
	blocks     blockReader
	sampleRate int
	channels   int
	scale      float32

	block [][]int32
	pos   int // next frame index within block
	eof   bool
}

func newSource(blocks blockReader, sampleRate, channels, bitDepth int) *source {
	return &source{
		blocks:     blocks,
		sampleRate: sampleRate,
		channels:   channels,
		scale:      float32(utils.PCMScale(bitDepth)),
	}
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 * s.channels }
func (s *source) Close() error    { return s.blocks.close() }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst) < s.channels {
		return 0, audio.ErrInvalidDstSize
	}

	n := 0
	for n+s.channels <= len(dst) {
		if s.block == nil || s.pos >= blockLen(s.block) {
			if s.eof {
				break
			}
			block, err := s.blocks.next()
			if errors.Is(err, io.EOF) {
				s.eof = true
				break
			}
			if err != nil {
				return n, fmt.Errorf("decoding flac frame: %w", err)
			}
			if len(block) < s.channels {
				return n, fmt.Errorf("flac frame has %d subframes, want %d", len(block), s.channels)
			}
			s.block, s.pos = block, 0
			continue
		}

		for ch := range s.channels {
			dst[n] = float32(s.block[ch][s.pos]) / s.scale
			n++
		}
		s.pos++
	}

	if s.eof && (s.block == nil || s.pos >= blockLen(s.block)) {
		return n, io.EOF
	}
	return n, nil
}

func blockLen(block [][]int32) int {
	if len(block) == 0 {
		return 0
	}
	return len(block[0])
}

type Decoder struct{}

// Decode parses the STREAMINFO block and streams audio frames on demand.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	info := stream.Info
	if info.NChannels == 0 {
		stream.Close()
		return nil, ErrNoChannels
	}

	return newSource(streamBlocks{stream: stream}, int(info.SampleRate), int(info.NChannels), int(info.BitsPerSample)), nil
}
