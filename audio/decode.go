// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// maxStalledReads bounds how many consecutive (0, nil) reads Collect
// tolerates before giving up on a source.
const maxStalledReads = 64

// StreamInfo describes the stream as it came out of the container, before
// downmixing.
type StreamInfo struct {
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Decode runs dec over r and collects the whole stream into a mono Buffer.
//
// Multi-channel input is averaged sample-wise into one channel. This throws
// away stereo imaging on purpose: everything downstream works on one signal.
// Every failure is returned as a *DecodeError.
func Decode(format string, dec Decoder, r io.Reader) (Buffer, StreamInfo, error) {
	info := StreamInfo{Format: format}

	src, err := dec.Decode(r)
	if err != nil {
		return Buffer{}, info, &DecodeError{Format: format, Err: err}
	}
	defer src.Close()

	info.SampleRate = src.SampleRate()
	info.Channels = src.Channels()

	buf, err := Collect(src)
	if err != nil {
		return Buffer{}, info, &DecodeError{Format: format, Err: err}
	}
	return buf, info, nil
}

// Collect drains src through a MonoMixer into a Buffer.
func Collect(src Source) (Buffer, error) {
	if src.SampleRate() <= 0 {
		return Buffer{}, fmt.Errorf("invalid sample rate %d", src.SampleRate())
	}
	if src.Channels() <= 0 {
		return Buffer{}, fmt.Errorf("invalid channel count %d", src.Channels())
	}

	mono := NewMonoMixer(src)

	size := src.BufSize()
	if size <= 0 {
		size = 4096
	}
	chunk := make([]float32, size)
	samples := make([]float64, 0, size)

	stalled := 0
	for {
		n, err := mono.ReadSamples(chunk)
		for _, v := range chunk[:n] {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return Buffer{}, ErrNonFiniteSample
			}
			samples = append(samples, float64(v))
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Buffer{}, fmt.Errorf("reading samples: %w", err)
		}

		if n == 0 {
			stalled++
			if stalled > maxStalledReads {
				return Buffer{}, io.ErrNoProgress
			}
			continue
		}
		stalled = 0
	}

	if len(samples) == 0 {
		return Buffer{}, io.ErrUnexpectedEOF
	}

	return NewBuffer(samples, src.SampleRate()), nil
}
