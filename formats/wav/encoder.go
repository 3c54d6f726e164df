// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Encode writes a mono integer PCM WAV. samples hold signed values in the
// range of bitDepth, which must be 8, 16, 24 or 32. 8-bit data is shifted to
// the unsigned representation the format requires.
func Encode(w io.WriteSeeker, sampleRate, bitDepth int, samples []int) error {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	data := samples
	if bitDepth == 8 {
		data = make([]int, len(samples))
		for i, v := range samples {
			data[i] = v + 128
		}
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, 1, formatPCM)
	buf := &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}

	// Write is called even for empty data so the header is emitted.
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav header: %w", err)
	}
	return nil
}
