// SPDX-License-Identifier: EPL-2.0

// Package encode turns a quantized buffer into a playable WAV.
//
// WAV only stores 8, 16, 24 and 32-bit integer PCM. Other depths are written
// in the next larger container and the Playback says so; the samples keep
// the levels of the requested depth.
package encode

import (
	"fmt"
	"io"
	"os"

	"github.com/ik5/audlab/audio"
	"github.com/ik5/audlab/formats/wav"
	"github.com/ik5/audlab/quantize"
)

// SilentWarning is reported when the processed signal has no non-zero sample.
const SilentWarning = "processed signal is silent, nothing to play; try a higher sampling rate or bit depth"

// Playback is an encoded artifact, or the reason there is none.
type Playback struct {
	WAV []byte `json:"-"`

	SampleRate int `json:"sample_rate"`
	// BitDepth is the depth the samples were quantized to.
	BitDepth int `json:"bit_depth"`
	// ContainerBits is the depth actually written to the file.
	ContainerBits int    `json:"container_bits"`
	Subtype       string `json:"subtype"`
	Fallback      bool   `json:"fallback"`

	Silent  bool   `json:"silent"`
	Warning string `json:"warning,omitempty"`
}

// ContainerDepth returns the smallest WAV depth that holds bitDepth.
func ContainerDepth(bitDepth int) (int, error) {
	if _, err := quantize.Levels(bitDepth); err != nil {
		return 0, err
	}
	switch {
	case bitDepth <= 8:
		return 8, nil
	case bitDepth <= 16:
		return 16, nil
	case bitDepth <= 24:
		return 24, nil
	}
	return 32, nil
}

// Subtype names the WAV sample format for a container depth.
func Subtype(containerBits int) string {
	if containerBits == 8 {
		return "PCM_U8"
	}
	return fmt.Sprintf("PCM_%d", containerBits)
}

type Bridge struct {
	// TempDir holds the scratch file go-audio needs to seek in. Empty means
	// os.TempDir().
	TempDir string
}

func New(tempDir string) *Bridge {
	return &Bridge{TempDir: tempDir}
}

// Encode writes q as a mono WAV at q's rate. An all-zero q is not an error:
// the returned Playback has Silent set, a Warning and no WAV data.
func (br *Bridge) Encode(q audio.Buffer, bitDepth int) (Playback, error) {
	container, err := ContainerDepth(bitDepth)
	if err != nil {
		return Playback{}, err
	}

	p := Playback{
		SampleRate:    q.SampleRate(),
		BitDepth:      bitDepth,
		ContainerBits: container,
		Subtype:       Subtype(container),
		Fallback:      container != bitDepth,
	}

	if q.IsSilent() {
		p.Silent = true
		p.Warning = SilentWarning
		return p, nil
	}
	if q.SampleRate() <= 0 {
		return Playback{}, fmt.Errorf("encode: invalid sample rate %d", q.SampleRate())
	}

	codes, err := quantize.Codes(q, container)
	if err != nil {
		return Playback{}, err
	}

	data, err := br.writeTemp(q.SampleRate(), container, codes)
	if err != nil {
		return Playback{}, err
	}
	p.WAV = data
	return p, nil
}

func (br *Bridge) writeTemp(rate, bitDepth int, codes []int) ([]byte, error) {
	f, err := os.CreateTemp(br.TempDir, "audlab-*.wav")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := wav.Encode(f, rate, bitDepth, codes); err != nil {
		return nil, fmt.Errorf("encoding wav: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding temp file: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading temp file: %w", err)
	}
	return data, nil
}
