// SPDX-License-Identifier: EPL-2.0

// Package estimate computes the uncompressed PCM footprint of a signal.
package estimate

import (
	"fmt"

	"github.com/ik5/audlab/audio"
)

// DataSize is the storage a signal needs as raw PCM. KB and MB use binary
// multiples and are never rounded.
type DataSize struct {
	Bytes float64 `json:"bytes"`
	KB    float64 `json:"kb"`
	MB    float64 `json:"mb"`

	Rate     int     `json:"rate"`
	BitDepth int     `json:"bit_depth"`
	Channels int     `json:"channels"`
	Duration float64 `json:"duration"`

	// Illustrative marks an estimate for a channel count the audio does not
	// actually have.
	Illustrative bool `json:"illustrative,omitempty"`
}

// Compute returns rate*bitDepth*channels*duration/8 bytes.
func Compute(rate, bitDepth, channels int, duration float64) DataSize {
	bytes := float64(rate) * float64(bitDepth) * float64(channels) * duration / 8
	kb := bytes / 1024
	return DataSize{
		Bytes:    bytes,
		KB:       kb,
		MB:       kb / 1024,
		Rate:     rate,
		BitDepth: bitDepth,
		Channels: channels,
		Duration: duration,
	}
}

// ForBuffer estimates b as stored at bitDepth, using b's own rate, channel
// count and duration.
func ForBuffer(b audio.Buffer, bitDepth int) DataSize {
	return Compute(b.SampleRate(), bitDepth, b.Channels(), b.Duration())
}

// WhatIf is ForBuffer with a hypothetical channel count. The result is
// flagged as illustrative.
func WhatIf(b audio.Buffer, bitDepth, channels int) DataSize {
	d := Compute(b.SampleRate(), bitDepth, channels, b.Duration())
	d.Illustrative = true
	return d
}

func (d DataSize) String() string {
	s := fmt.Sprintf("%.0f bytes (%.2f KB, %.4f MB) at %d Hz, %d-bit, %d ch, %.3fs",
		d.Bytes, d.KB, d.MB, d.Rate, d.BitDepth, d.Channels, d.Duration)
	if d.Illustrative {
		s += " [illustrative]"
	}
	return s
}
