// SPDX-License-Identifier: EPL-2.0

package audio

import "math"

// Normalize scales b so that its peak absolute value is exactly 1.0.
// An all-zero buffer yields ErrSilentInput.
func Normalize(b Buffer) (Buffer, error) {
	peak := b.Peak()
	if math.IsNaN(peak) || math.IsInf(peak, 0) {
		return Buffer{}, ErrNonFiniteSample
	}
	if peak == 0 {
		return Buffer{}, ErrSilentInput
	}

	// Divide rather than multiply by 1/peak: x/x is exactly 1 in IEEE 754.
	out := b.Samples()
	for i := range out {
		out[i] /= peak
	}
	return NewBuffer(out, b.sampleRate), nil
}
