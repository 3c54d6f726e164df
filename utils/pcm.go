// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Clamp limits x to [-1, 1].
func Clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// PCMMax is the largest positive signed integer of a bitDepth-bit PCM
// sample, 2^(bitDepth-1) - 1. It returns 0 for depths below 2.
func PCMMax(bitDepth int) int64 {
	if bitDepth < 2 || bitDepth > 63 {
		return 0
	}
	return int64(1)<<(bitDepth-1) - 1
}

// PCMScale is the divisor that maps a signed bitDepth-bit integer back onto
// [-1, 1): 2^(bitDepth-1). Unknown depths fall back to 16-bit.
func PCMScale(bitDepth int) float64 {
	if bitDepth < 2 || bitDepth > 32 {
		bitDepth = 16
	}
	return float64(int64(1) << (bitDepth - 1))
}

// FloatToPCM rounds x (clamped to [-1, 1]) onto a signed bitDepth-bit
// integer using symmetric scaling, so +1 and -1 map to ±PCMMax.
func FloatToPCM(x float64, bitDepth int) int {
	return int(math.RoundToEven(Clamp(x) * float64(PCMMax(bitDepth))))
}

// Float32ToInt16 converts one float sample to 16-bit PCM for the playback path.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return int16(x * 32767.0)
}
