// SPDX-License-Identifier: EPL-2.0

// Package quantize snaps samples onto the grid of a signed integer bit depth.
//
// For a depth of b bits the grid has 2L+1 points k/L, k in [-L, L], with
// L = 2^(b-1) - 1. The grid is symmetric, so the most negative code of a
// real two's complement converter is never used; this keeps +1 and -1
// representable at every depth.
package quantize

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ik5/audlab/audio"
	"github.com/ik5/audlab/utils"
)

// Accepted bit depths. One bit has no non-zero level under the symmetric
// grid and anything above 32 exceeds float64 precision for the level index.
const (
	MinBits = 2
	MaxBits = 32
)

func validate(bitDepth int) error {
	if bitDepth < MinBits || bitDepth > MaxBits {
		return &InvalidBitDepthError{BitDepth: bitDepth}
	}
	return nil
}

// Levels returns L, the number of positive non-zero levels.
func Levels(bitDepth int) (int64, error) {
	if err := validate(bitDepth); err != nil {
		return 0, err
	}
	return utils.PCMMax(bitDepth), nil
}

// Step returns the spacing between adjacent levels, 1/L.
func Step(bitDepth int) (float64, error) {
	l, err := Levels(bitDepth)
	if err != nil {
		return 0, err
	}
	return 1 / float64(l), nil
}

// Quantize maps every sample v of b to round(v*L)/L. Samples are clamped to
// [-1, 1] first and ties round to even. The result keeps b's rate.
func Quantize(b audio.Buffer, bitDepth int) (audio.Buffer, error) {
	l, err := Levels(bitDepth)
	if err != nil {
		return audio.Buffer{}, err
	}
	scale := float64(l)

	out := b.Samples()
	for i, v := range out {
		out[i] = math.RoundToEven(utils.Clamp(v)*scale) / scale
	}
	return audio.NewBuffer(out, b.SampleRate()), nil
}

// Codes returns the integer level index of each sample, the values a PCM
// encoder writes. Samples must already be on the grid of bitDepth for the
// mapping to be exact.
func Codes(b audio.Buffer, bitDepth int) ([]int, error) {
	if err := validate(bitDepth); err != nil {
		return nil, err
	}
	codes := make([]int, b.Len())
	for i := range codes {
		codes[i] = utils.FloatToPCM(b.At(i), bitDepth)
	}
	return codes, nil
}

// MaxError is the largest absolute difference between paired samples of
// the two buffers. It only compares up to the shorter length.
func MaxError(orig, quantized audio.Buffer) float64 {
	n := min(orig.Len(), quantized.Len())
	if n == 0 {
		return 0
	}
	a := orig.Samples()[:n]
	b := quantized.Samples()[:n]
	return floats.Distance(a, b, math.Inf(1))
}
