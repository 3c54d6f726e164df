// SPDX-License-Identifier: EPL-2.0

package quantize

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audlab/audio"
)

func ramp(n int) audio.Buffer {
	s := make([]float64, n)
	for i := range s {
		s[i] = -1 + 2*float64(i)/float64(n-1)
	}
	return audio.NewBuffer(s, 8000)
}

func TestQuantize_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		in       []float64
		want     []float64
	}{
		{name: "2-bit has three levels", bitDepth: 2, in: []float64{0.4, 0.6, -0.6, -1, 1}, want: []float64{0, 1, -1, -1, 1}},
		{name: "ties round to even", bitDepth: 2, in: []float64{0.5, -0.5}, want: []float64{0, 0}},
		{name: "3-bit", bitDepth: 3, in: []float64{0.5, 0.1, -0.2}, want: []float64{2.0 / 3, 0, -1.0 / 3}},
		{name: "out of range is clamped", bitDepth: 8, in: []float64{1.5, -3}, want: []float64{1, -1}},
		{name: "16-bit full scale", bitDepth: 16, in: []float64{1, -1, 0}, want: []float64{1, -1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := Quantize(audio.NewBuffer(tt.in, 8000), tt.bitDepth)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, out.Samples(), 1e-12)
			assert.Equal(t, 8000, out.SampleRate())
		})
	}
}

func TestQuantize_OutputOnGrid(t *testing.T) {
	t.Parallel()

	in := ramp(4097)
	for bits := MinBits; bits <= 24; bits++ {
		out, err := Quantize(in, bits)
		require.NoError(t, err)

		l, err := Levels(bits)
		require.NoError(t, err)

		for i := range out.Len() {
			k := out.At(i) * float64(l)
			require.InDeltaf(t, math.Round(k), k, 1e-6, "%d-bit sample %d is off grid", bits, i)
			require.LessOrEqualf(t, math.Abs(math.Round(k)), float64(l), "%d-bit sample %d beyond L", bits, i)
		}
	}
}

func TestQuantize_ErrorBoundedByHalfStep(t *testing.T) {
	t.Parallel()

	in := ramp(10001)
	for bits := MinBits; bits <= MaxBits; bits++ {
		out, err := Quantize(in, bits)
		require.NoError(t, err)

		step, err := Step(bits)
		require.NoError(t, err)
		assert.LessOrEqualf(t, MaxError(in, out), step/2+1e-12, "%d-bit", bits)
	}
}

func TestQuantize_MaxErrorMonotoneOnDenseInput(t *testing.T) {
	t.Parallel()

	// The property needs inputs that are dense in amplitude: 1/3 lands on the
	// 3-bit grid exactly but not on the 4-bit one.
	in := ramp(20001)
	prev := math.Inf(1)
	for bits := MinBits; bits <= 12; bits++ {
		out, err := Quantize(in, bits)
		require.NoError(t, err)

		e := MaxError(in, out)
		assert.LessOrEqualf(t, e, prev, "max error grew from %d to %d bits", bits-1, bits)
		prev = e
	}
}

func TestQuantize_Idempotent(t *testing.T) {
	t.Parallel()

	in := ramp(1001)
	for _, bits := range []int{2, 3, 5, 8, 12, 16, 24, 32} {
		once, err := Quantize(in, bits)
		require.NoError(t, err)
		twice, err := Quantize(once, bits)
		require.NoError(t, err)
		assert.Equalf(t, once.Samples(), twice.Samples(), "%d-bit", bits)
	}
}

func TestQuantize_InvalidBitDepth(t *testing.T) {
	t.Parallel()

	in := ramp(10)
	for _, bits := range []int{-1, 0, 1, 33, 64} {
		_, err := Quantize(in, bits)
		require.ErrorIs(t, err, ErrInvalidBitDepth)

		var target *InvalidBitDepthError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, bits, target.BitDepth)
	}

	_, err := Levels(1)
	assert.ErrorIs(t, err, ErrInvalidBitDepth)
	_, err = Codes(in, 40)
	assert.ErrorIs(t, err, ErrInvalidBitDepth)
}

func TestLevelsAndStep(t *testing.T) {
	t.Parallel()

	tests := map[int]int64{2: 1, 3: 3, 8: 127, 16: 32767, 24: 8388607, 32: 2147483647}
	for bits, want := range tests {
		l, err := Levels(bits)
		require.NoError(t, err)
		assert.Equal(t, want, l)

		step, err := Step(bits)
		require.NoError(t, err)
		assert.InDelta(t, 1/float64(want), step, 1e-15)
	}
}

func TestCodes(t *testing.T) {
	t.Parallel()

	q, err := Quantize(audio.NewBuffer([]float64{1, -1, 0.5, 0}, 8000), 8)
	require.NoError(t, err)

	codes, err := Codes(q, 8)
	require.NoError(t, err)
	assert.Equal(t, []int{127, -127, 64, 0}, codes)
}

func TestMaxError(t *testing.T) {
	t.Parallel()

	a := audio.NewBuffer([]float64{0, 0.5, -0.25}, 8000)
	b := audio.NewBuffer([]float64{0.1, 0.5, -0.5, 9}, 8000)
	assert.InDelta(t, 0.25, MaxError(a, b), 1e-15)
	assert.Zero(t, MaxError(a, audio.NewBuffer(nil, 8000)))
}
