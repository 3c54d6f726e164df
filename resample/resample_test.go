// SPDX-License-Identifier: EPL-2.0

package resample

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audlab/audio"
)

func sine(rate int, seconds, freq, amp float64) audio.Buffer {
	n := int(math.Round(seconds * float64(rate)))
	s := make([]float64, n)
	for i := range s {
		s[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return audio.NewBuffer(s, rate)
}

func rms(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}

func TestResample_Length(t *testing.T) {
	t.Parallel()

	rates := [][2]int{
		{44100, 8000}, {44100, 48000}, {48000, 4000}, {22050, 44100},
		{8000, 48000}, {44100, 11025}, {32000, 44100}, {44100, 7000},
	}

	for _, method := range []Method{Polyphase, Cubic} {
		for _, r := range rates {
			t.Run(fmt.Sprintf("%s/%d-%d", method, r[0], r[1]), func(t *testing.T) {
				t.Parallel()

				in := sine(r[0], 0.5, 440, 0.9)
				out, err := Resample(in, r[1], Options{Method: method, Quality: QualityMedium})
				require.NoError(t, err)

				want := float64(in.Len()) * float64(r[1]) / float64(r[0])
				assert.InDelta(t, want, float64(out.Len()), 1)
				assert.Equal(t, r[1], out.SampleRate())
				assert.InDelta(t, in.Duration(), out.Duration(), 1/float64(r[1]))
			})
		}
	}
}

func TestResample_Identity(t *testing.T) {
	t.Parallel()

	in := sine(16000, 0.1, 300, 0.5)
	out, err := Resample(in, 16000, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, in.Samples(), out.Samples())
}

func TestResample_StaysInRange(t *testing.T) {
	t.Parallel()

	// A full-scale square wave rings on both sides of every edge.
	s := make([]float64, 8000)
	for i := range s {
		if (i/40)%2 == 0 {
			s[i] = 1
		} else {
			s[i] = -1
		}
	}
	in := audio.NewBuffer(s, 8000)

	for _, method := range []Method{Polyphase, Cubic} {
		out, err := Resample(in, 44100, Options{Method: method, Quality: QualityHigh})
		require.NoError(t, err)
		for i := range out.Len() {
			v := out.At(i)
			require.Truef(t, v >= -1 && v <= 1, "%s sample %d = %v", method, i, v)
		}
	}
}

func TestResample_PreservesInBandTone(t *testing.T) {
	t.Parallel()

	in := sine(44100, 1, 440, 0.8)

	for _, method := range []Method{Polyphase, Cubic} {
		out, err := Resample(in, 8000, Options{Method: method, Quality: QualityHigh})
		require.NoError(t, err)

		s := out.Samples()
		mid := s[len(s)/4 : 3*len(s)/4]
		assert.InDeltaf(t, 0.8/math.Sqrt2, rms(mid), 0.05, "%s lost the 440 Hz tone", method)
	}
}

func TestResample_TimingAlignment(t *testing.T) {
	t.Parallel()

	const from = 44100
	impulse := make([]float64, from/2)
	impulse[from/4] = 1
	in := audio.NewBuffer(impulse, from)

	for _, method := range []Method{Polyphase, Cubic} {
		for _, rate := range []int{4000, 8000, 16000, 48000, 96000} {
			t.Run(fmt.Sprintf("%s/%d", method, rate), func(t *testing.T) {
				t.Parallel()

				out, got, err := ResampleMethod(in, rate, Options{Method: method, Quality: QualityHigh})
				require.NoError(t, err)
				require.Equal(t, method, got)

				s := out.Samples()
				peak := 0
				for i, v := range s {
					if math.Abs(v) > math.Abs(s[peak]) {
						peak = i
					}
				}
				want := int(math.Round(0.25 * float64(rate)))
				assert.InDeltaf(t, want, peak, 1, "impulse at 250 ms landed at %.3f ms", 1000*float64(peak)/float64(rate))
			})
		}
	}
}

func TestResample_TracksIdealSine(t *testing.T) {
	t.Parallel()

	in := sine(44100, 1, 440, 0.8)
	ideal := sine(8000, 1, 440, 0.8).Samples()

	for _, method := range []Method{Polyphase, Cubic} {
		out, err := Resample(in, 8000, Options{Method: method, Quality: QualityHigh})
		require.NoError(t, err)

		s := out.Samples()
		require.Len(t, s, len(ideal))
		var worst float64
		for i := len(s) / 4; i < 3*len(s)/4; i++ {
			worst = max(worst, math.Abs(s[i]-ideal[i]))
		}
		assert.Lessf(t, worst, 0.25, "%s drifted from the ideal 440 Hz sine", method)
	}
}

func TestAlign(t *testing.T) {
	t.Parallel()

	s := []float64{1, 2, 3}
	assert.Equal(t, []float64{3}, align(s, 2))
	assert.Empty(t, align(s, 5))
	assert.Equal(t, []float64{0, 0, 1, 2, 3}, align(s, -2))
	assert.Equal(t, s, align(s, 0))
}

func TestResample_InvalidRate(t *testing.T) {
	t.Parallel()

	in := sine(8000, 0.1, 100, 0.5)
	for _, rate := range []int{0, -8000} {
		_, err := Resample(in, rate, DefaultOptions())
		assert.ErrorIs(t, err, ErrInvalidRate)
	}

	_, err := Resample(audio.NewBuffer([]float64{0.1}, 0), 8000, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestResample_TinyInputs(t *testing.T) {
	t.Parallel()

	out, err := Resample(audio.NewBuffer([]float64{}, 44100), 8000, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())

	out, method, err := ResampleMethod(audio.NewBuffer([]float64{0.5, -0.5, 0.25}, 8000), 16000, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Cubic, method)
	assert.Equal(t, 6, out.Len())
}

func TestChoose(t *testing.T) {
	t.Parallel()

	def := DefaultOptions()
	assert.Equal(t, Polyphase, Choose(44100, 44100, 8000, def))
	assert.Equal(t, Cubic, Choose(100, 44100, 8000, def), "short input")
	assert.Equal(t, Cubic, Choose(44100, 192000, 2000, def), "ratio below 1/64")
	assert.Equal(t, Cubic, Choose(44100, 1000, 96000, def), "ratio above 64")
	assert.Equal(t, Cubic, Choose(44100, 44100, 8000, Options{Method: Cubic}))
}

func TestExpectedLen(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 16000, ExpectedLen(88200, 44100, 8000))
	assert.Equal(t, 3, ExpectedLen(5, 10, 5)) // 2.5 rounds away from zero
	assert.Equal(t, 0, ExpectedLen(10, 0, 8000))
}

func TestParseMethodAndQuality(t *testing.T) {
	t.Parallel()

	m, err := ParseMethod("Cubic")
	require.NoError(t, err)
	assert.Equal(t, Cubic, m)

	m, err = ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, Polyphase, m)

	_, err = ParseMethod("sinc")
	assert.ErrorIs(t, err, ErrUnknownMethod)

	q, err := ParseQuality("very-high")
	require.NoError(t, err)
	assert.Equal(t, QualityVeryHigh, q)
	assert.Equal(t, "veryhigh", q.String())

	_, err = ParseQuality("ultra")
	assert.ErrorIs(t, err, ErrUnknownQuality)
}

func BenchmarkResample(b *testing.B) {
	in := sine(44100, 2, 440, 0.8)

	for _, method := range []Method{Polyphase, Cubic} {
		b.Run(method.String(), func(b *testing.B) {
			for b.Loop() {
				if _, err := Resample(in, 8000, Options{Method: method, Quality: QualityMedium}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
