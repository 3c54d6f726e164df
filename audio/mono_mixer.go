// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer averages every frame of a multi-channel Source into one sample.
// Mono sources pass through untouched.
type MonoMixer struct {
	src Source
	tmp []float32

	// carry holds trailing samples of an incomplete frame until the rest
	// of the frame arrives on the next read.
	carry []float32
}

func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{
		src: src,
		tmp: make([]float32, 8192),
	}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }
func (m *MonoMixer) BufSize() int    { return m.src.BufSize() }
func (m *MonoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	channels := m.src.Channels()
	if channels == 1 {
		return m.src.ReadSamples(dst)
	}

	// One output sample per frame; leave room for the carried partial frame.
	want := len(dst) * channels
	if cap(m.tmp) < want {
		m.tmp = make([]float32, want)
	}
	m.tmp = m.tmp[:want]

	have := copy(m.tmp, m.carry)
	m.carry = m.carry[:0]

	n, err := m.src.ReadSamples(m.tmp[have:])
	total := have + n
	frames := total / channels

	if rest := total - frames*channels; rest > 0 {
		m.carry = append(m.carry, m.tmp[frames*channels:total]...)
	}

	switch channels {
	case 2:
		for f := range frames {
			i := f << 1
			dst[f] = (m.tmp[i] + m.tmp[i+1]) * 0.5
		}
	default:
		inv := float32(1) / float32(channels)
		for f := range frames {
			base := f * channels
			var sum float32
			for c := range channels {
				sum += m.tmp[base+c]
			}
			dst[f] = sum * inv
		}
	}

	return frames, err
}
