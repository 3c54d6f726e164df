// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/audlab/utils"
)

// Resampler streams from src to a target sample rate using Catmull-Rom
// cubic interpolation. Works on interleaved samples and keeps the channel
// count. When downsampling, a one-pole low-pass tuned to the target Nyquist
// frequency runs ahead of the interpolator.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source samples per output sample
	channels int

	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4][]float32
	hasFrame [4]bool
	primed   bool
	done     bool

	// position between frames[1] and frames[2], in source samples
	pos float64

	srcBuf []float32
	eof    bool

	useFilter   bool
	filterAlpha float32
	filterState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		useFilter:   ratio > 1.0,
		filterState: make([]float32, channels),
	}
	if r.useFilter {
		cutoff := float64(dstRate) / 2
		r.filterAlpha = float32(1 - math.Exp(-2*math.Pi*cutoff/float64(src.SampleRate())))
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame pulls one interleaved frame from src into dst.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	got := 0
	for got < r.channels {
		n, err := r.src.ReadSamples(r.srcBuf[got:])
		got += n
		if err == io.EOF {
			r.eof = true
			break
		}
		if err != nil {
			return false, fmt.Errorf("%w", err)
		}
		if n == 0 {
			break
		}
	}
	if got < r.channels {
		return false, nil
	}

	copy(dst, r.srcBuf)
	if r.useFilter {
		for c := range r.channels {
			dst[c] = r.filterState[c] + r.filterAlpha*(dst[c]-r.filterState[c])
			r.filterState[c] = dst[c]
		}
	}
	return true, nil
}

// prime fills the interpolation window. The first frame is duplicated into
// the t-1 slot; hasFrame marks which of the look-ahead slots hold real data.
func (r *Resampler) prime() error {
	ok, err := r.readFrame(r.frames[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	if r.useFilter {
		// restart the filter at the first sample to avoid a ramp from zero
		copy(r.filterState, r.srcBuf)
		copy(r.frames[1], r.srcBuf)
	}
	copy(r.frames[0], r.frames[1])
	r.hasFrame[0], r.hasFrame[1] = true, true

	for i := 2; i < 4; i++ {
		if r.eof {
			break
		}
		ok, err := r.readFrame(r.frames[i])
		if err != nil {
			return err
		}
		r.hasFrame[i] = ok
	}
	r.primed = true
	return nil
}

// advance shifts the window by one source frame. io.EOF means frames[1]
// already held the last frame of the stream.
func (r *Resampler) advance() error {
	if !r.hasFrame[2] {
		return io.EOF
	}

	r.frames[0], r.frames[1], r.frames[2], r.frames[3] = r.frames[1], r.frames[2], r.frames[3], r.frames[0]
	r.hasFrame[0], r.hasFrame[1], r.hasFrame[2] = r.hasFrame[1], r.hasFrame[2], r.hasFrame[3]
	r.hasFrame[3] = false

	if r.eof {
		return nil
	}
	ok, err := r.readFrame(r.frames[3])
	if err != nil {
		return err
	}
	r.hasFrame[3] = ok
	return nil
}

// ReadSamples produces dst samples at the target rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.done {
		return 0, io.EOF
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			if err == io.EOF {
				r.done = true
			}
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				if err == io.EOF {
					r.done = true
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		// Edge frames stand in for missing look-ahead at the end of the stream.
		y2 := r.frames[2]
		if !r.hasFrame[2] {
			y2 = r.frames[1]
		}
		y3 := r.frames[3]
		if !r.hasFrame[3] {
			y3 = y2
		}

		alpha := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range r.channels {
			out[c] = utils.CubicInterpolate(r.frames[0][c], r.frames[1][c], y2[c], y3[c], alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
