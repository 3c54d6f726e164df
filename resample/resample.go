// SPDX-License-Identifier: EPL-2.0

// Package resample converts an audio.Buffer to a new sampling rate.
//
// Two methods are available. Polyphase runs the band-limited FIR resampler
// from github.com/tphakala/go-audio-resampler and is the default. Cubic uses
// the streaming Catmull-Rom resampler from the audio package; it is cheaper,
// aliases more, and is what Polyphase falls back to when the filter cannot
// handle the request.
//
// Whatever the method, the result holds exactly ExpectedLen samples, sample i
// sits at time i/rate on the input's timeline, and every sample is clamped to
// [-1, 1].
package resample

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	resampler "github.com/tphakala/go-audio-resampler"

	"github.com/ik5/audlab/audio"
	"github.com/ik5/audlab/utils"
)

// Limits outside which Polyphase hands over to Cubic.
const (
	MinRatio = 1.0 / 64
	MaxRatio = 64.0

	// MinPolyphaseInput is the shortest input the FIR path accepts; shorter
	// clips are mostly filter transient.
	MinPolyphaseInput = 256
)

var (
	ErrInvalidRate    = errors.New("sample rate must be positive")
	ErrUnknownMethod  = errors.New("unknown resampling method")
	ErrUnknownQuality = errors.New("unknown resampling quality")
)

type Method int

const (
	Polyphase Method = iota
	Cubic
)

func (m Method) String() string {
	switch m {
	case Polyphase:
		return "polyphase"
	case Cubic:
		return "cubic"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod accepts the names returned by Method.String, case-insensitive.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "polyphase":
		return Polyphase, nil
	case "cubic":
		return Cubic, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Quality selects the polyphase filter preset. It has no effect on Cubic.
type Quality int

const (
	QualityQuick Quality = iota
	QualityLow
	QualityMedium
	QualityHigh
	QualityVeryHigh
)

var qualityNames = [...]string{"quick", "low", "medium", "high", "veryhigh"}

func (q Quality) String() string {
	if q < 0 || int(q) >= len(qualityNames) {
		return fmt.Sprintf("Quality(%d)", int(q))
	}
	return qualityNames[q]
}

func (q Quality) preset() resampler.QualityPreset {
	switch q {
	case QualityQuick:
		return resampler.QualityQuick
	case QualityLow:
		return resampler.QualityLow
	case QualityMedium:
		return resampler.QualityMedium
	case QualityVeryHigh:
		return resampler.QualityVeryHigh
	}
	return resampler.QualityHigh
}

// ParseQuality maps "quick", "low", "medium", "high" or "veryhigh" to a
// Quality. An empty string means QualityHigh.
func ParseQuality(s string) (Quality, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return QualityHigh, nil
	}
	s = strings.ReplaceAll(strings.ReplaceAll(s, "-", ""), "_", "")
	for i, name := range qualityNames {
		if s == name {
			return Quality(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownQuality, s)
}

type Options struct {
	Method  Method
	Quality Quality
}

func DefaultOptions() Options {
	return Options{Method: Polyphase, Quality: QualityHigh}
}

// ExpectedLen is the output length for n samples converted between the two
// rates: round(n * to / from).
func ExpectedLen(n, fromRate, toRate int) int {
	if fromRate <= 0 || n <= 0 {
		return 0
	}
	return int(math.Round(float64(n) * float64(toRate) / float64(fromRate)))
}

// Choose reports the method Resample will try first for n samples at the
// given rates.
func Choose(n, fromRate, toRate int, opts Options) Method {
	if opts.Method != Polyphase {
		return opts.Method
	}
	ratio := float64(toRate) / float64(fromRate)
	if ratio < MinRatio || ratio > MaxRatio || n < MinPolyphaseInput {
		return Cubic
	}
	return Polyphase
}

// Resample returns b converted to targetRate. Converting to the buffer's own
// rate returns an identical copy.
func Resample(b audio.Buffer, targetRate int, opts Options) (audio.Buffer, error) {
	out, _, err := resample(b, targetRate, opts)
	return out, err
}

// ResampleMethod is Resample that also reports the method that produced the
// output, which differs from opts.Method after a fallback.
func ResampleMethod(b audio.Buffer, targetRate int, opts Options) (audio.Buffer, Method, error) {
	return resample(b, targetRate, opts)
}

func resample(b audio.Buffer, targetRate int, opts Options) (audio.Buffer, Method, error) {
	if targetRate <= 0 {
		return audio.Buffer{}, opts.Method, fmt.Errorf("%w: target %d Hz", ErrInvalidRate, targetRate)
	}
	if b.SampleRate() <= 0 {
		return audio.Buffer{}, opts.Method, fmt.Errorf("%w: source %d Hz", ErrInvalidRate, b.SampleRate())
	}

	if targetRate == b.SampleRate() {
		return audio.NewBuffer(b.Samples(), targetRate), opts.Method, nil
	}

	want := ExpectedLen(b.Len(), b.SampleRate(), targetRate)
	if want == 0 {
		return audio.NewBuffer([]float64{}, targetRate), opts.Method, nil
	}

	method := Choose(b.Len(), b.SampleRate(), targetRate, opts)

	var (
		out []float64
		err error
	)
	if method == Polyphase {
		out, err = resampler.ResampleMono(b.Samples(), float64(b.SampleRate()), float64(targetRate), opts.Quality.preset())
		if err != nil || len(out) == 0 {
			method = Cubic
		} else {
			out = align(out, polyphaseDelay(b.SampleRate(), targetRate, opts.Quality))
		}
	}
	if method == Cubic {
		out, err = cubic(b, targetRate)
		if err != nil {
			return audio.Buffer{}, method, err
		}
	}

	return audio.NewBuffer(fit(out, want), targetRate), method, nil
}

func cubic(b audio.Buffer, targetRate int) ([]float64, error) {
	r := audio.NewResampler(audio.NewBufferSource(b), targetRate)
	defer r.Close()

	out := make([]float64, 0, ExpectedLen(b.Len(), b.SampleRate(), targetRate)+1)
	chunk := make([]float32, 4096)
	for {
		n, err := r.ReadSamples(chunk)
		for _, v := range chunk[:n] {
			out = append(out, float64(v))
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("cubic resampling: %w", err)
		}
	}
}

// impulseMargin is the number of input samples kept on each side of the
// impulse used to measure the filter delay.
const impulseMargin = 8192

type delayKey struct {
	from, to int
	quality  Quality
}

var delays sync.Map // delayKey -> int

// polyphaseDelay is the signed offset, in output samples, between where the
// FIR resampler puts an event and where it belongs on the output timeline.
// It is measured once per rate pair and quality by resampling an impulse.
func polyphaseDelay(from, to int, q Quality) int {
	key := delayKey{from: from, to: to, quality: q}
	if d, ok := delays.Load(key); ok {
		return d.(int)
	}
	d := measureDelay(from, to, q)
	delays.Store(key, d)
	return d
}

func measureDelay(from, to int, q Quality) int {
	g := gcd(from, to)
	step := from / g

	// The impulse sits on an input index that maps to a whole output index.
	m := (impulseMargin + step - 1) / step
	pos := m * step
	in := make([]float64, 2*pos+1)
	in[pos] = 1

	out, err := resampler.ResampleMono(in, float64(from), float64(to), q.preset())
	if err != nil || len(out) == 0 {
		return 0
	}

	peak := 0
	for i, v := range out {
		if math.Abs(v) > math.Abs(out[peak]) {
			peak = i
		}
	}
	return peak - m*(to/g)
}

// align drops the first d samples of s, or prepends -d zeros when d is
// negative.
func align(s []float64, d int) []float64 {
	switch {
	case d > 0:
		return s[min(d, len(s)):]
	case d < 0:
		return append(make([]float64, -d, len(s)-d), s...)
	}
	return s
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// fit trims or zero-pads s to n samples and clamps every value to [-1, 1].
func fit(s []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, s)
	for i, v := range out {
		out[i] = utils.Clamp(v)
	}
	return out
}
