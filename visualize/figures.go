// SPDX-License-Identifier: EPL-2.0

// Package visualize turns buffers into comparison figures and renders them
// with gonum.org/v1/plot.
//
// Build is pure data: it decides which points each figure shows. Render
// draws a Figure as SVG or PNG. Keeping the two apart lets the server ship
// the point data or the rendered image.
package visualize

import (
	"time"

	"github.com/ik5/audlab/audio"
)

// NoPointsNote is set on a zoom figure whose window holds no samples.
const NoPointsNote = "no points in range"

type Series struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"` // seconds
	Y    []float64 `json:"y"`
	// Markers draws a glyph on every point in addition to the line.
	Markers bool `json:"markers"`
}

type Figure struct {
	Title  string   `json:"title"`
	Series []Series `json:"series"`
	Empty  bool     `json:"empty"`
	Note   string   `json:"note,omitempty"`
}

// Points is the total number of points across all series.
func (f Figure) Points() int {
	n := 0
	for _, s := range f.Series {
		n += len(s.X)
	}
	return n
}

type Figures struct {
	Overview Figure `json:"overview"`
	Markers  Figure `json:"markers"`
	Zoom     Figure `json:"zoom"`
}

type Options struct {
	// ZoomDuration is the window, from t=0, of the zoom figure.
	ZoomDuration time.Duration
	// MaxPoints caps each full-length series; longer signals are reduced to
	// a min/max envelope. Zero disables decimation.
	MaxPoints int
}

func DefaultOptions() Options {
	return Options{ZoomDuration: time.Millisecond, MaxPoints: 4000}
}

// ZoomSamples is floor(rate * zoom), computed in integer nanoseconds so
// 8000 Hz over 1ms is exactly 8.
func ZoomSamples(rate int, zoom time.Duration) int {
	if rate <= 0 || zoom <= 0 {
		return 0
	}
	return int(int64(rate) * int64(zoom) / int64(time.Second))
}

// Build lays out the three comparison figures for orig and processed.
func Build(orig, processed audio.Buffer, opts Options) Figures {
	var figs Figures

	figs.Overview = Figure{
		Title: "Original vs processed",
		Series: []Series{
			envelope("original", orig, opts.MaxPoints, false),
			envelope("processed", processed, opts.MaxPoints, false),
		},
	}

	figs.Markers = Figure{
		Title:  "Processed samples",
		Series: []Series{envelope("processed", processed, opts.MaxPoints, true)},
	}

	figs.Zoom = Figure{
		Title: "First " + opts.ZoomDuration.String(),
		Series: []Series{
			head("original", orig, ZoomSamples(orig.SampleRate(), opts.ZoomDuration), false),
			head("processed", processed, ZoomSamples(processed.SampleRate(), opts.ZoomDuration), true),
		},
	}
	if len(figs.Zoom.Series[1].X) == 0 {
		figs.Zoom.Empty = true
		figs.Zoom.Note = NoPointsNote
	}

	return figs
}

func timeAt(i, rate int) float64 {
	return float64(i) / float64(rate)
}

// head returns the first n samples of b, or fewer if b is shorter.
func head(name string, b audio.Buffer, n int, markers bool) Series {
	n = min(n, b.Len())
	s := Series{Name: name, X: make([]float64, n), Y: make([]float64, n), Markers: markers}
	for i := range n {
		s.X[i] = timeAt(i, b.SampleRate())
		s.Y[i] = b.At(i)
	}
	return s
}

// envelope returns b in full when it fits in maxPoints, otherwise the
// minimum and maximum of consecutive buckets, in time order.
func envelope(name string, b audio.Buffer, maxPoints int, markers bool) Series {
	if maxPoints <= 0 || b.Len() <= maxPoints {
		return head(name, b, b.Len(), markers)
	}

	buckets := max(maxPoints/2, 1)
	size := (b.Len() + buckets - 1) / buckets

	s := Series{Name: name, Markers: markers}
	s.X = make([]float64, 0, 2*buckets)
	s.Y = make([]float64, 0, 2*buckets)

	for start := 0; start < b.Len(); start += size {
		end := min(start+size, b.Len())
		lo, hi := start, start
		for i := start + 1; i < end; i++ {
			if b.At(i) < b.At(lo) {
				lo = i
			}
			if b.At(i) > b.At(hi) {
				hi = i
			}
		}
		first, second := lo, hi
		if hi < lo {
			first, second = hi, lo
		}
		s.X = append(s.X, timeAt(first, b.SampleRate()))
		s.Y = append(s.Y, b.At(first))
		if second != first {
			s.X = append(s.X, timeAt(second, b.SampleRate()))
			s.Y = append(s.Y, b.At(second))
		}
	}
	return s
}
