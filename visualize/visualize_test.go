// SPDX-License-Identifier: EPL-2.0

package visualize

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audlab/audio"
)

func sine(rate, n int) audio.Buffer {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.Sin(2 * math.Pi * 440 * float64(i) / float64(rate))
	}
	return audio.NewBuffer(s, rate)
}

func TestZoomSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate int
		zoom time.Duration
		want int
	}{
		{rate: 8000, zoom: time.Millisecond, want: 8},
		{rate: 44100, zoom: time.Millisecond, want: 44},
		{rate: 48000, zoom: time.Millisecond, want: 48},
		{rate: 4000, zoom: 250 * time.Microsecond, want: 1},
		{rate: 500, zoom: time.Millisecond, want: 0},
		{rate: 8000, zoom: 0, want: 0},
		{rate: 0, zoom: time.Millisecond, want: 0},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, ZoomSamples(tt.rate, tt.zoom), "ZoomSamples(%d, %s)", tt.rate, tt.zoom)
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	orig := sine(44100, 44100)
	processed := sine(8000, 8000)

	figs := Build(orig, processed, DefaultOptions())

	require.Len(t, figs.Overview.Series, 2)
	for _, s := range figs.Overview.Series {
		assert.LessOrEqual(t, len(s.X), 4000, s.Name)
		assert.Len(t, s.Y, len(s.X))
		assert.InDelta(t, 1.0, s.X[len(s.X)-1], 0.01, "%s spans the full duration", s.Name)
	}

	require.Len(t, figs.Markers.Series, 1)
	assert.True(t, figs.Markers.Series[0].Markers)

	zoomOrig, zoomProc := figs.Zoom.Series[0], figs.Zoom.Series[1]
	assert.Len(t, zoomOrig.X, 44)
	assert.Len(t, zoomProc.X, 8)
	assert.False(t, figs.Zoom.Empty)
	assert.Equal(t, processed.At(7), zoomProc.Y[7])
	assert.InDelta(t, 7.0/8000, zoomProc.X[7], 1e-15)
}

func TestBuild_ShortSignalNotDecimated(t *testing.T) {
	t.Parallel()

	b := sine(8000, 100)
	figs := Build(b, b, DefaultOptions())
	assert.Len(t, figs.Overview.Series[0].X, 100)
	assert.Equal(t, b.Samples(), figs.Markers.Series[0].Y)
}

func TestBuild_EnvelopeKeepsExtremes(t *testing.T) {
	t.Parallel()

	s := make([]float64, 10000)
	s[1234] = 0.9
	s[8765] = -0.8
	figs := Build(audio.NewBuffer(s, 8000), audio.NewBuffer(s, 8000), Options{MaxPoints: 100})

	y := figs.Overview.Series[0].Y
	assert.LessOrEqual(t, len(y), 100)
	assert.Contains(t, y, 0.9)
	assert.Contains(t, y, -0.8)

	x := figs.Overview.Series[0].X
	for i := 1; i < len(x); i++ {
		require.Greater(t, x[i], x[i-1], "envelope out of time order at %d", i)
	}
}

func TestBuild_EmptyZoom(t *testing.T) {
	t.Parallel()

	figs := Build(sine(8000, 800), sine(500, 50), DefaultOptions())
	assert.True(t, figs.Zoom.Empty)
	assert.Equal(t, NoPointsNote, figs.Zoom.Note)
	assert.Empty(t, figs.Zoom.Series[1].X)

	svg, err := RenderString(figs.Zoom)
	require.NoError(t, err)
	assert.Contains(t, svg, "<svg")
}

func TestRender(t *testing.T) {
	t.Parallel()

	figs := Build(sine(8000, 800), sine(4000, 400), DefaultOptions())

	var svg bytes.Buffer
	require.NoError(t, Render(figs.Overview, &svg, SVG))
	assert.Contains(t, svg.String(), "<svg")

	var png bytes.Buffer
	require.NoError(t, Render(figs.Markers, &png, "PNG"))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))

	err := Render(figs.Zoom, &bytes.Buffer{}, "gif")
	assert.ErrorIs(t, err, ErrUnknownImageFormat)
}

func TestRender_AllEmpty(t *testing.T) {
	t.Parallel()

	empty := audio.NewBuffer(nil, 8000)
	figs := Build(empty, empty, DefaultOptions())
	for _, f := range []Figure{figs.Overview, figs.Markers, figs.Zoom} {
		svg, err := RenderString(f)
		require.NoError(t, err)
		assert.True(t, strings.Contains(svg, "<svg"))
	}
}
