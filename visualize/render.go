// SPDX-License-Identifier: EPL-2.0

package visualize

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var ErrUnknownImageFormat = errors.New("unknown image format")

// Image formats accepted by Render.
const (
	SVG = "svg"
	PNG = "png"
)

const (
	width  = 10 * vg.Inch
	height = 3.5 * vg.Inch
)

var palette = map[string]color.Color{
	"original":  color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	"processed": color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
}

func seriesColor(name string, i int) color.Color {
	if c, ok := palette[name]; ok {
		return c
	}
	return plotutil.Color(i)
}

// Plot builds the gonum plot for fig without drawing it.
func Plot(fig Figure) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fig.Title
	if fig.Note != "" {
		p.Title.Text += " (" + fig.Note + ")"
	}
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "amplitude"
	p.Y.Min, p.Y.Max = -1.1, 1.1
	p.Add(plotter.NewGrid())

	for i, s := range fig.Series {
		// gonum/plot cannot size axes from an empty series.
		if len(s.X) == 0 {
			continue
		}

		xys := make(plotter.XYs, len(s.X))
		for j := range s.X {
			xys[j].X = s.X[j]
			xys[j].Y = s.Y[j]
		}
		c := seriesColor(s.Name, i)

		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.Color = c
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.Name, line)

		if s.Markers {
			sc, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, fmt.Errorf("series %q markers: %w", s.Name, err)
			}
			sc.GlyphStyle.Color = c
			sc.GlyphStyle.Radius = vg.Points(1.5)
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			p.Add(sc)
		}
	}

	if fig.Points() == 0 {
		p.X.Min, p.X.Max = 0, 1
	}
	p.Legend.Top = true

	return p, nil
}

// Render draws fig to w. format is SVG or PNG.
func Render(fig Figure, w io.Writer, format string) error {
	format = strings.ToLower(format)
	if format != SVG && format != PNG {
		return fmt.Errorf("%w: %q", ErrUnknownImageFormat, format)
	}

	p, err := Plot(fig)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing %s: %w", format, err)
	}
	return nil
}

// RenderString renders fig as an SVG document.
func RenderString(fig Figure) (string, error) {
	var b strings.Builder
	if err := Render(fig, &b, SVG); err != nil {
		return "", err
	}
	return b.String(), nil
}
