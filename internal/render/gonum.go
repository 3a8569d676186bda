package render

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const dpi = 96

// Pixels converts a pixel count at the default PNG resolution to a plot length.
func Pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / dpi
}

var (
	markerColor = color.RGBA{R: 0x1f, G: 0x4e, B: 0xd8, A: 0xff}
	edgeColor   = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
)

// GonumPlotter renders scenes with gonum/plot. The image format follows the
// file extension.
type GonumPlotter struct {
	Width, Height vg.Length
	MarkerRadius  vg.Length
}

// NewGonumPlotter returns a plotter producing width×height pixel images.
func NewGonumPlotter(width, height int) GonumPlotter {
	return GonumPlotter{
		Width:        Pixels(width),
		Height:       Pixels(height),
		MarkerRadius: vg.Points(2),
	}
}

func (g GonumPlotter) Plot(s Scene, path string) error {
	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel

	for _, e := range s.Edges {
		l, err := plotter.NewLine(e)
		if err != nil {
			return err
		}
		l.LineStyle.Color = edgeColor
		l.LineStyle.Width = vg.Points(0.5)
		p.Add(l)
	}

	sc, err := plotter.NewScatter(s.Points)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = markerColor
	sc.GlyphStyle.Radius = g.MarkerRadius
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc)

	p.X.Min, p.X.Max = s.Min.X, s.Max.X
	p.Y.Min, p.Y.Max = s.Min.Y, s.Max.Y
	if s.HideAxes {
		p.HideAxes()
	}

	return p.Save(g.Width, g.Height, path)
}
