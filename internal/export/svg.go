package export

import (
	"fmt"
	"html"
	"os"
	"strings"

	"gonum.org/v1/plot/plotter"

	"github.com/san-kum/nbodyviz/internal/render"
)

const (
	DefaultBackground = "#0a0a0a"
	DefaultInk        = "#00ff00"
)

// SVGOptions controls the snapshot canvas. Zero values take the defaults.
type SVGOptions struct {
	Width, Height int
	Background    string
	Ink           string
	Radius        float64
}

func (o *SVGOptions) defaults() {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.Ink == "" {
		o.Ink = DefaultInk
	}
	if o.Radius <= 0 {
		o.Radius = 2
	}
}

// SceneToSVG draws a scene as vector graphics: particles as circles, box
// edges as lines, the title as a caption. Points outside the scene bounds
// are dropped.
func SceneToSVG(s render.Scene, o SVGOptions) string {
	o.defaults()
	if s.Max.X <= s.Min.X || s.Max.Y <= s.Min.Y {
		return ""
	}

	rangeX, rangeY := s.Max.X-s.Min.X, s.Max.Y-s.Min.Y
	at := func(p plotter.XY) (float64, float64) {
		x := (p.X - s.Min.X) / rangeX * float64(o.Width)
		y := float64(o.Height) - (p.Y-s.Min.Y)/rangeY*float64(o.Height)
		return x, y
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, o.Width, o.Height, o.Width, o.Height, o.Background)

	if len(s.Edges) > 0 {
		fmt.Fprintf(&sb, "<g stroke=\"%s\" stroke-opacity=\"0.4\" stroke-width=\"1\">\n", o.Ink)
		for _, e := range s.Edges {
			for i := 1; i < len(e); i++ {
				x0, y0 := at(e[i-1])
				x1, y1 := at(e[i])
				fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", x0, y0, x1, y1)
			}
		}
		sb.WriteString("</g>\n")
	}

	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", o.Ink)
	for _, p := range s.Points {
		if p.X < s.Min.X || p.X > s.Max.X || p.Y < s.Min.Y || p.Y > s.Max.Y {
			continue
		}
		cx, cy := at(p)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, o.Radius)
	}
	sb.WriteString("</g>\n")

	if s.Title != "" {
		fmt.Fprintf(&sb, "<text x=\"10\" y=\"20\" fill=\"%s\" font-family=\"monospace\" font-size=\"14\">%s</text>\n",
			o.Ink, html.EscapeString(s.Title))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteSVG renders s and writes it to path.
func WriteSVG(path string, s render.Scene, o SVGOptions) error {
	svg := SceneToSVG(s, o)
	if svg == "" {
		return fmt.Errorf("export: scene has empty bounds")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
