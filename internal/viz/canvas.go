package viz

import (
	"math"
	"strings"

	"gonum.org/v1/plot/plotter"

	"github.com/san-kum/nbodyviz/internal/render"
)

// blank is the empty braille cell; each cell holds a 2x4 block of dots.
const blank = 0x2800

// dotBits[row][col] is the bit of a dot inside its braille cell.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells addressed in dots, so a W×H cell
// canvas is 2W×4H dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (w, h int) {
	return c.Width * 2, c.Height * 4
}

func (c *Canvas) cell(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	row, col = y/4, x/2
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, dotBits[y%4][x%2], true
}

// Set lights the dot at (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= bit
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	row, col, bit, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a Bresenham line between two dots.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// toDots maps a scene coordinate into the dot grid, y pointing down.
func (c *Canvas) toDots(p, min, max plotter.XY) (int, int) {
	w, h := c.Dots()
	fx := (p.X - min.X) / (max.X - min.X)
	fy := (p.Y - min.Y) / (max.Y - min.Y)
	return int(math.Round(fx * float64(w-1))), int(math.Round((1 - fy) * float64(h-1)))
}

// DrawScene rasterizes a scene: box edges as lines, particles as dots.
// Points outside the scene bounds are clipped.
func (c *Canvas) DrawScene(s render.Scene) {
	if s.Max.X <= s.Min.X || s.Max.Y <= s.Min.Y {
		return
	}
	for _, e := range s.Edges {
		for i := 1; i < len(e); i++ {
			x0, y0 := c.toDots(e[i-1], s.Min, s.Max)
			x1, y1 := c.toDots(e[i], s.Min, s.Max)
			c.DrawLine(x0, y0, x1, y1)
		}
	}
	for _, p := range s.Points {
		if p.X < s.Min.X || p.X > s.Max.X || p.Y < s.Min.Y || p.Y > s.Max.Y {
			continue
		}
		c.Set(c.toDots(p, s.Min, s.Max))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
