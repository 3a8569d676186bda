package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera orients the orthographic view used for 3D frames. Angles are in
// radians and applied X, then Y, then Z.
type Camera struct {
	RotX, RotY, RotZ float64
	Zoom             float64
}

func DefaultCamera() Camera {
	return Camera{RotX: -1.1, RotZ: 0.6, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.zoom()*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.zoom()/1.2) }

func (c Camera) zoom() float64 {
	if c.Zoom == 0 {
		return 1
	}
	return c.Zoom
}

// Rotate turns p about the camera's axes.
func (c Camera) Rotate(p r3.Vec) r3.Vec {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project returns the screen-plane coordinates and depth of p.
func (c Camera) Project(p r3.Vec) (x, y, depth float64) {
	r := r3.Scale(c.zoom(), c.Rotate(p))
	return r.X, r.Y, r.Z
}

// BoxEdges returns the 12 edges of the cube [-s, s]³.
func BoxEdges(s float64) [][2]r3.Vec {
	v := []r3.Vec{
		{X: -s, Y: -s, Z: -s}, {X: s, Y: -s, Z: -s}, {X: s, Y: s, Z: -s}, {X: -s, Y: s, Z: -s},
		{X: -s, Y: -s, Z: s}, {X: s, Y: -s, Z: s}, {X: s, Y: s, Z: s}, {X: -s, Y: s, Z: s},
	}
	idx := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
	edges := make([][2]r3.Vec, len(idx))
	for i, e := range idx {
		edges[i] = [2]r3.Vec{v[e[0]], v[e[1]]}
	}
	return edges
}
