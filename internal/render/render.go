package render

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"gonum.org/v1/plot/plotter"

	"github.com/san-kum/nbodyviz/internal/trajectory"
)

var (
	// ErrRendering indicates the plotting collaborator failed.
	ErrRendering = errors.New("render: rendering failed")

	// ErrClosed indicates a render on a released context.
	ErrClosed = errors.New("render: context closed")

	ErrInvalidMode = errors.New("render: invalid plot mode")
)

// RenderError wraps a plotting failure for one frame.
type RenderError struct {
	Frame int
	Path  string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: frame %d (%s): %v", e.Frame, e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) Is(target error) bool { return target == ErrRendering }

type Mode int

const (
	ModeNone Mode = iota
	Mode2D
	Mode3D
)

func (m Mode) String() string {
	switch m {
	case Mode2D:
		return "2D"
	case Mode3D:
		return "3D"
	default:
		return ""
	}
}

// ParseMode accepts "2D" or "3D" in any case. The empty string means no plots.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return ModeNone, nil
	case "2D":
		return Mode2D, nil
	case "3D":
		return Mode3D, nil
	}
	return ModeNone, fmt.Errorf("%w: %q (want 2D or 3D)", ErrInvalidMode, s)
}

// Scene is everything the plotting collaborator needs to draw one image.
type Scene struct {
	Title    string
	XLabel   string
	YLabel   string
	Points   plotter.XYs
	Edges    []plotter.XYs
	Min, Max plotter.XY
	HideAxes bool
}

// Plotter draws a scene and persists it at path.
type Plotter interface {
	Plot(s Scene, path string) error
}

const (
	DefaultPrefix = "Plot"
	DefaultDir    = "plots"
	counterDigits = 5
)

type Options struct {
	Dir        string
	Prefix     string
	Mode       Mode
	HalfExtent float64
	Camera     Camera
}

// Context carries the plotting state of one analysis run. Reserve and Render
// must be called from a single goroutine; RenderAt is safe for concurrent use.
type Context struct {
	opts    Options
	plotter Plotter
	next    int
	closed  atomic.Bool
}

// NewContext creates the output directory and returns a context whose
// counter starts at zero.
func NewContext(opts Options, p Plotter) (*Context, error) {
	if opts.Mode != Mode2D && opts.Mode != Mode3D {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, opts.Mode)
	}
	if opts.HalfExtent <= 0 || math.IsNaN(opts.HalfExtent) || math.IsInf(opts.HalfExtent, 0) {
		return nil, fmt.Errorf("render: half extent must be positive and finite, got %g", opts.HalfExtent)
	}
	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Camera == (Camera{}) {
		opts.Camera = DefaultCamera()
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, err
	}
	return &Context{opts: opts, plotter: p}, nil
}

func (c *Context) Mode() Mode { return c.opts.Mode }

// Count is the number of counters handed out so far.
func (c *Context) Count() int { return c.next }

// Pattern is the printf-style path of rendered frames, e.g. plots/Plot%05d.png.
func (c *Context) Pattern() string {
	return filepath.Join(c.opts.Dir, fmt.Sprintf("%s%%0%dd.png", c.opts.Prefix, counterDigits))
}

func (c *Context) Path(counter int) string {
	return filepath.Join(c.opts.Dir, fmt.Sprintf("%s%0*d.png", c.opts.Prefix, counterDigits, counter))
}

// Reserve hands out the next counter.
func (c *Context) Reserve() int {
	n := c.next
	c.next++
	return n
}

// Render draws f under the next counter and returns the file written.
func (c *Context) Render(f trajectory.Frame) (string, error) {
	n := c.Reserve()
	return c.Path(n), c.RenderAt(f, n)
}

func (c *Context) RenderAt(f trajectory.Frame, counter int) error {
	if c.closed.Load() {
		return ErrClosed
	}
	path := c.Path(counter)
	if err := c.plotter.Plot(BuildScene(f, c.opts.Mode, c.opts.HalfExtent, c.opts.Camera), path); err != nil {
		return &RenderError{Frame: f.Index, Path: path, Err: err}
	}
	return nil
}

// Close releases the context; later renders fail with ErrClosed.
func (c *Context) Close() error {
	c.closed.Store(true)
	return nil
}

// BuildScene lays out one frame: (x, y) in 2D, or the camera projection of
// (x, y, z) inside the [-s, s]³ box in 3D.
func BuildScene(f trajectory.Frame, mode Mode, s float64, cam Camera) Scene {
	scene := Scene{
		Title:  fmt.Sprintf("Time - %g days", f.Time),
		Points: make(plotter.XYs, len(f.Records)),
	}

	if mode != Mode3D {
		for i, r := range f.Records {
			scene.Points[i] = plotter.XY{X: r.Position.X, Y: r.Position.Y}
		}
		scene.XLabel, scene.YLabel = "X", "Y"
		scene.Min, scene.Max = plotter.XY{X: -s, Y: -s}, plotter.XY{X: s, Y: s}
		return scene
	}

	for i, r := range f.Records {
		x, y, _ := cam.Project(r.Position)
		scene.Points[i] = plotter.XY{X: x, Y: y}
	}
	for _, e := range BoxEdges(s) {
		x0, y0, _ := cam.Project(e[0])
		x1, y1, _ := cam.Project(e[1])
		scene.Edges = append(scene.Edges, plotter.XYs{{X: x0, Y: y0}, {X: x1, Y: y1}})
	}
	// bounds hold the unzoomed cube's circumscribed sphere; zooming in
	// pushes points past them and they are clipped
	r := s * math.Sqrt(3)
	scene.Min, scene.Max = plotter.XY{X: -r, Y: -r}, plotter.XY{X: r, Y: r}
	scene.HideAxes = true
	return scene
}
