package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/nbodyviz/internal/energy"
	"github.com/san-kum/nbodyviz/internal/render"
	"github.com/san-kum/nbodyviz/internal/trajectory"
)

// ErrEmptySeries indicates a report over a run with no frames.
var ErrEmptySeries = errors.New("report: empty energy series")

const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
	filePrefix    = "Energy"
)

// Summary is the energy drift between the first and last frame of a run.
type Summary struct {
	ParticleCount int     `json:"particle_count"`
	StepCount     int     `json:"step_count"`
	Timestep      float64 `json:"timestep"`
	Initial       float64 `json:"initial_energy"`
	Final         float64 `json:"final_energy"`
	PercentChange float64 `json:"percent_change"`
}

// Build computes the summary of series. Identical first and last totals give
// exactly zero drift; a zero initial energy with any drift gives ±Inf.
func Build(series *energy.Series, meta trajectory.Metadata) (Summary, error) {
	if series == nil || series.Len() == 0 {
		return Summary{}, ErrEmptySeries
	}

	s := Summary{
		ParticleCount: meta.ParticleCount,
		StepCount:     meta.StepCount,
		Timestep:      meta.Timestep,
		Initial:       series.Total(0),
		Final:         series.Total(series.Len() - 1),
	}
	s.PercentChange = PercentChange(s.Initial, s.Final)
	return s, nil
}

func PercentChange(initial, final float64) float64 {
	if initial == final {
		return 0
	}
	return (initial - final) / initial * 100
}

// Title is the plot heading carrying every summary field.
func (s Summary) Title() string {
	return fmt.Sprintf("No Particles: %1.1e, Number of Timesteps: %1.1e, Timestep/days: %.3f, "+
		"Initial Energy: %1.3e J, Final Energy: %1.3e J, Percentage Change in Energy: %1.3e",
		float64(s.ParticleCount), float64(s.StepCount), s.Timestep, s.Initial, s.Final, s.PercentChange)
}

// Path is the report image location for a run title.
func Path(dir, title string) string {
	return filepath.Join(dir, filePrefix+title+".png")
}

var (
	kineticColor   = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	potentialColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	totalColor     = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
)

// SavePNG plots the kinetic, potential and total series against simulated
// time and writes the image to path.
func SavePNG(path string, series *energy.Series, meta trajectory.Metadata, s Summary) error {
	if series == nil || series.Len() == 0 {
		return ErrEmptySeries
	}

	p := plot.New()
	p.Title.Text = s.Title()
	p.X.Label.Text = "Time (days)"
	p.Y.Label.Text = "Energy (J)"
	p.Legend.Top = true

	times := series.Times(meta)
	lines := []struct {
		name  string
		data  []float64
		color color.Color
	}{
		{"Kinetic", series.Kinetic, kineticColor},
		{"Potential", series.Potential, potentialColor},
		{"Total", series.Totals(), totalColor},
	}
	for _, l := range lines {
		pts := make(plotter.XYs, len(times))
		for i := range times {
			pts[i] = plotter.XY{X: times[i], Y: l.data[i]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("report: %s series: %w", strings.ToLower(l.name), err)
		}
		line.LineStyle.Color = l.color
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(l.name, line)
	}
	p.Add(plotter.NewGrid())

	return p.Save(render.Pixels(DefaultWidth), render.Pixels(DefaultHeight), path)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")).Bold(true)
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)
)

// driftWarning is the absolute percent change above which drift is highlighted.
const driftWarning = 1.0

// Terminal renders the summary and an ASCII chart of the three series.
func Terminal(series *energy.Series, s Summary) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("energy conservation"))
	b.WriteString("\n")

	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), value)
	}
	row("particles", valueStyle.Render(fmt.Sprintf("%d", s.ParticleCount)))
	row("steps", valueStyle.Render(fmt.Sprintf("%d", s.StepCount)))
	row("timestep", valueStyle.Render(fmt.Sprintf("%.3f days", s.Timestep)))
	row("initial", valueStyle.Render(fmt.Sprintf("%.3e J", s.Initial)))
	row("final", valueStyle.Render(fmt.Sprintf("%.3e J", s.Final)))

	drift := goodStyle
	if math.IsNaN(s.PercentChange) || math.Abs(s.PercentChange) > driftWarning {
		drift = badStyle
	}
	row("change", drift.Render(fmt.Sprintf("%.3e %%", s.PercentChange)))

	if series != nil && series.Len() > 1 {
		b.WriteString("\n")
		b.WriteString(asciigraph.PlotMany(
			[][]float64{series.Kinetic, series.Potential, series.Totals()},
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue, asciigraph.Green),
			asciigraph.SeriesLegends("kinetic", "potential", "total"),
			asciigraph.Caption("energy per frame"),
		))
		b.WriteString("\n")
	}
	return b.String()
}
