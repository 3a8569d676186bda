package viz

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/nbodyviz/internal/energy"
	"github.com/san-kum/nbodyviz/internal/export"
	"github.com/san-kum/nbodyviz/internal/render"
	"github.com/san-kum/nbodyviz/internal/trajectory"
)

const (
	defaultCols = 60
	defaultRows = 24
	panelCols   = 50
	rotateStep  = 0.1
)

type TickMsg time.Time

type PlayerOptions struct {
	Title      string
	Mode       render.Mode
	Camera     render.Camera
	FrameRate  int
	Theme      string
	SnapshotTo string
}

// Model replays decoded frames in the terminal.
type Model struct {
	title    string
	frames   []trajectory.Frame
	meta     trajectory.Metadata
	series   *energy.Series
	totals   []float64
	mode     render.Mode
	cam      render.Camera
	canvas   *Canvas
	theme    Theme
	styles   styles
	interval time.Duration
	snapDir  string

	playHead int
	running  bool
	showHelp bool
	status   string
}

// NewPlayer builds a player over frames in playback order.
func NewPlayer(frames []trajectory.Frame, meta trajectory.Metadata, opts PlayerOptions) Model {
	series := &energy.Series{}
	for _, f := range frames {
		series.Append(energy.Accumulate(f))
	}

	if opts.Mode == render.ModeNone {
		opts.Mode = render.Mode2D
	}
	if opts.Camera == (render.Camera{}) {
		opts.Camera = render.DefaultCamera()
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = 10
	}
	if opts.SnapshotTo == "" {
		opts.SnapshotTo = "."
	}
	theme := GetTheme(opts.Theme)

	return Model{
		title:    opts.Title,
		frames:   frames,
		meta:     meta,
		series:   series,
		totals:   series.Totals(),
		mode:     opts.Mode,
		cam:      opts.Camera,
		canvas:   NewCanvas(defaultCols, defaultRows),
		theme:    theme,
		styles:   newStyles(theme),
		interval: time.Second / time.Duration(opts.FrameRate),
		snapDir:  opts.SnapshotTo,
		running:  true,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "[", "left":
			m.running = false
			m.seek(-1)
		case "]", "right":
			m.running = false
			m.seek(1)
		case "home", "r":
			m.playHead = 0
		case "end":
			m.playHead = len(m.frames) - 1
		case "x":
			m.cam.RotateX(rotateStep)
		case "X":
			m.cam.RotateX(-rotateStep)
		case "y":
			m.cam.RotateY(rotateStep)
		case "Y":
			m.cam.RotateY(-rotateStep)
		case "z":
			m.cam.RotateZ(rotateStep)
		case "Z":
			m.cam.RotateZ(-rotateStep)
		case "+", "=":
			m.cam.ZoomIn()
		case "-", "_":
			m.cam.ZoomOut()
		case "m":
			if m.mode == render.Mode3D {
				m.mode = render.Mode2D
			} else {
				m.mode = render.Mode3D
			}
		case "t":
			m.theme = nextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "s":
			m.status = m.snapshot()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		cols := msg.Width - panelCols - 6
		rows := msg.Height - 4
		if cols > 10 && rows > 5 {
			m.canvas = NewCanvas(cols, rows)
		}
	case TickMsg:
		if m.running {
			m.seek(1)
		}
		return m, m.tick()
	}
	return m, nil
}

// seek moves the play head by delta frames, wrapping at both ends.
func (m *Model) seek(delta int) {
	n := len(m.frames)
	if n == 0 {
		return
	}
	m.playHead = ((m.playHead+delta)%n + n) % n
}

func (m Model) PlayHead() int { return m.playHead }

func (m Model) Mode() render.Mode { return m.mode }

func (m Model) Camera() render.Camera { return m.cam }

func (m Model) Running() bool { return m.running }

// Scene is the layout of the frame under the play head.
func (m Model) Scene() render.Scene {
	if len(m.frames) == 0 {
		return render.Scene{}
	}
	return render.BuildScene(m.frames[m.playHead], m.mode, m.meta.HalfExtent, m.cam)
}

// snapshot writes the current frame as SVG and returns a status line.
func (m Model) snapshot() string {
	if len(m.frames) == 0 {
		return "nothing to save"
	}
	name := fmt.Sprintf("%sFrame%05d.svg", m.title, m.playHead)
	path := filepath.Join(m.snapDir, name)
	err := export.WriteSVG(path, m.Scene(), export.SVGOptions{
		Background: m.theme.Background,
		Ink:        m.theme.Ink,
	})
	if err != nil {
		return "snapshot failed: " + err.Error()
	}
	return "saved " + path
}

func (m Model) View() string {
	if len(m.frames) == 0 {
		return "no frames to play\n"
	}

	scene := m.Scene()
	m.canvas.Clear()
	m.canvas.DrawScene(scene)
	canvasView := m.styles.canvas.Render(m.canvas.String())

	st := m.styles
	var s strings.Builder
	title := m.title
	if title == "" {
		title = "trajectory"
	}
	s.WriteString(st.header.Render(strings.ToUpper(title)) + "\n")

	state := "PLAYING"
	if !m.running {
		state = "PAUSED"
	}
	s.WriteString(st.value.Render(state) + "  " + scene.Title + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d / %d", m.playHead+1, len(m.frames)))
	row("Particles", fmt.Sprintf("%d", m.meta.ParticleCount))
	row("Mode", m.mode.String())
	if m.mode == render.Mode3D {
		row("Zoom", fmt.Sprintf("%.2fx", m.cam.Zoom))
	}
	row("Kinetic", fmt.Sprintf("%.3e J", m.series.Kinetic[m.playHead]))
	row("Potential", fmt.Sprintf("%.3e J", m.series.Potential[m.playHead]))
	row("Total", fmt.Sprintf("%.3e J", m.totals[m.playHead]))

	drift := 0.0
	if e0 := m.totals[0]; e0 != m.totals[m.playHead] {
		drift = (e0 - m.totals[m.playHead]) / e0 * 100
	}
	driftStyle := st.good
	if drift > 1 || drift < -1 {
		driftStyle = st.bad
	}
	s.WriteString(st.label.Render("Drift") + driftStyle.Render(fmt.Sprintf("%.3e %%", drift)) + "\n")

	s.WriteString("\n" + ProgressBar(float64(m.playHead+1)/float64(len(m.frames)), 30) + "\n")

	if upto := m.totals[:m.playHead+1]; len(upto) > 1 {
		chart := asciigraph.Plot(upto, asciigraph.Height(5), asciigraph.Width(26), asciigraph.Caption("total energy"))
		s.WriteString(st.graph.Render(chart) + "\n")
		s.WriteString(st.label.Render("Kinetic") + Sparkline(m.series.Kinetic[:m.playHead+1], 30) + "\n")
	}

	if m.status != "" {
		s.WriteString("\n" + st.value.Render(m.status) + "\n")
	}
	s.WriteString(st.help.Render("SPC:Pause [ ]:Step M:2D/3D S:Save SVG ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  [ / ]    - Step back / forward      ║
║  R, Home  - Jump to first frame      ║
║  End      - Jump to last frame       ║
║  M        - Toggle 2D / 3D           ║
║  x y z    - Rotate (shift reverses)  ║
║  + / -    - Zoom in / out            ║
║  T        - Cycle themes             ║
║  S        - Save frame as SVG        ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
`

// Play runs the player full screen until the user quits.
func Play(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
