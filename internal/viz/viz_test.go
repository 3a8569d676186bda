package viz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/plotter"

	"github.com/san-kum/nbodyviz/internal/render"
	"github.com/san-kum/nbodyviz/internal/trajectory"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testFrames(n int) ([]trajectory.Frame, trajectory.Metadata) {
	meta := trajectory.Metadata{ParticleCount: 2, Timestep: 1, StepCount: n, Decimation: 1, HalfExtent: 10}
	frames := make([]trajectory.Frame, n)
	for i := range frames {
		frames[i] = trajectory.Frame{
			Index: i,
			Time:  float64(i),
			Records: []trajectory.Record{
				{Position: r3.Vec{X: float64(i), Y: 0, Z: 1}, Kinetic: 1, Potential: -2},
				{Position: r3.Vec{X: -5, Y: 5, Z: -5}, Kinetic: 2, Potential: -4},
			},
		}
	}
	return frames, meta
}

func update(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(2, 1)
	if w, h := c.Dots(); w != 4 || h != 4 {
		t.Fatalf("expected 4x4 dots, got %dx%d", w, h)
	}

	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)
	if c.Grid[0][0] != 0x2801 || c.Grid[0][1] != 0x2880 {
		t.Errorf("unexpected cells %U %U", c.Grid[0][0], c.Grid[0][1])
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 1) {
		t.Error("IsSet disagrees with Set")
	}

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("clear left dots behind")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawLine(0, 0, 7, 7)
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("diagonal dot (%d, %d) missing", i, i)
		}
	}
}

func TestCanvasDrawScene(t *testing.T) {
	c := NewCanvas(5, 5)
	c.DrawScene(render.Scene{
		Points: plotter.XYs{{X: -1, Y: 1}, {X: 1, Y: -1}, {X: 3, Y: 0}},
		Min:    plotter.XY{X: -1, Y: -1},
		Max:    plotter.XY{X: 1, Y: 1},
	})

	w, h := c.Dots()
	if !c.IsSet(0, 0) {
		t.Error("top left corner not drawn")
	}
	if !c.IsSet(w-1, h-1) {
		t.Error("bottom right corner not drawn")
	}
}

func TestPlayerPlayback(t *testing.T) {
	frames, meta := testFrames(3)
	m := NewPlayer(frames, meta, PlayerOptions{Title: "run"})

	if !m.Running() || m.PlayHead() != 0 {
		t.Fatal("player should start running at frame 0")
	}

	m = update(m, TickMsg{}, TickMsg{})
	if m.PlayHead() != 2 {
		t.Errorf("expected frame 2, got %d", m.PlayHead())
	}
	m = update(m, TickMsg{})
	if m.PlayHead() != 0 {
		t.Errorf("expected wrap to frame 0, got %d", m.PlayHead())
	}

	m = update(m, key(" "), TickMsg{})
	if m.Running() || m.PlayHead() != 0 {
		t.Error("paused player should not advance")
	}

	m = update(m, key("["))
	if m.PlayHead() != 2 {
		t.Errorf("stepping back from 0 should wrap to 2, got %d", m.PlayHead())
	}
	m = update(m, key("]"), key("]"))
	if m.PlayHead() != 1 {
		t.Errorf("expected frame 1, got %d", m.PlayHead())
	}
}

func TestPlayerCamera(t *testing.T) {
	frames, meta := testFrames(1)
	m := NewPlayer(frames, meta, PlayerOptions{})

	if m.Mode() != render.Mode2D {
		t.Errorf("expected default 2D, got %v", m.Mode())
	}
	m = update(m, key("m"))
	if m.Mode() != render.Mode3D {
		t.Error("m should toggle to 3D")
	}

	before := m.Camera()
	m = update(m, key("x"), key("+"))
	after := m.Camera()
	if after.RotX <= before.RotX || after.Zoom <= before.Zoom {
		t.Errorf("camera not updated: %+v -> %+v", before, after)
	}
	if len(m.Scene().Edges) != 12 {
		t.Error("3D scene should include the box")
	}
}

func TestPlayerView(t *testing.T) {
	frames, meta := testFrames(3)
	m := NewPlayer(frames, meta, PlayerOptions{Title: "cluster"})
	m = update(m, TickMsg{})

	view := m.View()
	for _, want := range []string{"CLUSTER", "Frame", "2 / 3", "Time - 1 days", "Kinetic", "total energy"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = update(m, key("?"))
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("help overlay not shown")
	}
}

func TestPlayerSnapshot(t *testing.T) {
	dir := t.TempDir()
	frames, meta := testFrames(2)
	m := NewPlayer(frames, meta, PlayerOptions{Title: "snap", SnapshotTo: dir})
	m = update(m, key("]"), key("s"))

	path := filepath.Join(dir, "snapFrame00001.svg")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("snapshot is not svg")
	}
	if !strings.Contains(m.View(), "saved") {
		t.Error("status line not shown")
	}
}

func TestPlayerEmpty(t *testing.T) {
	m := NewPlayer(nil, trajectory.Metadata{HalfExtent: 1}, PlayerOptions{})
	m = update(m, TickMsg{}, key("]"))
	if !strings.Contains(m.View(), "no frames") {
		t.Error("empty player should say so")
	}
}

func TestQuit(t *testing.T) {
	frames, meta := testFrames(1)
	_, cmd := NewPlayer(frames, meta, PlayerOptions{}).Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestSparklineAndProgress(t *testing.T) {
	if got := Sparkline([]float64{0, 1}, 10); got != "▁█" {
		t.Errorf("unexpected sparkline %q", got)
	}
	if got := ProgressBar(0.5, 4); got != "██░░" {
		t.Errorf("unexpected progress bar %q", got)
	}
	if ThemeNames()[0] != GetTheme("missing").Name {
		t.Error("unknown theme should fall back to the first")
	}
}
