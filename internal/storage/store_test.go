package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/nbodyviz/internal/energy"
	"github.com/san-kum/nbodyviz/internal/report"
	"github.com/san-kum/nbodyviz/internal/trajectory"
)

var meta = trajectory.Metadata{ParticleCount: 2, Timestep: 1, StepCount: 4, Decimation: 2, HalfExtent: 100, Softening: 1}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	series := &energy.Series{}
	series.Append(1.0, -3.0)
	series.Append(1.25e30, -2.5e30)
	sum, err := report.Build(series, meta)
	if err != nil {
		t.Fatal(err)
	}

	m := Manifest{
		Title:    "cluster",
		Data:     "data.txt",
		Metadata: meta,
		Frames:   2,
		Mode:     "3D",
		Rendered: 2,
		Summary:  &sum,
	}
	if err := st.Save(m, series); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := st.Load("cluster")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Metadata != meta {
		t.Errorf("metadata mismatch: %+v", loaded.Metadata)
	}
	if loaded.Mode != "3D" || loaded.Frames != 2 {
		t.Errorf("unexpected manifest %+v", loaded)
	}
	if loaded.Summary == nil || loaded.Summary.Final != sum.Final {
		t.Errorf("summary not stored: %+v", loaded.Summary)
	}
	if loaded.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	back, err := st.LoadSeries("cluster")
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if back.Len() != 2 {
		t.Fatalf("expected 2 frames, got %d", back.Len())
	}
	for i := 0; i < 2; i++ {
		if back.Kinetic[i] != series.Kinetic[i] || back.Potential[i] != series.Potential[i] {
			t.Errorf("frame %d: got (%v, %v), want (%v, %v)", i,
				back.Kinetic[i], back.Potential[i], series.Kinetic[i], series.Potential[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"old", "new"} {
		m := Manifest{Title: title, Metadata: meta, Timestamp: base.Add(time.Duration(i) * time.Hour)}
		if err := st.Save(m, nil); err != nil {
			t.Fatal(err)
		}
	}
	// stray entries are skipped
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Title != "new" || runs[1].Title != "old" {
		t.Errorf("expected newest first, got %s, %s", runs[0].Title, runs[1].Title)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "none")).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := st.Save(Manifest{Title: "bare", Metadata: meta}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadSeries("bare"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing series, got %v", err)
	}
}

func TestStoreInvalidTitle(t *testing.T) {
	parent := t.TempDir()
	st := New(filepath.Join(parent, DefaultDir))

	tests := []string{"", "..", "../escape", "a/b", `a\b`, "x..y"}
	for _, title := range tests {
		t.Run(title, func(t *testing.T) {
			if err := st.Save(Manifest{Title: title}, &energy.Series{}); !errors.Is(err, ErrInvalidTitle) {
				t.Errorf("Save: expected ErrInvalidTitle, got %v", err)
			}
			if _, err := st.Load(title); !errors.Is(err, ErrInvalidTitle) {
				t.Errorf("Load: expected ErrInvalidTitle, got %v", err)
			}
			if _, err := st.LoadSeries(title); !errors.Is(err, ErrInvalidTitle) {
				t.Errorf("LoadSeries: expected ErrInvalidTitle, got %v", err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(parent, "escape")); !os.IsNotExist(err) {
		t.Errorf("run written outside the store: %v", err)
	}
}

func TestValidateTitle(t *testing.T) {
	for _, title := range []string{"cluster", "run-01", "v1.2", "Globular Cluster"} {
		if err := ValidateTitle(title); err != nil {
			t.Errorf("%q rejected: %v", title, err)
		}
	}
}
