package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/nbodyviz/internal/energy"
	"github.com/san-kum/nbodyviz/internal/report"
	"github.com/san-kum/nbodyviz/internal/trajectory"
)

const (
	DefaultDir   = "runs"
	manifestFile = "run.json"
	seriesFile   = "energy.csv"
)

var (
	ErrNotFound     = errors.New("storage: run not found")
	ErrInvalidTitle = errors.New("storage: invalid run title")
)

var seriesHeader = []string{"frame", "time", "kinetic", "potential", "total"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(title string) string {
	return filepath.Join(s.baseDir, title)
}

// ValidateTitle rejects titles that are empty or would resolve outside a
// single directory entry.
func ValidateTitle(title string) error {
	switch {
	case title == "":
		return fmt.Errorf("%w: empty", ErrInvalidTitle)
	case strings.ContainsAny(title, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidTitle, title)
	case strings.Contains(title, ".."):
		return fmt.Errorf("%w: %q contains \"..\"", ErrInvalidTitle, title)
	}
	return nil
}

// Manifest records what one analysis run read and produced.
type Manifest struct {
	Title     string              `json:"title"`
	Timestamp time.Time           `json:"timestamp"`
	Data      string              `json:"data"`
	Metadata  trajectory.Metadata `json:"metadata"`
	Frames    int                 `json:"frames"`
	Mode      string              `json:"mode,omitempty"`
	Rendered  int                 `json:"rendered"`
	Pattern   string              `json:"pattern,omitempty"`
	Report    string              `json:"report,omitempty"`
	Video     string              `json:"video,omitempty"`
	Summary   *report.Summary     `json:"summary,omitempty"`
}

// Save writes the manifest and, when series is non-nil, the per-frame
// energies. An existing run with the same title is overwritten.
func (s *Store) Save(m Manifest, series *energy.Series) error {
	if err := ValidateTitle(m.Title); err != nil {
		return err
	}
	runDir := s.Dir(m.Title)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}

	metaFile, err := os.Create(filepath.Join(runDir, manifestFile))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		metaFile.Close()
		return err
	}
	if err := metaFile.Close(); err != nil {
		return err
	}

	if series == nil {
		return nil
	}
	return writeSeries(filepath.Join(runDir, seriesFile), series, m.Metadata)
}

func writeSeries(path string, series *energy.Series, meta trajectory.Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeSeries(f, series, meta); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeSeries(out io.Writer, series *energy.Series, meta trajectory.Metadata) error {
	w := csv.NewWriter(out)
	if err := w.Write(seriesHeader); err != nil {
		return err
	}
	for i := 0; i < series.Len(); i++ {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(meta.FrameTime(i), 'g', -1, 64),
			strconv.FormatFloat(series.Kinetic[i], 'e', -1, 64),
			strconv.FormatFloat(series.Potential[i], 'e', -1, 64),
			strconv.FormatFloat(series.Total(i), 'e', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable manifest, newest first.
func (s *Store) List() ([]Manifest, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Manifest{}, nil
		}
		return nil, err
	}

	runs := make([]Manifest, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *m)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(title string) (*Manifest, error) {
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir(title), manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, title)
		}
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", title, err)
	}
	return &m, nil
}

// LoadSeries reads back the energies stored by Save.
func (s *Store) LoadSeries(title string) (*energy.Series, error) {
	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.Dir(title), seriesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s has no energy series", ErrNotFound, title)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(seriesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	series := &energy.Series{}
	for i := 1; i < len(records); i++ {
		k, err := strconv.ParseFloat(records[i][2], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", seriesFile, i, err)
		}
		p, err := strconv.ParseFloat(records[i][3], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s row %d: %w", seriesFile, i, err)
		}
		series.Append(k, p)
	}
	return series, nil
}
