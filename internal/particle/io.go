package particle

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Header is the first line of an initial-condition file.
var Header = []string{"Mass", "Posx", "Posy", "Posz", "Velx", "Vely", "Velz"}

// Write serializes states, central body first, one line per particle.
func Write(w io.Writer, states []State) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	for _, s := range states {
		row := []string{
			formatFloat(s.Mass),
			formatFloat(s.Position.X),
			formatFloat(s.Position.Y),
			formatFloat(s.Position.Z),
			formatFloat(s.Velocity.X),
			formatFloat(s.Velocity.Y),
			formatFloat(s.Velocity.Z),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func WriteFile(path string, states []State) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if err := Write(file, states); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Read parses an initial-condition file. The header line is skipped.
func Read(r io.Reader) ([]State, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	states := make([]State, 0)
	for line := 0; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
			}
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
		if line == 0 {
			continue
		}

		s, err := parseState(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, line+1, err)
		}
		states = append(states, s)
	}
	return states, nil
}

func ReadFile(path string) ([]State, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer file.Close()
	return Read(file)
}

func parseState(rec []string) (State, error) {
	if len(rec) < len(Header) {
		return State{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(rec))
	}

	var v [7]float64
	for i := range v {
		f, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err != nil {
			return State{}, fmt.Errorf("field %s: %w", Header[i], err)
		}
		v[i] = f
	}
	if v[0] <= 0 {
		return State{}, fmt.Errorf("mass must be positive, got %g", v[0])
	}

	return State{
		Mass:     v[0],
		Position: r3.Vec{X: v[1], Y: v[2], Z: v[3]},
		Velocity: r3.Vec{X: v[4], Y: v[5], Z: v[6]},
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'e', -1, 64)
}
