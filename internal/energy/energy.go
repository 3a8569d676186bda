package energy

import (
	"errors"
	"fmt"

	"github.com/san-kum/nbodyviz/internal/trajectory"
)

// ErrOutOfOrder indicates a frame observed out of ascending index order.
var ErrOutOfOrder = errors.New("energy: frame out of order")

// Sum reduces records to their kinetic and potential totals.
func Sum(records []trajectory.Record) (kinetic, potential float64) {
	for _, r := range records {
		kinetic += r.Kinetic
		potential += r.Potential
	}
	return kinetic, potential
}

// Accumulate sums the energy contributions of every record in f.
func Accumulate(f trajectory.Frame) (kinetic, potential float64) {
	return Sum(f.Records)
}

// Series holds per-frame energy sums indexed by frame.
type Series struct {
	Kinetic   []float64 `json:"kinetic"`
	Potential []float64 `json:"potential"`
}

func (s *Series) Len() int { return len(s.Kinetic) }

func (s *Series) Append(kinetic, potential float64) {
	s.Kinetic = append(s.Kinetic, kinetic)
	s.Potential = append(s.Potential, potential)
}

func (s *Series) Total(i int) float64 {
	return s.Kinetic[i] + s.Potential[i]
}

func (s *Series) Totals() []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = s.Total(i)
	}
	return out
}

// Times maps frame indices to simulated days.
func (s *Series) Times(meta trajectory.Metadata) []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = meta.FrameTime(i)
	}
	return out
}

// Accumulator builds a Series one frame at a time in ascending order.
type Accumulator struct {
	series Series
}

// maxCapacity bounds the preallocation, since callers pass frame counts
// read from file metadata.
const maxCapacity = 1024

func NewAccumulator(capacity int) *Accumulator {
	capacity = max(0, min(capacity, maxCapacity))
	return &Accumulator{
		series: Series{
			Kinetic:   make([]float64, 0, capacity),
			Potential: make([]float64, 0, capacity),
		},
	}
}

// Observe appends f's sums. Frames must arrive with indices 0, 1, 2, ...
func (a *Accumulator) Observe(f trajectory.Frame) error {
	if f.Index != a.series.Len() {
		return fmt.Errorf("%w: got frame %d, expected %d", ErrOutOfOrder, f.Index, a.series.Len())
	}
	a.series.Append(Accumulate(f))
	return nil
}

func (a *Accumulator) Series() *Series { return &a.series }

func (a *Accumulator) Reset() {
	a.series.Kinetic = a.series.Kinetic[:0]
	a.series.Potential = a.series.Potential[:0]
}
