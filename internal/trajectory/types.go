package trajectory

import (
	"gonum.org/v1/gonum/spatial/r3"
)

const daysPerYear = 365.25

// Metadata holds the run constants decoded from the metadata row.
type Metadata struct {
	ParticleCount int     `json:"particle_count" yaml:"particle_count"`
	Timestep      float64 `json:"timestep" yaml:"timestep"` // days
	StepCount     int     `json:"step_count" yaml:"step_count"`
	Decimation    int     `json:"decimation" yaml:"decimation"` // every Nth step is recorded
	HalfExtent    float64 `json:"half_extent" yaml:"half_extent"`
	Softening     float64 `json:"softening" yaml:"softening"`
}

// FrameCount is the number of frames a complete table holds.
func (m Metadata) FrameCount() int {
	if m.Decimation <= 0 {
		return 0
	}
	return m.StepCount / m.Decimation
}

// RecordCount is the number of data rows a complete table holds.
func (m Metadata) RecordCount() int {
	return m.FrameCount() * m.ParticleCount
}

// FrameTime converts a frame index to simulated days.
func (m Metadata) FrameTime(index int) float64 {
	return float64(index) * float64(m.Decimation) * m.Timestep
}

func (m Metadata) SimulatedDays() float64 {
	return float64(m.StepCount) * m.Timestep
}

func (m Metadata) SimulatedYears() float64 {
	return m.SimulatedDays() / daysPerYear
}

// Validate checks the metadata invariants.
func (m Metadata) Validate() error {
	switch {
	case m.ParticleCount <= 0:
		return malformed(MetadataRow, 0, "particle count must be positive, got %d", m.ParticleCount)
	case m.Decimation <= 0:
		return malformed(MetadataRow, 3, "decimation factor must be positive, got %d", m.Decimation)
	case m.StepCount < m.Decimation:
		return malformed(MetadataRow, 2, "step count %d is below decimation factor %d", m.StepCount, m.Decimation)
	}
	return nil
}

// Record is one particle at one recorded step.
type Record struct {
	Position  r3.Vec
	Time      float64
	Kinetic   float64
	Potential float64
}

// Frame is a snapshot of every particle at one recorded step.
type Frame struct {
	Index   int
	Time    float64
	Records []Record
}

// Positions returns the particle positions in record order.
func (f Frame) Positions() []r3.Vec {
	ps := make([]r3.Vec, len(f.Records))
	for i, r := range f.Records {
		ps[i] = r.Position
	}
	return ps
}
