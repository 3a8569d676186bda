package particle

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Resolution is the number of evenly spaced values a sampled quantity can
// take across its range.
const Resolution = 1_000_000

const (
	DefaultCentralMass = 1.0e40
	DefaultDriftY      = 1.0e7
)

// Cluster describes a bounded cluster sampled around a dominant central body.
type Cluster struct {
	Count         int
	Center        r3.Vec
	PositionRange float64
	VelocityRange float64
	MassMin       float64
	MassMax       float64
	CentralMass   float64

	// Drift is the velocity every sampled particle starts with. With
	// RandomizeVelocity each component is drawn from Drift ± VelocityRange
	// instead.
	Drift             r3.Vec
	RandomizeVelocity bool
}

// DefaultCluster returns the globular cluster the integrator is usually fed.
func DefaultCluster() Cluster {
	return Cluster{
		Count:         499,
		Center:        r3.Vec{X: 5.0e15},
		PositionRange: 1.0e15,
		VelocityRange: 1.0e2,
		MassMin:       1.0e27,
		MassMax:       1.0e30,
		CentralMass:   DefaultCentralMass,
		Drift:         r3.Vec{Y: DefaultDriftY},
	}
}

func (c Cluster) Validate() error {
	switch {
	case c.Count < 0:
		return fmt.Errorf("%w: negative count %d", ErrInvalidCluster, c.Count)
	case c.MassMin <= 0:
		return fmt.Errorf("%w: minimum mass must be positive, got %g", ErrInvalidCluster, c.MassMin)
	case c.MassMax < c.MassMin:
		return fmt.Errorf("%w: mass range [%g, %g] is empty", ErrInvalidCluster, c.MassMin, c.MassMax)
	case c.PositionRange < 0 || c.VelocityRange < 0:
		return fmt.Errorf("%w: ranges must be non-negative", ErrInvalidCluster)
	case c.CentralMass <= c.MassMax:
		return fmt.Errorf("%w: central mass %g must exceed maximum sampled mass %g", ErrInvalidCluster, c.CentralMass, c.MassMax)
	}
	return nil
}

// Generate samples c.Count particles and prepends the central body, which
// sits at rest at the origin.
func Generate(rng *rand.Rand, c Cluster) ([]State, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	states := make([]State, 0, c.Count+1)
	states = append(states, State{Mass: c.CentralMass})

	for i := 0; i < c.Count; i++ {
		s := State{
			Mass: uniform(rng, c.MassMin, c.MassMax),
			Position: r3.Vec{
				X: around(rng, c.Center.X, c.PositionRange),
				Y: around(rng, c.Center.Y, c.PositionRange),
				Z: around(rng, c.Center.Z, c.PositionRange),
			},
			Velocity: c.Drift,
		}
		if c.RandomizeVelocity {
			s.Velocity = r3.Vec{
				X: around(rng, c.Drift.X, c.VelocityRange),
				Y: around(rng, c.Drift.Y, c.VelocityRange),
				Z: around(rng, c.Drift.Z, c.VelocityRange),
			}
		}
		states = append(states, s)
	}
	return states, nil
}

// uniform draws from [lo, hi] in Resolution steps; both ends are reachable.
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	k := rng.Int63n(Resolution + 1)
	v := lo + (hi-lo)*float64(k)/Resolution
	if v > hi {
		return hi
	}
	return v
}

func around(rng *rand.Rand, center, span float64) float64 {
	return uniform(rng, center-span, center+span)
}
