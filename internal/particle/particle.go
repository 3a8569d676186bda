package particle

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrInvalidCluster indicates sampling parameters that violate the cluster invariants.
	ErrInvalidCluster = errors.New("particle: invalid cluster parameters")

	// ErrIO indicates the initial-condition sink or source failed.
	ErrIO = errors.New("particle: i/o failure")

	// ErrMalformed indicates an initial-condition file that cannot be parsed.
	ErrMalformed = errors.New("particle: malformed initial conditions")
)

// State is the initial state of one particle.
type State struct {
	Mass     float64
	Position r3.Vec
	Velocity r3.Vec
}

// Summary describes a set of initial states.
type Summary struct {
	Count         int
	TotalMass     float64
	MinMass       float64
	MaxMass       float64
	CenterOfMass  r3.Vec
	MaxRadius     float64 // from the centre of mass
	BulkVelocity  r3.Vec  // mass weighted
	CentralToRest float64 // mass ratio of the first state to all others
}

func Summarize(states []State) Summary {
	s := Summary{Count: len(states)}
	if len(states) == 0 {
		return s
	}

	s.MinMass, s.MaxMass = states[0].Mass, states[0].Mass
	var com, mom r3.Vec
	for _, st := range states {
		s.TotalMass += st.Mass
		if st.Mass < s.MinMass {
			s.MinMass = st.Mass
		}
		if st.Mass > s.MaxMass {
			s.MaxMass = st.Mass
		}
		com = r3.Add(com, r3.Scale(st.Mass, st.Position))
		mom = r3.Add(mom, r3.Scale(st.Mass, st.Velocity))
	}
	if s.TotalMass > 0 {
		s.CenterOfMass = r3.Scale(1/s.TotalMass, com)
		s.BulkVelocity = r3.Scale(1/s.TotalMass, mom)
	}

	for _, st := range states {
		if d := r3.Norm(r3.Sub(st.Position, s.CenterOfMass)); d > s.MaxRadius {
			s.MaxRadius = d
		}
	}

	if rest := s.TotalMass - states[0].Mass; rest > 0 {
		s.CentralToRest = states[0].Mass / rest
	}
	return s
}
