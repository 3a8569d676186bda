package config

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/nbodyviz/internal/particle"
)

// Presets are named sampler setups. Masses are kg, distances m, speeds m/s.
var Presets = map[string]GenerateConfig{
	"globular": {
		Count: 499, Center: r3.Vec{X: 5e15}, PositionRange: 1e15, VelocityRange: 1e2,
		MassMin: 1e27, MassMax: 1e30, CentralMass: particle.DefaultCentralMass,
		Drift: r3.Vec{Y: particle.DefaultDriftY}, Out: DefaultParticles,
	},
	"sparse": {
		Count: 100, Center: r3.Vec{X: 5e17}, PositionRange: 1e17, VelocityRange: 1e3,
		MassMin: 1e27, MassMax: 1e34, CentralMass: particle.DefaultCentralMass,
		Drift: r3.Vec{Y: particle.DefaultDriftY}, Out: DefaultParticles,
	},
	"small": {
		Count: 50, Center: r3.Vec{X: 1e13}, PositionRange: 2e12, VelocityRange: 1e2,
		MassMin: 1e27, MassMax: 1e30, CentralMass: 1e36,
		Drift: r3.Vec{Y: 1e4}, Out: DefaultParticles,
	},
	"virial": {
		Count: 499, Center: r3.Vec{X: 5e15}, PositionRange: 1e15, VelocityRange: 1e5,
		MassMin: 1e27, MassMax: 1e30, CentralMass: particle.DefaultCentralMass,
		Drift: r3.Vec{Y: particle.DefaultDriftY}, RandomizeVelocity: true, Out: DefaultParticles,
	},
}

// GetPreset returns a copy of the named preset, or nil if there is none.
func GetPreset(name string) *GenerateConfig {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
