package config

import "fmt"

// Changed reports whether the named command-line flag was set explicitly.
// cobra's cmd.Flags().Changed has this shape.
type Changed func(name string) bool

// Override copies the fields of flags whose flag was set explicitly onto a
// copy of a. Fields without a flag (the camera) keep a's values.
func (a AnalysisConfig) Override(flags AnalysisConfig, changed Changed) AnalysisConfig {
	if changed("data") {
		a.Data = flags.Data
	}
	if changed("plots") {
		a.Plots = flags.Plots
	}
	if changed("energy") {
		a.Energy = flags.Energy
	}
	if changed("video") {
		a.Video = flags.Video
	}
	if changed("framerate") {
		a.FrameRate = flags.FrameRate
	}
	if changed("number") {
		a.Number = flags.Number
	}
	if changed("workers") {
		a.Workers = flags.Workers
	}
	if changed("out") {
		a.Out = flags.Out
	}
	if changed("width") {
		a.Width = flags.Width
	}
	if changed("height") {
		a.Height = flags.Height
	}
	if changed("ffmpeg") {
		a.FFmpeg = flags.FFmpeg
	}
	if changed("quality") {
		a.Quality = flags.Quality
	}
	return a
}

// ResolveAnalysis returns the defaults, replaced by file when given, with
// explicit flags applied last.
func ResolveAnalysis(file *Config, flags AnalysisConfig, changed Changed) AnalysisConfig {
	base := DefaultConfig().Analysis
	if file != nil {
		base = file.Analysis
	}
	return base.Override(flags, changed)
}

// Override copies the fields of flags whose flag was set explicitly onto a
// copy of g.
func (g GenerateConfig) Override(flags GenerateConfig, changed Changed) GenerateConfig {
	if changed("count") {
		g.Count = flags.Count
	}
	if changed("center-x") {
		g.Center.X = flags.Center.X
	}
	if changed("center-y") {
		g.Center.Y = flags.Center.Y
	}
	if changed("center-z") {
		g.Center.Z = flags.Center.Z
	}
	if changed("position-range") {
		g.PositionRange = flags.PositionRange
	}
	if changed("velocity-range") {
		g.VelocityRange = flags.VelocityRange
	}
	if changed("mass-min") {
		g.MassMin = flags.MassMin
	}
	if changed("mass-max") {
		g.MassMax = flags.MassMax
	}
	if changed("central-mass") {
		g.CentralMass = flags.CentralMass
	}
	if changed("drift-x") {
		g.Drift.X = flags.Drift.X
	}
	if changed("drift-y") {
		g.Drift.Y = flags.Drift.Y
	}
	if changed("drift-z") {
		g.Drift.Z = flags.Drift.Z
	}
	if changed("randomize-velocity") {
		g.RandomizeVelocity = flags.RandomizeVelocity
	}
	if changed("seed") {
		g.Seed = flags.Seed
	}
	if changed("out") || g.Out == "" {
		g.Out = flags.Out
	}
	return g
}

// ResolveGenerate layers the sampler settings: the named preset, then the
// config file unless the preset was chosen explicitly, then explicit flags.
func ResolveGenerate(preset string, file *Config, flags GenerateConfig, changed Changed) (GenerateConfig, error) {
	base := GetPreset(preset)
	if base == nil {
		return GenerateConfig{}, fmt.Errorf("unknown preset: %s (available: %v)", preset, ListPresets())
	}
	if file != nil && !changed("preset") {
		base = &file.Generate
	}
	return base.Override(flags, changed), nil
}
