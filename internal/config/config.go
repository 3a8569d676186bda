package config

import (
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/nbodyviz/internal/particle"
	"github.com/san-kum/nbodyviz/internal/render"
)

const (
	DefaultData      = "data.txt"
	DefaultOut       = "."
	DefaultFrameRate = 10
	DefaultWorkers   = 1
	DefaultWidth     = 1280
	DefaultHeight    = 720
	DefaultQuality   = 2
	DefaultFFmpeg    = "ffmpeg"
	DefaultParticles = "particles.txt"
	DefaultPreset    = "globular"
)

type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Generate GenerateConfig `yaml:"generate"`
}

type AnalysisConfig struct {
	Data      string       `yaml:"data"`
	Plots     string       `yaml:"plots"`
	Energy    bool         `yaml:"energy"`
	Video     bool         `yaml:"video"`
	FrameRate int          `yaml:"framerate"`
	Number    int          `yaml:"number"`
	Workers   int          `yaml:"workers"`
	Out       string       `yaml:"out"`
	Width     int          `yaml:"width"`
	Height    int          `yaml:"height"`
	FFmpeg    string       `yaml:"ffmpeg"`
	Quality   int          `yaml:"quality"`
	Camera    CameraConfig `yaml:"camera"`
}

type CameraConfig struct {
	RotX float64 `yaml:"rot_x"`
	RotY float64 `yaml:"rot_y"`
	RotZ float64 `yaml:"rot_z"`
	Zoom float64 `yaml:"zoom"`
}

type GenerateConfig struct {
	Count             int     `yaml:"count"`
	Center            r3.Vec  `yaml:"center"`
	PositionRange     float64 `yaml:"position_range"`
	VelocityRange     float64 `yaml:"velocity_range"`
	MassMin           float64 `yaml:"mass_min"`
	MassMax           float64 `yaml:"mass_max"`
	CentralMass       float64 `yaml:"central_mass"`
	Drift             r3.Vec  `yaml:"drift"`
	RandomizeVelocity bool    `yaml:"randomize_velocity"`
	Seed              int64   `yaml:"seed"`
	Out               string  `yaml:"out"`
}

func DefaultConfig() *Config {
	cam := render.DefaultCamera()
	return &Config{
		Analysis: AnalysisConfig{
			Data:      DefaultData,
			FrameRate: DefaultFrameRate,
			Workers:   DefaultWorkers,
			Out:       DefaultOut,
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			FFmpeg:    DefaultFFmpeg,
			Quality:   DefaultQuality,
			Camera:    CameraConfig{RotX: cam.RotX, RotY: cam.RotY, RotZ: cam.RotZ, Zoom: cam.Zoom},
		},
		Generate: *GetPreset(DefaultPreset),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c CameraConfig) Camera() render.Camera {
	return render.Camera{RotX: c.RotX, RotY: c.RotY, RotZ: c.RotZ, Zoom: c.Zoom}
}

func (g GenerateConfig) Cluster() particle.Cluster {
	return particle.Cluster{
		Count:             g.Count,
		Center:            g.Center,
		PositionRange:     g.PositionRange,
		VelocityRange:     g.VelocityRange,
		MassMin:           g.MassMin,
		MassMax:           g.MassMax,
		CentralMass:       g.CentralMass,
		Drift:             g.Drift,
		RandomizeVelocity: g.RandomizeVelocity,
	}
}
