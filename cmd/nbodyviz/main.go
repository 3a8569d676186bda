package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/nbodyviz/internal/analysis"
	"github.com/san-kum/nbodyviz/internal/config"
	"github.com/san-kum/nbodyviz/internal/logging"
	"github.com/san-kum/nbodyviz/internal/particle"
	"github.com/san-kum/nbodyviz/internal/render"
	"github.com/san-kum/nbodyviz/internal/report"
	"github.com/san-kum/nbodyviz/internal/storage"
	"github.com/san-kum/nbodyviz/internal/trajectory"
	"github.com/san-kum/nbodyviz/internal/video"
	"github.com/san-kum/nbodyviz/internal/viz"
)

var (
	logLevel  string
	logFormat string
	logger    *log.Logger

	configFile string
	outDir     string

	// analyze
	dataPath  string
	plotMode  string
	energyOut bool
	videoOut  bool
	frameRate int
	number    int
	workers   int
	width     int
	height    int
	ffmpegBin string
	quality   int

	// generate
	preset       string
	seed         int64
	particlesOut string
	count        int
	centerX      float64
	centerY      float64
	centerZ      float64
	posRange     float64
	velRange     float64
	massMin      float64
	massMax      float64
	centralMass  float64
	driftX       float64
	driftY       float64
	driftZ       float64
	randomizeVel bool

	// play
	playMode     string
	theme        string
	snapshotsDir string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "nbodyviz",
		Short:         "n-body initial conditions and trajectory analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(os.Stderr, logLevel, logFormat)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.DefaultFormat, "log format (text, json, logfmt)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [title]",
		Short: "plot frames, report energy drift and assemble a video",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				cmd.Usage()
				return fmt.Errorf("analyze needs exactly one run title, got %d", len(args))
			}
			return nil
		},
		RunE: runAnalyze,
	}
	analyzeCmd.Flags().StringVar(&dataPath, "data", config.DefaultData, "trajectory file")
	analyzeCmd.Flags().StringVar(&plotMode, "plots", "", "plot every frame (2D or 3D)")
	analyzeCmd.Flags().BoolVar(&energyOut, "energy", false, "write the energy conservation report")
	analyzeCmd.Flags().BoolVar(&videoOut, "video", false, "assemble the plots into <title>.mp4")
	analyzeCmd.Flags().IntVar(&frameRate, "framerate", config.DefaultFrameRate, "video frame rate")
	analyzeCmd.Flags().IntVar(&number, "number", 0, "plot at most this many frames (0 = all)")
	analyzeCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "parallel plot workers")
	analyzeCmd.Flags().IntVar(&width, "width", config.DefaultWidth, "plot width in pixels")
	analyzeCmd.Flags().IntVar(&height, "height", config.DefaultHeight, "plot height in pixels")
	analyzeCmd.Flags().StringVar(&ffmpegBin, "ffmpeg", config.DefaultFFmpeg, "video encoder binary")
	analyzeCmd.Flags().IntVar(&quality, "quality", config.DefaultQuality, "ffmpeg -qscale value (lower is better)")
	analyzeCmd.Flags().StringVar(&outDir, "out", config.DefaultOut, "output directory")
	analyzeCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "sample initial conditions for a cluster around a central body",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	def := config.GetPreset(config.DefaultPreset)
	generateCmd.Flags().StringVar(&preset, "preset", config.DefaultPreset, "starting preset")
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	generateCmd.Flags().StringVar(&particlesOut, "out", config.DefaultParticles, "output file")
	generateCmd.Flags().IntVar(&count, "count", def.Count, "sampled particles (central body excluded)")
	generateCmd.Flags().Float64Var(&centerX, "center-x", def.Center.X, "cluster center x (m)")
	generateCmd.Flags().Float64Var(&centerY, "center-y", def.Center.Y, "cluster center y (m)")
	generateCmd.Flags().Float64Var(&centerZ, "center-z", def.Center.Z, "cluster center z (m)")
	generateCmd.Flags().Float64Var(&posRange, "position-range", def.PositionRange, "position half-width (m)")
	generateCmd.Flags().Float64Var(&velRange, "velocity-range", def.VelocityRange, "velocity half-width (m/s), with --randomize-velocity")
	generateCmd.Flags().Float64Var(&massMin, "mass-min", def.MassMin, "minimum mass (kg)")
	generateCmd.Flags().Float64Var(&massMax, "mass-max", def.MassMax, "maximum mass (kg)")
	generateCmd.Flags().Float64Var(&centralMass, "central-mass", def.CentralMass, "central body mass (kg)")
	generateCmd.Flags().Float64Var(&driftX, "drift-x", def.Drift.X, "bulk velocity x (m/s)")
	generateCmd.Flags().Float64Var(&driftY, "drift-y", def.Drift.Y, "bulk velocity y (m/s)")
	generateCmd.Flags().Float64Var(&driftZ, "drift-z", def.Drift.Z, "bulk velocity z (m/s)")
	generateCmd.Flags().BoolVar(&randomizeVel, "randomize-velocity", false, "draw each velocity from drift ± velocity-range")
	generateCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list sampler presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	infoCmd := &cobra.Command{
		Use:   "info [data]",
		Short: "print trajectory metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showInfo,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [particles]",
		Short: "summarize an initial-conditions file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  inspectParticles,
	}

	playCmd := &cobra.Command{
		Use:   "play [data]",
		Short: "replay a trajectory in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlay,
	}
	playCmd.Flags().StringVar(&playMode, "mode", "2D", "projection (2D or 3D)")
	playCmd.Flags().IntVar(&frameRate, "framerate", config.DefaultFrameRate, "frames per second")
	playCmd.Flags().StringVar(&theme, "theme", viz.ThemeNames()[0], "color theme")
	playCmd.Flags().StringVar(&snapshotsDir, "snapshots", ".", "directory for SVG snapshots")

	runsCmd := &cobra.Command{
		Use:   "runs [title]",
		Short: "list recorded runs, or show one run's energy report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listRuns,
	}
	runsCmd.Flags().StringVar(&outDir, "out", config.DefaultOut, "output directory the runs were written to")

	rootCmd.AddCommand(analyzeCmd, generateCmd, presetsCmd, infoCmd, inspectCmd, playCmd, runsCmd)

	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error(err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	title := args[0]

	var file *config.Config
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		file = cfg
	}
	// CLI flags override config
	a := config.ResolveAnalysis(file, config.AnalysisConfig{
		Data:      dataPath,
		Plots:     plotMode,
		Energy:    energyOut,
		Video:     videoOut,
		FrameRate: frameRate,
		Number:    number,
		Workers:   workers,
		Out:       outDir,
		Width:     width,
		Height:    height,
		FFmpeg:    ffmpegBin,
		Quality:   quality,
	}, cmd.Flags().Changed)

	mode, err := render.ParseMode(a.Plots)
	if err != nil {
		return err
	}
	if a.Video && mode == render.ModeNone {
		logger.Warn("--video needs --plots, no video will be made")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := video.NewFFmpeg()
	enc.Binary = a.FFmpeg
	enc.Quality = a.Quality

	res, err := analysis.Run(ctx, analysis.Options{
		Title:     title,
		Data:      a.Data,
		Mode:      mode,
		Energy:    a.Energy,
		Video:     a.Video,
		FrameRate: a.FrameRate,
		Number:    a.Number,
		Workers:   a.Workers,
		Out:       a.Out,
		Width:     a.Width,
		Height:    a.Height,
		Camera:    a.Camera.Camera(),
		Encoder:   enc,
		Store:     storage.New(filepath.Join(a.Out, storage.DefaultDir)),
	}, logger)
	if err != nil {
		return err
	}

	if a.Energy {
		fmt.Println(report.Terminal(res.Series, res.Summary))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "frames\t%d\n", res.Frames)
	if res.Rendered > 0 {
		fmt.Fprintf(w, "plots\t%d (%s)\n", res.Rendered, res.Pattern)
	}
	if res.Report != "" {
		fmt.Fprintf(w, "report\t%s\n", res.Report)
	}
	if res.Video != "" {
		fmt.Fprintf(w, "video\t%s\n", res.Video)
	}
	return w.Flush()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	var file *config.Config
	if configFile != "" {
		fc, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		file = fc
	}

	// preset < config file < explicit flags
	cfg, err := config.ResolveGenerate(preset, file, config.GenerateConfig{
		Count:             count,
		Center:            r3.Vec{X: centerX, Y: centerY, Z: centerZ},
		PositionRange:     posRange,
		VelocityRange:     velRange,
		MassMin:           massMin,
		MassMax:           massMax,
		CentralMass:       centralMass,
		Drift:             r3.Vec{X: driftX, Y: driftY, Z: driftZ},
		RandomizeVelocity: randomizeVel,
		Seed:              seed,
		Out:               particlesOut,
	}, cmd.Flags().Changed)
	if err != nil {
		return err
	}

	s := cfg.Seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(s))

	states, err := particle.Generate(rng, cfg.Cluster())
	if err != nil {
		return err
	}
	if err := particle.WriteFile(cfg.Out, states); err != nil {
		return err
	}

	logger.Info("wrote initial conditions", "path", cfg.Out, "particles", len(states), "seed", s)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOUNT\tCENTER (m)\tRANGE (m)\tMASS (kg)\tVELOCITY")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		vel := fmt.Sprintf("drift %.1e", p.Drift.Y)
		if p.RandomizeVelocity {
			vel += fmt.Sprintf(" ± %.1e", p.VelocityRange)
		}
		fmt.Fprintf(w, "%s\t%d\t(%.1e, %.1e, %.1e)\t%.1e\t%.1e..%.1e\t%s\n",
			name, p.Count, p.Center.X, p.Center.Y, p.Center.Z, p.PositionRange, p.MassMin, p.MassMax, vel)
	}
	return w.Flush()
}

func showInfo(cmd *cobra.Command, args []string) error {
	path := config.DefaultData
	if len(args) > 0 {
		path = args[0]
	}

	meta, err := trajectory.ReadMetadata(path)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "particles\t%d\n", meta.ParticleCount)
	fmt.Fprintf(w, "timestep\t%g days\n", meta.Timestep)
	fmt.Fprintf(w, "steps\t%d\n", meta.StepCount)
	fmt.Fprintf(w, "recorded every\t%d steps\n", meta.Decimation)
	fmt.Fprintf(w, "frames\t%d\n", meta.FrameCount())
	fmt.Fprintf(w, "simulated\t%.2f years (%.1f days)\n", meta.SimulatedYears(), meta.SimulatedDays())
	fmt.Fprintf(w, "universe size\t%e m\n", meta.HalfExtent)
	fmt.Fprintf(w, "epsilon\t%e m\n", meta.Softening)
	return w.Flush()
}

func inspectParticles(cmd *cobra.Command, args []string) error {
	path := config.DefaultParticles
	if len(args) > 0 {
		path = args[0]
	}

	states, err := particle.ReadFile(path)
	if err != nil {
		return err
	}
	s := particle.Summarize(states)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "particles\t%d\n", s.Count)
	fmt.Fprintf(w, "total mass\t%.3e kg\n", s.TotalMass)
	fmt.Fprintf(w, "mass range\t%.3e .. %.3e kg\n", s.MinMass, s.MaxMass)
	fmt.Fprintf(w, "central/rest\t%.3e\n", s.CentralToRest)
	fmt.Fprintf(w, "center of mass\t(%.3e, %.3e, %.3e) m\n", s.CenterOfMass.X, s.CenterOfMass.Y, s.CenterOfMass.Z)
	fmt.Fprintf(w, "max radius\t%.3e m\n", s.MaxRadius)
	fmt.Fprintf(w, "bulk velocity\t(%.3e, %.3e, %.3e) m/s\n", s.BulkVelocity.X, s.BulkVelocity.Y, s.BulkVelocity.Z)
	return w.Flush()
}

func runPlay(cmd *cobra.Command, args []string) error {
	path := config.DefaultData
	if len(args) > 0 {
		path = args[0]
	}

	mode, err := render.ParseMode(playMode)
	if err != nil {
		return err
	}

	meta, frames, err := trajectory.DecodeFile(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded trajectory", "path", path, "frames", len(frames))

	title := filepath.Base(path)
	title = title[:len(title)-len(filepath.Ext(title))]

	return viz.Play(viz.NewPlayer(frames, meta, viz.PlayerOptions{
		Title:      title,
		Mode:       mode,
		FrameRate:  frameRate,
		Theme:      theme,
		SnapshotTo: snapshotsDir,
	}))
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(filepath.Join(outDir, storage.DefaultDir))

	if len(args) == 1 {
		m, err := st.Load(args[0])
		if err != nil {
			return err
		}
		series, err := st.LoadSeries(args[0])
		if err != nil {
			return err
		}
		sum, err := report.Build(series, m.Metadata)
		if err != nil {
			return err
		}
		fmt.Println(report.Terminal(series, sum))
		return nil
	}

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tTIME\tPARTICLES\tFRAMES\tPLOTS\tCHANGE %\tVIDEO")
	for _, run := range runs {
		change := "-"
		if run.Summary != nil {
			change = fmt.Sprintf("%.3e", run.Summary.PercentChange)
		}
		plots := "-"
		if run.Rendered > 0 {
			plots = fmt.Sprintf("%d %s", run.Rendered, run.Mode)
		}
		vid := "-"
		if run.Video != "" {
			vid = run.Video
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			run.Title,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Metadata.ParticleCount,
			run.Frames,
			plots,
			change,
			vid,
		)
	}
	return w.Flush()
}
