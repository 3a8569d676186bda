package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/nbodyviz/internal/energy"
	"github.com/san-kum/nbodyviz/internal/render"
	"github.com/san-kum/nbodyviz/internal/report"
	"github.com/san-kum/nbodyviz/internal/storage"
	"github.com/san-kum/nbodyviz/internal/trajectory"
	"github.com/san-kum/nbodyviz/internal/video"
)

var ErrNoTitle = errors.New("analysis: run title is required")

type Options struct {
	Title     string
	Data      string
	Mode      render.Mode
	Energy    bool
	Video     bool
	FrameRate int
	// Number caps how many frames are rendered, counting from the first.
	// Zero renders every frame.
	Number  int
	Workers int
	Out     string
	Width   int
	Height  int
	Camera  render.Camera

	// Plotter and Encoder default to gonum/plot and ffmpeg.
	Plotter render.Plotter
	Encoder video.Encoder
	// Store receives the run manifest when set.
	Store *storage.Store
}

type Result struct {
	Metadata trajectory.Metadata
	Frames   int
	Rendered int
	Series   *energy.Series
	Summary  report.Summary
	Pattern  string
	Report   string
	Video    string
}

func (o *Options) defaults() {
	if o.FrameRate == 0 {
		o.FrameRate = video.DefaultFrameRate
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Out == "" {
		o.Out = "."
	}
	if o.Width <= 0 {
		o.Width = 1280
	}
	if o.Height <= 0 {
		o.Height = 720
	}
	if o.Plotter == nil {
		o.Plotter = render.NewGonumPlotter(o.Width, o.Height)
	}
	if o.Encoder == nil {
		o.Encoder = video.NewFFmpeg()
	}
}

// Run decodes opts.Data and produces every output opts asks for.
func Run(ctx context.Context, opts Options, logger *log.Logger) (*Result, error) {
	f, err := os.Open(opts.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", trajectory.ErrIO, err)
	}
	defer f.Close()
	return Analyze(ctx, f, opts, logger)
}

// Analyze runs the pipeline over a trajectory table read from src. Frames
// are decoded and accumulated in ascending order on the calling goroutine;
// only plotting fans out to opts.Workers goroutines.
func Analyze(ctx context.Context, src io.Reader, opts Options, logger *log.Logger) (*Result, error) {
	if opts.Title == "" {
		return nil, ErrNoTitle
	}
	// the title names output files and the run directory
	if err := storage.ValidateTitle(opts.Title); err != nil {
		return nil, err
	}
	opts.defaults()

	dec, err := trajectory.NewDecoder(src)
	if err != nil {
		return nil, err
	}
	meta := dec.Metadata()
	logger.Info("decoded metadata",
		"title", opts.Title,
		"particles", meta.ParticleCount,
		"timestep", meta.Timestep,
		"steps", meta.StepCount,
		"frames", meta.FrameCount(),
	)

	if err := os.MkdirAll(opts.Out, 0755); err != nil {
		return nil, err
	}

	var rc *render.Context
	if opts.Mode != render.ModeNone {
		rc, err = render.NewContext(render.Options{
			Dir:        filepath.Join(opts.Out, render.DefaultDir),
			Mode:       opts.Mode,
			HalfExtent: meta.HalfExtent,
			Camera:     opts.Camera,
		}, opts.Plotter)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
	}

	res := &Result{Metadata: meta}
	acc := energy.NewAccumulator(meta.FrameCount())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	loopErr := func() error {
		for {
			if err := gctx.Err(); err != nil {
				return err
			}

			frame, err := dec.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if err := acc.Observe(frame); err != nil {
				return err
			}
			res.Frames++
			logger.Debug("frame", "index", frame.Index, "time", frame.Time)

			if rc == nil || (opts.Number > 0 && res.Rendered >= opts.Number) {
				continue
			}
			counter := rc.Reserve()
			res.Rendered++
			g.Go(func() error {
				return rc.RenderAt(frame, counter)
			})
		}
	}()

	// a failed render cancels gctx, so a loop cancellation with a live
	// parent context stands for the render error
	waitErr := g.Wait()
	switch {
	case waitErr != nil && errors.Is(loopErr, context.Canceled) && ctx.Err() == nil:
		return nil, waitErr
	case loopErr != nil:
		return nil, loopErr
	case waitErr != nil:
		return nil, waitErr
	}

	res.Series = acc.Series()
	if rc != nil {
		res.Pattern = rc.Pattern()
		logger.Info("rendered frames", "count", res.Rendered, "mode", opts.Mode, "pattern", res.Pattern)
	}

	res.Summary, err = report.Build(res.Series, meta)
	if err != nil {
		return nil, err
	}
	if opts.Energy {
		res.Report = report.Path(opts.Out, opts.Title)
		if err := report.SavePNG(res.Report, res.Series, meta, res.Summary); err != nil {
			return nil, err
		}
		logger.Info("energy report", "path", res.Report, "change", res.Summary.PercentChange)
	}

	if opts.Video {
		if res.Rendered == 0 {
			logger.Warn("skipping video, no frames were rendered")
		} else {
			res.Video, err = video.Assemble(ctx, opts.Encoder, opts.FrameRate, res.Pattern, opts.Out, opts.Title)
			if err != nil {
				return nil, err
			}
			logger.Info("video", "path", res.Video, "framerate", opts.FrameRate)
		}
	}

	if opts.Store != nil {
		m := storage.Manifest{
			Title:    opts.Title,
			Data:     opts.Data,
			Metadata: meta,
			Frames:   res.Frames,
			Mode:     opts.Mode.String(),
			Rendered: res.Rendered,
			Pattern:  res.Pattern,
			Report:   res.Report,
			Video:    res.Video,
			Summary:  &res.Summary,
		}
		if err := opts.Store.Save(m, res.Series); err != nil {
			return nil, fmt.Errorf("analysis: saving run: %w", err)
		}
	}

	return res, nil
}
