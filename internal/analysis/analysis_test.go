package analysis_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbodyviz/internal/analysis"
	"github.com/san-kum/nbodyviz/internal/render"
	"github.com/san-kum/nbodyviz/internal/storage"
	"github.com/san-kum/nbodyviz/internal/trajectory"
	"github.com/san-kum/nbodyviz/internal/video"
)

// table builds a trajectory of 2 particles over 4 frames. Particle p in
// frame f carries kinetic 10f+p+1 and potential twice that, negated.
func table(frames int) string {
	var b strings.Builder
	b.WriteString("NumP,dt,Ndt,Precision, , ,\n")
	b.WriteString("2,1.000000,8,2,1.000000e+02,1.000000e+00,\n")
	b.WriteString("x,y,z,t,Ek,Ep,\n")
	for f := 0; f < frames; f++ {
		for p := 0; p < 2; p++ {
			ke := float64(10*f + p + 1)
			fmt.Fprintf(&b, "%e,%e,%e,%e,%e,%e,\n", float64(p), float64(-p), float64(f), float64(2*f), ke, -2*ke)
		}
	}
	return b.String()
}

type fakePlotter struct {
	mu     sync.Mutex
	paths  []string
	failOn string
}

func (p *fakePlotter) Plot(s render.Scene, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn != "" && strings.HasSuffix(path, p.failOn) {
		return errors.New("backend exploded")
	}
	p.paths = append(p.paths, filepath.Base(path))
	return nil
}

func (p *fakePlotter) sorted() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := append([]string(nil), p.paths...)
	sort.Strings(out)
	return out
}

type fakeEncoder struct {
	calls   int
	pattern string
	rate    int
	err     error
}

func (e *fakeEncoder) Encode(ctx context.Context, frameRate int, pattern, outputPath string) error {
	e.calls++
	e.rate, e.pattern = frameRate, pattern
	return e.err
}

var _ = Describe("Analyze", func() {
	var (
		ctx     context.Context
		out     string
		plotter *fakePlotter
		encoder *fakeEncoder
		logger  *log.Logger
		opts    analysis.Options
	)

	BeforeEach(func() {
		ctx = context.Background()
		out = GinkgoT().TempDir()
		plotter = &fakePlotter{}
		encoder = &fakeEncoder{}
		logger = log.New(GinkgoWriter)
		opts = analysis.Options{
			Title:   "cluster",
			Out:     out,
			Plotter: plotter,
			Encoder: encoder,
		}
	})

	run := func(src string) (*analysis.Result, error) {
		return analysis.Analyze(ctx, strings.NewReader(src), opts, logger)
	}

	It("accumulates energy for every frame in order", func() {
		res, err := run(table(4))
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Frames).To(Equal(4))
		Expect(res.Series.Kinetic).To(Equal([]float64{3, 23, 43, 63}))
		Expect(res.Series.Potential).To(Equal([]float64{-6, -46, -86, -126}))
		Expect(res.Summary.Initial).To(Equal(-3.0))
		Expect(res.Summary.Final).To(Equal(-63.0))
		Expect(res.Summary.PercentChange).To(BeNumerically("~", -2000, 1e-9))
		Expect(res.Rendered).To(BeZero())
		Expect(plotter.paths).To(BeEmpty())
	})

	It("writes the energy report when asked", func() {
		opts.Energy = true
		res, err := run(table(4))
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Report).To(Equal(filepath.Join(out, "Energycluster.png")))
		Expect(res.Report).To(BeAnExistingFile())
	})

	It("renders one zero-padded plot per frame", func() {
		opts.Mode = render.Mode2D
		res, err := run(table(4))
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Rendered).To(Equal(4))
		Expect(plotter.paths).To(Equal([]string{"Plot00000.png", "Plot00001.png", "Plot00002.png", "Plot00003.png"}))
		Expect(res.Pattern).To(Equal(filepath.Join(out, "plots", "Plot%05d.png")))
	})

	It("renders only the first frames up to the limit but still accumulates all", func() {
		opts.Mode = render.Mode3D
		opts.Number = 2
		res, err := run(table(4))
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Rendered).To(Equal(2))
		Expect(res.Frames).To(Equal(4))
		Expect(res.Series.Len()).To(Equal(4))
		Expect(plotter.paths).To(Equal([]string{"Plot00000.png", "Plot00001.png"}))
	})

	DescribeTable("keeps numbering and energies independent of worker count",
		func(workers int) {
			opts.Mode = render.Mode2D
			opts.Workers = workers
			res, err := run(table(4))
			Expect(err).NotTo(HaveOccurred())

			Expect(plotter.sorted()).To(Equal([]string{"Plot00000.png", "Plot00001.png", "Plot00002.png", "Plot00003.png"}))
			Expect(res.Series.Kinetic).To(Equal([]float64{3, 23, 43, 63}))
		},
		Entry("sequential", 1),
		Entry("two workers", 2),
		Entry("more workers than frames", 8),
	)

	It("assembles a video from rendered frames", func() {
		opts.Mode = render.Mode2D
		opts.Video = true
		opts.FrameRate = 24
		res, err := run(table(4))
		Expect(err).NotTo(HaveOccurred())

		Expect(encoder.calls).To(Equal(1))
		Expect(encoder.rate).To(Equal(24))
		Expect(encoder.pattern).To(Equal(res.Pattern))
		Expect(res.Video).To(Equal(filepath.Join(out, "cluster.mp4")))
	})

	It("skips the video when nothing was rendered", func() {
		opts.Video = true
		res, err := run(table(4))
		Expect(err).NotTo(HaveOccurred())

		Expect(encoder.calls).To(BeZero())
		Expect(res.Video).To(BeEmpty())
	})

	It("surfaces encoder failure as an encoding error", func() {
		opts.Mode = render.Mode2D
		opts.Video = true
		encoder.err = errors.New("exit status 1")
		_, err := run(table(4))

		Expect(err).To(MatchError(video.ErrEncoding))
		Expect(encoder.calls).To(Equal(1))
	})

	It("surfaces plotting failure as a rendering error", func() {
		opts.Mode = render.Mode2D
		opts.Workers = 3
		plotter.failOn = "Plot00002.png"
		_, err := run(table(4))

		Expect(err).To(MatchError(render.ErrRendering))
		var rerr *render.RenderError
		Expect(errors.As(err, &rerr)).To(BeTrue())
		Expect(rerr.Frame).To(Equal(2))
	})

	It("rejects a trajectory whose last frame is partial", func() {
		src := table(4)
		src = src[:strings.LastIndex(strings.TrimSuffix(src, "\n"), "\n")+1]
		_, err := run(src)

		Expect(err).To(MatchError(trajectory.ErrTruncatedTrajectory))
	})

	It("rejects malformed metadata", func() {
		_, err := run("NumP,dt\nmany,1\nx\n")
		Expect(err).To(MatchError(trajectory.ErrMalformedInput))
	})

	It("stops between frames when cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		ctx = cctx
		opts.Mode = render.Mode2D

		_, err := run(table(4))
		Expect(err).To(MatchError(context.Canceled))
		Expect(plotter.paths).To(BeEmpty())
	})

	It("requires a title", func() {
		opts.Title = ""
		_, err := run(table(4))
		Expect(err).To(MatchError(analysis.ErrNoTitle))
	})

	It("rejects titles that escape the output directory", func() {
		for _, title := range []string{"../x", "a/b", ".."} {
			opts.Title = title
			_, err := run(table(4))
			Expect(err).To(MatchError(storage.ErrInvalidTitle), title)
		}
		entries, err := os.ReadDir(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("records the run in the store", func() {
		opts.Mode = render.Mode3D
		opts.Energy = true
		opts.Store = storage.New(filepath.Join(out, storage.DefaultDir))
		res, err := run(table(4))
		Expect(err).NotTo(HaveOccurred())

		m, err := opts.Store.Load("cluster")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Frames).To(Equal(4))
		Expect(m.Mode).To(Equal("3D"))
		Expect(m.Report).To(Equal(res.Report))
		Expect(m.Summary.Final).To(Equal(res.Summary.Final))

		series, err := opts.Store.LoadSeries("cluster")
		Expect(err).NotTo(HaveOccurred())
		Expect(series.Kinetic).To(Equal(res.Series.Kinetic))
	})
})

var _ = Describe("Run", func() {
	It("reads the trajectory from disk and plots with gonum", func() {
		dir := GinkgoT().TempDir()
		data := filepath.Join(dir, "data.txt")
		Expect(os.WriteFile(data, []byte(table(4)), 0644)).To(Succeed())

		res, err := analysis.Run(context.Background(), analysis.Options{
			Title:  "disk",
			Data:   data,
			Mode:   render.Mode2D,
			Number: 1,
			Out:    dir,
			Width:  320,
			Height: 180,
		}, log.New(GinkgoWriter))
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Rendered).To(Equal(1))
		Expect(filepath.Join(dir, "plots", "Plot00000.png")).To(BeAnExistingFile())
	})

	It("reports a missing trajectory as an I/O error", func() {
		_, err := analysis.Run(context.Background(), analysis.Options{
			Title: "missing",
			Data:  filepath.Join(GinkgoT().TempDir(), "nope.txt"),
		}, log.New(GinkgoWriter))
		Expect(err).To(MatchError(trajectory.ErrIO))
	})
})
