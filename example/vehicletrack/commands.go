package main

import (
	"fmt"
	"image"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	vehicletrack "github.com/swdee/go-vehicletrack"
	"github.com/swdee/go-vehicletrack/classifier"
	"github.com/swdee/go-vehicletrack/features"
	"github.com/swdee/go-vehicletrack/finder"
	"github.com/swdee/go-vehicletrack/geometry"
	"github.com/swdee/go-vehicletrack/render"
	"github.com/swdee/go-vehicletrack/report"
	"github.com/swdee/go-vehicletrack/store"
	"github.com/swdee/go-vehicletrack/stream"
	"github.com/swdee/go-vehicletrack/tracker"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// loadConfig returns the configuration given by the global --config flag or
// the built in defaults
func loadConfig(c *cli.Context) (*vehicletrack.Config, error) {

	path := c.String(flagConfig)

	if path == "" {
		return vehicletrack.DefaultConfig(), nil
	}

	return vehicletrack.LoadConfig(path)
}

// loadFont returns the caption font at path or Go Regular
func loadFont(path string) (*render.TTFFont, error) {
	if path == "" {
		return render.NewTTFFont(18)
	}

	return render.LoadTTFFont(path, 18)
}

func trackAction(c *cli.Context, log *zap.SugaredLogger) (err error) {

	cfg, err := loadConfig(c)

	if err != nil {
		return err
	}

	model, err := classifier.Load(c.String(flagModel))

	if err != nil {
		return err
	}

	params, err := features.ParamsFromConfig(cfg)

	if err != nil {
		return err
	}

	if params.Len() != model.Dim() {
		return errors.Errorf("configured features have length %d but model %s expects %d",
			params.Len(), model.Type, model.Dim())
	}

	f, err := finder.FromConfig(cfg, model, finder.WithLogger(log.Named("finder")))

	if err != nil {
		return err
	}

	defer f.Close()

	tp, err := tracker.ParamsFromConfig(cfg)

	if err != nil {
		return err
	}

	opts := []tracker.Option{tracker.WithLogger(log.Named("tracker"))}

	if c.Bool(flagCaptions) {
		font, err := loadFont(c.String(flagFont))

		if err != nil {
			return err
		}

		defer font.Close()

		opts = append(opts, tracker.WithCaptioner(font))
	}

	tr, err := tracker.New(f, tp, opts...)

	if err != nil {
		return err
	}

	defer tr.Close()

	input := c.String(flagInput)
	src, err := stream.OpenVideoFile(input)

	if err != nil {
		return err
	}

	defer src.Close()

	// catch a geometry tuned for another resolution before encoding anything
	if err := vehicletrack.CheckBounds("search grid", f.Generator().Grid().Bounds(), src.Size()); err != nil {
		return err
	}

	sink, err := stream.Create(c.String(flagOutput), c.String(flagCodec), src)

	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, sink.Close())
	}()

	runOpts := []stream.Option{
		stream.WithLogger(log.Named("stream")),
		stream.WithLimit(c.Int(flagLimit)),
	}

	if path := c.String(flagDB); path != "" {
		st, err := store.Open(path)

		if err != nil {
			return err
		}

		defer st.Close()

		sess, err := st.StartSession(input, src.Size(), src.FPS())

		if err != nil {
			return err
		}

		log.Infow("recording session", "id", sess.ID, "db", path)

		runOpts = append(runOpts, stream.WithFrameFunc(func(res *tracker.Frame) error {
			return st.RecordFrame(sess.ID, res)
		}))
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := stream.Run(ctx, src, sink, tr, runOpts...)

	if err != nil {
		return errors.Wrapf(err, "tracking stopped after %d frames", stats.Frames)
	}

	fmt.Fprintf(c.App.Writer, "wrote %d frames to %s in %s (%.2f fps), %d boxes drawn\n",
		stats.Frames, c.String(flagOutput), stats.Elapsed.Round(time.Millisecond), stats.FPS(), stats.Drawn)

	return nil
}

// readImage loads an image file, or the first frame of a video file
func readImage(path string) (gocv.Mat, error) {

	img := gocv.IMRead(path, gocv.IMReadColor)

	if !img.Empty() {
		return img, nil
	}

	img.Close()

	src, err := stream.OpenVideoFile(path)

	if err != nil {
		return gocv.NewMat(), errors.Errorf("%s is neither an image nor a video", path)
	}

	defer src.Close()

	frame := gocv.NewMat()

	ok, err := src.Read(&frame)

	if err != nil || !ok {
		frame.Close()
		return gocv.NewMat(), errors.Errorf("no frames in video %s", path)
	}

	return frame, nil
}

func windowsAction(c *cli.Context, log *zap.SugaredLogger) error {

	cfg, err := loadConfig(c)

	if err != nil {
		return err
	}

	gen, err := geometry.GeneratorFromConfig(cfg)

	if err != nil {
		return err
	}

	img, err := readImage(c.String(flagInput))

	if err != nil {
		return err
	}

	defer img.Close()

	grid := gen.Grid()
	planes := gen.Planes()
	size := image.Pt(img.Cols(), img.Rows())

	if err := vehicletrack.CheckBounds("search grid", grid.Bounds(), size); err != nil {
		log.Warnw("search grid does not fit the image", "error", err)
	}

	render.WindowGrid(&img, grid, 1)
	render.PlaneBoxes(&img, planes, 2)
	render.SearchRegion(&img, geometry.SearchRegion(planes), render.White, 3)

	font, err := render.NewTTFFont(18)

	if err != nil {
		return err
	}

	defer font.Close()

	text := fmt.Sprintf("%d windows over %d planes", grid.Len(), len(planes))

	if err := font.DrawLabel(&img, text, image.Pt(10, 10), render.Black); err != nil {
		return err
	}

	if ok := gocv.IMWrite(c.String(flagOutput), img); !ok {
		return errors.Errorf("error writing image %s", c.String(flagOutput))
	}

	for _, z := range planes {
		fmt.Fprintf(c.App.Writer, "plane %d: box %v window %dx%d\n",
			z.Index, z.Box(), z.WindowSize.X, z.WindowSize.Y)
	}

	fmt.Fprintf(c.App.Writer, "%s, covering %v\n", text, grid.Bounds())

	return nil
}

func reportAction(c *cli.Context, log *zap.SugaredLogger) error {

	st, err := store.Open(c.String(flagDB))

	if err != nil {
		return err
	}

	defer st.Close()

	var sess *store.Session

	if id := c.String(flagSession); id != "" {
		if sess, err = st.Session(id); err != nil {
			return err
		}

	} else {
		all, err := st.Sessions()

		if err != nil {
			return err
		}

		if len(all) == 0 {
			return errors.New("database holds no sessions")
		}

		sess = all[0]
	}

	stats, err := st.FrameStats(sess.ID)

	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "session %s: %s %dx%d @ %.2f fps, started %s\n",
		sess.ID, sess.Source, sess.Size.X, sess.Size.Y, sess.FPS,
		sess.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(c.App.Writer, report.Summarize(stats))

	if out := c.String(flagOutput); out != "" {
		if err := report.PlotSession(sess.Source, stats, out); err != nil {
			return err
		}

		log.Infow("wrote plot", "file", out)
	}

	return nil
}

func configAction(c *cli.Context) error {

	cfg, err := loadConfig(c)

	if err != nil {
		return err
	}

	// settings are positional so values may contain commas
	for _, s := range c.Args().Slice() {
		section, key, value, err := parseSetting(s)

		if err != nil {
			return err
		}

		if err := cfg.Set(section, key, value); err != nil {
			return err
		}
	}

	_, err = cfg.WriteTo(c.App.Writer)

	return err
}

// parseSetting splits SECTION.KEY=VALUE
func parseSetting(s string) (section, key, value string, err error) {

	name, value, ok := strings.Cut(s, "=")

	if !ok {
		return "", "", "", errors.Errorf("setting %q is not SECTION.KEY=VALUE", s)
	}

	section, key, ok = strings.Cut(name, ".")

	if !ok || section == "" || key == "" {
		return "", "", "", errors.Errorf("setting %q is not SECTION.KEY=VALUE", s)
	}

	return strings.TrimSpace(section), strings.TrimSpace(key), strings.TrimSpace(value), nil
}
