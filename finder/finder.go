// Package finder evaluates a classifier over every perspective search window
// of a frame and returns the windows it matches.
package finder

import (
	"context"
	"image"
	"runtime"

	"github.com/pkg/errors"
	vehicletrack "github.com/swdee/go-vehicletrack"
	"github.com/swdee/go-vehicletrack/classifier"
	"github.com/swdee/go-vehicletrack/features"
	"github.com/swdee/go-vehicletrack/geometry"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

// Finder is the sliding window object finder.  It holds no per frame state
// and Find may be called from multiple goroutines, each call then competes
// for extractors from the same pool.
type Finder struct {
	gen     *geometry.Generator
	pool    *Pool
	clf     classifier.Classifier
	workers int
	log     *zap.SugaredLogger
}

// Option configures a Finder
type Option func(*Finder)

// WithWorkers sets the number of windows evaluated concurrently.  Defaults
// to the pool size.
func WithWorkers(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(f *Finder) {
		if log != nil {
			f.log = log
		}
	}
}

// New returns a Finder searching the windows of gen using extractors from
// pool.  The classifier must be safe for concurrent use.  The Finder takes
// ownership of the pool and closes it in Close.
func New(gen *geometry.Generator, pool *Pool, clf classifier.Classifier,
	opts ...Option) (*Finder, error) {

	if gen == nil || pool == nil || clf == nil {
		return nil, errors.New("finder requires a generator, extractor pool and classifier")
	}

	f := &Finder{
		gen:     gen,
		pool:    pool,
		clf:     clf,
		workers: pool.Size(),
		log:     zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// FromConfig builds the window generator and a pool of HOG extractors from
// cfg.  The [finder] workers key sets the pool size, 0 uses GOMAXPROCS.
func FromConfig(cfg *vehicletrack.Config, clf classifier.Classifier,
	opts ...Option) (*Finder, error) {

	gen, err := geometry.GeneratorFromConfig(cfg)

	if err != nil {
		return nil, err
	}

	params, err := features.ParamsFromConfig(cfg)

	if err != nil {
		return nil, err
	}

	workers, err := cfg.Int("finder", "workers")

	if err != nil {
		return nil, err
	}

	if workers < 0 {
		return nil, vehicletrack.NewConfigError("finder", "workers",
			"must not be negative, got %d", workers)
	}

	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	pool, err := NewPool(workers, func() (features.Extractor, error) {
		return features.NewHOGExtractor(params)
	})

	if err != nil {
		return nil, err
	}

	f, err := New(gen, pool, clf, opts...)

	if err != nil {
		pool.Close()
		return nil, err
	}

	return f, nil
}

// Generator returns the window generator searched by the Finder
func (f *Finder) Generator() *geometry.Generator {
	return f.gen
}

// Find evaluates every window of the grid on frame and returns the matching
// windows in grid order.  frame is a float32 3 channel BGR Mat with samples
// in the unit range.  A window outside the frame returns a
// *vehicletrack.BoundsError and any extractor or classifier failure an error
// matching vehicletrack.ErrCollaborator.  Cancellation of ctx is not
// observed once the search has started, a frame is always evaluated in full
// or fails.
func (f *Finder) Find(ctx context.Context, frame gocv.Mat) ([]geometry.Window, error) {

	grid := f.gen.Grid()
	size := image.Pt(frame.Cols(), frame.Rows())

	for _, w := range grid {
		if err := vehicletrack.CheckBounds("window", w.Rectangle, size); err != nil {
			return nil, err
		}
	}

	batch, isBatch := f.clf.(classifier.BatchClassifier)

	vectors := make([][]float64, len(grid))
	matched := make([]bool, len(grid))

	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(f.workers)

	for i, w := range grid {
		if gctx.Err() != nil {
			// a window already failed
			break
		}

		g.Go(func() error {
			ext := f.pool.Get()

			if ext == nil {
				return errors.New("extractor pool is closed")
			}

			defer f.pool.Return(ext)

			patch := frame.Region(w.Rectangle)
			defer patch.Close()

			vec, err := ext.Extract(patch)

			if err != nil {
				return vehicletrack.CollaboratorError(err, "error extracting features of window %v", w)
			}

			if isBatch {
				vectors[i] = vec
				return nil
			}

			match, err := f.clf.Predict(vec)

			if err != nil {
				return vehicletrack.CollaboratorError(err, "error classifying window %v", w)
			}

			matched[i] = match
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if isBatch {
		res, err := batch.PredictBatch(vectors)

		if err != nil {
			return nil, vehicletrack.CollaboratorError(err, "error classifying %d windows", len(vectors))
		}

		if len(res) != len(grid) {
			return nil, vehicletrack.CollaboratorError(
				errors.Errorf("got %d decisions for %d windows", len(res), len(grid)),
				"error classifying windows")
		}

		matched = res
	}

	var hits []geometry.Window

	for i, match := range matched {
		if match {
			hits = append(hits, grid[i])
		}
	}

	f.log.Debugw("searched frame", "windows", len(grid), "matched", len(hits))

	return hits, nil
}

// Close frees the extractor pool
func (f *Finder) Close() error {
	return f.pool.Close()
}
