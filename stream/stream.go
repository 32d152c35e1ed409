// Package stream drives a Tracker over the frames of a video source and
// writes the annotated frames to a sink.
package stream

import (
	"context"
	"image"
	"time"

	"github.com/pkg/errors"
	"github.com/swdee/go-vehicletrack/tracker"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Source supplies 8 bit BGR frames of equal size in stream order
type Source interface {
	// Read decodes the next frame into dst.  It returns false once the
	// stream is exhausted.
	Read(dst *gocv.Mat) (bool, error)
	// FPS returns the frame rate of the stream
	FPS() float64
	// Size returns the frame width (X) and height (Y)
	Size() image.Point
	Close() error
}

// Sink receives annotated frames in stream order
type Sink interface {
	Write(frame gocv.Mat) error
	Close() error
}

// Processor annotates frames and holds per stream state.  *tracker.Tracker
// implements it.
type Processor interface {
	Process(ctx context.Context, frame gocv.Mat, dst *gocv.Mat) (*tracker.Frame, error)
	Reset() error
}

// FrameFunc is called after each frame has been written to the sink
type FrameFunc func(res *tracker.Frame) error

// Stats summarises a stream run
type Stats struct {
	// Frames is the number of frames written to the sink
	Frames int
	// Matches is the total number of matched windows
	Matches int
	// Drawn is the total number of boxes drawn
	Drawn int
	// Elapsed is the wall time of the run
	Elapsed time.Duration
}

// FPS returns the processing rate of the run
func (s Stats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}

	return float64(s.Frames) / s.Elapsed.Seconds()
}

type options struct {
	log     *zap.SugaredLogger
	onFrame FrameFunc
	limit   int
}

// Option configures Run
type Option func(*options)

// WithLogger sets the logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithFrameFunc registers fn to be called with the result of every frame
func WithFrameFunc(fn FrameFunc) Option {
	return func(o *options) {
		o.onFrame = fn
	}
}

// WithLimit stops the run after n frames, 0 processes the whole source
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// Run resets proc to start a new session then processes every frame of src
// in order and writes the result to sink.  Cancellation of ctx is checked
// between frames.  On error the frames already written remain in the sink
// and the returned Stats count them.
func Run(ctx context.Context, src Source, sink Sink, proc Processor,
	opts ...Option) (Stats, error) {

	o := &options{log: zap.NewNop().Sugar()}

	for _, opt := range opts {
		opt(o)
	}

	var stats Stats

	if err := proc.Reset(); err != nil {
		return stats, errors.Wrap(err, "error resetting processor")
	}

	frame := gocv.NewMat()
	defer frame.Close()

	out := gocv.NewMat()
	defer out.Close()

	start := time.Now()
	size := src.Size()

	o.log.Infow("stream started", "width", size.X, "height", size.Y, "fps", src.FPS())

	for o.limit == 0 || stats.Frames < o.limit {

		if err := ctx.Err(); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, err
		}

		ok, err := src.Read(&frame)

		if err != nil {
			stats.Elapsed = time.Since(start)
			return stats, errors.Wrapf(err, "error reading frame %d", stats.Frames)
		}

		if !ok {
			// reached last video frame
			break
		}

		res, err := proc.Process(ctx, frame, &out)

		if err != nil {
			stats.Elapsed = time.Since(start)
			return stats, err
		}

		if err := sink.Write(out); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, errors.Wrapf(err, "error writing frame %d", stats.Frames)
		}

		stats.Frames++
		stats.Matches += len(res.Matches)
		stats.Drawn += len(res.Drawn)

		if o.onFrame != nil {
			if err := o.onFrame(res); err != nil {
				stats.Elapsed = time.Since(start)
				return stats, errors.Wrapf(err, "frame %d callback", res.Index)
			}
		}
	}

	stats.Elapsed = time.Since(start)

	o.log.Infow("stream finished", "frames", stats.Frames, "matches", stats.Matches,
		"drawn", stats.Drawn, "elapsed", stats.Elapsed, "fps", stats.FPS())

	return stats, nil
}
