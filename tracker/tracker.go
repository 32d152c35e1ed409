// Package tracker stabilises per frame window matches into vehicle bounding
// boxes using a heat map that persists across the frames of a video.
package tracker

import (
	"context"
	"image"

	"github.com/pkg/errors"
	vehicletrack "github.com/swdee/go-vehicletrack"
	"github.com/swdee/go-vehicletrack/geometry"
	"github.com/swdee/go-vehicletrack/heatmap"
	"github.com/swdee/go-vehicletrack/preprocess"
	"github.com/swdee/go-vehicletrack/render"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// State of a Tracker session
type State int

const (
	// Uninitialized has no heat map, the next frame allocates one
	Uninitialized State = iota
	// Active owns a heat map sized to the first frame
	Active
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	}

	return "unknown"
}

// Detector finds the search windows matching a vehicle in a normalized
// float32 BGR frame.  *finder.Finder implements it.
type Detector interface {
	Find(ctx context.Context, frame gocv.Mat) ([]geometry.Window, error)
}

// Frame is the result of processing one frame
type Frame struct {
	// Index of the frame within the session, starting at 0
	Index int
	// Matches are the windows the detector matched
	Matches []geometry.Window
	// Boxes are the bounding boxes of every thresholded heat component
	Boxes []heatmap.Box
	// Drawn are the boxes right of the draw cutoff that were rendered
	Drawn []heatmap.Box
	// MinHeat and MaxHeat are the heat map extremes after accumulation
	MinHeat float32
	MaxHeat float32
}

// Tracker is the heat map tracking session.  It is not safe for concurrent
// use; frames must be processed one at a time in stream order.
type Tracker struct {
	det    Detector
	params Params
	style  render.BoxStyle
	log    *zap.SugaredLogger
	// heat is nil while Uninitialized
	heat   *heatmap.HeatMap
	frames int
	norm   gocv.Mat
}

// Option configures a Tracker
type Option func(*Tracker)

// WithLogger sets the logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// WithCaptioner labels drawn boxes using c
func WithCaptioner(c render.Captioner) Option {
	return func(t *Tracker) {
		t.style.Captioner = c
	}
}

// New returns an Uninitialized Tracker using det to find matching windows
func New(det Detector, p Params, opts ...Option) (*Tracker, error) {

	if det == nil {
		return nil, errors.New("tracker requires a detector")
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	style := render.DefaultBoxStyle()
	style.LineThickness = p.BoxThickness

	t := &Tracker{
		det:    det,
		params: p,
		style:  style,
		log:    zap.NewNop().Sugar(),
		norm:   gocv.NewMat(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Params returns the tracker parameters
func (t *Tracker) Params() Params {
	return t.params
}

// State returns the session state
func (t *Tracker) State() State {
	if t.heat == nil {
		return Uninitialized
	}

	return Active
}

// Heat returns the heat map, or nil when Uninitialized.  It remains owned by
// the Tracker and is replaced on Reset.
func (t *Tracker) Heat() *heatmap.HeatMap {
	return t.heat
}

// Reset discards the heat map and returns the Tracker to Uninitialized so
// the next frame starts a new session
func (t *Tracker) Reset() error {

	t.frames = 0

	if t.heat == nil {
		return nil
	}

	err := t.heat.Close()
	t.heat = nil

	return err
}

// Process runs one 8 bit BGR frame through the tracker and writes the
// annotated frame to dst.  The heat map fades, accumulates the detector
// matches and is thresholded and labelled; boxes of components right of the
// draw cutoff are drawn.  Any error leaves the session unusable until Reset.
func (t *Tracker) Process(ctx context.Context, frame gocv.Mat, dst *gocv.Mat) (*Frame, error) {

	if frame.Empty() {
		return nil, errors.New("empty frame")
	}

	if err := preprocess.Normalize(frame, &t.norm); err != nil {
		return nil, err
	}

	size := image.Pt(frame.Cols(), frame.Rows())

	if t.heat != nil {
		if t.heat.Size() != size {
			return nil, &vehicletrack.BoundsError{
				What:  "frame",
				Rect:  image.Rectangle{Max: size},
				Frame: t.heat.Size(),
			}
		}

		t.heat.Fade(t.params.FadeHeat)

	} else {
		heat, err := heatmap.New(size.Y, size.X)

		if err != nil {
			return nil, err
		}

		t.heat = heat
		t.log.Debugw("allocated heat map", "width", size.X, "height", size.Y)
	}

	matches, err := t.det.Find(ctx, t.norm)

	if err != nil {
		return nil, errors.Wrapf(err, "frame %d", t.frames)
	}

	rects := make([]image.Rectangle, len(matches))

	for i, w := range matches {
		rects[i] = w.Rectangle
	}

	if err := t.heat.Accumulate(rects, t.params.MaxHeat); err != nil {
		return nil, errors.Wrapf(err, "frame %d", t.frames)
	}

	res := &Frame{
		Index:   t.frames,
		Matches: matches,
		MinHeat: t.heat.Min(),
		MaxHeat: t.heat.Max(),
	}

	if res.Boxes, err = t.label(); err != nil {
		return nil, errors.Wrapf(err, "frame %d", t.frames)
	}

	for _, b := range res.Boxes {
		if b.Min.X > t.params.DrawCutoffX {
			res.Drawn = append(res.Drawn, b)
		}
	}

	if err := preprocess.Denormalize(t.norm, dst); err != nil {
		return nil, err
	}

	if err := render.HeatBoxes(dst, res.Drawn, t.style); err != nil {
		return nil, errors.Wrapf(err, "frame %d", t.frames)
	}

	t.log.Debugw("processed frame", "frame", res.Index, "matches", len(matches),
		"components", len(res.Boxes), "drawn", len(res.Drawn), "max_heat", res.MaxHeat)

	t.frames++

	return res, nil
}

// label thresholds a working copy of the heat map and returns the bounding
// box of every component
func (t *Tracker) label() (boxes []heatmap.Box, err error) {

	th := t.heat.Threshold(t.params.Threshold)
	defer func() { err = multierr.Append(err, th.Close()) }()

	labels := th.Label()
	defer func() { err = multierr.Append(err, labels.Close()) }()

	boxes = labels.Boxes()

	for _, b := range boxes {
		if err := vehicletrack.CheckBounds("bounding box", b.Rectangle, t.heat.Size()); err != nil {
			return nil, err
		}
	}

	return boxes, nil
}

// Close frees the heat map and scratch memory
func (t *Tracker) Close() error {
	return multierr.Combine(t.Reset(), t.norm.Close())
}
