package features

import (
	"image"

	"github.com/pkg/errors"
	"github.com/swdee/go-vehicletrack/preprocess"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"
)

// HOGExtractor computes the concatenation of spatially binned color samples,
// a histogram of oriented gradients and color space channel histograms over
// a patch resized to PatchSize x PatchSize
type HOGExtractor struct {
	params  Params
	resizer *preprocess.Resizer
	// scratch Mats reused between calls
	patch   gocv.Mat
	spatial gocv.Mat
	gray    gocv.Mat
	gradX   gocv.Mat
	gradY   gocv.Mat
	mag     gocv.Mat
	angle   gocv.Mat
	conv    gocv.Mat
}

// NewHOGExtractor returns an extractor for the given parameters
func NewHOGExtractor(p Params) (*HOGExtractor, error) {

	if err := p.validate(); err != nil {
		return nil, err
	}

	return &HOGExtractor{
		params:  p,
		resizer: preprocess.NewResizer(PatchSize, PatchSize, gocv.InterpolationCubic),
		patch:   gocv.NewMat(),
		spatial: gocv.NewMat(),
		gray:    gocv.NewMat(),
		gradX:   gocv.NewMat(),
		gradY:   gocv.NewMat(),
		mag:     gocv.NewMat(),
		angle:   gocv.NewMat(),
		conv:    gocv.NewMat(),
	}, nil
}

// Len returns the feature vector length
func (h *HOGExtractor) Len() int {
	return h.params.Len()
}

// Extract computes the feature vector of a float32 BGR patch
func (h *HOGExtractor) Extract(patch gocv.Mat) ([]float64, error) {

	if patch.Empty() {
		return nil, errors.New("empty patch")
	}

	if patch.Type() != gocv.MatTypeCV32FC3 {
		return nil, errors.Errorf("patch must be float32 3 channel, got mat type %v", patch.Type())
	}

	h.resizer.Resize(patch, &h.patch)

	out := make([]float64, 0, h.Len())

	// spatial binning of the raw color samples
	gocv.Resize(h.patch, &h.spatial, image.Pt(h.params.SpatialSize.X, h.params.SpatialSize.Y),
		0, 0, gocv.InterpolationLinear)

	samples, err := h.spatial.DataPtrFloat32()

	if err != nil {
		return nil, errors.Wrap(err, "spatial samples")
	}

	for _, s := range samples {
		out = append(out, float64(s))
	}

	// gradient histogram on grayscale
	gocv.CvtColor(h.patch, &h.gray, gocv.ColorBGRToGray)

	hogVec, err := h.hog(h.gray)

	if err != nil {
		return nil, errors.Wrap(err, "hog features")
	}

	out = append(out, hogVec...)

	// color space channel histograms
	for _, cs := range h.params.ColorSpaces {
		hists, err := h.colorHist(cs)

		if err != nil {
			return nil, errors.Wrapf(err, "color histogram %s", cs.Name)
		}

		out = append(out, hists...)
	}

	return out, nil
}

// colorHist returns the histograms of the configured channels of one color
// space
func (h *HOGExtractor) colorHist(cs ColorSpace) ([]float64, error) {

	space := colorSpaces[cs.Name]
	gocv.CvtColor(h.patch, &h.conv, space.code)

	channels := gocv.Split(h.conv)

	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	out := make([]float64, 0, len(cs.Channels)*cs.Bins)

	for _, name := range cs.Channels {
		idx := space.channel(name)

		samples, err := channels[idx].DataPtrFloat32()

		if err != nil {
			return nil, err
		}

		rng := space.ranges[idx]
		out = append(out, histogram(samples, cs.Bins, rng[0], rng[1])...)
	}

	return out, nil
}

// Close frees the scratch Mats
func (h *HOGExtractor) Close() error {
	return multierr.Combine(
		h.resizer.Close(),
		h.patch.Close(),
		h.spatial.Close(),
		h.gray.Close(),
		h.gradX.Close(),
		h.gradY.Close(),
		h.mag.Close(),
		h.angle.Close(),
		h.conv.Close(),
	)
}
