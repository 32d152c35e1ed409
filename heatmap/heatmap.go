// Package heatmap implements the accumulating float heat map used to turn
// noisy per frame window matches into stable object regions.
package heatmap

import (
	"image"

	"github.com/pkg/errors"
	vehicletrack "github.com/swdee/go-vehicletrack"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"
)

// HeatMap is a single channel float32 accumulator the size of a video
// frame.  Heat is clamped above by Accumulate but has no lower bound, so
// repeated fading drives idle cells negative.
type HeatMap struct {
	heat gocv.Mat
	// zeros is compared against when building the non zero mask
	zeros gocv.Mat
	mask  gocv.Mat
}

// New returns a zeroed heat map of the given frame size
func New(rows, cols int) (*HeatMap, error) {

	if rows < 1 || cols < 1 {
		return nil, errors.Errorf("invalid heat map size %dx%d", cols, rows)
	}

	return &HeatMap{
		heat:  gocv.Zeros(rows, cols, gocv.MatTypeCV32F),
		zeros: gocv.Zeros(rows, cols, gocv.MatTypeCV32F),
		mask:  gocv.NewMat(),
	}, nil
}

// Rows returns the heat map height
func (h *HeatMap) Rows() int {
	return h.heat.Rows()
}

// Cols returns the heat map width
func (h *HeatMap) Cols() int {
	return h.heat.Cols()
}

// Size returns the width (X) and height (Y) of the heat map
func (h *HeatMap) Size() image.Point {
	return image.Pt(h.heat.Cols(), h.heat.Rows())
}

// Mat returns the underlying CV32F Mat.  It remains owned by the heat map.
func (h *HeatMap) Mat() gocv.Mat {
	return h.heat
}

// At returns the heat of the cell at column x, row y
func (h *HeatMap) At(x, y int) float32 {
	return h.heat.GetFloatAt(y, x)
}

// Set overwrites the heat of the cell at column x, row y
func (h *HeatMap) Set(x, y int, v float32) {
	h.heat.SetFloatAt(y, x, v)
}

// Min returns the lowest heat value
func (h *HeatMap) Min() float32 {
	minVal, _, _, _ := gocv.MinMaxLoc(h.heat)
	return minVal
}

// Max returns the highest heat value
func (h *HeatMap) Max() float32 {
	_, maxVal, _, _ := gocv.MinMaxLoc(h.heat)
	return maxVal
}

// Fade subtracts amount from every cell
func (h *HeatMap) Fade(amount float64) {
	h.heat.SubtractFloat(float32(amount))
}

// Accumulate adds 1 to every cell inside each window then clamps the whole
// map to at most maxHeat.  Windows overlapping each other add up.  A window
// outside the map returns a *vehicletrack.BoundsError and leaves the map
// unchanged.
func (h *HeatMap) Accumulate(windows []image.Rectangle, maxHeat float64) error {

	size := h.Size()

	for _, w := range windows {
		if err := vehicletrack.CheckBounds("window", w, size); err != nil {
			return err
		}
	}

	for _, w := range windows {
		region := h.heat.Region(w)
		region.AddFloat(1)
		region.Close()
	}

	gocv.Threshold(h.heat, &h.heat, float32(maxHeat), 0, gocv.ThresholdTrunc)

	return nil
}

// Threshold returns a working copy of the heat map with every cell at or
// below threshold set to 0.  Cells above a negative threshold keep their
// negative heat.  The receiver is not modified.  The caller must
// Close the copy.
func (h *HeatMap) Threshold(threshold float64) *HeatMap {

	out := &HeatMap{
		heat:  gocv.NewMat(),
		zeros: h.zeros.Clone(),
		mask:  gocv.NewMat(),
	}

	gocv.Threshold(h.heat, &out.heat, float32(threshold), 0, gocv.ThresholdToZero)

	return out
}

// Label finds the 4-connected components of non zero cells
func (h *HeatMap) Label() *Labels {

	gocv.Compare(h.heat, h.zeros, &h.mask, gocv.CompareNE)

	l := &Labels{
		labels:    gocv.NewMat(),
		stats:     gocv.NewMat(),
		centroids: gocv.NewMat(),
	}

	n := gocv.ConnectedComponentsWithStatsWithParams(h.mask, &l.labels, &l.stats,
		&l.centroids, 4, gocv.MatTypeCV32S, gocv.CCL_DEFAULT)

	// label 0 is the background
	l.count = n - 1

	return l
}

// Reset zeroes every cell
func (h *HeatMap) Reset() {
	h.heat.SetTo(gocv.NewScalar(0, 0, 0, 0))
}

// Close frees the heat map memory
func (h *HeatMap) Close() error {
	return multierr.Combine(h.heat.Close(), h.zeros.Close(), h.mask.Close())
}
