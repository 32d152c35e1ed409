package heatmap

import (
	"image"

	"go.uber.org/multierr"
	"gocv.io/x/gocv"
)

// Box is the bounding box of one labelled component
type Box struct {
	// Label is the component id, starting at 1
	Label int
	// Rectangle covers the component, Max is exclusive so the inclusive
	// bottom right pixel is Max.Sub(image.Pt(1, 1))
	image.Rectangle
	// Area is the number of cells in the component
	Area int
}

// Labels is the result of labelling a heat map.  Every non zero cell
// carries the id of its component, background cells are 0.
type Labels struct {
	labels    gocv.Mat
	stats     gocv.Mat
	centroids gocv.Mat
	count     int
}

// Count returns the number of components found
func (l *Labels) Count() int {
	return l.count
}

// At returns the component id of the cell at column x, row y
func (l *Labels) At(x, y int) int {
	return int(l.labels.GetIntAt(y, x))
}

// Boxes returns one bounding box per component ordered by label id
func (l *Labels) Boxes() []Box {

	boxes := make([]Box, 0, l.count)

	for i := 1; i <= l.count; i++ {
		left := int(l.stats.GetIntAt(i, int(gocv.CC_STAT_LEFT)))
		top := int(l.stats.GetIntAt(i, int(gocv.CC_STAT_TOP)))
		width := int(l.stats.GetIntAt(i, int(gocv.CC_STAT_WIDTH)))
		height := int(l.stats.GetIntAt(i, int(gocv.CC_STAT_HEIGHT)))

		boxes = append(boxes, Box{
			Label:     i,
			Rectangle: image.Rect(left, top, left+width, top+height),
			Area:      int(l.stats.GetIntAt(i, int(gocv.CC_STAT_AREA))),
		})
	}

	return boxes
}

// Close frees the label memory
func (l *Labels) Close() error {
	return multierr.Combine(l.labels.Close(), l.stats.Close(), l.centroids.Close())
}
