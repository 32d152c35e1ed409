package preprocess

import (
	"image"

	"gocv.io/x/gocv"
)

// Resizer scales image patches of any size to the fixed dimensions a feature
// extractor works on.  Aspect ratio is not preserved.
type Resizer struct {
	// destWidth is the width to scale to
	destWidth int
	// destHeight is the height to scale to
	destHeight int
	// interp is the interpolation used when scaling
	interp gocv.InterpolationFlags
	// tempMat holds a continuous copy of region Mats before scaling
	tempMat gocv.Mat
}

// NewResizer returns a resizer used for scaling patches to destWidth x
// destHeight with the given interpolation
func NewResizer(destWidth, destHeight int, interp gocv.InterpolationFlags) *Resizer {
	return &Resizer{
		destWidth:  destWidth,
		destHeight: destHeight,
		interp:     interp,
		tempMat:    gocv.NewMat(),
	}
}

// Close frees memory allocated during resize process
func (r *Resizer) Close() error {
	return r.tempMat.Close()
}

// Resize scales src into dest.  If src already has the destination size it
// is copied so dest is always continuous and independent of src.
func (r *Resizer) Resize(src gocv.Mat, dest *gocv.Mat) {

	if src.Cols() == r.destWidth && src.Rows() == r.destHeight {
		src.CopyTo(dest)
		return
	}

	// region Mats are not continuous, copy before scaling
	src.CopyTo(&r.tempMat)

	gocv.Resize(r.tempMat, dest, image.Pt(r.destWidth, r.destHeight),
		0, 0, r.interp)
}

// Width returns the destination width
func (r *Resizer) Width() int {
	return r.destWidth
}

// Height returns the destination height
func (r *Resizer) Height() int {
	return r.destHeight
}
