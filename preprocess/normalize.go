package preprocess

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	// sampleMax is the largest sample value of an 8 bit per channel frame
	sampleMax = 255.0
)

// Normalize converts a frame with 8 bit unsigned samples (0..255) into a
// frame of float32 samples in the unit range [0, 1] with the same number of
// channels.  Every 8 bit value maps exactly to v/255.
func Normalize(src gocv.Mat, dst *gocv.Mat) error {

	var mt gocv.MatType

	switch src.Type() {
	case gocv.MatTypeCV8UC1:
		mt = gocv.MatTypeCV32FC1
	case gocv.MatTypeCV8UC3:
		mt = gocv.MatTypeCV32FC3
	case gocv.MatTypeCV8UC4:
		mt = gocv.MatTypeCV32FC4
	default:
		return errors.Errorf("normalize requires 8 bit unsigned samples, got mat type %v", src.Type())
	}

	src.ConvertToWithParams(dst, mt, 1.0/sampleMax, 0)
	return nil
}

// Denormalize converts a frame of float32 unit range samples back to 8 bit
// unsigned samples.  Values are scaled by 255, rounded to the nearest
// integer and saturated to 0..255, so samples outside the unit range clip
// rather than wrap.
func Denormalize(src gocv.Mat, dst *gocv.Mat) error {

	var mt gocv.MatType

	switch src.Type() {
	case gocv.MatTypeCV32FC1:
		mt = gocv.MatTypeCV8UC1
	case gocv.MatTypeCV32FC3:
		mt = gocv.MatTypeCV8UC3
	case gocv.MatTypeCV32FC4:
		mt = gocv.MatTypeCV8UC4
	default:
		return errors.Errorf("denormalize requires float32 samples, got mat type %v", src.Type())
	}

	src.ConvertToWithParams(dst, mt, sampleMax, 0)
	return nil
}
