package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
)

func TestResize(t *testing.T) {

	tests := []struct {
		srcWidth  int
		srcHeight int
		matType   gocv.MatType
	}{
		{128, 128, gocv.MatTypeCV32FC3},
		{256, 100, gocv.MatTypeCV32FC3},
		{64, 64, gocv.MatTypeCV32FC3},
		{17, 33, gocv.MatTypeCV8UC1},
	}

	resizer := NewResizer(64, 64, gocv.InterpolationCubic)
	defer resizer.Close()

	for _, tc := range tests {
		img := gocv.NewMatWithSize(tc.srcHeight, tc.srcWidth, tc.matType)
		dest := gocv.NewMat()

		resizer.Resize(img, &dest)

		assert.Equal(t, 64, dest.Cols(), "src %dx%d", tc.srcWidth, tc.srcHeight)
		assert.Equal(t, 64, dest.Rows(), "src %dx%d", tc.srcWidth, tc.srcHeight)
		assert.Equal(t, tc.matType, dest.Type())
		assert.True(t, dest.IsContinuous())

		img.Close()
		dest.Close()
	}
}

func TestResizeRegion(t *testing.T) {

	img := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV32FC3)
	defer img.Close()

	region := img.Region(rect(640, 400, 896, 656))
	defer region.Close()

	resizer := NewResizer(64, 64, gocv.InterpolationCubic)
	defer resizer.Close()

	dest := gocv.NewMat()
	defer dest.Close()

	resizer.Resize(region, &dest)

	assert.Equal(t, 64, dest.Cols())
	assert.Equal(t, 64, dest.Rows())
	assert.True(t, dest.IsContinuous())
}
