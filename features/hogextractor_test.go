package features

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-vehicletrack"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
)

// gradientPatch returns a float32 BGR patch with a horizontal intensity ramp
func gradientPatch(width, height int) gocv.Mat {
	img := gocv.NewMatWithSize(height, width, gocv.MatTypeCV32FC3)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := float32(x) / float32(width)
			img.SetFloatAt(y, x*3, v)
			img.SetFloatAt(y, x*3+1, v*0.5)
			img.SetFloatAt(y, x*3+2, 1-v)
		}
	}

	return img
}

func TestDefaultParams(t *testing.T) {

	p := DefaultParams()

	assert.Equal(t, 9, p.Orient)
	assert.Equal(t, image.Pt(8, 8), p.PixelsPerCell)
	assert.Equal(t, image.Pt(2, 2), p.CellsPerBlock)
	assert.Equal(t, image.Pt(16, 16), p.SpatialSize)
	require.Len(t, p.ColorSpaces, 2)
	assert.Equal(t, []string{"S"}, p.ColorSpaces[0].Channels)

	// 16*16*3 spatial + 7*7*2*2*9 hog + (1+3)*32 histogram
	assert.Equal(t, 768+1764+128, p.Len())
}

func TestExtractLength(t *testing.T) {

	ext, err := NewHOGExtractor(DefaultParams())
	require.NoError(t, err)
	defer ext.Close()

	sizes := []image.Point{{64, 64}, {256, 256}, {97, 41}, {8, 300}}

	for _, sz := range sizes {
		patch := gradientPatch(sz.X, sz.Y)

		vec, err := ext.Extract(patch)
		require.NoError(t, err, "size %v", sz)
		assert.Len(t, vec, ext.Len(), "size %v", sz)

		for _, v := range vec {
			require.False(t, v != v, "NaN in feature vector for size %v", sz)
		}

		patch.Close()
	}
}

func TestExtractDeterministic(t *testing.T) {

	ext, err := NewHOGExtractor(DefaultParams())
	require.NoError(t, err)
	defer ext.Close()

	patch := gradientPatch(120, 90)
	defer patch.Close()

	a, err := ext.Extract(patch)
	require.NoError(t, err)

	b, err := ext.Extract(patch)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestExtractRegion(t *testing.T) {

	ext, err := NewHOGExtractor(DefaultParams())
	require.NoError(t, err)
	defer ext.Close()

	frame := gradientPatch(400, 300)
	defer frame.Close()

	region := frame.Region(image.Rect(100, 50, 228, 178))
	defer region.Close()

	vec, err := ext.Extract(region)
	require.NoError(t, err)
	assert.Len(t, vec, ext.Len())
}

func TestExtractUniformPatch(t *testing.T) {

	p := DefaultParams()

	ext, err := NewHOGExtractor(p)
	require.NoError(t, err)
	defer ext.Close()

	patch := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0.2, 0.5, 0.8, 0), PatchSize, PatchSize, gocv.MatTypeCV32FC3)
	defer patch.Close()

	vec, err := ext.Extract(patch)
	require.NoError(t, err)

	spatialLen := p.SpatialSize.X * p.SpatialSize.Y * 3
	hogVec := vec[spatialLen : spatialLen+p.hogLen()]

	// no gradients in a flat patch
	assert.InDelta(t, 0, floats.Max(hogVec), 1e-6)

	// every histogram channel counts each of the 64x64 samples once
	hists := vec[spatialLen+p.hogLen():]
	for i := 0; i+32 <= len(hists); i += 32 {
		assert.InDelta(t, PatchSize*PatchSize, floats.Sum(hists[i:i+32]), 1e-9)
	}

	// spatial samples keep the BGR values
	assert.InDelta(t, 0.2, vec[0], 1e-5)
	assert.InDelta(t, 0.5, vec[1], 1e-5)
	assert.InDelta(t, 0.8, vec[2], 1e-5)
}

func TestExtractErrors(t *testing.T) {

	ext, err := NewHOGExtractor(DefaultParams())
	require.NoError(t, err)
	defer ext.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	_, err = ext.Extract(empty)
	assert.Error(t, err)

	u8 := gocv.NewMatWithSize(64, 64, gocv.MatTypeCV8UC3)
	defer u8.Close()

	_, err = ext.Extract(u8)
	assert.Error(t, err)
}

func TestParamsValidation(t *testing.T) {

	tests := []struct {
		name   string
		modify func(p *Params)
	}{
		{"zero orient", func(p *Params) { p.Orient = 0 }},
		{"zero cell", func(p *Params) { p.PixelsPerCell = image.Pt(0, 8) }},
		{"block too big", func(p *Params) { p.CellsPerBlock = image.Pt(9, 2) }},
		{"zero spatial", func(p *Params) { p.SpatialSize = image.Pt(0, 0) }},
		{"unknown space", func(p *Params) { p.ColorSpaces[0].Name = "cs_CMYK" }},
		{"unknown channel", func(p *Params) { p.ColorSpaces[0].Channels = []string{"Q"} }},
		{"zero bins", func(p *Params) { p.ColorSpaces[0].Bins = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.modify(&p)

			_, err := NewHOGExtractor(p)

			var cerr *vehicletrack.ConfigError
			assert.True(t, errors.As(err, &cerr), "got %v", err)
		})
	}
}

func TestHistogramClampsRange(t *testing.T) {

	h := histogram([]float32{-1, 0, 0.49, 0.5, 1, 2}, 2, 0, 1)
	assert.Equal(t, []float64{3, 3}, h)
}
