package features

import (
	"math"
	"sort"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// colorSpace describes the conversion of a BGR float32 patch into a color
// space and the value range of each resulting channel
type colorSpace struct {
	code     gocv.ColorConversionCode
	channels []string
	// ranges are the [min, max] sample values of each channel for float32
	// input in the unit range
	ranges [][2]float64
}

// channel returns the index of the named channel or -1
func (c colorSpace) channel(name string) int {
	for i, ch := range c.channels {
		if ch == name {
			return i
		}
	}

	return -1
}

var colorSpaces = map[string]colorSpace{
	"cs_HLS": {
		code:     gocv.ColorBGRToHLS,
		channels: []string{"H", "L", "S"},
		ranges:   [][2]float64{{0, 360}, {0, 1}, {0, 1}},
	},
	"cs_HSV": {
		code:     gocv.ColorBGRToHSV,
		channels: []string{"H", "S", "V"},
		ranges:   [][2]float64{{0, 360}, {0, 1}, {0, 1}},
	},
	"cs_LUV": {
		code:     gocv.ColorBGRToLuv,
		channels: []string{"L", "U", "V"},
		ranges:   [][2]float64{{0, 100}, {-134, 220}, {-140, 122}},
	},
	"cs_YUV": {
		code:     gocv.ColorBGRToYUV,
		channels: []string{"Y", "U", "V"},
		ranges:   [][2]float64{{0, 1}, {0, 1}, {0, 1}},
	},
	"cs_YCrCb": {
		code:     gocv.ColorBGRToYCrCb,
		channels: []string{"Y", "Cr", "Cb"},
		ranges:   [][2]float64{{0, 1}, {0, 1}, {0, 1}},
	},
}

// histogram counts samples into bins evenly dividing [lo, hi].  Samples
// outside the range are counted in the first or last bin.
func histogram(samples []float32, bins int, lo, hi float64) []float64 {

	x := make([]float64, len(samples))
	top := math.Nextafter(hi, lo)

	for i, s := range samples {
		v := float64(s)

		if v < lo {
			v = lo
		} else if v > top {
			v = top
		}

		x[i] = v
	}

	sort.Float64s(x)

	dividers := floats.Span(make([]float64, bins+1), lo, hi)

	return stat.Histogram(nil, dividers, x, nil)
}
