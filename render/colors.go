package render

import "image/color"

var (
	// planeColors is a list of colors used to tell the z-planes of the
	// window grid apart
	planeColors = []color.RGBA{
		{R: 255, G: 56, B: 56, A: 255},   // #FF3838
		{R: 255, G: 178, B: 29, A: 255},  // #FFB21D
		{R: 72, G: 249, B: 10, A: 255},   // #48F90A
		{R: 0, G: 212, B: 187, A: 255},   // #00D4BB
		{R: 0, G: 194, B: 255, A: 255},   // #00C2FF
		{R: 100, G: 115, B: 255, A: 255}, // #6473FF
		{R: 132, G: 56, B: 255, A: 255},  // #8438FF
		{R: 255, G: 55, B: 199, A: 255},  // #FF37C7
		{R: 255, G: 112, B: 31, A: 255},  // #FF701F
		{R: 207, G: 210, B: 49, A: 255},  // #CFD231
		{R: 26, G: 147, B: 52, A: 255},   // #1A9334
		{R: 52, G: 69, B: 147, A: 255},   // #344593
	}

	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}
	Pink   = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	// Red is the color vehicle boxes are drawn in
	Red = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// PlaneColor returns the color used for windows of z-plane z
func PlaneColor(z int) color.RGBA {
	if z < 0 {
		z = -z
	}

	return planeColors[z%len(planeColors)]
}
