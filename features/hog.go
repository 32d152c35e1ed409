package features

import (
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
)

const (
	// hogEpsilon avoids division by zero when normalising empty blocks
	hogEpsilon = 1e-5
	// hogClip is the L2-Hys clipping value
	hogClip = 0.2
)

// hog computes a histogram of oriented gradients over a single channel
// float32 image using the extractors scratch gradient Mats
func (h *HOGExtractor) hog(gray gocv.Mat) ([]float64, error) {

	gocv.Sobel(gray, &h.gradX, gocv.MatTypeCV32F, 1, 0, 1, 1, 0, gocv.BorderReplicate)
	gocv.Sobel(gray, &h.gradY, gocv.MatTypeCV32F, 0, 1, 1, 1, 0, gocv.BorderReplicate)
	gocv.CartToPolar(h.gradX, h.gradY, &h.mag, &h.angle, true)

	mag, err := h.mag.DataPtrFloat32()

	if err != nil {
		return nil, err
	}

	angle, err := h.angle.DataPtrFloat32()

	if err != nil {
		return nil, err
	}

	p := h.params
	cols := gray.Cols()
	cellsX := cols / p.PixelsPerCell.X
	cellsY := gray.Rows() / p.PixelsPerCell.Y
	binWidth := 180.0 / float64(p.Orient)

	// orientation histogram per cell, indexed [cy][cx][bin]
	cells := make([][][]float64, cellsY)

	for cy := range cells {
		cells[cy] = make([][]float64, cellsX)

		for cx := range cells[cy] {
			cells[cy][cx] = make([]float64, p.Orient)
		}
	}

	for y := 0; y < cellsY*p.PixelsPerCell.Y; y++ {
		cy := y / p.PixelsPerCell.Y

		for x := 0; x < cellsX*p.PixelsPerCell.X; x++ {
			cx := x / p.PixelsPerCell.X
			i := y*cols + x

			// unsigned gradients
			a := math.Mod(float64(angle[i]), 180)
			bin := int(a / binWidth)

			if bin >= p.Orient {
				bin = p.Orient - 1
			}

			cells[cy][cx][bin] += float64(mag[i])
		}
	}

	out := make([]float64, 0, p.hogLen())
	block := make([]float64, 0, p.CellsPerBlock.X*p.CellsPerBlock.Y*p.Orient)

	for by := 0; by+p.CellsPerBlock.Y <= cellsY; by++ {
		for bx := 0; bx+p.CellsPerBlock.X <= cellsX; bx++ {
			block = block[:0]

			for cy := by; cy < by+p.CellsPerBlock.Y; cy++ {
				for cx := bx; cx < bx+p.CellsPerBlock.X; cx++ {
					block = append(block, cells[cy][cx]...)
				}
			}

			l2Hys(block)
			out = append(out, block...)
		}
	}

	return out, nil
}

// l2Hys normalises v in place using L2 norm, clipping and renormalising
func l2Hys(v []float64) {

	norm := math.Sqrt(floats.Dot(v, v) + hogEpsilon*hogEpsilon)
	floats.Scale(1/norm, v)

	for i := range v {
		if v[i] > hogClip {
			v[i] = hogClip
		}
	}

	norm = math.Sqrt(floats.Dot(v, v) + hogEpsilon*hogEpsilon)
	floats.Scale(1/norm, v)
}
