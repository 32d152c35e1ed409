package render

import (
	"image"
	"image/color"

	"github.com/swdee/go-vehicletrack/geometry"
	"gocv.io/x/gocv"
)

// WindowGrid draws every search window of grid on img, colored by z-plane
func WindowGrid(img *gocv.Mat, grid geometry.Grid, lineThickness int) {
	for _, w := range grid {
		gocv.Rectangle(img, w.Rectangle, PlaneColor(w.Plane), lineThickness)
	}
}

// PlaneBoxes draws the bounding box of each z-plane on img
func PlaneBoxes(img *gocv.Mat, planes []geometry.ZPlane, lineThickness int) {
	for _, z := range planes {
		gocv.Rectangle(img, z.Box(), PlaneColor(z.Index), lineThickness)
	}
}

// SearchRegion draws the closed outline polygons of the searched area
func SearchRegion(img *gocv.Mat, outline [][]image.Point, clr color.RGBA, lineThickness int) {

	if len(outline) == 0 {
		return
	}

	pv := gocv.NewPointsVectorFromPoints(outline)
	defer pv.Close()

	gocv.Polylines(img, pv, true, clr, lineThickness)
}
