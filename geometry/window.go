// Package geometry generates the perspective grid of sliding search windows
// evaluated on every video frame.
package geometry

import (
	"fmt"
	"image"
)

// Window is a candidate search rectangle within a frame.  Rect.Min is the
// top left corner and Rect.Max the exclusive bottom right corner, so the
// window covers rows Min.Y..Max.Y-1 and columns Min.X..Max.X-1.
type Window struct {
	// Plane is the index of the z-plane the window was generated for
	Plane int
	image.Rectangle
}

// String returns a readable representation of the window
func (w Window) String() string {
	return fmt.Sprintf("z%d%v", w.Plane, w.Rectangle)
}

// ZPlane is one discrete perspective depth level.  Plane 0 is nearest to the
// camera.
type ZPlane struct {
	// Index of the plane from near (0) to far
	Index int
	// LowerLeft is the bottom left corner of the planes bounding box
	LowerLeft image.Point
	// UpperRight is the top right corner of the planes bounding box
	UpperRight image.Point
	// WindowSize is the width (X) and height (Y) of windows tiling the plane
	WindowSize image.Point
}

// Box returns the planes bounding box as a rectangle
func (z ZPlane) Box() image.Rectangle {
	return image.Rect(z.LowerLeft.X, z.UpperRight.Y, z.UpperRight.X, z.LowerLeft.Y)
}

// Grid is the ordered collection of windows to evaluate for one frame
type Grid []Window

// Len returns the number of windows in the grid
func (g Grid) Len() int {
	return len(g)
}

// Bounds returns the smallest rectangle containing every window of the grid
func (g Grid) Bounds() image.Rectangle {

	var r image.Rectangle

	for i, w := range g {
		if i == 0 {
			r = w.Rectangle
			continue
		}

		r = r.Union(w.Rectangle)
	}

	return r
}

// Plane returns the windows belonging to z-plane index z
func (g Grid) Plane(z int) Grid {

	out := make(Grid, 0)

	for _, w := range g {
		if w.Plane == z {
			out = append(out, w)
		}
	}

	return out
}
