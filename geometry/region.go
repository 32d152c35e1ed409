package geometry

import (
	"image"

	clipper "github.com/ctessum/go.clipper"
)

// SearchRegion returns the outline of the area covered by the given planes
// bounding boxes, as one or more closed polygons.  Overlapping boxes are
// merged so the outline shows the total image area searched.
func SearchRegion(planes []ZPlane) [][]image.Point {

	if len(planes) == 0 {
		return nil
	}

	paths := make(clipper.Paths, 0, len(planes))

	for _, z := range planes {
		paths = append(paths, rectPath(z.Box()))
	}

	c := clipper.NewClipper(0)
	c.AddPaths(paths, clipper.PtSubject, true)

	solution, ok := c.Execute1(clipper.CtUnion, clipper.PftNonZero, clipper.PftNonZero)

	if !ok {
		return nil
	}

	polys := make([][]image.Point, 0, len(solution))

	for _, path := range solution {
		poly := make([]image.Point, 0, len(path))

		for _, pt := range path {
			poly = append(poly, image.Pt(int(pt.X), int(pt.Y)))
		}

		polys = append(polys, poly)
	}

	return polys
}

// rectPath converts a rectangle to a clockwise clipper path
func rectPath(r image.Rectangle) clipper.Path {
	return clipper.Path{
		&clipper.IntPoint{X: clipper.CInt(r.Min.X), Y: clipper.CInt(r.Min.Y)},
		&clipper.IntPoint{X: clipper.CInt(r.Max.X), Y: clipper.CInt(r.Min.Y)},
		&clipper.IntPoint{X: clipper.CInt(r.Max.X), Y: clipper.CInt(r.Max.Y)},
		&clipper.IntPoint{X: clipper.CInt(r.Min.X), Y: clipper.CInt(r.Max.Y)},
	}
}
