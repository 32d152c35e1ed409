// Package report plots the recorded statistics of a tracking session.
package report

import (
	"fmt"
	"image/color"
	"os"

	"github.com/pkg/errors"
	"github.com/swdee/go-vehicletrack/store"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	matchColor     = color.RGBA{R: 0, G: 128, B: 255, A: 255}
	componentColor = color.RGBA{R: 255, G: 128, B: 0, A: 255}
	drawnColor     = color.RGBA{R: 220, G: 0, B: 0, A: 255}
	minHeatColor   = color.RGBA{R: 96, G: 96, B: 96, A: 255}
)

// Summary aggregates the frame statistics of a session
type Summary struct {
	Frames int
	// Matches is the total matched windows over all frames
	Matches int
	// MeanMatches is the average matched windows per frame
	MeanMatches float64
	// Drawn is the total boxes drawn over all frames
	Drawn int
	// FramesWithBoxes counts frames where at least one box was drawn
	FramesWithBoxes int
	// PeakHeat is the highest heat reached
	PeakHeat float64
}

// Summarize returns the aggregate of stats
func Summarize(stats []store.FrameStat) Summary {

	s := Summary{Frames: len(stats)}

	if len(stats) == 0 {
		return s
	}

	matches := make([]float64, len(stats))
	peaks := make([]float64, len(stats))

	for i, f := range stats {
		matches[i] = float64(f.Matches)
		peaks[i] = f.MaxHeat
		s.Drawn += f.Drawn

		if f.Drawn > 0 {
			s.FramesWithBoxes++
		}
	}

	s.Matches = int(floats.Sum(matches))
	s.MeanMatches = floats.Sum(matches) / float64(len(stats))
	s.PeakHeat = floats.Max(peaks)

	return s
}

// String formats the summary on one line
func (s Summary) String() string {
	return fmt.Sprintf("frames=%d matches=%d (%.1f/frame) drawn=%d frames_with_boxes=%d peak_heat=%.1f",
		s.Frames, s.Matches, s.MeanMatches, s.Drawn, s.FramesWithBoxes, s.PeakHeat)
}

// PlotSession renders the per frame counts and heat extremes of a session as
// two stacked plots and saves them as a PNG at path
func PlotSession(title string, stats []store.FrameStat, path string) error {

	if len(stats) == 0 {
		return errors.New("no frames to plot")
	}

	pCounts := plot.New()
	pCounts.Title.Text = title
	pCounts.X.Label.Text = "Frame"
	pCounts.Y.Label.Text = "Count"

	pHeat := plot.New()
	pHeat.Title.Text = "Heat"
	pHeat.X.Label.Text = "Frame"
	pHeat.Y.Label.Text = "Heat"

	matchPts := make(plotter.XYs, len(stats))
	componentPts := make(plotter.XYs, len(stats))
	drawnPts := make(plotter.XYs, len(stats))
	maxPts := make(plotter.XYs, len(stats))
	minPts := make(plotter.XYs, len(stats))

	for i, f := range stats {
		x := float64(f.Index)
		matchPts[i] = plotter.XY{X: x, Y: float64(f.Matches)}
		componentPts[i] = plotter.XY{X: x, Y: float64(f.Components)}
		drawnPts[i] = plotter.XY{X: x, Y: float64(f.Drawn)}
		maxPts[i] = plotter.XY{X: x, Y: f.MaxHeat}
		minPts[i] = plotter.XY{X: x, Y: f.MinHeat}
	}

	series := []struct {
		p     *plot.Plot
		label string
		pts   plotter.XYs
		clr   color.Color
	}{
		{pCounts, "matched windows", matchPts, matchColor},
		{pCounts, "components", componentPts, componentColor},
		{pCounts, "drawn boxes", drawnPts, drawnColor},
		{pHeat, "max heat", maxPts, drawnColor},
		{pHeat, "min heat", minPts, minHeatColor},
	}

	for _, s := range series {
		line, err := plotter.NewLine(s.pts)

		if err != nil {
			return errors.Wrapf(err, "error plotting %s", s.label)
		}

		line.Color = s.clr
		line.Width = vg.Points(1)
		s.p.Add(line)
		s.p.Legend.Add(s.label, line)
	}

	for _, p := range []*plot.Plot{pCounts, pHeat} {
		p.Add(plotter.NewGrid())
		p.Legend.Top = true
		p.Legend.Left = false
		p.Legend.XOffs = -10
		p.Legend.YOffs = -10
	}

	img := vgimg.New(14*vg.Inch, 10*vg.Inch)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows: 2,
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: 4 * vg.Millimeter,
	}

	canvases := plot.Align([][]*plot.Plot{{pCounts}, {pHeat}}, tiles, dc)
	pCounts.Draw(canvases[0][0])
	pHeat.Draw(canvases[1][0])

	f, err := os.Create(path)

	if err != nil {
		return errors.Wrapf(err, "error creating %s", path)
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "error writing %s", path)
	}

	return f.Close()
}
