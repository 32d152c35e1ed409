package features

import (
	"image"

	"github.com/swdee/go-vehicletrack"
)

// PatchSize is the width and height every patch is resized to before
// features are computed
const PatchSize = 64

// ColorSpace defines the histogram features computed in one color space
type ColorSpace struct {
	// Name of the color space, one of cs_HLS, cs_HSV, cs_LUV, cs_YUV, cs_YCrCb
	Name string
	// Channels are the channel names to compute histograms for, eg: "S" for
	// the saturation channel of HLS
	Channels []string
	// Bins is the number of histogram bins per channel
	Bins int
}

// Params are the tuning parameters of the HOGExtractor
type Params struct {
	// Orient is the number of HOG orientation bins over 0..180 degrees
	Orient int
	// PixelsPerCell is the HOG cell size
	PixelsPerCell image.Point
	// CellsPerBlock is the HOG block size in cells
	CellsPerBlock image.Point
	// SpatialSize is the size the patch is binned down to for the raw
	// spatial feature
	SpatialSize image.Point
	// ColorSpaces lists the color histogram features
	ColorSpaces []ColorSpace
}

// DefaultParams returns the parameters of the built in configuration
func DefaultParams() Params {
	p, err := ParamsFromConfig(vehicletrack.DefaultConfig())

	if err != nil {
		panic(err)
	}

	return p
}

// ParamsFromConfig reads the feature parameters from the [hog], [spatial],
// [colorspace] and per color space sections
func ParamsFromConfig(cfg *vehicletrack.Config) (Params, error) {

	var p Params
	var err error

	if p.Orient, err = cfg.Int("hog", "orient"); err != nil {
		return p, err
	}

	ints := []struct {
		section string
		key     string
		dst     *int
	}{
		{"hog", "pixels_per_cell_x", &p.PixelsPerCell.X},
		{"hog", "pixels_per_cell_y", &p.PixelsPerCell.Y},
		{"hog", "cells_per_block_x", &p.CellsPerBlock.X},
		{"hog", "cells_per_block_y", &p.CellsPerBlock.Y},
		{"spatial", "sizex", &p.SpatialSize.X},
		{"spatial", "sizey", &p.SpatialSize.Y},
	}

	for _, i := range ints {
		if *i.dst, err = cfg.Int(i.section, i.key); err != nil {
			return p, err
		}
	}

	names, err := cfg.Strings("colorspace", "names")

	if err != nil {
		return p, err
	}

	for _, name := range names {
		cs := ColorSpace{Name: name}

		if cs.Channels, err = cfg.Strings(name, "channel"); err != nil {
			return p, err
		}

		if cs.Bins, err = cfg.Int(name, "nbins"); err != nil {
			return p, err
		}

		p.ColorSpaces = append(p.ColorSpaces, cs)
	}

	return p, nil
}

// validate checks the parameters describe a computable feature vector
func (p Params) validate() error {

	if p.Orient < 1 {
		return vehicletrack.NewConfigError("hog", "orient", "must be at least 1")
	}

	if p.PixelsPerCell.X < 1 || p.PixelsPerCell.Y < 1 {
		return vehicletrack.NewConfigError("hog", "pixels_per_cell", "must be at least 1")
	}

	cells := image.Pt(PatchSize/p.PixelsPerCell.X, PatchSize/p.PixelsPerCell.Y)

	if p.CellsPerBlock.X < 1 || p.CellsPerBlock.Y < 1 ||
		p.CellsPerBlock.X > cells.X || p.CellsPerBlock.Y > cells.Y {
		return vehicletrack.NewConfigError("hog", "cells_per_block",
			"block %v does not fit %v cells", p.CellsPerBlock, cells)
	}

	if p.SpatialSize.X < 1 || p.SpatialSize.Y < 1 {
		return vehicletrack.NewConfigError("spatial", "size", "must be at least 1x1")
	}

	for _, cs := range p.ColorSpaces {
		space, ok := colorSpaces[cs.Name]

		if !ok {
			return vehicletrack.NewConfigError("colorspace", "names",
				"unknown color space %q", cs.Name)
		}

		if cs.Bins < 1 {
			return vehicletrack.NewConfigError(cs.Name, "nbins", "must be at least 1")
		}

		for _, ch := range cs.Channels {
			if space.channel(ch) < 0 {
				return vehicletrack.NewConfigError(cs.Name, "channel",
					"unknown channel %q", ch)
			}
		}
	}

	return nil
}

// hogLen returns the length of the HOG part of the feature vector
func (p Params) hogLen() int {
	cellsX := PatchSize / p.PixelsPerCell.X
	cellsY := PatchSize / p.PixelsPerCell.Y
	blocksX := cellsX - p.CellsPerBlock.X + 1
	blocksY := cellsY - p.CellsPerBlock.Y + 1

	return blocksX * blocksY * p.CellsPerBlock.X * p.CellsPerBlock.Y * p.Orient
}

// Len returns the total feature vector length
func (p Params) Len() int {

	n := p.SpatialSize.X * p.SpatialSize.Y * 3
	n += p.hogLen()

	for _, cs := range p.ColorSpaces {
		n += len(cs.Channels) * cs.Bins
	}

	return n
}
