package tracker

import (
	vehicletrack "github.com/swdee/go-vehicletrack"
)

const sectionHeatMap = "heatmap"

// Params are the heat map tuning parameters of a Tracker
type Params struct {
	// FadeHeat is subtracted from every cell at the start of each frame
	// after the first
	FadeHeat float64
	// MaxHeat is the upper clamp applied after accumulating matches
	MaxHeat float64
	// Threshold is the heat a cell must exceed to be part of a component
	Threshold float64
	// DrawCutoffX only draws boxes whose left edge lies right of this column
	DrawCutoffX int
	// BoxThickness is the line width of drawn boxes
	BoxThickness int
}

// DefaultParams returns the parameters tuned for 1280x720 highway video
func DefaultParams() Params {
	return Params{
		FadeHeat:     1,
		MaxHeat:      10,
		Threshold:    3,
		DrawCutoffX:  640,
		BoxThickness: 6,
	}
}

// ParamsFromConfig reads the [heatmap] section
func ParamsFromConfig(cfg *vehicletrack.Config) (Params, error) {

	var p Params
	var err error

	floats := []struct {
		key string
		dst *float64
	}{
		{"fadeheat", &p.FadeHeat},
		{"maxheat", &p.MaxHeat},
		{"threshold", &p.Threshold},
	}

	for _, f := range floats {
		if *f.dst, err = cfg.Float(sectionHeatMap, f.key); err != nil {
			return p, err
		}
	}

	if p.DrawCutoffX, err = cfg.Int(sectionHeatMap, "draw_cutoff_x"); err != nil {
		return p, err
	}

	if p.BoxThickness, err = cfg.Int(sectionHeatMap, "box_thickness"); err != nil {
		return p, err
	}

	return p, p.validate()
}

func (p Params) validate() error {

	if p.FadeHeat < 0 {
		return vehicletrack.NewConfigError(sectionHeatMap, "fadeheat",
			"must not be negative, got %g", p.FadeHeat)
	}

	if p.MaxHeat <= 0 {
		return vehicletrack.NewConfigError(sectionHeatMap, "maxheat",
			"must be positive, got %g", p.MaxHeat)
	}

	if p.BoxThickness < 1 {
		return vehicletrack.NewConfigError(sectionHeatMap, "box_thickness",
			"must be at least 1, got %d", p.BoxThickness)
	}

	return nil
}
