package geometry

import (
	"image"

	"github.com/swdee/go-vehicletrack"
)

const (
	sectionBox    = "boundingbox"
	sectionWindow = "window"
	sectionSteps  = "steps"
)

// Config defines the static camera perspective used to generate the search
// windows.  Lower left corners carry the larger y value as image rows grow
// downwards.
type Config struct {
	// LowerLeftNear and UpperRightNear define the search box of the plane
	// nearest to the camera
	LowerLeftNear  image.Point
	UpperRightNear image.Point
	// LowerLeftFar and UpperRightFar define the search box of the plane
	// furthest from the camera
	LowerLeftFar  image.Point
	UpperRightFar image.Point
	// WindowSizeNear and WindowSizeFar are the window width (X) and
	// height (Y) on the near and far planes
	WindowSizeNear image.Point
	WindowSizeFar  image.Point
	// StepsX and StepsY are the number of window positions per plane along
	// each axis
	StepsX int
	StepsY int
	// StepsZ is the number of depth planes, must be at least 2
	StepsZ int
}

// ConfigFromINI reads the window geometry from the [boundingbox], [window]
// and [steps] sections
func ConfigFromINI(cfg *vehicletrack.Config) (Config, error) {

	var c Config
	var err error

	points := []struct {
		section string
		key     string
		dst     *image.Point
	}{
		{sectionBox, "lower_left_near", &c.LowerLeftNear},
		{sectionBox, "upper_right_near", &c.UpperRightNear},
		{sectionBox, "lower_left_far", &c.LowerLeftFar},
		{sectionBox, "upper_right_far", &c.UpperRightFar},
		{sectionWindow, "window_size_near", &c.WindowSizeNear},
		{sectionWindow, "window_size_far", &c.WindowSizeFar},
	}

	for _, p := range points {
		if *p.dst, err = cfg.Point(p.section, p.key); err != nil {
			return c, err
		}
	}

	steps := []struct {
		key string
		dst *int
	}{
		{"steps_x", &c.StepsX},
		{"steps_y", &c.StepsY},
		{"steps_z", &c.StepsZ},
	}

	for _, s := range steps {
		if *s.dst, err = cfg.Int(sectionSteps, s.key); err != nil {
			return c, err
		}
	}

	return c, nil
}

// Generator produces the perspective window grid for a static camera
// configuration.  It holds no per frame state and is safe for concurrent use.
type Generator struct {
	cfg    Config
	planes []ZPlane
}

// NewGenerator validates the configuration and returns a Generator
func NewGenerator(cfg Config) (*Generator, error) {

	if cfg.StepsZ < 2 {
		return nil, vehicletrack.NewConfigError(sectionSteps, "steps_z",
			"must be at least 2, got %d", cfg.StepsZ)
	}

	if cfg.StepsX < 1 {
		return nil, vehicletrack.NewConfigError(sectionSteps, "steps_x",
			"must be at least 1, got %d", cfg.StepsX)
	}

	if cfg.StepsY < 1 {
		return nil, vehicletrack.NewConfigError(sectionSteps, "steps_y",
			"must be at least 1, got %d", cfg.StepsY)
	}

	g := &Generator{
		cfg:    cfg,
		planes: make([]ZPlane, cfg.StepsZ),
	}

	for i := 0; i < cfg.StepsZ; i++ {
		t := float64(i) / float64(cfg.StepsZ-1)

		z := ZPlane{
			Index:      i,
			LowerLeft:  interpolate(cfg.LowerLeftNear, cfg.LowerLeftFar, t),
			UpperRight: interpolate(cfg.UpperRightNear, cfg.UpperRightFar, t),
			WindowSize: interpolate(cfg.WindowSizeNear, cfg.WindowSizeFar, t),
		}

		if z.WindowSize.X <= 0 || z.WindowSize.Y <= 0 {
			return nil, vehicletrack.NewConfigError(sectionWindow, "",
				"plane %d has empty window size %v", i, z.WindowSize)
		}

		// box extents are taken from the raw corners so an inverted box is
		// rejected rather than normalised
		width := z.UpperRight.X - z.LowerLeft.X
		height := z.LowerLeft.Y - z.UpperRight.Y

		if z.WindowSize.X > width || z.WindowSize.Y > height {
			return nil, vehicletrack.NewConfigError(sectionBox, "",
				"plane %d window size %dx%d exceeds box %dx%d", i,
				z.WindowSize.X, z.WindowSize.Y, width, height)
		}

		g.planes[i] = z
	}

	return g, nil
}

// GeneratorFromConfig creates a Generator from the INI configuration
func GeneratorFromConfig(cfg *vehicletrack.Config) (*Generator, error) {

	c, err := ConfigFromINI(cfg)

	if err != nil {
		return nil, err
	}

	return NewGenerator(c)
}

// Config returns the configuration the generator was created with
func (g *Generator) Config() Config {
	return g.cfg
}

// Planes returns the z-planes ordered from near to far
func (g *Generator) Planes() []ZPlane {
	out := make([]ZPlane, len(g.planes))
	copy(out, g.planes)
	return out
}

// Size returns the number of windows in every generated grid
func (g *Generator) Size() int {
	return g.cfg.StepsZ * g.cfg.StepsX * g.cfg.StepsY
}

// Grid generates the ordered window grid.  Windows are ordered by plane,
// then by x anchor, then by y anchor.
func (g *Generator) Grid() Grid {

	grid := make(Grid, 0, g.Size())

	for _, z := range g.planes {
		ws := z.WindowSize

		// left and right edges are spaced independently, as are top and
		// bottom, so truncation may vary a window by one pixel
		left := linspace(z.LowerLeft.X, z.UpperRight.X-ws.X, g.cfg.StepsX)
		right := linspace(z.LowerLeft.X+ws.X, z.UpperRight.X, g.cfg.StepsX)
		top := linspace(z.UpperRight.Y, z.LowerLeft.Y-ws.Y, g.cfg.StepsY)
		bottom := linspace(z.UpperRight.Y+ws.Y, z.LowerLeft.Y, g.cfg.StepsY)

		for i := range left {
			for j := range top {
				grid = append(grid, Window{
					Plane:     z.Index,
					Rectangle: image.Rect(left[i], top[j], right[i], bottom[j]),
				})
			}
		}
	}

	return grid
}

// interpolate returns the point at factor t between start and end, with
// each coordinate truncated toward zero
func interpolate(start, end image.Point, t float64) image.Point {
	return image.Pt(
		int(float64(start.X)+t*float64(end.X-start.X)),
		int(float64(start.Y)+t*float64(end.Y-start.Y)),
	)
}

// linspace returns num evenly spaced integers from start to stop inclusive,
// truncated toward zero
func linspace(start, stop, num int) []int {

	out := make([]int, num)

	if num == 1 {
		out[0] = start
		return out
	}

	step := float64(stop-start) / float64(num-1)

	for i := 0; i < num; i++ {
		out[i] = int(float64(start) + float64(i)*step)
	}

	// endpoint is exact regardless of floating point error
	out[num-1] = stop

	return out
}
