package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Captioner writes a text caption on a filled label sitting on top of a
// bounding box
type Captioner interface {
	Caption(img *gocv.Mat, text string, box image.Rectangle, clr color.RGBA,
		lineThickness int) error
}

// Font defines the parameters for rendering text on an image using GoCV
// Hershey fonts
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	Padding
	// Alignment of the text label to the bounding box
	Alignment Alignment
}

// Padding is the space in pixels left around caption text
type Padding struct {
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     White,
		Thickness: 1,
		LineType:  gocv.LineAA,
		Padding: Padding{
			LeftPad:   4,
			RightPad:  4,
			TopPad:    4,
			BottomPad: 6,
		},
		Alignment: Left,
	}
}

// Caption draws text on a label filled with clr above box
func (f Font) Caption(img *gocv.Mat, text string, box image.Rectangle,
	clr color.RGBA, lineThickness int) error {

	textSize := gocv.GetTextSize(text, f.Face, f.Scale, f.Thickness)
	label, textPos := labelLayout(box, textSize, f.Padding, f.Alignment, lineThickness)

	// draw box text gets written on
	gocv.Rectangle(img, label, clr, -1)

	gocv.PutTextWithParams(img, text, textPos, f.Face, f.Scale, f.Color,
		f.Thickness, f.LineType, false)

	return nil
}

// labelLayout calculates the rectangle of a caption label sitting on top of
// box and the baseline origin of its text
func labelLayout(box image.Rectangle, textSize image.Point, pad Padding,
	align Alignment, lineThickness int) (image.Rectangle, image.Point) {

	var centerX int

	switch align {
	case Center:
		centerX = (box.Min.X + box.Max.X) / 2

	case Right:
		centerX = box.Max.X - (textSize.X / 2) - pad.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = box.Min.X + (textSize.X / 2) + pad.LeftPad - (lineThickness / 2)
	}

	// Adjust the label position so the text is centered horizontally
	textPos := image.Pt(centerX-textSize.X/2, box.Min.Y-pad.BottomPad)

	label := image.Rect(centerX-textSize.X/2-pad.LeftPad,
		box.Min.Y-textSize.Y-pad.TopPad-pad.BottomPad,
		centerX+textSize.X/2+pad.RightPad, box.Min.Y)

	return label, textPos
}
