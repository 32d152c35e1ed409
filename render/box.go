package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-vehicletrack/heatmap"
	"gocv.io/x/gocv"
)

// BoxStyle defines how vehicle bounding boxes are drawn
type BoxStyle struct {
	Color         color.RGBA
	LineThickness int
	// Captioner labels each box with "vehicle N", nil draws no captions
	Captioner Captioner
}

// DefaultBoxStyle returns thick red boxes without captions
func DefaultBoxStyle() BoxStyle {
	return BoxStyle{
		Color:         Red,
		LineThickness: 6,
	}
}

// HeatBoxes renders the bounding boxes of heat map components on img
func HeatBoxes(img *gocv.Mat, boxes []heatmap.Box, style BoxStyle) error {

	for _, box := range boxes {
		gocv.Rectangle(img, box.Rectangle, style.Color, style.LineThickness)
	}

	if style.Captioner == nil {
		return nil
	}

	// captions go on top so neighbouring box lines never cross them
	for i, box := range boxes {
		text := fmt.Sprintf("vehicle %d", i+1)

		if err := style.Captioner.Caption(img, text, box.Rectangle, style.Color,
			style.LineThickness); err != nil {
			return err
		}
	}

	return nil
}

// Rectangles draws plain rectangles on img
func Rectangles(img *gocv.Mat, rects []image.Rectangle, clr color.RGBA, lineThickness int) {
	for _, r := range rects {
		gocv.Rectangle(img, r, clr, lineThickness)
	}
}
