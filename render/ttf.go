package render

import (
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TTFFont renders captions with a TrueType font face.  Text is rasterised
// in Go and blended onto the frame, so any glyph the font supports can be
// drawn.
type TTFFont struct {
	face font.Face
	// Color of the text
	Color color.RGBA
	// Padding to place around text
	Padding
	// Alignment of the text label to the bounding box
	Alignment Alignment
}

// NewTTFFont returns the Go regular font at the given point size
func NewTTFFont(size float64) (*TTFFont, error) {
	return newTTFFont(goregular.TTF, size)
}

// LoadTTFFont loads a TTF or OTF font file at the given point size
func LoadTTFFont(path string, size float64) (*TTFFont, error) {

	// load font data
	fontBytes, err := os.ReadFile(path)

	if err != nil {
		return nil, errors.Wrap(err, "failed to load font")
	}

	return newTTFFont(fontBytes, size)
}

func newTTFFont(data []byte, size float64) (*TTFFont, error) {

	if size <= 0 {
		return nil, errors.Errorf("font size must be positive, got %f", size)
	}

	// parse the font
	f, err := opentype.Parse(data)

	if err != nil {
		return nil, errors.Wrap(err, "failed to parse font")
	}

	// create a type face
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, errors.Wrap(err, "failed to create type face")
	}

	return &TTFFont{
		face:  face,
		Color: White,
		Padding: Padding{
			LeftPad:   4,
			RightPad:  4,
			TopPad:    4,
			BottomPad: 4,
		},
		Alignment: Left,
	}, nil
}

// TextSize returns the width (X) and ascent height (Y) of text
func (t *TTFFont) TextSize(text string) image.Point {
	advance := font.MeasureString(t.face, text)
	return image.Pt(advance.Ceil(), t.face.Metrics().Ascent.Ceil())
}

// Caption draws text on a label filled with clr above box
func (t *TTFFont) Caption(img *gocv.Mat, text string, box image.Rectangle,
	clr color.RGBA, lineThickness int) error {

	label, textPos := labelLayout(box, t.TextSize(text), t.Padding, t.Alignment, lineThickness)

	return t.drawLabel(img, text, label, textPos, clr)
}

// DrawLabel draws text on a label filled with bg whose top left corner is at
// pos
func (t *TTFFont) DrawLabel(img *gocv.Mat, text string, pos image.Point, bg color.RGBA) error {

	size := t.TextSize(text)
	label := image.Rect(pos.X, pos.Y,
		pos.X+size.X+t.LeftPad+t.RightPad, pos.Y+size.Y+t.TopPad+t.BottomPad)
	textPos := image.Pt(pos.X+t.LeftPad, pos.Y+t.TopPad+size.Y)

	return t.drawLabel(img, text, label, textPos, bg)
}

// drawLabel rasterises the label in Go and copies the part inside the image
// into img
func (t *TTFFont) drawLabel(img *gocv.Mat, text string, label image.Rectangle,
	textPos image.Point, bg color.RGBA) error {

	if img.Type() != gocv.MatTypeCV8UC3 {
		return errors.Errorf("captions require an 8 bit 3 channel image, got %v", img.Type())
	}

	clip := label.Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))

	if clip.Empty() {
		return nil
	}

	// rgba uses image coordinates so the drawer clips for us
	rgba := image.NewRGBA(clip)
	draw.Draw(rgba, clip, image.NewUniform(bg), image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(t.Color),
		Face: t.face,
		Dot:  fixed.P(textPos.X, textPos.Y),
	}
	dr.DrawString(text)

	// Convert image.RGBA to gocv.Mat
	imgRGBA, err := gocv.NewMatFromBytes(clip.Dy(), clip.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)

	if err != nil {
		return errors.Wrap(err, "error creating Mat from RGBA")
	}

	defer imgRGBA.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()

	gocv.CvtColor(imgRGBA, &bgr, gocv.ColorRGBAToBGR)

	region := img.Region(clip)
	defer region.Close()

	bgr.CopyTo(&region)

	return nil
}

// Close frees the font face
func (t *TTFFont) Close() error {
	return t.face.Close()
}
