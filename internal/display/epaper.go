package display

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
	conndisplay "periph.io/x/conn/v3/display"
)

const (
	fontSize    = 18
	lineSpacing = 1.4
	leftMargin  = 4
)

// EPaper renders black text on white onto an e-paper panel.
type EPaper struct {
	drawer  conndisplay.Drawer
	powerUp func() error
	ready   bool
	face    font.Face

	// Rotate turns the drawing a quarter turn clockwise onto the panel.
	Rotate bool
}

// NewEPaper draws onto drawer. powerUp, if not nil, is run once before the
// first draw so the panel is only powered up when something is shown.
func NewEPaper(drawer conndisplay.Drawer, powerUp func() error) (*EPaper, error) {
	f, err := truetype.Parse(gomonobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{Size: fontSize, DPI: 72, Hinting: font.HintingFull})
	return &EPaper{drawer: drawer, powerUp: powerUp, face: face}, nil
}

func (e *EPaper) Render(primary, secondary string, secondaryPos image.Point) error {
	if !e.ready && e.powerUp != nil {
		if err := e.powerUp(); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", e.drawer, err)
		}
	}
	e.ready = true

	img := e.compose(primary, secondary, secondaryPos)
	if e.Rotate {
		img = rotate90(img)
	}
	bounds := e.drawer.Bounds()
	if err := e.drawer.Draw(bounds, img, bounds.Min); err != nil {
		return fmt.Errorf("failed to draw to %s: %w", e.drawer, err)
	}
	return nil
}

func (e *EPaper) compose(primary, secondary string, secondaryPos image.Point) image.Image {
	panel := e.drawer.Bounds()
	w, h := panel.Dx(), panel.Dy()
	if e.Rotate {
		w, h = h, w
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)
	dc.SetFontFace(e.face)

	lineHeight := dc.FontHeight() * lineSpacing
	y := lineHeight
	for _, line := range strings.Split(primary, "\n") {
		dc.DrawString(line, leftMargin, y)
		y += lineHeight
	}
	dc.DrawString(secondary, float64(secondaryPos.X), float64(secondaryPos.Y))
	return dc.Image()
}

// rotate90 turns src a quarter turn clockwise.
func rotate90(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Max.Y-1-y, x-b.Min.X, src.At(x, y))
		}
	}
	return dst
}
