package sheet

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontLabeler draws labels with a TrueType or OpenType font.
type FontLabeler struct {
	font *opentype.Font
}

// LoadFontLabeler parses the font file at path.
func LoadFontLabeler(path string) (*FontLabeler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	return NewFontLabeler(data)
}

// NewFontLabeler parses font data (TTF, OTF or a collection's first face).
func NewFontLabeler(data []byte) (*FontLabeler, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &FontLabeler{font: f}, nil
}

func (l *FontLabeler) Stamp(tile *gocv.Mat, text string) error {
	if tile.Empty() {
		return fmt.Errorf("cannot label empty tile")
	}

	size := tile.Cols()
	fontPx := labelFontSize(size)
	face, err := opentype.NewFace(l.font, &opentype.FaceOptions{
		Size:    float64(fontPx),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	src, err := tile.ToImage()
	if err != nil {
		return fmt.Errorf("failed to convert tile: %w", err)
	}
	canvas, ok := src.(*image.RGBA)
	if !ok {
		canvas = image.NewRGBA(src.Bounds())
		draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)
	}

	bounds, _ := font.BoundString(face, text)
	tw := (bounds.Max.X - bounds.Min.X).Ceil()
	th := (bounds.Max.Y - bounds.Min.Y).Ceil()
	box, pad := labelBox(size, tw, th, fontPx)

	shadeEllipse(canvas, box, labelShade)

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(box.Min.X+pad) - bounds.Min.X,
			Y: fixed.I(box.Min.Y+pad) - bounds.Min.Y,
		},
	}
	d.DrawString(text)

	labeled, err := gocv.ImageToMatRGB(canvas)
	if err != nil {
		return fmt.Errorf("failed to convert labeled tile: %w", err)
	}
	defer labeled.Close()
	labeled.CopyTo(tile)
	return nil
}

// shadeEllipse darkens the pixels inside the ellipse around box by opacity.
func shadeEllipse(img *image.RGBA, box image.Rectangle, opacity float64) {
	axes := ellipseAxes(box)
	if axes.X <= 0 || axes.Y <= 0 {
		return
	}
	cx := float64(box.Min.X) + float64(box.Dx())/2
	cy := float64(box.Min.Y) + float64(box.Dy())/2
	ax, ay := float64(axes.X), float64(axes.Y)
	keep := 1 - opacity

	r := image.Rect(int(cx-ax), int(cy-ay), int(cx+ax)+1, int(cy+ay)+1).Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dx := (float64(x) + 0.5 - cx) / ax
			dy := (float64(y) + 0.5 - cy) / ay
			if dx*dx+dy*dy > 1 {
				continue
			}
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8(float64(img.Pix[i]) * keep)
			img.Pix[i+1] = uint8(float64(img.Pix[i+1]) * keep)
			img.Pix[i+2] = uint8(float64(img.Pix[i+2]) * keep)
		}
	}
}
