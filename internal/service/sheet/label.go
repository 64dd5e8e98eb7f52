package sheet

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"contactsheet/internal/logger"
)

// Labeler stamps an ordinal into the bottom-right corner of a square BGR tile in place.
type Labeler interface {
	Stamp(tile *gocv.Mat, text string) error
}

// NewLabeler returns a labeler using the TTF/OTF font at fontPath, falling back
// to the built-in Hershey face when no path is given or the font cannot be loaded.
func NewLabeler(fontPath string, logger *logger.Logger) Labeler {
	if fontPath == "" {
		return HersheyLabeler{}
	}
	l, err := LoadFontLabeler(fontPath)
	if err != nil {
		logger.Warning("Label font unavailable, using Hershey: %v", err)
		return HersheyLabeler{}
	}
	return l
}

// labelFontSize is the label height in pixels for a tile edge.
func labelFontSize(size int) int {
	return max(12, size/12)
}

// labelBox places a text box of tw × th pixels at the bottom-right of a size
// tile and returns the box together with the inner padding.
func labelBox(size, tw, th, fontPx int) (image.Rectangle, int) {
	pad := max(2, fontPx/6)
	margin := max(2, fontPx/6)

	w := tw + 2*pad
	h := th + 2*pad
	x1 := max(0, size-margin-w)
	y1 := max(0, size-margin-h)
	return image.Rect(x1, y1, x1+w, y1+h), pad
}

// ellipseAxes returns the semi-axes of the ellipse drawn behind a label box.
func ellipseAxes(box image.Rectangle) image.Point {
	return image.Pt(box.Dx()*7/10, box.Dy()*7/10)
}

const (
	// labelShade is the opacity of the dark ellipse behind a label.
	labelShade = 0.6
	// hersheyUnitHeight is the cap height in pixels of FontHersheySimplex at scale 1.
	hersheyUnitHeight = 22.0
)

// HersheyLabeler draws labels with OpenCV's built-in vector font, which is always available.
type HersheyLabeler struct{}

func (HersheyLabeler) Stamp(tile *gocv.Mat, text string) error {
	if tile.Empty() {
		return fmt.Errorf("cannot label empty tile")
	}

	size := tile.Cols()
	fontPx := labelFontSize(size)
	scale := float64(fontPx) / hersheyUnitHeight
	thickness := max(1, fontPx/12)

	textSize := gocv.GetTextSize(text, gocv.FontHersheySimplex, scale, thickness)
	box, pad := labelBox(size, textSize.X, textSize.Y, fontPx)
	center := image.Pt(box.Min.X+box.Dx()/2, box.Min.Y+box.Dy()/2)

	overlay := tile.Clone()
	defer overlay.Close()
	gocv.Ellipse(&overlay, center, ellipseAxes(box), 0, 0, 360, color.RGBA{0, 0, 0, 255}, -1)
	gocv.AddWeighted(overlay, labelShade, *tile, 1-labelShade, 0, tile)

	origin := image.Pt(box.Min.X+pad, box.Max.Y-pad)
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if err := gocv.PutText(tile, text, origin, gocv.FontHersheySimplex, scale, white, thickness); err != nil {
		return fmt.Errorf("failed to draw label: %w", err)
	}
	return nil
}
