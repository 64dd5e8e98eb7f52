package sheet

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"

	"contactsheet/internal/logger"
	"contactsheet/internal/tensor"
)

// writeImage encodes img as PNG into dir/name.
func writeImage(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return path
}

// writeSolid writes a w × h PNG filled with c.
func writeSolid(t *testing.T, dir, name string, w, h int, c color.NRGBA) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return writeImage(t, dir, name, img)
}

// writeCorrupt writes a file with an image extension that cannot be decoded.
func writeCorrupt(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake image data for testing purposes"), 0644); err != nil {
		t.Fatalf("Failed to create corrupt file: %v", err)
	}
	return path
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

// recordingLabeler remembers the labels it was asked to stamp without drawing.
type recordingLabeler struct {
	texts []string
	err   error
}

func (r *recordingLabeler) Stamp(tile *gocv.Mat, text string) error {
	r.texts = append(r.texts, text)
	return r.err
}

func newTestCompositor(t *testing.T, labeler Labeler, cacheSize int) *Compositor {
	t.Helper()

	c, err := NewCompositor(logger.Discard(), labeler, cacheSize)
	if err != nil {
		t.Fatalf("NewCompositor failed: %v", err)
	}
	return c
}

// assertColor checks the RGB value at (y, x) against an 8-bit color.
func assertColor(t *testing.T, img *tensor.Image, y, x int, c color.NRGBA) {
	t.Helper()

	want := [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
	for ch := 0; ch < 3; ch++ {
		if got := img.At(y, x, ch); math.Abs(float64(got-want[ch])) > 0.02 {
			t.Errorf("Pixel (%d,%d) channel %d = %v, want %v", y, x, ch, got, want[ch])
		}
	}
}

// assertValue checks that all channels at (y, x) equal v.
func assertValue(t *testing.T, img *tensor.Image, y, x int, v float32) {
	t.Helper()

	for ch := 0; ch < img.Channels; ch++ {
		if got := img.At(y, x, ch); math.Abs(float64(got-v)) > 1e-6 {
			t.Errorf("Pixel (%d,%d) channel %d = %v, want %v", y, x, ch, got, v)
		}
	}
}

var gray = color.NRGBA{R: PaddingGray, G: PaddingGray, B: PaddingGray, A: 255}
