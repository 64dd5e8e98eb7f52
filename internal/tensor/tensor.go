// Package tensor holds the float pixel buffers handed across the host boundary.
package tensor

import (
	"fmt"
	"math"
)

// DTypeFloat32 is the element type of every buffer produced by this package.
const DTypeFloat32 = "float32"

// Image is a dense height × width × channels buffer with values in [0, 1].
// Channels is 3 (RGB) for pictures and 1 for masks.
type Image struct {
	Height   int
	Width    int
	Channels int
	Pix      []float32
}

// NewImage allocates a zeroed image.
func NewImage(height, width, channels int) *Image {
	return &Image{
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      make([]float32, height*width*channels),
	}
}

// Filled allocates an image with every element set to v.
func Filled(height, width, channels int, v float32) *Image {
	img := NewImage(height, width, channels)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// FromBGR converts 8-bit interleaved BGR bytes (the layout of a CV_8UC3 Mat)
// into an RGB image scaled to [0, 1].
func FromBGR(data []byte, height, width int) (*Image, error) {
	if len(data) != height*width*3 {
		return nil, fmt.Errorf("tensor: expected %d bytes for %dx%d BGR, got %d", height*width*3, height, width, len(data))
	}
	img := NewImage(height, width, 3)
	for i := 0; i < height*width; i++ {
		img.Pix[i*3] = float32(data[i*3+2]) / 255
		img.Pix[i*3+1] = float32(data[i*3+1]) / 255
		img.Pix[i*3+2] = float32(data[i*3]) / 255
	}
	return img, nil
}

// BGR8 converts the image back to interleaved 8-bit bytes. Three-channel images
// are emitted as BGR, single-channel images as gray.
func (m *Image) BGR8() []byte {
	out := make([]byte, len(m.Pix))
	if m.Channels == 3 {
		for i := 0; i < m.Height*m.Width; i++ {
			out[i*3] = to8(m.Pix[i*3+2])
			out[i*3+1] = to8(m.Pix[i*3+1])
			out[i*3+2] = to8(m.Pix[i*3])
		}
		return out
	}
	for i, v := range m.Pix {
		out[i] = to8(v)
	}
	return out
}

func to8(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(math.Round(float64(v) * 255))
}

// At returns the value at row y, column x, channel c.
func (m *Image) At(y, x, c int) float32 {
	return m.Pix[(y*m.Width+x)*m.Channels+c]
}

// Paste overwrites the region of m starting at (x, y) with src. Parts of src
// falling outside m are dropped. Channel counts must match.
func (m *Image) Paste(src *Image, x, y int) error {
	if src.Channels != m.Channels {
		return fmt.Errorf("tensor: channel mismatch %d != %d", src.Channels, m.Channels)
	}
	for row := 0; row < src.Height; row++ {
		dy := y + row
		if dy < 0 || dy >= m.Height {
			continue
		}
		x0, x1 := 0, src.Width
		if x < 0 {
			x0 = -x
		}
		if x+x1 > m.Width {
			x1 = m.Width - x
		}
		if x0 >= x1 {
			continue
		}
		srcStart := (row*src.Width + x0) * src.Channels
		srcEnd := (row*src.Width + x1) * src.Channels
		dstStart := (dy*m.Width + x + x0) * m.Channels
		copy(m.Pix[dstStart:], src.Pix[srcStart:srcEnd])
	}
	return nil
}

// Batch wraps the image with a leading batch axis of size 1. Masks become
// (1, H, W), pictures (1, H, W, C). The pixel slice is shared, not copied.
func (m *Image) Batch() *Tensor {
	shape := []int{1, m.Height, m.Width, m.Channels}
	if m.Channels == 1 {
		shape = shape[:3]
	}
	return &Tensor{shape: shape, data: m.Pix}
}

// Tensor is a float32 n-dimensional array.
type Tensor struct {
	shape []int
	data  []float32
}

// New builds a tensor over data. The product of shape must equal len(data).
func New(shape []int, data []float32) (*Tensor, error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("tensor: shape %v needs %d elements, got %d", shape, n, len(data))
	}
	return &Tensor{shape: append([]int(nil), shape...), data: data}, nil
}

func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

func (t *Tensor) DType() string {
	return DTypeFloat32
}

func (t *Tensor) Data() []float32 {
	return t.data
}

// Sum reduces all elements.
func (t *Tensor) Sum() float64 {
	var s float64
	for _, v := range t.data {
		s += float64(v)
	}
	return s
}
