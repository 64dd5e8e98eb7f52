package sheet

import (
	"fmt"

	"gocv.io/x/gocv"

	"contactsheet/internal/tensor"
)

// EncodePNG encodes an RGB image or a single-channel mask as PNG.
func EncodePNG(img *tensor.Image) ([]byte, error) {
	var mt gocv.MatType
	switch img.Channels {
	case 3:
		mt = gocv.MatTypeCV8UC3
	case 1:
		mt = gocv.MatTypeCV8UC1
	default:
		return nil, fmt.Errorf("unsupported channel count %d", img.Channels)
	}

	mat, err := gocv.NewMatFromBytes(img.Height, img.Width, mt, img.BGR8())
	if err != nil {
		return nil, fmt.Errorf("failed to build image: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	encoded := make([]byte, len(buf.GetBytes()))
	copy(encoded, buf.GetBytes())
	return encoded, nil
}
