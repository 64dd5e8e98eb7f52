package sheet

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// decodeFlags reads every supported format as 8-bit BGR: grayscale and
// palette images are expanded, alpha is dropped and EXIF rotation is ignored
// so the result keeps the file's stored dimensions.
const decodeFlags = gocv.IMReadColor | gocv.IMReadIgnoreOrientation

// decodeBGR loads the image at path as a CV_8UC3 Mat. The caller owns the Mat.
func decodeBGR(path string) (gocv.Mat, error) {
	if _, err := os.Stat(path); err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to stat image: %w", err)
	}

	mat := gocv.IMRead(path, decodeFlags)
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, fmt.Errorf("failed to decode image %s", path)
	}
	return mat, nil
}

// fitWithin returns the dimensions of a w × h image shrunk so that its longer
// edge equals size. Images already inside the box are left untouched.
func fitWithin(w, h, size int) (int, int) {
	if w <= size && h <= size {
		return w, h
	}
	if w >= h {
		return size, max(1, roundDiv(h*size, w))
	}
	return max(1, roundDiv(w*size, h)), size
}

// roundDiv divides with rounding to nearest.
func roundDiv(a, b int) int {
	return (2*a + b) / (2 * b)
}

// letterbox shrinks src to fit a size × size square and centers it on the
// mid-gray padding color. The caller owns the returned Mat.
func letterbox(src gocv.Mat, size int) (gocv.Mat, error) {
	w, h := src.Cols(), src.Rows()
	nw, nh := fitWithin(w, h, size)

	scaled := src
	if nw != w || nh != h {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(src, &resized, image.Pt(nw, nh), 0, 0, gocv.InterpolationLanczos4)
		if resized.Empty() {
			return gocv.Mat{}, fmt.Errorf("failed to resize %dx%d to %dx%d", w, h, nw, nh)
		}
		scaled = resized
	}

	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(PaddingGray, PaddingGray, PaddingGray, 0), size, size, gocv.MatTypeCV8UC3)

	x := (size - nw) / 2
	y := (size - nh) / 2
	roi := canvas.Region(image.Rect(x, y, x+nw, y+nh))
	defer roi.Close()
	scaled.CopyTo(&roi)

	return canvas, nil
}
