package sheet

import (
	"path/filepath"

	"contactsheet/internal/logger"
	"contactsheet/internal/tensor"
)

const (
	// PlaceholderSize is the edge of the image returned when nothing can be loaded.
	PlaceholderSize = 512
	// NoImageFilename is returned when the selection is outside the file list.
	NoImageFilename = "no_image"
	// ErrorFilenamePrefix marks a selected file that failed to decode.
	ErrorFilenamePrefix = "error_"
)

// Selection is a loaded image with its mask and filename.
type Selection struct {
	Image    *tensor.Image
	Mask     *tensor.Image
	Filename string
}

// Selector loads one image of a file list at full resolution.
type Selector struct {
	logger *logger.Logger
}

func NewSelector(logger *logger.Logger) *Selector {
	return &Selector{logger: logger}
}

// Select loads paths[index-1]. The mask is fully opaque. An index outside
// [1, len(paths)] yields the placeholder with "no_image"; a decode failure
// yields the placeholder with "error_<basename>".
func (s *Selector) Select(paths []string, index int) Selection {
	if len(paths) == 0 || index < 1 || index > len(paths) {
		return placeholderSelection(NoImageFilename)
	}

	path := paths[index-1]
	name := filepath.Base(path)

	mat, err := decodeBGR(path)
	if err != nil {
		s.logger.Error("Error loading image %s: %v", path, err)
		return placeholderSelection(ErrorFilenamePrefix + name)
	}
	defer mat.Close()

	img, err := tensor.FromBGR(mat.ToBytes(), mat.Rows(), mat.Cols())
	if err != nil {
		s.logger.Error("Error loading image %s: %v", path, err)
		return placeholderSelection(ErrorFilenamePrefix + name)
	}

	return Selection{
		Image:    img,
		Mask:     tensor.Filled(img.Height, img.Width, 1, 1),
		Filename: name,
	}
}

func placeholderSelection(filename string) Selection {
	return Selection{
		Image:    tensor.Filled(PlaceholderSize, PlaceholderSize, 3, PlaceholderValue),
		Mask:     tensor.Filled(PlaceholderSize, PlaceholderSize, 1, 1),
		Filename: filename,
	}
}
