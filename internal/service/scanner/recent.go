package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"contactsheet/internal/logger"
	"contactsheet/internal/model"
)

// imageExtensions lists the recognized extensions, lower case without the dot.
var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"bmp":  true,
	"tiff": true,
	"tif":  true,
	"webp": true,
}

// IsImageFile reports whether name carries a recognized image extension, ignoring case.
func IsImageFile(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return imageExtensions[strings.ToLower(ext)]
}

// Scanner finds the most recently modified images in a folder.
type Scanner struct {
	logger *logger.Logger
}

// NewScanner creates a Scanner reporting skipped files to logger.
func NewScanner(logger *logger.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// ListRecent returns up to maxCount image files directly inside folder, newest
// first. Equal modification times are ordered by path. Hidden files (names
// starting with a dot) are never listed. A missing or unreadable folder yields
// an empty list; when the listing fails partway, the entries read before the
// failure are still used. Files whose metadata cannot be read are skipped.
func (s *Scanner) ListRecent(folder string, maxCount int) []model.ImageFileRef {
	if folder == "" || maxCount <= 0 {
		return []model.ImageFileRef{}
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warning("Cannot read folder %s: %v", folder, err)
		}
		if len(entries) == 0 {
			return []model.ImageFileRef{}
		}
	}

	seen := make(map[string]bool, len(entries))
	refs := make([]model.ImageFileRef, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") || !IsImageFile(entry.Name()) {
			continue
		}

		path := filepath.Join(folder, entry.Name())
		if seen[path] {
			continue
		}
		seen[path] = true

		// Stat follows symlinks so a link to an image counts as the image.
		info, err := os.Stat(path)
		if err != nil {
			s.logger.Warning("Skipping %s: %v", path, err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		refs = append(refs, model.ImageFileRef{Path: path, ModTime: info.ModTime()})
	}

	sort.Slice(refs, func(i, j int) bool {
		if !refs[i].ModTime.Equal(refs[j].ModTime) {
			return refs[i].ModTime.After(refs[j].ModTime)
		}
		return refs[i].Path < refs[j].Path
	})

	if len(refs) > maxCount {
		refs = refs[:maxCount]
	}
	return refs
}
