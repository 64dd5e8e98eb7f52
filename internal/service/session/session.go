// Package session keeps the per-loader file list cache between calls.
package session

import (
	"contactsheet/internal/config"
	"contactsheet/internal/model"
	"contactsheet/internal/service/scanner"
	"contactsheet/internal/service/sheet"
	"contactsheet/internal/tensor"
)

// View is everything one call hands back to the host.
type View struct {
	Sheet     *tensor.Image
	Image     *tensor.Image
	Mask      *tensor.Image
	Filename  string
	Files     []model.ImageFileRef
	Refreshed bool // the folder was rescanned for this view
}

// Outputs returns the sheet, image and mask with their leading batch axis.
func (v View) Outputs() (contactSheet, image, mask *tensor.Tensor, filename string) {
	return v.Sheet.Batch(), v.Image.Batch(), v.Mask.Batch(), v.Filename
}

// Session caches the file list of the last request, keyed by folder, trigger
// fingerprint and row count.
//
// A Session is not safe for concurrent use. Callers needing concurrency use
// one Session per caller or serialize access (see Store).
type Session struct {
	scanner    *scanner.Scanner
	compositor *sheet.Compositor
	selector   *sheet.Selector

	folder  string
	trigger string
	rows    int
	files   []model.ImageFileRef
}

func New(scanner *scanner.Scanner, compositor *sheet.Compositor, selector *sheet.Selector) *Session {
	return &Session{
		scanner:    scanner,
		compositor: compositor,
		selector:   selector,
	}
}

// Files returns the cached file list, newest first.
func (s *Session) Files() []model.ImageFileRef {
	return s.files
}

// Part selects which outputs GetParts builds.
type Part int

const (
	PartSheet Part = 1 << iota
	PartSelection
	PartAll = PartSheet | PartSelection
)

// GetView rescans folder when (folder, trigger, rows) differs from the previous
// call or the cached list is empty, then builds the contact sheet and loads
// the image at the 1-based index selected from the same list. Rows are clamped
// to 1..8 and thumbnailSize to 64..512. It never fails: problems degrade to
// placeholders.
func (s *Session) GetView(folder string, trigger any, selected, thumbnailSize, rows int) View {
	return s.GetParts(folder, trigger, selected, thumbnailSize, rows, PartAll)
}

// GetParts is GetView restricted to parts. Outputs that were not requested
// are left nil; the file list is refreshed either way.
func (s *Session) GetParts(folder string, trigger any, selected, thumbnailSize, rows int, parts Part) View {
	rows = config.ClampRows(rows)
	thumbnailSize = config.ClampThumbnailSize(thumbnailSize)
	capacity := rows * config.Columns
	key := Fingerprint(trigger)

	refreshed := false
	if s.folder != folder || s.trigger != key || s.rows != rows || len(s.files) == 0 {
		s.files = s.scanner.ListRecent(folder, capacity)
		s.folder = folder
		s.trigger = key
		s.rows = rows
		refreshed = true
	}

	paths := model.Paths(s.files)
	view := View{
		Files:     s.files,
		Refreshed: refreshed,
	}
	if parts&PartSheet != 0 {
		view.Sheet = s.compositor.BuildSheet(paths, thumbnailSize, rows)
	}
	if parts&PartSelection != 0 {
		selection := s.selector.Select(paths, selected)
		view.Image = selection.Image
		view.Mask = selection.Mask
		view.Filename = selection.Filename
	}
	return view
}
