package model

import (
	"path/filepath"
	"time"
)

// ImageFileRef is an image file discovered by a folder scan.
type ImageFileRef struct {
	Path    string    `json:"path"`
	ModTime time.Time `json:"modTime"`
}

// Name returns the basename of the file.
func (r ImageFileRef) Name() string {
	return filepath.Base(r.Path)
}

// Paths returns the paths of refs in order.
func Paths(refs []ImageFileRef) []string {
	paths := make([]string, 0, len(refs))
	for _, r := range refs {
		paths = append(paths, r.Path)
	}
	return paths
}

// Names returns the basenames of refs in order.
func Names(refs []ImageFileRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name())
	}
	return names
}
