// Package sheet composes contact sheets from image files and loads the selected image.
package sheet

import (
	"fmt"
	"os"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"gocv.io/x/gocv"

	"contactsheet/internal/config"
	"contactsheet/internal/logger"
	"contactsheet/internal/tensor"
)

const (
	// PaddingGray is the 8-bit fill around a letterboxed thumbnail.
	PaddingGray = 128
	// BackgroundValue fills sheet cells that have no tile.
	BackgroundValue = 0.3
	// PlaceholderValue fills placeholder images.
	PlaceholderValue = 0.5
)

// tileKey identifies a letterboxed thumbnail of one version of a file.
type tileKey struct {
	path    string
	modTime int64
	size    int
}

// letterboxed is an unlabeled square tile as interleaved BGR bytes.
type letterboxed struct {
	size int
	bgr  []byte
}

// Compositor builds contact sheets. It caches letterboxed thumbnails so that
// unchanged files are decoded once; the cache is safe for concurrent use.
type Compositor struct {
	logger  *logger.Logger
	labeler Labeler
	tiles   *lru.Cache[tileKey, *letterboxed]
}

// NewCompositor creates a Compositor. cacheSize <= 0 disables the thumbnail cache.
func NewCompositor(logger *logger.Logger, labeler Labeler, cacheSize int) (*Compositor, error) {
	c := &Compositor{
		logger:  logger,
		labeler: labeler,
	}
	if cacheSize > 0 {
		tiles, err := lru.New[tileKey, *letterboxed](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create thumbnail cache: %w", err)
		}
		c.tiles = tiles
	}
	return c, nil
}

// CachedTiles returns the number of thumbnails currently cached.
func (c *Compositor) CachedTiles() int {
	if c.tiles == nil {
		return 0
	}
	return c.tiles.Len()
}

// BuildSheet lays out the first rows × 8 paths as a grid of labeled thumbnails.
// The result is (thumbnailSize × rows) high and (thumbnailSize × 8) wide. With
// no paths it is flat mid-gray; otherwise cells without a tile keep the dark
// background. Files that fail to load are logged and skipped.
func (c *Compositor) BuildSheet(paths []string, thumbnailSize, rows int) *tensor.Image {
	if rows < 1 {
		rows = 1
	}
	if thumbnailSize < 1 {
		thumbnailSize = config.DefaultThumbnailSize
	}
	height := thumbnailSize * rows
	width := thumbnailSize * config.Columns

	if len(paths) == 0 {
		return tensor.Filled(height, width, 3, PlaceholderValue)
	}

	contactSheet := tensor.Filled(height, width, 3, BackgroundValue)
	capacity := rows * config.Columns
	for i, path := range paths {
		if i >= capacity {
			break
		}

		tile, err := c.MakeTile(path, thumbnailSize, i+1)
		if err != nil {
			c.logger.Error("Error creating thumbnail for %s: %v", path, err)
			continue
		}

		row := i / config.Columns
		col := i % config.Columns
		if err := contactSheet.Paste(tile, col*thumbnailSize, row*thumbnailSize); err != nil {
			c.logger.Error("Error placing thumbnail for %s: %v", path, err)
		}
	}

	return contactSheet
}

// MakeTile produces the size × size thumbnail of path labeled with ordinal.
// A labeling failure leaves the tile unlabeled rather than failing it.
func (c *Compositor) MakeTile(path string, size, ordinal int) (*tensor.Image, error) {
	lb, err := c.letterbox(path, size)
	if err != nil {
		return nil, err
	}

	tile, err := gocv.NewMatFromBytes(lb.size, lb.size, gocv.MatTypeCV8UC3, append([]byte(nil), lb.bgr...))
	if err != nil {
		return nil, fmt.Errorf("failed to build tile: %w", err)
	}
	defer tile.Close()

	if c.labeler != nil {
		if err := c.labeler.Stamp(&tile, strconv.Itoa(ordinal)); err != nil {
			c.logger.Warning("Skipping label %d for %s: %v", ordinal, path, err)
		}
	}

	return tensor.FromBGR(tile.ToBytes(), lb.size, lb.size)
}

// letterbox returns the cached unlabeled tile for path or decodes a new one.
func (c *Compositor) letterbox(path string, size int) (*letterboxed, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	key := tileKey{path: path, modTime: info.ModTime().UnixNano(), size: size}

	if c.tiles != nil {
		if lb, ok := c.tiles.Get(key); ok {
			return lb, nil
		}
	}

	src, err := decodeBGR(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	canvas, err := letterbox(src, size)
	if err != nil {
		return nil, err
	}
	defer canvas.Close()

	lb := &letterboxed{size: size, bgr: canvas.ToBytes()}
	if c.tiles != nil {
		c.tiles.Add(key, lb)
	}
	return lb, nil
}
