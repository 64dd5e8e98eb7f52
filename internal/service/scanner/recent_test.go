package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"contactsheet/internal/logger"
	"contactsheet/internal/model"
)

// createFile writes a file and pins its modification time.
func createFile(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not really an image"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Failed to set mtime: %v", err)
	}
	return path
}

func newScanner() *Scanner {
	return NewScanner(logger.Discard())
}

func TestListRecent_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	a := createFile(t, dir, "a.png", base)
	b := createFile(t, dir, "b.JPG", base.Add(2*time.Minute))
	c := createFile(t, dir, "c.webp", base.Add(time.Minute))

	refs := newScanner().ListRecent(dir, 8)
	got := model.Paths(refs)
	want := []string{b, c, a}

	if len(got) != len(want) {
		t.Fatalf("Expected %d files, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestListRecent_TruncatesToMaxCount(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	var paths []string
	for i := 0; i < 12; i++ {
		name := "img_" + string(rune('a'+i)) + ".png"
		paths = append(paths, createFile(t, dir, name, base.Add(time.Duration(i)*time.Minute)))
	}

	refs := newScanner().ListRecent(dir, 8)
	if len(refs) != 8 {
		t.Fatalf("Expected 8 files, got %d", len(refs))
	}
	for i, ref := range refs {
		if want := paths[11-i]; ref.Path != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, ref.Path)
		}
	}
}

func TestListRecent_FiltersExtensionsAndDirectories(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	createFile(t, dir, "notes.txt", now)
	createFile(t, dir, "archive.png.zip", now)
	createFile(t, dir, "noext", now)
	createFile(t, dir, "._x.JPEG", now.Add(time.Minute))
	createFile(t, dir, ".thumb.png", now.Add(2*time.Minute))
	keep := []string{"x.JPEG", "y.Tif", "z.tiff", "w.bmp"}
	for _, name := range keep {
		createFile(t, dir, name, now)
	}
	if err := os.Mkdir(filepath.Join(dir, "folder.png"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	createFile(t, sub, "deep.png", now)

	refs := newScanner().ListRecent(dir, 64)
	if len(refs) != len(keep) {
		t.Fatalf("Expected %d images, got %d: %v", len(keep), len(refs), model.Names(refs))
	}
	for _, name := range model.Names(refs) {
		if strings.HasPrefix(name, ".") {
			t.Errorf("Hidden file %s must not be listed", name)
		}
	}
}

func TestListRecent_HiddenFilesDoNotTakeSlots(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	createFile(t, dir, "IMG_1.jpg", base)
	createFile(t, dir, "._IMG_1.jpg", base.Add(time.Minute))
	createFile(t, dir, ".thumb.png", base.Add(2*time.Minute))

	names := model.Names(newScanner().ListRecent(dir, 1))
	if len(names) != 1 || names[0] != "IMG_1.jpg" {
		t.Errorf("Expected [IMG_1.jpg], got %v", names)
	}
}

func TestListRecent_EqualTimesOrderedByPath(t *testing.T) {
	dir := t.TempDir()
	same := time.Now().Add(-time.Minute).Truncate(time.Second)

	createFile(t, dir, "c.png", same)
	createFile(t, dir, "a.png", same)
	createFile(t, dir, "b.png", same)

	names := model.Names(newScanner().ListRecent(dir, 8))
	want := []string{"a.png", "b.png", "c.png"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestListRecent_MissingFolder(t *testing.T) {
	s := newScanner()

	if refs := s.ListRecent(filepath.Join(t.TempDir(), "does-not-exist"), 8); len(refs) != 0 {
		t.Errorf("Expected empty list, got %v", refs)
	}
	if refs := s.ListRecent("", 8); len(refs) != 0 {
		t.Errorf("Expected empty list for empty path, got %v", refs)
	}
}

func TestListRecent_EmptyFolder(t *testing.T) {
	if refs := newScanner().ListRecent(t.TempDir(), 8); len(refs) != 0 {
		t.Errorf("Expected empty list, got %v", refs)
	}
}

func TestIsImageFile(t *testing.T) {
	cases := map[string]bool{
		"a.jpg":    true,
		"a.JpEg":   true,
		"a.PNG":    true,
		"a.webp":   true,
		"a.gif":    false,
		"png":      false,
		"a.png.gz": false,
	}
	for name, want := range cases {
		if got := IsImageFile(name); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", name, got, want)
		}
	}
}
