package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"PORT", "ROWS", "THUMBNAIL_SIZE", "CONFIG_FILE", "LABEL_FONT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.ThumbnailSize != DefaultThumbnailSize {
		t.Errorf("Expected thumbnail size %d, got %d", DefaultThumbnailSize, cfg.ThumbnailSize)
	}
	if cfg.Rows != DefaultRows {
		t.Errorf("Expected %d rows, got %d", DefaultRows, cfg.Rows)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "contactsheet.toml")
	content := "port = 9000\nrows = 3\nthumbnail_size = 256\nlabel_font = \"/fonts/mono.ttf\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "")
	t.Setenv("ROWS", "12")
	t.Setenv("THUMBNAIL_SIZE", "")
	t.Setenv("LABEL_FONT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Expected port from file 9000, got %d", cfg.Port)
	}
	if cfg.ThumbnailSize != 256 {
		t.Errorf("Expected thumbnail size 256, got %d", cfg.ThumbnailSize)
	}
	if cfg.Rows != MaxRows {
		t.Errorf("Expected rows clamped to %d, got %d", MaxRows, cfg.Rows)
	}
	if cfg.LabelFont != "/fonts/mono.ttf" {
		t.Errorf("Unexpected label font %q", cfg.LabelFont)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_FILE", "")
	// godotenv never overrides a variable that is present, even when empty.
	t.Setenv("DEFAULT_FOLDER", "")
	os.Unsetenv("DEFAULT_FOLDER")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DEFAULT_FOLDER=/srv/output\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DefaultFolder != "/srv/output" {
		t.Errorf("Expected folder from .env, got %q", cfg.DefaultFolder)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		in, rows, size int
	}{
		{0, 1, 64},
		{-3, 1, 64},
		{5, 5, 64},
		{100, 8, 100},
		{1000, 8, 512},
	}
	for _, c := range cases {
		if got := ClampRows(c.in); got != c.rows {
			t.Errorf("ClampRows(%d) = %d, want %d", c.in, got, c.rows)
		}
		if got := ClampThumbnailSize(c.in); got != c.size {
			t.Errorf("ClampThumbnailSize(%d) = %d, want %d", c.in, got, c.size)
		}
	}
}

func TestRoot_DefaultsToFolder(t *testing.T) {
	cfg := Default()
	cfg.DefaultFolder = "/srv/output"
	if cfg.Root() != "/srv/output" {
		t.Errorf("Expected root to follow the default folder, got %q", cfg.Root())
	}
	cfg.RootDirectory = "/srv"
	if cfg.Root() != "/srv" {
		t.Errorf("Expected explicit root, got %q", cfg.Root())
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restoring working directory failed: %v", err)
		}
	})
}
