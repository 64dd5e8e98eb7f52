package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// Columns is the fixed number of thumbnails per contact sheet row.
	Columns = 8

	MinThumbnailSize     = 64
	MaxThumbnailSize     = 512
	DefaultThumbnailSize = 128
	MinRows              = 1
	MaxRows              = 8
	DefaultRows          = 1
)

type Config struct {
	Port               int    `toml:"port"`
	Password           string `toml:"password"`
	LogDirectory       string `toml:"log_dir"`
	DefaultFolder      string `toml:"default_folder"`
	RootDirectory      string `toml:"root_dir"` // HTTP folders must resolve inside it; defaults to DefaultFolder
	ThumbnailSize      int    `toml:"thumbnail_size"`
	Rows               int    `toml:"rows"`
	ThumbnailCacheSize int    `toml:"thumbnail_cache_size"`
	SessionTTL         int    `toml:"session_ttl"` // Minutes an idle session is kept
	LabelFont          string `toml:"label_font"`  // Optional TTF/OTF used for tile labels
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:               8080,
		LogDirectory:       filepath.Join(".", "logs"),
		DefaultFolder:      filepath.Join(".", "images"),
		ThumbnailSize:      DefaultThumbnailSize,
		Rows:               DefaultRows,
		ThumbnailCacheSize: 512,
		SessionTTL:         30,
	}
}

// Load builds the configuration from defaults, an optional TOML file named by
// CONFIG_FILE and the environment (a .env file in the working directory is
// loaded first when present).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.Port = getEnvAsInt("PORT", cfg.Port)
	cfg.Password = getEnv("PASSWORD", cfg.Password)
	cfg.LogDirectory = getEnv("LOG_DIR", cfg.LogDirectory)
	cfg.DefaultFolder = getEnv("DEFAULT_FOLDER", cfg.DefaultFolder)
	cfg.RootDirectory = getEnv("ROOT_DIR", cfg.RootDirectory)
	cfg.ThumbnailSize = ClampThumbnailSize(getEnvAsInt("THUMBNAIL_SIZE", cfg.ThumbnailSize))
	cfg.Rows = ClampRows(getEnvAsInt("ROWS", cfg.Rows))
	cfg.ThumbnailCacheSize = getEnvAsInt("THUMBNAIL_CACHE_SIZE", cfg.ThumbnailCacheSize)
	cfg.SessionTTL = getEnvAsInt("SESSION_TTL", cfg.SessionTTL)
	cfg.LabelFont = getEnv("LABEL_FONT", cfg.LabelFont)

	return cfg, nil
}

// SessionExpiration returns SessionTTL as a duration.
func (c *Config) SessionExpiration() time.Duration {
	if c.SessionTTL <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.SessionTTL) * time.Minute
}

// Root returns the directory HTTP requests may read from.
func (c *Config) Root() string {
	if c.RootDirectory != "" {
		return c.RootDirectory
	}
	return c.DefaultFolder
}

// ClampRows keeps a row count inside 1..8. Non-positive values fall back to a single row.
func ClampRows(rows int) int {
	if rows < MinRows {
		return MinRows
	}
	if rows > MaxRows {
		return MaxRows
	}
	return rows
}

// ClampThumbnailSize keeps a tile edge inside 64..512.
func ClampThumbnailSize(size int) int {
	if size < MinThumbnailSize {
		return MinThumbnailSize
	}
	if size > MaxThumbnailSize {
		return MaxThumbnailSize
	}
	return size
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
