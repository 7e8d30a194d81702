package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for mediasort.
// Every field is optional; a missing config file means all defaults.
type Config struct {
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Layout     LayoutConfig     `toml:"layout"`
	Metadata   MetadataConfig   `toml:"metadata"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// LayoutConfig names the folders created under the destination root.
type LayoutConfig struct {
	Unsorted string `toml:"unsorted"`  // bucket for files without a capture time
	ImageDir string `toml:"image_dir"` // per-bucket subfolder for images
	VideoDir string `toml:"video_dir"` // per-bucket subfolder for videos
	OtherDir string `toml:"other_dir"` // per-bucket subfolder for everything else
}

// MetadataConfig selects how video capture times are read.
// This uses a tagged union pattern - the VideoReader field determines which other fields are relevant.
type MetadataConfig struct {
	VideoReader  string `toml:"video_reader"`            // "quicktime" (default) or "exiftool"
	ExiftoolPath string `toml:"exiftool_path,omitempty"` // only used for video_reader=exiftool
}

// CatalogConfig represents configuration for the run catalog.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type CatalogConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"` // glob patterns of files left out of scans
}

// Defaults for the layout and backends.
const (
	DefaultUnsorted    = "Unsorted"
	DefaultImageDir    = "kuvat"
	DefaultVideoDir    = "videot"
	DefaultOtherDir    = "muut"
	DefaultVideoReader = "quicktime"
	DefaultCatalogType = "sqlite"
)

// NewConfig creates a Config rooted at baseDir with every default filled in.
func NewConfig(baseDir string) *Config {
	cfg := &Config{BaseDir: baseDir}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every empty field with its default. Paths are derived
// from BaseDir.
func (c *Config) ApplyDefaults() {
	if c.LogDir == "" && c.BaseDir != "" {
		c.LogDir = filepath.Join(c.BaseDir, "log")
	}
	if c.Layout.Unsorted == "" {
		c.Layout.Unsorted = DefaultUnsorted
	}
	if c.Layout.ImageDir == "" {
		c.Layout.ImageDir = DefaultImageDir
	}
	if c.Layout.VideoDir == "" {
		c.Layout.VideoDir = DefaultVideoDir
	}
	if c.Layout.OtherDir == "" {
		c.Layout.OtherDir = DefaultOtherDir
	}
	if c.Metadata.VideoReader == "" {
		c.Metadata.VideoReader = DefaultVideoReader
	}
	if c.Catalog.Type == "" {
		c.Catalog.Type = DefaultCatalogType
	}
	if c.Catalog.Type == "sqlite" && c.Catalog.DataDir == "" && c.BaseDir != "" {
		c.Catalog.DataDir = filepath.Join(c.BaseDir, "db")
	}
}

// Validate checks the fields that cannot be defaulted.
func (c *Config) Validate() error {
	names := []string{c.Layout.Unsorted, c.Layout.ImageDir, c.Layout.VideoDir, c.Layout.OtherDir}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" || n == "." || n == ".." || filepath.Base(n) != n {
			return fmt.Errorf("invalid layout folder name %q", n)
		}
		if seen[n] {
			return fmt.Errorf("duplicate layout folder name %q", n)
		}
		seen[n] = true
	}
	if _, err := time.Parse("2006-01", c.Layout.Unsorted); err == nil {
		return fmt.Errorf("unsorted folder name %q looks like a date bucket", c.Layout.Unsorted)
	}
	switch c.Metadata.VideoReader {
	case "quicktime", "exiftool":
	default:
		return fmt.Errorf("unknown video reader: %s", c.Metadata.VideoReader)
	}
	switch c.Catalog.Type {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown catalog type: %s", c.Catalog.Type)
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path, or returns the defaults rooted at baseDir
// when no file exists there. baseDir also applies when the file leaves
// base_dir empty.
func Load(path, baseDir string) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = baseDir
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
