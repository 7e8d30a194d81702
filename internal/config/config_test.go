package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/mediasort",
		LogDir:  "/home/user/.local/share/mediasort/log",
		Layout: LayoutConfig{
			Unsorted: "Undated",
			ImageDir: "photos",
			VideoDir: "videos",
			OtherDir: "other",
		},
		Metadata: MetadataConfig{VideoReader: "exiftool", ExiftoolPath: "/usr/bin/exiftool"},
		Catalog:  CatalogConfig{Type: "sqlite", DataDir: "/home/user/.local/share/mediasort/db"},
		Filesystem: FilesystemConfig{
			Ignore: []string{"*.thm", ".DS_Store"},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Layout != original.Layout {
		t.Errorf("Layout = %+v, want %+v", got.Layout, original.Layout)
	}
	if got.Metadata != original.Metadata {
		t.Errorf("Metadata = %+v, want %+v", got.Metadata, original.Metadata)
	}
	if got.Catalog != original.Catalog {
		t.Errorf("Catalog = %+v, want %+v", got.Catalog, original.Catalog)
	}
	if len(got.Filesystem.Ignore) != 2 {
		t.Fatalf("len(Filesystem.Ignore) = %d, want 2", len(got.Filesystem.Ignore))
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/mediasort")

	checks := []struct {
		name, got, want string
	}{
		{"BaseDir", cfg.BaseDir, "/data/mediasort"},
		{"LogDir", cfg.LogDir, "/data/mediasort/log"},
		{"Layout.Unsorted", cfg.Layout.Unsorted, "Unsorted"},
		{"Layout.ImageDir", cfg.Layout.ImageDir, "kuvat"},
		{"Layout.VideoDir", cfg.Layout.VideoDir, "videot"},
		{"Layout.OtherDir", cfg.Layout.OtherDir, "muut"},
		{"Metadata.VideoReader", cfg.Metadata.VideoReader, "quicktime"},
		{"Catalog.Type", cfg.Catalog.Type, "sqlite"},
		{"Catalog.DataDir", cfg.Catalog.DataDir, "/data/mediasort/db"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"nested folder name", func(c *Config) { c.Layout.ImageDir = "a/b" }, "invalid layout folder name"},
		{"dot folder name", func(c *Config) { c.Layout.OtherDir = ".." }, "invalid layout folder name"},
		{"duplicate folder name", func(c *Config) { c.Layout.VideoDir = "kuvat" }, "duplicate layout folder name"},
		{"date-shaped unsorted name", func(c *Config) { c.Layout.Unsorted = "2023-07" }, "looks like a date bucket"},
		{"date-like but not a month", func(c *Config) { c.Layout.Unsorted = "2023-13" }, ""},
		{"unknown video reader", func(c *Config) { c.Metadata.VideoReader = "ffprobe" }, "unknown video reader"},
		{"unknown catalog", func(c *Config) { c.Catalog.Type = "postgres" }, "unknown catalog type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/data")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mediasort.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mediasort.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mediasort.toml")
		cfg := NewConfig(dir)
		cfg.Catalog = CatalogConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Catalog.Type != "memory" {
			t.Errorf("Catalog.Type = %q, want %q", got.Catalog.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/mediasort.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := Load(filepath.Join(dir, "absent.toml"), dir)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.BaseDir != dir {
			t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, dir)
		}
		if cfg.Layout.Unsorted != DefaultUnsorted {
			t.Errorf("Layout.Unsorted = %q", cfg.Layout.Unsorted)
		}
		if cfg.LogDir != filepath.Join(dir, "log") {
			t.Errorf("LogDir = %q", cfg.LogDir)
		}
	})

	t.Run("partial file keeps defaults for the rest", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mediasort.toml")
		content := "[layout]\nunsorted = \"Undated\"\n\n[catalog]\ntype = \"memory\"\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path, dir)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Layout.Unsorted != "Undated" {
			t.Errorf("Layout.Unsorted = %q, want Undated", cfg.Layout.Unsorted)
		}
		if cfg.Layout.ImageDir != DefaultImageDir {
			t.Errorf("Layout.ImageDir = %q, want %q", cfg.Layout.ImageDir, DefaultImageDir)
		}
		if cfg.Catalog.Type != "memory" || cfg.Catalog.DataDir != "" {
			t.Errorf("Catalog = %+v", cfg.Catalog)
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mediasort.toml")
		if err := os.WriteFile(path, []byte("[layout\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path, dir); err == nil {
			t.Fatal("Load() expected error for malformed file")
		}
	})

	t.Run("invalid values are an error", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mediasort.toml")
		if err := os.WriteFile(path, []byte("[metadata]\nvideo_reader = \"ffprobe\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path, dir); err == nil {
			t.Fatal("Load() expected error for unknown video reader")
		}
	})
}
