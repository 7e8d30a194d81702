package fs_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"

	"mediasort/internal/fs"
	"mediasort/internal/sorter"
)

func newMemManager(t *testing.T, files map[string]string, ignore ...string) (*fs.AferoFilesystemManager, afero.Fs) {
	t.Helper()
	mem := afero.NewMemMapFs()
	for path, content := range files {
		if err := mem.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := afero.WriteFile(mem, path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return fs.NewAferoFilesystemManager(mem, ignore), mem
}

func walkNames(t *testing.T, m *fs.AferoFilesystemManager, root string, skip ...string) []string {
	t.Helper()
	p, err := m.Resolve(root)
	if err != nil {
		t.Fatalf("Resolve(%s) error = %v", root, err)
	}
	var got []string
	err = m.Walk(p, skip, func(file *sorter.Path) error {
		rel, _ := filepath.Rel(root, file.String())
		got = append(got, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return got
}

func TestAferoFilesystemManager_Resolve(t *testing.T) {
	m, _ := newMemManager(t, map[string]string{"/photos/a.jpg": "x"})

	t.Run("directory", func(t *testing.T) {
		p, err := m.Resolve("/photos")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !p.IsDir() {
			t.Error("expected a directory")
		}
	})

	t.Run("file", func(t *testing.T) {
		p, err := m.Resolve("/photos/a.jpg")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.IsDir() || p.Name() != "a.jpg" {
			t.Errorf("unexpected path %s (dir=%v)", p.String(), p.IsDir())
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := m.Resolve("/nope"); err == nil {
			t.Error("expected error for missing path")
		}
	})
}

func TestAferoFilesystemManager_Walk(t *testing.T) {
	files := map[string]string{
		"/src/b.jpg":               "b",
		"/src/a.mov":               "a",
		"/src/trip/c.png":          "c",
		"/src/trip/deep/.DS_Store": "d",
		"/src/out/2023-07/x.jpg":   "x",
		"/src/CLIP.thm":            "t",
	}

	t.Run("visits every file in lexical order", func(t *testing.T) {
		m, _ := newMemManager(t, files)
		got := walkNames(t, m, "/src")
		want := []string{"CLIP.thm", "a.mov", "b.jpg", "out/2023-07/x.jpg", "trip/c.png", "trip/deep/.DS_Store"}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		if !sort.StringsAreSorted(got) {
			t.Errorf("walk order not lexical: %v", got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("entry %d = %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("skips excluded directories", func(t *testing.T) {
		m, _ := newMemManager(t, files)
		got := walkNames(t, m, "/src", "/src/out")
		for _, name := range got {
			if filepath.Dir(name) == "out/2023-07" {
				t.Errorf("expected out/ to be skipped, got %s", name)
			}
		}
		if len(got) != 5 {
			t.Errorf("expected 5 files, got %d: %v", len(got), got)
		}
	})

	t.Run("applies ignore patterns", func(t *testing.T) {
		m, _ := newMemManager(t, files, "*.thm")
		got := walkNames(t, m, "/src")
		for _, name := range got {
			if name == "CLIP.thm" {
				t.Error("expected CLIP.thm to be ignored")
			}
		}
	})

	t.Run("root must be a directory", func(t *testing.T) {
		m, _ := newMemManager(t, files)
		p, err := m.Resolve("/src/b.jpg")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if err := m.Walk(p, nil, func(*sorter.Path) error { return nil }); err == nil {
			t.Error("expected error walking a file")
		}
	})
}

func TestAferoFilesystemManager_Walk_Symlinks(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	other := filepath.Join(root, "other")
	for _, d := range []string{src, other} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(other, "target.jpg"), []byte("t"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(other, "hidden.jpg"), []byte("h"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(other, "target.jpg"), filepath.Join(src, "link.jpg")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(other, filepath.Join(src, "linkdir")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(src, "dangling.jpg")); err != nil {
		t.Fatal(err)
	}

	m := fs.NewOSFilesystemManager(nil)
	got := walkNames(t, m, src)
	if len(got) != 1 || got[0] != "link.jpg" {
		t.Errorf("expected only link.jpg, got %v", got)
	}
}

func TestAferoFilesystemManager_Exists(t *testing.T) {
	m, _ := newMemManager(t, map[string]string{"/d/a.jpg": "a"})

	tests := []struct {
		path string
		want bool
	}{
		{"/d/a.jpg", true},
		{"/d", true},
		{"/d/b.jpg", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := m.Exists(tt.path)
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestAferoFilesystemManager_MkdirAll(t *testing.T) {
	m, mem := newMemManager(t, nil)

	for i := 0; i < 2; i++ {
		if err := m.MkdirAll("/dest/2023-07/kuvat"); err != nil {
			t.Fatalf("MkdirAll() attempt %d error = %v", i+1, err)
		}
	}
	info, err := mem.Stat("/dest/2023-07/kuvat")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected a directory")
	}
}

func TestAferoFilesystemManager_RealPath(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolving temp dir: %v", err)
	}
	photos := filepath.Join(root, "photos")
	if err := os.MkdirAll(photos, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	alias := filepath.Join(root, "alias")
	if err := os.Symlink(photos, alias); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	m := fs.NewOSFilesystemManager(nil)
	tests := []struct {
		name string
		path string
		want string
	}{
		{"plain directory", photos, photos},
		{"symlinked directory", alias, photos},
		{"missing child of a symlink", filepath.Join(alias, "sorted", "2023-07"), filepath.Join(photos, "sorted", "2023-07")},
		{"missing child of a directory", filepath.Join(root, "new"), filepath.Join(root, "new")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.RealPath(tt.path)
			if err != nil {
				t.Fatalf("RealPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RealPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestAferoFilesystemManager_RealPath_memory(t *testing.T) {
	m, _ := newMemManager(t, map[string]string{"/src/a.jpg": "a"})

	got, err := m.RealPath("/src/../src/missing")
	if err != nil {
		t.Fatalf("RealPath() error = %v", err)
	}
	if got != "/src/missing" {
		t.Errorf("RealPath() = %q, want /src/missing", got)
	}
}
