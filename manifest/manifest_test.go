package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "tusk.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing tusk.toml: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "demo"
version = "0.1.0"

[source]
dirs = ["lib", "scripts"]
entry = "lib/main.tusk"

[build]
output = "out/demo.tkc"
backend = "treewalk"
cache = ".tusk-cache.db"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "demo" {
		t.Errorf("Project.Name = %q, want demo", m.Project.Name)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("Project.Version = %q, want 0.1.0", m.Project.Version)
	}
	if len(m.Source.Dirs) != 2 || m.Source.Dirs[0] != "lib" {
		t.Errorf("Source.Dirs = %v", m.Source.Dirs)
	}
	if m.Source.Entry != "lib/main.tusk" {
		t.Errorf("Source.Entry = %q", m.Source.Entry)
	}
	if m.Build.Backend != "treewalk" {
		t.Errorf("Build.Backend = %q", m.Build.Backend)
	}
	if m.Build.Cache != ".tusk-cache.db" {
		t.Errorf("Build.Cache = %q", m.Build.Cache)
	}
	if !filepath.IsAbs(m.Dir) {
		t.Errorf("Dir = %q, want absolute path", m.Dir)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "src" {
		t.Errorf("Source.Dirs = %v, want [src]", m.Source.Dirs)
	}
	if m.Build.Backend != "vm" {
		t.Errorf("Build.Backend = %q, want vm", m.Build.Backend)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for missing tusk.toml")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "not = [valid")

	if _, err := Load(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[project]
name = "walkup"
`)

	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil manifest")
	}
	if m.Project.Name != "walkup" {
		t.Errorf("Project.Name = %q, want walkup", m.Project.Name)
	}
}

func TestEntryPath(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[source]
entry = "lib/main.tusk"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if want := filepath.Join(m.Dir, "lib", "main.tusk"); m.EntryPath() != want {
		t.Errorf("EntryPath() = %q, want %q", m.EntryPath(), want)
	}
}

func TestEntryPathWithoutEntry(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "noentry"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.EntryPath() != "" {
		t.Errorf("EntryPath() = %q, want empty", m.EntryPath())
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[build]
output = "out/demo.tkc"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if want := filepath.Join(m.Dir, "out", "demo.tkc"); m.OutputPath() != want {
		t.Errorf("OutputPath() = %q, want %q", m.OutputPath(), want)
	}

	m.Build.Output = ""
	if m.OutputPath() != "" {
		t.Errorf("OutputPath() = %q, want empty", m.OutputPath())
	}
}

func TestResolveSource(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[source]
dirs = ["scripts"]
`)

	scripts := filepath.Join(dir, "scripts")
	if err := os.MkdirAll(scripts, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(scripts, "job.tusk"), []byte("1 + 2"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	path, ok := m.ResolveSource("job.tusk")
	if !ok {
		t.Fatal("ResolveSource did not find job.tusk in a source dir")
	}
	if want := filepath.Join(scripts, "job.tusk"); path != want {
		t.Errorf("ResolveSource = %q, want %q", path, want)
	}

	if _, ok := m.ResolveSource("missing.tusk"); ok {
		t.Error("ResolveSource found a file that does not exist")
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	m, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil manifest, got %+v", m)
	}
}
