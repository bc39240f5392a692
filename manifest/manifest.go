// Package manifest handles tusk.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a tusk.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Source  Source  `toml:"source"`
	Build   Build   `toml:"build"`

	// Dir is the directory containing the tusk.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations.
type Source struct {
	Dirs  []string `toml:"dirs"`
	Entry string   `toml:"entry"`
}

// Build configures compilation output.
type Build struct {
	Output  string `toml:"output"`
	Backend string `toml:"backend"`
	Cache   string `toml:"cache"`
}

// Load parses a tusk.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "tusk.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if m.Build.Backend == "" {
		m.Build.Backend = "vm"
	}

	return &m, nil
}

// EntryPath returns the absolute path of the project's entry file, or ""
// when the manifest does not name one.
func (m *Manifest) EntryPath() string {
	if m.Source.Entry == "" {
		return ""
	}
	return filepath.Join(m.Dir, m.Source.Entry)
}

// OutputPath returns the absolute configured build output path, or "" when
// the manifest does not name one.
func (m *Manifest) OutputPath() string {
	if m.Build.Output == "" {
		return ""
	}
	if filepath.IsAbs(m.Build.Output) {
		return m.Build.Output
	}
	return filepath.Join(m.Dir, m.Build.Output)
}

// ResolveSource locates a source file by name: as given, relative to the
// project directory, then under each configured source dir.
func (m *Manifest) ResolveSource(name string) (string, bool) {
	candidates := []string{name, filepath.Join(m.Dir, name)}
	for _, dir := range m.Source.Dirs {
		candidates = append(candidates, filepath.Join(m.Dir, dir, name))
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// FindAndLoad walks up from startDir to find a tusk.toml file, then loads
// and returns the manifest. Returns nil (no error) if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "tusk.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}
