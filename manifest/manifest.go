// Package manifest handles bindgen.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/module"

	"github.com/chazu/bindgen/bindgen"
)

// FileName is the name of the project configuration file.
const FileName = "bindgen.toml"

// Manifest represents a bindgen.toml project configuration.
type Manifest struct {
	Project  Project        `toml:"project"`
	Source   Source         `toml:"source"`
	Generate GenerateConfig `toml:"generate"`
	Output   OutputConfig   `toml:"output"`
	Cache    CacheConfig    `toml:"cache"`

	// Dir is the directory containing the bindgen.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name string `toml:"name"`
}

// Source lists descriptor files, relative to Dir.
type Source struct {
	Files []string `toml:"files"`
}

// GenerateConfig configures the generation context.
type GenerateConfig struct {
	Namespace      string `toml:"namespace"`
	UmbrellaPrefix string `toml:"umbrella-prefix"`
	DefaultLibrary string `toml:"default-library"`
	TypesModule    string `toml:"types-module"`
	Runtime        string `toml:"runtime"`
	Features       bool   `toml:"features"`
	Jobs           int    `toml:"jobs"`
}

// OutputConfig names the Go package that receives generated code.
type OutputConfig struct {
	Package string `toml:"package"` // import path
	Dir     string `toml:"dir"`
}

// CacheConfig configures the fragment cache.
type CacheConfig struct {
	Path     string `toml:"path"`
	Disabled bool   `toml:"disabled"`
}

// Load parses a bindgen.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Manifest{Generate: GenerateConfig{Features: true}}
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults. An explicitly empty umbrella prefix disables the rule.
	if !md.IsDefined("generate", "umbrella-prefix") {
		m.Generate.UmbrellaPrefix = bindgen.DefaultUmbrellaPrefix
	}
	if m.Generate.DefaultLibrary == "" {
		m.Generate.DefaultLibrary = bindgen.DefaultLibrary
	}
	if m.Generate.Runtime == "" {
		m.Generate.Runtime = bindgen.DefaultRuntimePath
	}
	if m.Generate.Jobs <= 0 {
		m.Generate.Jobs = runtime.GOMAXPROCS(0)
	}
	if m.Output.Package == "" && m.Generate.TypesModule != "" && m.Generate.Namespace != "" {
		m.Output.Package = m.Generate.TypesModule + "/" +
			bindgen.NamespacePath(m.Generate.Namespace, m.Generate.UmbrellaPrefix)
	}
	if m.Output.Dir == "" {
		m.Output.Dir = "."
	}
	if m.Cache.Path == "" {
		m.Cache.Path = filepath.Join(".bindgen", "cache.db")
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.Generate.Namespace == "" {
		return fmt.Errorf("generate.namespace is required")
	}
	if err := CheckNamespace(m.Generate.Namespace); err != nil {
		return err
	}
	if m.Output.Package == "" {
		return fmt.Errorf("output.package is required unless generate.types-module is set")
	}
	paths := []struct{ key, path string }{
		{"output.package", m.Output.Package},
		{"generate.runtime", m.Generate.Runtime},
		{"generate.types-module", m.Generate.TypesModule},
	}
	for _, p := range paths {
		if p.path == "" {
			continue
		}
		if err := module.CheckImportPath(p.path); err != nil {
			return fmt.Errorf("%s: %w", p.key, err)
		}
	}
	return nil
}

// FindAndLoad walks up from startDir to find a bindgen.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourcePaths returns absolute paths for the configured descriptor files.
func (m *Manifest) SourcePaths() []string {
	var paths []string
	for _, f := range m.Source.Files {
		paths = append(paths, m.path(f))
	}
	return paths
}

// OutputDir returns the absolute output directory.
func (m *Manifest) OutputDir() string {
	return m.path(m.Output.Dir)
}

// CachePath returns the absolute path of the cache database.
func (m *Manifest) CachePath() string {
	return m.path(m.Cache.Path)
}

// LockFilePath returns the path to .bindgen/lock.toml.
func (m *Manifest) LockFilePath() string {
	return filepath.Join(m.Dir, ".bindgen", "lock.toml")
}

func (m *Manifest) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// Context returns the generation context described by the manifest.
func (m *Manifest) Context() *bindgen.GenerationContext {
	c := bindgen.NewContext(m.Generate.Namespace, m.Output.Package)
	c.UmbrellaPrefix = m.Generate.UmbrellaPrefix
	c.DefaultLibrary = m.Generate.DefaultLibrary
	c.TypesModule = m.Generate.TypesModule
	c.RuntimePath = m.Generate.Runtime
	if m.Generate.Features {
		c.Features = bindgen.NamespaceFeatures{Root: m.Generate.UmbrellaPrefix}
	} else {
		c.Features = bindgen.NoFeatures{}
	}
	return c
}
