// Package manifest handles objectscript.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xyproto/env/v2"

	"github.com/chazu/objectscript"
)

// FileName is the name of the project configuration file.
const FileName = "objectscript.toml"

// Manifest represents an objectscript.toml project configuration.
type Manifest struct {
	Project  Project           `toml:"project" json:"project"`
	Source   Source            `toml:"source" json:"source"`
	Dialects map[string]string `toml:"dialects" json:"dialects"`
	Parse    ParseConfig       `toml:"parse" json:"parse"`
	Cache    CacheConfig       `toml:"cache" json:"cache"`
	Index    IndexConfig       `toml:"index" json:"index"`

	// Dir is the directory containing the objectscript.toml file (set at load time).
	Dir string `toml:"-" json:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name" json:"name"`
	Version string `toml:"version" json:"version"`
}

// Source configures source file locations.
type Source struct {
	Dirs    []string `toml:"dirs" json:"dirs"`
	Exclude []string `toml:"exclude" json:"exclude"`
}

// ParseConfig tunes the parser and the batch runner.
type ParseConfig struct {
	// Workers bounds parallel parsing; 0 means GOMAXPROCS.
	Workers         int   `toml:"workers" json:"workers"`
	ReportAmbiguous *bool `toml:"report-ambiguous" json:"report-ambiguous"`
}

// CacheConfig configures the parse summary cache.
type CacheConfig struct {
	Path     string `toml:"path" json:"path"`
	Disabled bool   `toml:"disabled" json:"disabled"`
}

// IndexConfig configures the workspace symbol index.
type IndexConfig struct {
	Path string `toml:"path" json:"path"`
}

// Load parses an objectscript.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
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
	m.applyDefaults()
	m.applyEnv()

	if err := Validate(&m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// Default returns the configuration used when dir has no objectscript.toml.
func Default(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	m := &Manifest{Dir: abs}
	m.applyDefaults()
	m.applyEnv()
	return m, nil
}

// FindAndLoad walks up from startDir to find an objectscript.toml file,
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

func (m *Manifest) applyDefaults() {
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if m.Source.Exclude == nil {
		m.Source.Exclude = []string{}
	}
	dialects := make(map[string]string, len(objectscript.DefaultDialects))
	for ext, d := range objectscript.DefaultDialects {
		dialects[ext] = string(d)
	}
	for ext, d := range m.Dialects {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		dialects[strings.ToLower(ext)] = strings.ToLower(d)
	}
	m.Dialects = dialects
	if m.Parse.ReportAmbiguous == nil {
		on := true
		m.Parse.ReportAmbiguous = &on
	}
	if m.Cache.Path == "" {
		m.Cache.Path = filepath.Join(".objectscript", "cache.db")
	}
	if m.Index.Path == "" {
		m.Index.Path = filepath.Join(".objectscript", "index.db")
	}
}

// applyEnv lets OBJECTSCRIPT_* variables override the file.
func (m *Manifest) applyEnv() {
	env.Load()
	m.Parse.Workers = env.Int("OBJECTSCRIPT_WORKERS", m.Parse.Workers)
	m.Cache.Path = env.Str("OBJECTSCRIPT_CACHE", m.Cache.Path)
	m.Index.Path = env.Str("OBJECTSCRIPT_INDEX", m.Index.Path)
	if env.Bool("OBJECTSCRIPT_NO_CACHE") {
		m.Cache.Disabled = true
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, m.abs(d))
	}
	return paths
}

// CachePath returns the absolute path of the summary cache database.
func (m *Manifest) CachePath() string {
	return m.abs(m.Cache.Path)
}

// IndexPath returns the absolute path of the symbol index database.
func (m *Manifest) IndexPath() string {
	return m.abs(m.Index.Path)
}

// Hints reports whether ambiguity hints are reported.
func (m *Manifest) Hints() bool {
	return m.Parse.ReportAmbiguous == nil || *m.Parse.ReportAmbiguous
}

// DialectOverrides returns the extension to dialect table.
func (m *Manifest) DialectOverrides() map[string]objectscript.Dialect {
	out := make(map[string]objectscript.Dialect, len(m.Dialects))
	for ext, d := range m.Dialects {
		out[ext] = objectscript.Dialect(d)
	}
	return out
}

func (m *Manifest) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
