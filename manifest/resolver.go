package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chazu/objectscript"
)

// SourceFile is a source unit found under the configured directories.
type SourceFile struct {
	Path    string
	Dialect objectscript.Dialect
}

// Sources walks the source directories and returns every file with a
// configured extension that no exclude pattern matches, sorted by path.
// Missing source directories are skipped.
func (m *Manifest) Sources() ([]SourceFile, error) {
	dialects := m.DialectOverrides()
	seen := make(map[string]bool)
	var out []SourceFile
	for _, root := range m.SourceDirPaths() {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) && path == root {
					return filepath.SkipDir
				}
				return err
			}
			if m.Excluded(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || seen[path] {
				return nil
			}
			dialect, ok := dialects[strings.ToLower(filepath.Ext(path))]
			if !ok {
				return nil
			}
			seen[path] = true
			out = append(out, SourceFile{Path: path, Dialect: dialect})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Excluded reports whether an exclude pattern matches the base name of
// path, or its path relative to the project directory.
func (m *Manifest) Excluded(path string) bool {
	base := filepath.Base(path)
	rel, err := filepath.Rel(m.Dir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, pat := range m.Source.Exclude {
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// ResolveInclude finds the file named by #include name: name.inc in any
// source directory, matched case-insensitively.
func (m *Manifest) ResolveInclude(name string) (string, bool) {
	want := strings.ToLower(name) + ".inc"
	for _, dir := range m.SourceDirPaths() {
		var found string
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || found != "" {
				return nil
			}
			if !d.IsDir() && strings.ToLower(d.Name()) == want {
				found = path
				return filepath.SkipAll
			}
			return nil
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}
