package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chazu/objectscript"
	"github.com/chazu/objectscript/batch"
	"github.com/chazu/objectscript/cache"
	"github.com/chazu/objectscript/index"
	"github.com/chazu/objectscript/manifest"
	"github.com/chazu/objectscript/syntax"
)

// ---------------------------------------------------------------------------
// Project resolution
// ---------------------------------------------------------------------------

// loadProject finds objectscript.toml at or above dir, falling back to the
// default configuration rooted at dir.
func loadProject(dir string) (*manifest.Manifest, error) {
	if dir == "" {
		dir = "."
	}
	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	if m == nil {
		return manifest.Default(dir)
	}
	return m, nil
}

// projectFiles lists the files a command works on. Explicit paths win over
// the manifest source list: files are taken as given, directories are
// walked for configured extensions.
func projectFiles(m *manifest.Manifest, paths []string, g globals) ([]batch.File, error) {
	dialects := m.DialectOverrides()
	var files []batch.File
	add := func(path string) {
		files = append(files, batch.File{Path: path, Dialect: dialectFor(path, m, g)})
	}

	if len(paths) == 0 {
		sources, err := m.Sources()
		if err != nil {
			return nil, err
		}
		for _, s := range sources {
			add(s.Path)
		}
		return files, nil
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if m.Excluded(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if _, ok := dialects[strings.ToLower(filepath.Ext(path))]; ok && !d.IsDir() {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}

func dialectFor(path string, m *manifest.Manifest, g globals) objectscript.Dialect {
	if g.dialect != "" {
		return g.dialect
	}
	return objectscript.DialectForPath(path, m.DialectOverrides())
}

func parseMode(m *manifest.Manifest) syntax.Mode {
	if m.Hints() {
		return 0
	}
	return syntax.NoHints
}

// ---------------------------------------------------------------------------
// osc check
// ---------------------------------------------------------------------------

// handleCheckCommand processes the `osc check` subcommand. It returns the
// exit code: 1 when any error diagnostic or unreadable file was reported.
//
//	osc check                # sources from objectscript.toml
//	osc check src/Util.mac   # one file
//	osc check --no-cache src
func handleCheckCommand(w io.Writer, args []string, g globals) (int, error) {
	noCache := false
	var paths []string
	for _, arg := range args {
		switch arg {
		case "--no-cache", "-no-cache":
			noCache = true
		default:
			paths = append(paths, arg)
		}
	}

	m, err := loadProject(g.dir)
	if err != nil {
		return 1, err
	}
	files, err := projectFiles(m, paths, g)
	if err != nil {
		return 1, err
	}
	if len(files) == 0 {
		fmt.Fprintln(w, "no source files found")
		return 0, nil
	}

	opts := batch.Options{Workers: m.Parse.Workers, Mode: parseMode(m)}
	if !noCache && !m.Cache.Disabled {
		c, err := cache.Open(m.CachePath())
		if err != nil {
			log.Warningf("cache unavailable: %v", err)
		} else {
			defer c.Close()
			opts.Cache = c
		}
	}

	results, err := batch.ParseFiles(context.Background(), files, opts)
	if err != nil {
		return 1, err
	}

	var errs, warnings, cached int
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			fmt.Fprintf(w, "%s: %v\n", r.Path, r.Err)
			errs++
			continue
		}
		if r.Cached {
			cached++
		}
		if len(r.Diagnostics) == 0 {
			continue
		}
		lines := linesOf(r)
		for _, d := range r.Diagnostics {
			fmt.Fprintln(w, formatDiagnostic(r.Path, lines, d))
			switch d.Severity {
			case syntax.SeverityError:
				errs++
			case syntax.SeverityWarning:
				warnings++
			}
		}
	}

	if g.verbose {
		fmt.Fprintf(w, "%d files, %d errors, %d warnings (%d cached)\n", len(results), errs, warnings, cached)
	}
	if errs > 0 {
		return 1, nil
	}
	return 0, nil
}

// linesOf builds a line index for a result's source, rereading the file
// when the result came from the cache.
func linesOf(r *batch.Result) *syntax.LineIndex {
	if r.Document != nil {
		return syntax.NewLineIndex(r.Document.Source)
	}
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil
	}
	return syntax.NewLineIndex(string(data))
}

// formatDiagnostic renders a diagnostic as path:line:col: severity: message [code].
func formatDiagnostic(path string, lines *syntax.LineIndex, d syntax.Diagnostic) string {
	loc := d.Span.String()
	if lines != nil {
		p := lines.Position(d.Span.Start)
		loc = fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%s: %s: %s [%s]", path, loc, d.Severity, d.Message, d.Code)
}

// ---------------------------------------------------------------------------
// osc index
// ---------------------------------------------------------------------------

// handleIndexCommand processes the `osc index` subcommand, rebuilding the
// symbol index of the project.
func handleIndexCommand(w io.Writer, args []string, g globals) error {
	m, err := loadProject(g.dir)
	if err != nil {
		return err
	}
	files, err := projectFiles(m, args, g)
	if err != nil {
		return err
	}

	x, err := index.Open(m.IndexPath())
	if err != nil {
		return err
	}
	defer x.Close()

	results, err := batch.ParseFiles(context.Background(), files, batch.Options{
		Workers: m.Parse.Workers,
		Mode:    parseMode(m),
		Index:   x,
	})
	if err != nil {
		return err
	}

	symbols := 0
	for _, r := range results {
		if r.Err != nil {
			log.Warningf("%v", r.Err)
			continue
		}
		symbols += r.Symbols
	}
	fmt.Fprintf(w, "indexed %d symbols from %d files into %s\n", symbols, len(results), m.IndexPath())
	return nil
}
