package server

import (
	"context"
	"os"
	"path/filepath"

	"github.com/chazu/objectscript"
	"github.com/chazu/objectscript/batch"
	"github.com/chazu/objectscript/index"
	"github.com/chazu/objectscript/manifest"
	"github.com/chazu/objectscript/syntax"
)

// Document is an open editor buffer and its latest parse.
type Document struct {
	URI         string
	Path        string
	Text        string
	Dialect     objectscript.Dialect
	Parsed      *objectscript.Document
	Diagnostics []syntax.Diagnostic
	Lines       *syntax.LineIndex
	Symbols     []index.Symbol
}

// Options configures a Workspace. Every field is optional.
type Options struct {
	Index    *index.Index
	Manifest *manifest.Manifest
	// Dialect forces one dialect for every document.
	Dialect objectscript.Dialect
	Mode    syntax.Mode
}

// Workspace holds the open documents and the symbol index. It is not safe
// for concurrent use; the LSP server reaches it through a Worker.
type Workspace struct {
	opts Options
	docs map[string]*Document
}

// NewWorkspace creates an empty workspace.
func NewWorkspace(opts Options) *Workspace {
	return &Workspace{opts: opts, docs: make(map[string]*Document)}
}

// Open parses text as the content of uri, replacing any previous version,
// and refreshes the index entries of the file.
func (ws *Workspace) Open(uri, text string) *Document {
	path := uriToPath(uri)
	dialect := ws.dialectFor(path)
	parsed, diags := objectscript.ParseMode(text, dialect, ws.opts.Mode)
	doc := &Document{
		URI:         uri,
		Path:        path,
		Text:        text,
		Dialect:     dialect,
		Parsed:      parsed,
		Diagnostics: diags,
		Lines:       syntax.NewLineIndex(text),
		Symbols:     index.Extract(path, parsed),
	}
	ws.docs[uri] = doc
	if ws.opts.Index != nil {
		if err := ws.opts.Index.Replace(path, doc.Symbols); err != nil {
			log.Errorf("indexing %s: %v", path, err)
		}
	}
	return doc
}

// Close forgets an open document. Its index entries stay.
func (ws *Workspace) Close(uri string) {
	delete(ws.docs, uri)
}

// Get returns an open document, or nil.
func (ws *Workspace) Get(uri string) *Document {
	return ws.docs[uri]
}

// IndexSources parses every configured source file into the index. store
// writes the symbols of one file; nil means StoreSymbols called directly,
// which is only safe while nothing else uses the workspace.
func (ws *Workspace) IndexSources(ctx context.Context, store func(path string, syms []index.Symbol) error) (int, error) {
	m := ws.opts.Manifest
	if m == nil || ws.opts.Index == nil {
		return 0, nil
	}
	sources, err := m.Sources()
	if err != nil {
		return 0, err
	}
	files := make([]batch.File, len(sources))
	for i, s := range sources {
		files[i] = batch.File{Path: s.Path, Dialect: s.Dialect}
		if ws.opts.Dialect != "" {
			files[i].Dialect = ws.opts.Dialect
		}
	}
	if store == nil {
		store = ws.StoreSymbols
	}
	_, err = batch.ParseFiles(ctx, files, batch.Options{
		Workers: m.Parse.Workers,
		Mode:    ws.opts.Mode,
		Index:   ws.opts.Index,
		Store:   store,
	})
	return len(files), err
}

// StoreSymbols records the symbols of a file on disk. Files open in the
// editor keep the entries of their buffer.
func (ws *Workspace) StoreSymbols(path string, syms []index.Symbol) error {
	if ws.opts.Index == nil {
		return nil
	}
	for _, d := range ws.docs {
		if filepath.Clean(d.Path) == filepath.Clean(path) {
			log.Debugf("skipping %s: open in the editor", path)
			return nil
		}
	}
	return ws.opts.Index.Replace(path, syms)
}

func (ws *Workspace) dialectFor(path string) objectscript.Dialect {
	if ws.opts.Dialect != "" {
		return ws.opts.Dialect
	}
	var overrides map[string]objectscript.Dialect
	if ws.opts.Manifest != nil {
		overrides = ws.opts.Manifest.DialectOverrides()
	}
	return objectscript.DialectForPath(path, overrides)
}

// textOf returns the content of path, preferring an open buffer.
func (ws *Workspace) textOf(path string) (string, *syntax.LineIndex, bool) {
	for _, d := range ws.docs {
		if d.Path == path {
			return d.Text, d.Lines, true
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, false
	}
	text := string(data)
	return text, syntax.NewLineIndex(text), true
}
