// Package objectscript parses ObjectScript routines and class definitions
// into syntax trees with diagnostics.
package objectscript

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/objectscript/classdef"
	"github.com/chazu/objectscript/syntax"
	"github.com/chazu/objectscript/syntax/dump"
	"github.com/chazu/objectscript/syntax/hash"
)

// Dialect selects the grammar a source unit is parsed with.
type Dialect string

const (
	// DialectCore is command and expression routine code.
	DialectCore Dialect = "core"
	// DialectClass is the class-definition dialect.
	DialectClass Dialect = "class"
)

// ErrUnknownDialect is returned for dialect names other than core and class.
var ErrUnknownDialect = errors.New("unknown dialect")

// ParseDialect converts a dialect name.
func ParseDialect(name string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(name)); d {
	case DialectCore, DialectClass:
		return d, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownDialect, name)
}

// DefaultDialects maps file extensions to dialects.
var DefaultDialects = map[string]Dialect{
	".mac": DialectCore,
	".int": DialectCore,
	".inc": DialectCore,
	".cls": DialectClass,
}

// DialectForPath picks a dialect by file extension, consulting overrides
// before DefaultDialects. Unknown extensions are core.
func DialectForPath(path string, overrides map[string]Dialect) Dialect {
	ext := strings.ToLower(filepath.Ext(path))
	if d, ok := overrides[ext]; ok {
		return d
	}
	if d, ok := DefaultDialects[ext]; ok {
		return d
	}
	return DialectCore
}

// Document is a parsed source unit. Exactly one of Routine and Class is set.
type Document struct {
	Dialect     Dialect
	Source      string
	Routine     *syntax.File
	Class       *classdef.File
	Diagnostics []syntax.Diagnostic
}

// Span covers the whole source.
func (d *Document) Span() syntax.Span {
	return syntax.Span{Start: 0, End: len(d.Source)}
}

// Root returns the root node of the tree.
func (d *Document) Root() interface{ Span() syntax.Span } {
	if d.Class != nil {
		return d.Class
	}
	return d.Routine
}

// Dump exports the tree and diagnostics.
func (d *Document) Dump() *dump.Document {
	return dump.NewDocument(d.Root(), d.Source, d.Diagnostics)
}

// Fingerprint returns the structural fingerprint of the tree.
func (d *Document) Fingerprint() [32]byte {
	return hash.Fingerprint(d.Root(), d.Source)
}

// Parse parses text in the given dialect. It never fails: problems are
// reported as diagnostics and the tree covers all of the input.
func Parse(text string, dialect Dialect) (*Document, []syntax.Diagnostic) {
	return ParseMode(text, dialect, 0)
}

// ParseMode is Parse with parser options.
func ParseMode(text string, dialect Dialect, mode syntax.Mode) (*Document, []syntax.Diagnostic) {
	doc := &Document{Dialect: dialect, Source: text}
	if dialect == DialectClass {
		doc.Class = classdef.Parse(text, mode)
		doc.Diagnostics = doc.Class.Diagnostics
	} else {
		doc.Dialect = DialectCore
		doc.Routine = syntax.ParseFile(text, mode)
		doc.Diagnostics = doc.Routine.Diagnostics
	}
	return doc, doc.Diagnostics
}
