package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chazu/objectscript"
	"github.com/chazu/objectscript/classdef"
	"github.com/chazu/objectscript/index"
	"github.com/chazu/objectscript/server"
	"github.com/chazu/objectscript/syntax"
	"github.com/chazu/objectscript/syntax/hash"
)

// parseSourceFile reads and parses one file named on the command line.
func parseSourceFile(path string, g globals) (*objectscript.Document, error) {
	m, err := loadProject(g.dir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, _ := objectscript.ParseMode(string(data), dialectFor(path, m, g), parseMode(m))
	return doc, nil
}

func singleFile(cmd string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: osc %s file", cmd)
	}
	return args[0], nil
}

// ---------------------------------------------------------------------------
// osc dump
// ---------------------------------------------------------------------------

// handleDumpCommand writes the syntax tree and diagnostics of a file as
// indented JSON or canonical CBOR.
func handleDumpCommand(w io.Writer, args []string, g globals) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	format := fs.String("format", "json", "Output format: json or cbor")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := singleFile("dump [-format json|cbor]", fs.Args())
	if err != nil {
		return err
	}
	doc, err := parseSourceFile(path, g)
	if err != nil {
		return err
	}

	var out []byte
	switch *format {
	case "json":
		out, err = json.MarshalIndent(doc.Dump(), "", "  ")
		out = append(out, '\n')
	case "cbor":
		out, err = doc.Dump().MarshalCBOR()
	default:
		return fmt.Errorf("unknown format %q (want json or cbor)", *format)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	_, err = w.Write(out)
	return err
}

// ---------------------------------------------------------------------------
// osc tokens
// ---------------------------------------------------------------------------

// handleTokensCommand lists the non-trivia tokens of a file, one per line
// as line:col kind "text".
func handleTokensCommand(w io.Writer, args []string, g globals) error {
	path, err := singleFile("tokens", args)
	if err != nil {
		return err
	}
	doc, err := parseSourceFile(path, g)
	if err != nil {
		return err
	}
	lines := syntax.NewLineIndex(doc.Source)
	emit := func(sp syntax.Span, kind fmt.Stringer, text string) {
		p := lines.Position(sp.Start)
		fmt.Fprintf(w, "%d:%d\t%s\t%q\n", p.Line, p.Column, kind, text)
	}

	if doc.Routine != nil {
		for _, t := range doc.Routine.Tokens {
			if !t.Kind.Trivia() {
				emit(t.Span, t.Kind, t.Text)
			}
		}
		return nil
	}
	l := classdef.NewLexer(doc.Source)
	for {
		t := l.NextToken()
		if t.Type == classdef.TokenEOF {
			return nil
		}
		emit(t.Span, t.Type, t.Literal)
	}
}

// ---------------------------------------------------------------------------
// osc fingerprint
// ---------------------------------------------------------------------------

func handleFingerprintCommand(w io.Writer, args []string, g globals) error {
	path, err := singleFile("fingerprint", args)
	if err != nil {
		return err
	}
	doc, err := parseSourceFile(path, g)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s  %s\n", hash.Hex(doc.Fingerprint()), path)
	return nil
}

// ---------------------------------------------------------------------------
// osc lsp
// ---------------------------------------------------------------------------

// handleLspCommand serves the language server on stdio. The symbol index
// is optional: when it cannot be opened the server runs on open documents
// only.
func handleLspCommand(args []string, g globals) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: osc lsp")
	}
	m, err := loadProject(g.dir)
	if err != nil {
		return err
	}
	opts := server.Options{Manifest: m, Dialect: g.dialect, Mode: parseMode(m)}
	if x, err := index.Open(m.IndexPath()); err != nil {
		log.Warningf("symbol index unavailable: %v", err)
	} else {
		defer x.Close()
		opts.Index = x
	}
	return server.NewLSP(opts).Run()
}
