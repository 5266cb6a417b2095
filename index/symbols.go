package index

import (
	"path/filepath"
	"strings"

	"github.com/chazu/objectscript"
	"github.com/chazu/objectscript/classdef"
	"github.com/chazu/objectscript/syntax"
)

// Kind classifies a symbol.
type Kind string

const (
	KindLabel        Kind = "label"
	KindProcedure    Kind = "procedure"
	KindMacro        Kind = "macro"
	KindClass        Kind = "class"
	KindMethod       Kind = "method"
	KindClassMethod  Kind = "classmethod"
	KindProperty     Kind = "property"
	KindParameter    Kind = "parameter"
	KindRelationship Kind = "relationship"
	KindForeignKey   Kind = "foreignkey"
	KindQuery        Kind = "query"
	KindIndex        Kind = "index"
	KindTrigger      Kind = "trigger"
	KindXData        Kind = "xdata"
	KindProjection   Kind = "projection"
	KindStorage      Kind = "storage"
)

// Symbol is a named definition inside a source file.
type Symbol struct {
	Name string
	Kind Kind
	File string
	// Container is the routine name for labels and macros, the class name
	// for class members.
	Container string
	Span      syntax.Span
	Line      int
	Detail    string
}

// RoutineName derives a routine name from a file path: Foo.mac is Foo.
func RoutineName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Extract collects the symbols defined by a parsed document.
func Extract(file string, doc *objectscript.Document) []Symbol {
	lines := syntax.NewLineIndex(doc.Source)
	mk := func(name string, kind Kind, container string, span syntax.Span, detail string) Symbol {
		return Symbol{
			Name:      name,
			Kind:      kind,
			File:      file,
			Container: container,
			Span:      span,
			Line:      lines.Position(span.Start).Line,
			Detail:    detail,
		}
	}

	var out []Symbol
	if doc.Class != nil {
		cls := doc.Class.Class
		if cls == nil || cls.Name == "" {
			return nil
		}
		out = append(out, mk(cls.Name, KindClass, cls.Name, cls.SpanVal, strings.Join(cls.Extends, ",")))
		for _, m := range cls.Members {
			kind, detail := memberKind(m)
			if kind == "" || m.MemberName() == "" {
				continue
			}
			out = append(out, mk(m.MemberName(), kind, cls.Name, m.Span(), detail))
		}
		return out
	}
	if doc.Routine == nil {
		return nil
	}

	routine := RoutineName(file)
	syntax.Inspect(doc.Routine, func(n syntax.Node) bool {
		switch n := n.(type) {
		case syntax.Expr:
			return false
		case *syntax.TagStmt:
			detail := ""
			if n.HasParams {
				detail = "(" + paramNames(n.Params) + ")"
			}
			out = append(out, mk(n.Name, KindLabel, routine, n.SpanVal, detail))
		case *syntax.ProcedureStmt:
			detail := "(" + paramNames(n.Params) + ")"
			if n.Access != "" {
				detail += " " + n.Access
			}
			out = append(out, mk(n.Name, KindProcedure, routine, n.SpanVal, detail))
		case *syntax.MacroDirective:
			if n.Name == "" {
				break
			}
			detail := ""
			if n.HasParams {
				detail = "(" + strings.Join(n.Params, ",") + ")"
			}
			out = append(out, mk(n.Name, KindMacro, routine, n.SpanVal, detail))
		}
		return true
	})
	return out
}

func paramNames(params []*syntax.Param) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return strings.Join(names, ",")
}

func memberKind(m classdef.Member) (Kind, string) {
	switch m := m.(type) {
	case *classdef.Method:
		args := make([]string, len(m.Args))
		for i, a := range m.Args {
			args[i] = a.Name
		}
		detail := "(" + strings.Join(args, ",") + ")"
		if m.ReturnType != nil {
			detail += " As " + m.ReturnType.Name
		}
		if m.ClassLevel {
			return KindClassMethod, detail
		}
		return KindMethod, detail
	case *classdef.Property:
		return KindProperty, typeName(m.Type)
	case *classdef.Parameter:
		return KindParameter, typeName(m.Type)
	case *classdef.Relationship:
		return KindRelationship, typeName(m.Type)
	case *classdef.ForeignKey:
		return KindForeignKey, m.References
	case *classdef.Query:
		return KindQuery, typeName(m.Type)
	case *classdef.Index:
		return KindIndex, ""
	case *classdef.Trigger:
		return KindTrigger, ""
	case *classdef.XData:
		return KindXData, ""
	case *classdef.Projection:
		return KindProjection, typeName(m.Type)
	case *classdef.Storage:
		return KindStorage, ""
	}
	return "", ""
}

func typeName(t *classdef.TypeName) string {
	if t == nil {
		return ""
	}
	return t.Name
}
