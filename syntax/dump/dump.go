// Package dump exports syntax trees as generic named-field node trees that
// can be written as JSON or canonical CBOR.
package dump

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/chazu/objectscript/syntax"
	"github.com/fxamacker/cbor/v2"
)

// RootKind is the kind of the node every encoded tree is rooted at.
const RootKind = "source_file"

// Node is one exported tree node. Leaves carry their source text.
type Node struct {
	Kind   string  `json:"kind" cbor:"1,keyasint"`
	Start  int     `json:"start" cbor:"2,keyasint"`
	End    int     `json:"end" cbor:"3,keyasint"`
	Text   string  `json:"text,omitempty" cbor:"4,keyasint,omitempty"`
	Attrs  []Attr  `json:"attrs,omitempty" cbor:"5,keyasint,omitempty"`
	Fields []Field `json:"fields,omitempty" cbor:"6,keyasint,omitempty"`
}

// Attr is a scalar property of a node, such as a name or an operator.
type Attr struct {
	Name  string `json:"name" cbor:"1,keyasint"`
	Value string `json:"value" cbor:"2,keyasint"`
}

// Field is a named child slot holding zero or more nodes in source order.
type Field struct {
	Name  string  `json:"name" cbor:"1,keyasint"`
	Nodes []*Node `json:"nodes" cbor:"2,keyasint"`
}

// Diagnostic is the exported form of a syntax.Diagnostic.
type Diagnostic struct {
	Start    int    `json:"start" cbor:"1,keyasint"`
	End      int    `json:"end" cbor:"2,keyasint"`
	Severity string `json:"severity" cbor:"3,keyasint"`
	Code     string `json:"code" cbor:"4,keyasint"`
	Message  string `json:"message" cbor:"5,keyasint"`
}

// Document pairs an encoded tree with its diagnostics.
type Document struct {
	Tree        *Node        `json:"tree" cbor:"1,keyasint"`
	Diagnostics []Diagnostic `json:"diagnostics" cbor:"2,keyasint"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dump: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// spanner is implemented by every tree node, including the class
// definition nodes built on top of syntax.
type spanner interface {
	Span() syntax.Span
}

var (
	spannerType = reflect.TypeOf((*spanner)(nil)).Elem()
	spanType    = reflect.TypeOf(syntax.Span{})
	stringerTyp = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
)

// Encode converts the tree rooted at root into a dump tree. The root is
// always named source_file.
func Encode(root interface{ Span() syntax.Span }, src string) *Node {
	n := encodeValue(reflect.ValueOf(root), src)
	if n == nil {
		return &Node{Kind: RootKind}
	}
	n.Kind = RootKind
	return n
}

// NewDocument encodes a tree together with its diagnostics.
func NewDocument(root interface{ Span() syntax.Span }, src string, diags []syntax.Diagnostic) *Document {
	doc := &Document{Tree: Encode(root, src), Diagnostics: make([]Diagnostic, 0, len(diags))}
	for _, d := range diags {
		doc.Diagnostics = append(doc.Diagnostics, Diagnostic{
			Start:    d.Span.Start,
			End:      d.Span.End,
			Severity: d.Severity.String(),
			Code:     string(d.Code),
			Message:  d.Message,
		})
	}
	return doc
}

func encodeValue(v reflect.Value, src string) *Node {
	if !v.IsValid() || (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil
	}
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	s, ok := v.Interface().(spanner)
	if !ok {
		return nil
	}
	sp := s.Span()
	n := &Node{Kind: KindOf(v.Type()), Start: sp.Start, End: sp.End}

	sv := v
	if sv.Kind() == reflect.Ptr {
		sv = sv.Elem()
	}
	if sv.Kind() != reflect.Struct {
		return n
	}
	t := sv.Type()
	for i := 0; i < sv.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" || f.Name == "SpanVal" {
			continue
		}
		encodeField(n, snake(f.Name), sv.Field(i), src)
	}
	if len(n.Fields) == 0 && sp.End <= len(src) && sp.Start <= sp.End {
		n.Text = src[sp.Start:sp.End]
	}
	return n
}

func encodeField(n *Node, name string, fv reflect.Value, src string) {
	switch {
	case fv.Type() == spanType:
		sp := fv.Interface().(syntax.Span)
		if sp.End <= len(src) && sp.Start <= sp.End {
			n.Fields = append(n.Fields, Field{Name: name, Nodes: []*Node{{Kind: "text", Start: sp.Start, End: sp.End, Text: src[sp.Start:sp.End]}}})
		}
	case fv.Type().Implements(spannerType):
		if c := encodeValue(fv, src); c != nil {
			n.Fields = append(n.Fields, Field{Name: name, Nodes: []*Node{c}})
		}
	case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String:
		if fv.Len() > 0 {
			parts := make([]string, fv.Len())
			for i := range parts {
				parts[i] = fv.Index(i).String()
			}
			n.Attrs = append(n.Attrs, Attr{Name: name, Value: strings.Join(parts, ",")})
		}
	case fv.Kind() == reflect.Slice && fv.Type().Elem().Implements(spannerType):
		if fv.Len() == 0 {
			return
		}
		nodes := make([]*Node, 0, fv.Len())
		for i := 0; i < fv.Len(); i++ {
			if c := encodeValue(fv.Index(i), src); c != nil {
				nodes = append(nodes, c)
			}
		}
		n.Fields = append(n.Fields, Field{Name: name, Nodes: nodes})
	default:
		if a, ok := scalar(fv); ok {
			n.Attrs = append(n.Attrs, Attr{Name: name, Value: a})
		}
	}
}

// scalar renders a scalar attribute. Enumerations always appear; other
// zero values are omitted.
func scalar(fv reflect.Value) (string, bool) {
	if fv.Type().Implements(stringerTyp) && fv.Kind() == reflect.Int {
		return fv.Interface().(fmt.Stringer).String(), true
	}
	switch fv.Kind() {
	case reflect.String:
		return fv.String(), fv.Len() > 0
	case reflect.Bool:
		return "true", fv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(fv.Int(), 10), fv.Int() != 0
	}
	return "", false
}

// KindOf returns the dump kind of a node type: its Go type name in
// snake_case.
func KindOf(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return snake(t.Name())
}

func snake(s string) string {
	var b strings.Builder
	rs := []rune(s)
	for i, r := range rs {
		if unicode.IsUpper(r) {
			lowerNext := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if i > 0 && (unicode.IsLower(rs[i-1]) || lowerNext && unicode.IsUpper(rs[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Field returns the named field of n, or nil.
func (n *Node) Field(name string) []*Node {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Nodes
		}
	}
	return nil
}

// Attr returns the named attribute of n.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Walk calls f for n and every descendant, depth-first in field order.
func (n *Node) Walk(f func(*Node)) {
	if n == nil {
		return
	}
	f(n)
	for _, fld := range n.Fields {
		for _, c := range fld.Nodes {
			c.Walk(f)
		}
	}
}

// MarshalJSON writes the document as JSON.
func (d *Document) MarshalJSON() ([]byte, error) {
	type plain Document
	return json.Marshal((*plain)(d))
}

// MarshalCBOR writes the document in canonical CBOR, so identical trees
// always encode to identical bytes.
func (d *Document) MarshalCBOR() ([]byte, error) {
	type plain Document
	return encMode.Marshal((*plain)(d))
}

// MarshalCBOR encodes a single tree in canonical CBOR.
func MarshalCBOR(n *Node) ([]byte, error) {
	return encMode.Marshal(n)
}

// UnmarshalCBOR decodes a tree written by MarshalCBOR.
func UnmarshalCBOR(data []byte) (*Node, error) {
	var n Node
	if err := cbor.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("dump: unmarshal tree: %w", err)
	}
	return &n, nil
}
