package syntax

import (
	"reflect"
	"strings"
)

// ---------------------------------------------------------------------------
// Traversal
// ---------------------------------------------------------------------------

// Inspect traverses the tree rooted at n depth-first in source order,
// calling f for each node. Children of a node are skipped when f returns
// false.
func Inspect(n Node, f func(Node) bool) {
	if isNil(n) || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Children returns the direct child nodes of n in field order.
func Children(n Node) []Node {
	if isNil(n) {
		return nil
	}
	v := reflect.ValueOf(n)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	var out []Node
	for i := 0; i < v.NumField(); i++ {
		out = appendNodes(out, v.Field(i))
	}
	return out
}

var nodeType = reflect.TypeOf((*Node)(nil)).Elem()

func appendNodes(out []Node, f reflect.Value) []Node {
	switch f.Kind() {
	case reflect.Interface, reflect.Ptr:
		if f.IsNil() || !f.Type().Implements(nodeType) && f.Kind() == reflect.Ptr {
			return out
		}
		if n, ok := f.Interface().(Node); ok && !isNil(n) {
			out = append(out, n)
		}
	case reflect.Slice:
		for j := 0; j < f.Len(); j++ {
			out = appendNodes(out, f.Index(j))
		}
	}
	return out
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// NodeName returns the type name of n without package qualification.
func NodeName(n Node) string {
	t := reflect.TypeOf(n)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// ---------------------------------------------------------------------------
// Grouping
// ---------------------------------------------------------------------------

// Grouping renders e with every binary step parenthesized, making the
// left-to-right fold explicit: 1+2-3 becomes ((1+2)-3). Operands are
// rendered as their source text.
func Grouping(e *Expression, src string) string {
	var b strings.Builder
	for range e.Tails {
		b.WriteByte('(')
	}
	b.WriteString(operandText(e.Atom, src))
	for _, t := range e.Tails {
		b.WriteString(t.Op)
		b.WriteString(operandText(t.Right, src))
		b.WriteByte(')')
	}
	return b.String()
}

func operandText(x Expr, src string) string {
	if p, ok := x.(*ParenExpr); ok && p.X != nil {
		return "(" + Grouping(p.X, src) + ")"
	}
	return x.Span().Text(src)
}
