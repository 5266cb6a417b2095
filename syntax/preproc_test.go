package syntax

import (
	"reflect"
	"testing"
)

func TestDefine(t *testing.T) {
	tests := []struct {
		input     string
		directive string
		name      string
		params    []string
		lines     []string
	}{
		{"#define Max 10\n", "define", "Max", nil, []string{"10"}},
		{"#define Empty\n", "define", "Empty", nil, nil},
		{"#define Add(%a,%b) (%a+%b)\n", "define", "Add", []string{"%a", "%b"}, []string{"(%a+%b)"}},
		{"#DEFINE Lit \"a b\"  \n", "define", "Lit", nil, []string{`"a b"`}},
		{"#def1arg Log(%args) Do ##class(Log).W(%args)\n", "def1arg", "Log", []string{"%args"}, []string{"Do ##class(Log).W(%args)"}},
		{"#define Two(%x) S a=%x ##continue\n S b=%x\n", "define", "Two", []string{"%x"}, []string{"S a=%x", "S b=%x"}},
	}

	for _, tc := range tests {
		f := mustParse(t, tc.input)
		if len(f.Stmts) != 1 {
			t.Errorf("%q: got %d statements, want 1", tc.input, len(f.Stmts))
			continue
		}
		d, ok := f.Stmts[0].(*MacroDirective)
		if !ok {
			t.Errorf("%q: got %T", tc.input, f.Stmts[0])
			continue
		}
		var lines []string
		for _, l := range d.Lines {
			lines = append(lines, l.Text)
		}
		if d.Directive != tc.directive || d.Name != tc.name || !reflect.DeepEqual(d.Params, tc.params) || !reflect.DeepEqual(lines, tc.lines) {
			t.Errorf("%q: got %s %s %v %q", tc.input, d.Directive, d.Name, d.Params, lines)
		}
		if d.HasParams != (tc.params != nil) {
			t.Errorf("%q: HasParams = %v", tc.input, d.HasParams)
		}
	}
}

func TestDefineContinuation(t *testing.T) {
	src := "#define Two(%x) S a=%x ##continue\n S b=%x\n W 1\n"
	f := mustParse(t, src)
	if len(f.Stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(f.Stmts))
	}
	d := f.Stmts[0].(*MacroDirective)
	if !d.Lines[0].Continued || d.Lines[1].Continued {
		t.Errorf("continued flags: %v %v", d.Lines[0].Continued, d.Lines[1].Continued)
	}
	if want := len("#define Two(%x) S a=%x ##continue\n S b=%x"); d.Span().End != want {
		t.Errorf("span end = %d, want %d", d.Span().End, want)
	}
}

func TestSimpleDirectives(t *testing.T) {
	f := mustParse(t, "#undef Max\n#include %occStatus\n#import Foo.Bar, Baz\n#dim x,y As %String = 1\n")
	if len(f.Stmts) != 4 {
		t.Fatalf("got %d statements, want 4", len(f.Stmts))
	}
	if u := f.Stmts[0].(*UndefDirective); u.Name != "Max" {
		t.Errorf("#undef: got %s", u.Name)
	}
	inc := f.Stmts[1].(*IncludeDirective)
	if inc.Import || !reflect.DeepEqual(inc.Names, []string{"%occStatus"}) {
		t.Errorf("#include: got %+v", inc)
	}
	imp := f.Stmts[2].(*IncludeDirective)
	if !imp.Import || !reflect.DeepEqual(imp.Names, []string{"Foo.Bar", "Baz"}) {
		t.Errorf("#import: got %+v", imp)
	}
	dim := f.Stmts[3].(*DimDirective)
	if !reflect.DeepEqual(dim.Names, []string{"x", "y"}) || dim.Type != "%String" || dim.Value == nil {
		t.Errorf("#dim: got %+v", dim)
	}
}

func TestConditionalDirective(t *testing.T) {
	src := "#if $$$A\n W 1\n#elseif $$$B\n W 2\n W 3\n#else\n W 4\n#endif\n W 5\n"
	f := mustParse(t, src)
	if len(f.Stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(f.Stmts))
	}
	d := f.Stmts[0].(*CondDirective)
	if d.Directive != "if" || len(d.Body) != 1 || len(d.ElseIfs) != 1 || len(d.ElseIfs[0].Body) != 2 {
		t.Errorf("got %+v", d)
	}
	if d.Else == nil || len(d.Else.Body) != 1 {
		t.Fatalf("#else branch missing")
	}
	if want := len(src) - len("\n W 5\n"); d.Span().End != want {
		t.Errorf("span end = %d, want %d", d.Span().End, want)
	}
}

func TestNestedConditionals(t *testing.T) {
	src := "#ifdef A\n#ifndef B\n W 1\n#endif\n W 2\n#endif\n"
	f := mustParse(t, src)
	outer := f.Stmts[0].(*CondDirective)
	if outer.Directive != "ifdef" || len(outer.Body) != 2 {
		t.Fatalf("outer: got %+v", outer)
	}
	inner := outer.Body[0].(*CondDirective)
	if inner.Directive != "ifndef" || len(inner.Body) != 1 {
		t.Errorf("inner: got %+v", inner)
	}
}

func TestConditionalInsideBlock(t *testing.T) {
	src := " I x {\n#if 1\n W 1\n#else\n W 2\n#endif\n }\n"
	f := mustParse(t, src)
	ifs := f.Stmts[0].(*IfStmt)
	if len(ifs.Body) != 1 {
		t.Fatalf("got %d statements in block, want 1", len(ifs.Body))
	}
	if d, ok := ifs.Body[0].(*CondDirective); !ok || d.Else == nil {
		t.Errorf("got %#v", ifs.Body[0])
	}
}

func TestDirectiveErrors(t *testing.T) {
	tests := []struct {
		input string
		code  Code
	}{
		{"#foo\n", UnexpectedToken},
		{"#else\n", UnbalancedBlock},
		{"#elseif 1\n", UnbalancedBlock},
		{"#if 1\n W 1\n", UnbalancedBlock},
		{"#define\n", UnexpectedToken},
		{"#include\n", UnexpectedToken},
	}

	for _, tc := range tests {
		f := ParseFile(tc.input, NoHints)
		errs := errorsOf(f)
		if len(errs) == 0 {
			t.Errorf("%q: no errors reported", tc.input)
			continue
		}
		if errs[0].Code != tc.code {
			t.Errorf("%q: code = %v, want %v", tc.input, errs[0].Code, tc.code)
		}
	}
}
