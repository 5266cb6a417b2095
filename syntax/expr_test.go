package syntax

import "testing"

func mustExpr(t *testing.T, src string) *Expression {
	t.Helper()
	e, diags := ParseExpr(src)
	if HasErrors(diags) {
		t.Fatalf("ParseExpr(%q): unexpected errors %v", src, diags)
	}
	return e
}

func TestGroupingIsLeftToRight(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1+2-3", "((1+2)-3)"},
		{"2+3*4", "((2+3)*4)"},
		{"2*3+4", "((2*3)+4)"},
		{"1 + 2", "(1+2)"},
		{"a_b_c", "((a_b)_c)"},
		{"x'=1", "(x'=1)"},
		{"-1+2", "(-1+2)"},
		{"a]]b", "(a]]b)"},
		{"x&&y||z", "((x&&y)||z)"},
		{"2**3\\4", "((2**3)\\4)"},
		{"x", "x"},
	}

	for _, tc := range tests {
		e := mustExpr(t, tc.input)
		if got := Grouping(e, tc.input); got != tc.want {
			t.Errorf("Grouping(%q): got %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestAtomKinds(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"abc"`, "StringLit"},
		{`"say ""hi"""`, "StringLit"},
		{"12.5", "NumberLit"},
		{".5", "NumberLit"},
		{"x(1,2)", "LocalVar"},
		{"%x", "LocalVar"},
		{"^G(1)", "GlobalVar"},
		{"^||tmp", "GlobalVar"},
		{`^|"USER"|G`, "GlobalVar"},
		{`^["A"]G`, "GlobalVar"},
		{"^(1)", "GlobalVar"},
		{"^$JOB", "SSVN"},
		{"i%Name", "InstanceVar"},
		{"$H", "SystemVar"},
		{"$piece(x,\",\",2)", "SystemFunc"},
		{"$$$Macro", "MacroRef"},
		{"$$tag^rtn(1)", "Extrinsic"},
		{"##class(A.B).M()", "ClassRef"},
		{"##super(1)", "SuperCall"},
		{"..Prop", "RelativeRef"},
		{"o.a.b", "OrefChain"},
		{"@x", "Indirection"},
		{`{"a":1}`, "JSONObject"},
		{"[1,2]", "JSONArray"},
		{"{Name}", "SQLFieldRef"},
		{"$SYSTEM.Status.OK()", "SystemCall"},
		{"'x", "UnaryExpr"},
		{"(1)", "ParenExpr"},
	}

	for _, tc := range tests {
		e := mustExpr(t, tc.input)
		if len(e.Tails) != 0 {
			t.Errorf("%q: got %d tails, want 0", tc.input, len(e.Tails))
		}
		if got := NodeName(e.Atom); got != tc.want {
			t.Errorf("%q: got %s, want %s", tc.input, got, tc.want)
		}
		if e.Span() != (Span{0, len(tc.input)}) {
			t.Errorf("%q: span = %v, want 0-%d", tc.input, e.Span(), len(tc.input))
		}
	}
}

func TestGlobals(t *testing.T) {
	tests := []struct {
		input          string
		name           string
		env            bool
		processPrivate bool
		naked          bool
		subs           int
	}{
		{"^G(1,2)", "G", false, false, false, 2},
		{"^a.b.c", "a.b.c", false, false, false, 0},
		{"^||tmp(1)", "tmp", false, true, false, 1},
		{`^|"USER"|G(1)`, "G", true, false, false, 1},
		{`^["A"]G`, "G", true, false, false, 0},
		{"^(1)", "", false, false, true, 1},
	}

	for _, tc := range tests {
		g, ok := mustExpr(t, tc.input).Atom.(*GlobalVar)
		if !ok {
			t.Errorf("%q: not a global", tc.input)
			continue
		}
		if g.Name != tc.name || (g.Env != nil) != tc.env || g.ProcessPrivate != tc.processPrivate ||
			g.Naked != tc.naked || len(g.Subscripts) != tc.subs {
			t.Errorf("%q: got %+v", tc.input, g)
		}
	}
}

func TestSSVN(t *testing.T) {
	v := mustExpr(t, `^$job(1)`).Atom.(*SSVN)
	if v.Name != "JOB" || len(v.Subscripts) != 1 {
		t.Errorf("got %s/%d, want JOB/1", v.Name, len(v.Subscripts))
	}
}

func TestExtrinsic(t *testing.T) {
	tests := []struct {
		input   string
		label   string
		routine string
		call    bool
		args    int
	}{
		{"$$foo^bar(1,.y)", "foo", "bar", true, 2},
		{"$$^bar", "", "bar", false, 0},
		{"$$foo", "foo", "", false, 0},
		{"$$foo()", "foo", "", true, 0},
		{"$$foo+2^bar", "foo", "bar", false, 0},
	}

	for _, tc := range tests {
		x, ok := mustExpr(t, tc.input).Atom.(*Extrinsic)
		if !ok {
			t.Errorf("%q: not an extrinsic", tc.input)
			continue
		}
		if x.Ref.Label != tc.label || x.Ref.Routine != tc.routine || x.Call != tc.call || len(x.Args) != tc.args {
			t.Errorf("%q: got %s^%s call=%v args=%d", tc.input, x.Ref.Label, x.Ref.Routine, x.Call, len(x.Args))
		}
	}

	x := mustExpr(t, "$$foo^bar(1,.y)").Atom.(*Extrinsic)
	if _, ok := x.Args[1].(*ByRefArg); !ok {
		t.Errorf("second argument: got %T, want *ByRefArg", x.Args[1])
	}
	if x := mustExpr(t, "$$foo+2^bar").Atom.(*Extrinsic); x.Ref.Offset == nil {
		t.Errorf("offset missing")
	}
}

func TestCallArguments(t *testing.T) {
	src := "$$f(,.x,.@y,z...,1)"
	args := mustExpr(t, src).Atom.(*Extrinsic).Args
	want := []string{"OmittedArg", "ByRefArg", "ByRefArg", "VariadicArg", "Expression"}
	if len(args) != len(want) {
		t.Fatalf("got %d args, want %d", len(args), len(want))
	}
	for i, a := range args {
		if got := NodeName(a); got != want[i] {
			t.Errorf("arg %d: got %s, want %s", i, got, want[i])
		}
	}
}

func TestSystemFunctionForms(t *testing.T) {
	f := mustExpr(t, "$E(x,*-1)").Atom.(*SystemFunc)
	if f.Name != "EXTRACT" || f.Spelling != "E" || !f.Known {
		t.Errorf("got %s/%s/%v, want EXTRACT/E/true", f.Name, f.Spelling, f.Known)
	}
	end, ok := f.Args[1].(*EndRef)
	if !ok || end.Op != "-" || end.Offset == nil {
		t.Errorf("second argument: got %#v, want *-1", f.Args[1])
	}

	f = mustExpr(t, `$P(x,",",*)`).Atom.(*SystemFunc)
	if end, ok := f.Args[2].(*EndRef); !ok || end.Op != "" {
		t.Errorf("third argument: got %#v, want bare *", f.Args[2])
	}

	f = mustExpr(t, `$CASE(x,1:"a",2:"b",:"z")`).Atom.(*SystemFunc)
	if len(f.Args) != 4 {
		t.Fatalf("$CASE: got %d args, want 4", len(f.Args))
	}
	for i, a := range f.Args[1:] {
		arm, ok := a.(*CaseArm)
		if !ok {
			t.Errorf("$CASE arm %d: got %T", i, a)
			continue
		}
		if isDefault := arm.Match == nil; isDefault != (i == 2) {
			t.Errorf("$CASE arm %d: default = %v", i, isDefault)
		}
	}

	f = mustExpr(t, "$S(x:1,1:2)").Atom.(*SystemFunc)
	if f.Name != "SELECT" || len(f.Args) != 2 {
		t.Errorf("$SELECT: got %s with %d args", f.Name, len(f.Args))
	}
	for i, a := range f.Args {
		if arm, ok := a.(*CaseArm); !ok || arm.Match == nil {
			t.Errorf("$SELECT arm %d: got %#v", i, a)
		}
	}

	f = mustExpr(t, "$TEXT(lbl+1^rtn)").Atom.(*SystemFunc)
	ref, ok := f.Args[0].(*LineRef)
	if !ok || ref.Label != "lbl" || ref.Routine != "rtn" || ref.Offset == nil {
		t.Errorf("$TEXT: got %#v, want lbl+1^rtn", f.Args[0])
	}

	f = mustExpr(t, "$TEXT(x_1)").Atom.(*SystemFunc)
	if _, ok := f.Args[0].(*Expression); !ok {
		t.Errorf("$TEXT expression argument: got %T", f.Args[0])
	}

	f = mustExpr(t, `$METHOD(o,"Go",.x)`).Atom.(*SystemFunc)
	if _, ok := f.Args[2].(*ByRefArg); !ok {
		t.Errorf("$METHOD by-reference argument: got %T", f.Args[2])
	}
}

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		input string
		op    string
		raw   string
	}{
		{"x?1.3N.A", "?", "1.3N.A"},
		{"x'?1N", "'?", "1N"},
		{`x?3N1"-"4N`, "?", `3N1"-"4N`},
		{"x?.E1(1N,1A)", "?", ".E1(1N,1A)"},
	}

	for _, tc := range tests {
		e := mustExpr(t, tc.input)
		if len(e.Tails) != 1 {
			t.Fatalf("%q: got %d tails, want 1", tc.input, len(e.Tails))
		}
		tail := e.Tails[0]
		lit, ok := tail.Right.(*PatternLit)
		if tail.Op != tc.op || !ok || lit.Raw != tc.raw {
			t.Errorf("%q: got %s %#v, want %s %s", tc.input, tail.Op, tail.Right, tc.op, tc.raw)
		}
	}

	e := mustExpr(t, "x?@pat")
	if _, ok := e.Tails[0].Right.(*Indirection); !ok {
		t.Errorf("indirect pattern: got %T", e.Tails[0].Right)
	}
}

func TestJSONLiteral(t *testing.T) {
	src := `{"a":1,"b":[1,"x",(y+1),true,null],"c":{}}`
	obj := mustExpr(t, src).Atom.(*JSONObject)
	if len(obj.Pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(obj.Pairs))
	}
	if obj.Pairs[0].Key != `"a"` {
		t.Errorf("first key: got %s", obj.Pairs[0].Key)
	}
	arr := obj.Pairs[1].Value.(*JSONArray)
	want := []string{"JSONValue", "JSONValue", "ParenExpr", "JSONValue", "JSONValue"}
	for i, el := range arr.Elems {
		if got := NodeName(el); got != want[i] {
			t.Errorf("element %d: got %s, want %s", i, got, want[i])
		}
	}
	if inner := obj.Pairs[2].Value.(*JSONObject); len(inner.Pairs) != 0 {
		t.Errorf("empty object has %d pairs", len(inner.Pairs))
	}
}

func TestJSONSpansLines(t *testing.T) {
	src := "{\n  \"a\": 1,\n  \"b\": [2, 3]\n}"
	obj := mustExpr(t, src).Atom.(*JSONObject)
	if len(obj.Pairs) != 2 {
		t.Errorf("got %d pairs, want 2", len(obj.Pairs))
	}
}

func TestIndirection(t *testing.T) {
	ind := mustExpr(t, "@x@(1,2)").Atom.(*Indirection)
	if _, ok := ind.X.(*LocalVar); !ok || len(ind.Subscripts) != 2 {
		t.Errorf("@x@(1,2): got %T with %d subscripts", ind.X, len(ind.Subscripts))
	}
	ind = mustExpr(t, `@("x"_n)`).Atom.(*Indirection)
	if _, ok := ind.X.(*ParenExpr); !ok {
		t.Errorf("@(expr): got %T", ind.X)
	}
	ind = mustExpr(t, "@^G").Atom.(*Indirection)
	if _, ok := ind.X.(*GlobalVar); !ok {
		t.Errorf("@^G: got %T", ind.X)
	}
}

func TestClassRef(t *testing.T) {
	tests := []struct {
		input  string
		class  string
		member string
		kind   SegmentKind
		cast   bool
	}{
		{"##class(Foo.Bar).Baz(1)", "Foo.Bar", "Baz", SegmentMethod, false},
		{"##class(%Library.String).%New()", "%Library.String", "%New", SegmentMethod, false},
		{"##class(Foo).#MAX", "Foo", "MAX", SegmentParameter, false},
		{`##class("Odd Name").Run()`, "Odd Name", "Run", SegmentMethod, false},
		{"##class(Foo)(x)", "Foo", "", 0, true},
	}

	for _, tc := range tests {
		ref, ok := mustExpr(t, tc.input).Atom.(*ClassRef)
		if !ok {
			t.Errorf("%q: not a class reference", tc.input)
			continue
		}
		if ref.Class != tc.class || (ref.Cast != nil) != tc.cast {
			t.Errorf("%q: got class %q cast=%v", tc.input, ref.Class, ref.Cast != nil)
		}
		if tc.member == "" {
			continue
		}
		if ref.Member == nil || ref.Member.Name != tc.member || ref.Member.Kind != tc.kind || ref.Member.Ambiguous {
			t.Errorf("%q: got member %+v", tc.input, ref.Member)
		}
	}
}

func TestClassRefChain(t *testing.T) {
	e := mustExpr(t, "##class(Foo).Open(1).Name")
	chain, ok := e.Atom.(*OrefChain)
	if !ok {
		t.Fatalf("got %T, want *OrefChain", e.Atom)
	}
	if _, ok := chain.Base.(*ClassRef); !ok || len(chain.Segments) != 1 {
		t.Errorf("got base %T with %d segments", chain.Base, len(chain.Segments))
	}
}

func TestUnknownNames(t *testing.T) {
	tests := []string{"$ZZNOPE", "$nosuch(1)"}
	for _, src := range tests {
		_, diags := ParseExpr(src)
		if len(diags) != 1 || diags[0].Severity != SeverityWarning || diags[0].Code != UnknownName {
			t.Errorf("%q: got %v, want one UnknownName warning", src, diags)
		}
	}
}

func TestExprErrors(t *testing.T) {
	tests := []struct {
		input string
		code  Code
	}{
		{"1+", UnexpectedToken},
		{"1 2", UnexpectedToken},
		{"x()", UnexpectedToken},
		{`"abc`, LexError},
		{"(1", UnexpectedToken},
		{"##class(Foo).Bar", UnexpectedToken},
		{"$", UnexpectedToken},
		{`{"a" 1}`, UnexpectedToken},
		{"x?", UnexpectedToken},
	}

	for _, tc := range tests {
		e, diags := ParseExpr(tc.input)
		if e == nil {
			t.Errorf("%q: nil expression", tc.input)
		}
		if !HasErrors(diags) {
			t.Errorf("%q: no errors reported", tc.input)
			continue
		}
		if diags[0].Code != tc.code {
			t.Errorf("%q: code = %v, want %v", tc.input, diags[0].Code, tc.code)
		}
	}
}

func TestParseExprRegionSpansLines(t *testing.T) {
	src := "Method M() [ CodeMode = expression ] { a +\n b }"
	start := len("Method M() [ CodeMode = expression ] {")
	end := len(src) - 1
	e, f := ParseExprRegion(src, start, end, NoHints)
	if HasErrors(f.Diagnostics) {
		t.Fatalf("unexpected errors %v", f.Diagnostics)
	}
	if got := Grouping(e, src); got != "(a+b)" {
		t.Errorf("got %s, want (a+b)", got)
	}
	if tokenText(f) != src[start:end] {
		t.Errorf("tokens %q, want %q", tokenText(f), src[start:end])
	}
}
