package classdef

import (
	"strings"
	"testing"

	"github.com/chazu/objectscript/syntax"
)

const sampleClass = `Include (%occStatus, %occErrors)

/// A person.
Class Sample.Person Extends (%Persistent, %Populate) [ SqlTableName = People, Not ProcedureBlock ]
{

Parameter VERSION = 2;

/// The name.
Property Name As %String(MAXLEN = 50) [ Required ];

Property Tags As list Of %String;

Property Age As %Integer [ InitialExpression = {$get(^Default("age"),18)} ];

Property Full As %String [ Calculated, SqlComputeCode = { set {*}={Name}_"!"}, SqlComputed ];

Relationship Employer As Sample.Company [ Cardinality = one, Inverse = Employees ];

ForeignKey EmpFK(Employer) References Sample.Company(IDKEY);

Index NameIdx On Name As SQLUPPER [ Unique ];

Index TagIdx On (Tags(ELEMENTS), Name);

Method Greet(greeting As %String = "Hello", ByRef count As %Integer, args...) As %String
{
	set count = $get(count) + 1
	quit greeting_", "_..Name
}

ClassMethod Double(x As %Integer) As %Integer [ CodeMode = expression ]
{
x * 2
}

ClassMethod Py() [ Language = python ]
{
	print("{not braces")
}

Query ByName(name As %String) As %SQLQuery [ SqlProc ]
{
SELECT Name FROM Sample.Person WHERE Name %STARTSWITH :name
}

Trigger LogInsert [ Event = INSERT ]
{
	set ^Log($i(^Log))={Name}
}

XData Config [ MimeType = application/json ]
{
{"a": "}"}
}

Projection Java As %Projection.Java;

Storage Default
{
<Data name="PersonDefaultData"><Value name="1"><Value>%%CLASSNAME</Value></Value></Data>
}

}
`

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f := Parse(src, syntax.NoHints)
	if syntax.HasErrors(f.Diagnostics) {
		t.Fatalf("unexpected errors: %v", f.Diagnostics)
	}
	return f
}

func TestParseSampleClass(t *testing.T) {
	f := mustParse(t, sampleClass)
	if len(f.Includes) != 1 || strings.Join(f.Includes[0].Names, ",") != "%occStatus,%occErrors" {
		t.Errorf("includes: got %+v", f.Includes)
	}
	c := f.Class
	if c == nil {
		t.Fatal("no class")
	}
	if c.Name != "Sample.Person" {
		t.Errorf("name: got %q, want Sample.Person", c.Name)
	}
	if strings.Join(c.Extends, ",") != "%Persistent,%Populate" {
		t.Errorf("extends: got %v", c.Extends)
	}
	if len(c.Doc) != 1 || c.Doc[0] != "A person." {
		t.Errorf("doc: got %q", c.Doc)
	}
	if k, ok := c.Keywords.Lookup("sqltablename"); !ok || k.Value.Raw != "People" {
		t.Errorf("SqlTableName: got %+v", k)
	}
	if k, ok := c.Keywords.Lookup("ProcedureBlock"); !ok || !k.Not {
		t.Errorf("ProcedureBlock: got %+v, want Not", k)
	}

	want := []string{
		"Parameter:VERSION", "Property:Name", "Property:Tags", "Property:Age",
		"Property:Full", "Relationship:Employer", "ForeignKey:EmpFK",
		"Index:NameIdx", "Index:TagIdx", "Method:Greet", "Method:Double",
		"Method:Py", "Query:ByName", "Trigger:LogInsert", "XData:Config",
		"Projection:Java", "Storage:Default",
	}
	var got []string
	for _, m := range c.Members {
		got = append(got, memberKind(m)+":"+m.MemberName())
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("members:\n got %v\nwant %v", got, want)
	}
}

func memberKind(m Member) string {
	switch m.(type) {
	case *Method:
		return "Method"
	case *Property:
		return "Property"
	case *Parameter:
		return "Parameter"
	case *Relationship:
		return "Relationship"
	case *ForeignKey:
		return "ForeignKey"
	case *Query:
		return "Query"
	case *Index:
		return "Index"
	case *Trigger:
		return "Trigger"
	case *XData:
		return "XData"
	case *Projection:
		return "Projection"
	case *Storage:
		return "Storage"
	}
	return "BadMember"
}

func member(t *testing.T, f *File, name string) Member {
	t.Helper()
	for _, m := range f.Class.Members {
		if m.MemberName() == name {
			return m
		}
	}
	t.Fatalf("member %s not found", name)
	return nil
}

func TestDeclarations(t *testing.T) {
	f := mustParse(t, sampleClass)

	param := member(t, f, "VERSION").(*Parameter)
	if param.Default == nil || param.Default.Raw != "2" {
		t.Errorf("VERSION default: got %+v", param.Default)
	}

	name := member(t, f, "Name").(*Property)
	if len(name.Doc) != 1 || name.Doc[0] != "The name." {
		t.Errorf("Name doc: got %q", name.Doc)
	}
	if name.Type.Name != "%String" || len(name.Type.Params) != 1 || name.Type.Params[0].Value != "50" {
		t.Errorf("Name type: got %+v", name.Type)
	}
	if _, ok := name.Keywords.Lookup("Required"); !ok {
		t.Error("Name: Required keyword missing")
	}

	tags := member(t, f, "Tags").(*Property)
	if tags.Collection != "list" || tags.Type.Name != "%String" {
		t.Errorf("Tags: got collection %q type %+v", tags.Collection, tags.Type)
	}

	rel := member(t, f, "Employer").(*Relationship)
	if rel.Type.Name != "Sample.Company" {
		t.Errorf("Employer type: got %q", rel.Type.Name)
	}
	if k, _ := rel.Keywords.Lookup("Inverse"); k == nil || k.Value.Raw != "Employees" {
		t.Errorf("Inverse: got %+v", k)
	}

	fk := member(t, f, "EmpFK").(*ForeignKey)
	if strings.Join(fk.Properties, ",") != "Employer" || fk.References != "Sample.Company" || fk.RefKey != "IDKEY" {
		t.Errorf("EmpFK: got %+v", fk)
	}

	idx := member(t, f, "NameIdx").(*Index)
	if len(idx.Items) != 1 || idx.Items[0].Property != "Name" || idx.Items[0].As != "SQLUPPER" {
		t.Errorf("NameIdx items: got %+v", idx.Items)
	}
	tagIdx := member(t, f, "TagIdx").(*Index)
	if len(tagIdx.Items) != 2 || tagIdx.Items[0].Collection != "ELEMENTS" || tagIdx.Items[1].Property != "Name" {
		t.Errorf("TagIdx items: got %+v", tagIdx.Items)
	}

	proj := member(t, f, "Java").(*Projection)
	if proj.Type == nil || proj.Type.Name != "%Projection.Java" {
		t.Errorf("Java type: got %+v", proj.Type)
	}
}

func TestKeywordValues(t *testing.T) {
	f := mustParse(t, sampleClass)

	age := member(t, f, "Age").(*Property)
	k, ok := age.Keywords.Lookup("InitialExpression")
	if !ok || k.Value == nil || k.Value.Expr == nil {
		t.Fatalf("InitialExpression: got %+v", k)
	}
	if _, isFunc := k.Value.Expr.Atom.(*syntax.SystemFunc); !isFunc {
		t.Errorf("InitialExpression atom: got %T, want *syntax.SystemFunc", k.Value.Expr.Atom)
	}

	full := member(t, f, "Full").(*Property)
	k, ok = full.Keywords.Lookup("SqlComputeCode")
	if !ok || k.Value == nil || k.Value.Code == nil {
		t.Fatalf("SqlComputeCode: got %+v", k)
	}
	if len(k.Value.Code.Stmts) != 1 {
		t.Errorf("SqlComputeCode statements: got %d, want 1", len(k.Value.Code.Stmts))
	}
	if len(full.Keywords.Items) != 3 {
		t.Errorf("Full keywords: got %d, want 3", len(full.Keywords.Items))
	}
}

func TestMethodBodies(t *testing.T) {
	f := mustParse(t, sampleClass)

	greet := member(t, f, "Greet").(*Method)
	if greet.ClassLevel {
		t.Error("Greet should be an instance method")
	}
	if len(greet.Args) != 3 {
		t.Fatalf("Greet args: got %d, want 3", len(greet.Args))
	}
	if a := greet.Args[0]; a.Name != "greeting" || a.Type.Name != "%String" || a.Default == nil || a.Default.Raw != `"Hello"` {
		t.Errorf("arg 0: got %+v", a)
	}
	if a := greet.Args[1]; a.Mode != "ByRef" || a.Name != "count" {
		t.Errorf("arg 1: got %+v", a)
	}
	if a := greet.Args[2]; !a.Variadic || a.Name != "args" {
		t.Errorf("arg 2: got %+v", a)
	}
	if greet.ReturnType == nil || greet.ReturnType.Name != "%String" {
		t.Errorf("return type: got %+v", greet.ReturnType)
	}
	body := greet.Body
	if body.Kind != BodyCode || body.Code == nil || len(body.Code.Stmts) != 2 {
		t.Fatalf("Greet body: got %+v", body)
	}
	first := body.Code.Stmts[0].Span()
	if !strings.HasPrefix(sampleClass[first.Start:], "set count") {
		t.Errorf("first statement offset %d is not absolute", first.Start)
	}

	double := member(t, f, "Double").(*Method)
	if !double.ClassLevel || double.Body.Kind != BodyExpression || double.Body.Expr == nil {
		t.Fatalf("Double body: got %+v", double.Body)
	}
	if len(double.Body.Expr.Tails) != 1 || double.Body.Expr.Tails[0].Op != "*" {
		t.Errorf("Double expression: got %+v", double.Body.Expr)
	}

	py := member(t, f, "Py").(*Method)
	if py.Body.Kind != BodyOpaque || py.Body.Language != "python" {
		t.Errorf("Py body: got kind %s language %q", py.Body.Kind, py.Body.Language)
	}
	if strings.TrimSpace(py.Body.Text) != `print("{not braces")` {
		t.Errorf("Py text: got %q", py.Body.Text)
	}
}

func TestOpaqueBodies(t *testing.T) {
	f := mustParse(t, sampleClass)
	tests := []struct {
		name string
		kind BodyKind
		text string
	}{
		{"ByName", BodyOpaque, "SELECT Name FROM Sample.Person WHERE Name %STARTSWITH :name"},
		{"Config", BodyOpaque, `{"a": "}"}`},
		{"Default", BodyOpaque, `<Data name="PersonDefaultData"><Value name="1"><Value>%%CLASSNAME</Value></Value></Data>`},
	}
	for _, tc := range tests {
		var b *Body
		switch m := member(t, f, tc.name).(type) {
		case *Query:
			b = m.Body
		case *XData:
			b = m.Body
		case *Storage:
			b = m.Body
		}
		if b == nil || b.Kind != tc.kind || strings.TrimSpace(b.Text) != tc.text {
			t.Errorf("%s: got %+v, want text %q", tc.name, b, tc.text)
			continue
		}
		if sampleClass[b.SpanVal.Start:b.SpanVal.End] != b.Text {
			t.Errorf("%s: span does not cover the text", tc.name)
		}
	}
}

func TestTriggerBody(t *testing.T) {
	f := mustParse(t, sampleClass)
	tr := member(t, f, "LogInsert").(*Trigger)
	if tr.Body.Kind != BodyCode || len(tr.Body.Code.Stmts) != 1 {
		t.Fatalf("trigger body: got %+v", tr.Body)
	}
	var sawField bool
	syntax.Inspect(tr.Body.Code, func(n syntax.Node) bool {
		if _, ok := n.(*syntax.SQLFieldRef); ok {
			sawField = true
		}
		return true
	})
	if !sawField {
		t.Error("trigger body should contain a {Name} field reference")
	}
}

func TestMemberSpans(t *testing.T) {
	f := mustParse(t, sampleClass)
	for _, m := range f.Class.Members {
		sp := m.Span()
		if !f.Class.Span().Contains(sp) {
			t.Errorf("%s: span %v outside class %v", m.MemberName(), sp, f.Class.Span())
		}
		text := sampleClass[sp.Start:sp.End]
		if !strings.HasSuffix(text, ";") && !strings.HasSuffix(text, "}") {
			t.Errorf("%s: span text ends with %q", m.MemberName(), text[len(text)-1:])
		}
	}
}

func TestClassErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		code    syntax.Code
		members int
	}{
		{"unknown member", "Class A {\nFoo Bar;\nProperty X;\n}", syntax.UnexpectedToken, 2},
		{"missing semicolon", "Class A {\nProperty X\nProperty Y;\n}", syntax.UnexpectedToken, 2},
		{"missing class brace", "Class A {\nProperty X;\n", syntax.UnbalancedBlock, 1},
		{"unterminated body", "Class A {\nMethod M() {\n quit\n", syntax.UnbalancedBlock, 1},
		{"error in body", "Class A {\nMethod M() {\n S x=\n}\nProperty P;\n}", syntax.UnexpectedToken, 2},
		{"bad type parameter", "Class A {\nProperty X As %String(MAXLEN);\nProperty Y;\n}", syntax.UnexpectedToken, 2},
		{"unterminated keyword string", "Class A [ Description = \"x ] {\n}", syntax.LexError, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := Parse(tc.src, syntax.NoHints)
			if len(f.Diagnostics) == 0 {
				t.Fatal("expected diagnostics")
			}
			if f.Diagnostics[0].Code != tc.code {
				t.Errorf("code: got %s, want %s (%v)", f.Diagnostics[0].Code, tc.code, f.Diagnostics)
			}
			if f.Class == nil {
				t.Fatal("class missing")
			}
			if len(f.Class.Members) != tc.members {
				t.Errorf("members: got %d, want %d", len(f.Class.Members), tc.members)
			}
		})
	}
}

func TestFileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no class", "Property X;"},
		{"trailing text", "Class A {\n}\nfoo"},
		{"empty", ""},
	}
	for _, tc := range tests {
		f := Parse(tc.src, syntax.NoHints)
		if !syntax.HasErrors(f.Diagnostics) {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

func TestIncludeGenerator(t *testing.T) {
	f := mustParse(t, "Include A\nIncludeGenerator (B, C)\nClass X.Y {\n}\n")
	if len(f.Includes) != 2 {
		t.Fatalf("includes: got %d, want 2", len(f.Includes))
	}
	if f.Includes[0].Generator || !f.Includes[1].Generator {
		t.Errorf("generator flags: got %v %v", f.Includes[0].Generator, f.Includes[1].Generator)
	}
	if strings.Join(f.Includes[1].Names, ",") != "B,C" {
		t.Errorf("names: got %v", f.Includes[1].Names)
	}
	if f.Class.Extends != nil {
		t.Errorf("extends: got %v, want none", f.Class.Extends)
	}
}
