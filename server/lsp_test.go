package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/objectscript/index"
	"github.com/chazu/objectscript/manifest"
	"github.com/chazu/objectscript/syntax"
)

// ---------------------------------------------------------------------------
// Positions
// ---------------------------------------------------------------------------

func TestPositionAt(t *testing.T) {
	src := "ab\n é x\n😀y"
	lines := syntax.NewLineIndex(src)
	tests := []struct {
		offset int
		line   uint32
		char   uint32
	}{
		{0, 0, 0},
		{2, 0, 2},
		{3, 1, 0},
		{6, 1, 2}, // after " é": the é is two bytes, one unit
		{7, 1, 3},
		{9, 2, 0},
		{13, 2, 2}, // the emoji is four bytes, two units
		{14, 2, 3},
		{99, 2, 3},
	}
	for _, tc := range tests {
		got := positionAt(src, lines, tc.offset)
		if uint32(got.Line) != tc.line || uint32(got.Character) != tc.char {
			t.Errorf("positionAt(%d): got %d:%d, want %d:%d", tc.offset, got.Line, got.Character, tc.line, tc.char)
		}
		if tc.offset <= len(src) {
			if back := offsetAt(src, lines, got); back != tc.offset {
				t.Errorf("offsetAt(positionAt(%d)): got %d", tc.offset, back)
			}
		}
	}
}

func TestOffsetAtClamps(t *testing.T) {
	src := "abc\nde"
	lines := syntax.NewLineIndex(src)
	tests := []struct {
		line, char uint32
		want       int
	}{
		{0, 10, 3},
		{1, 1, 5},
		{1, 10, 6},
		{7, 0, 6},
	}
	for _, tc := range tests {
		pos := protocol.Position{Line: protocol.UInteger(tc.line), Character: protocol.UInteger(tc.char)}
		if got := offsetAt(src, lines, pos); got != tc.want {
			t.Errorf("offsetAt(%d:%d): got %d, want %d", tc.line, tc.char, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Text extraction helpers
// ---------------------------------------------------------------------------

func TestExtractPrefix(t *testing.T) {
	tests := []struct {
		text   string
		offset int
		want   string
	}{
		{" S x=$pi", 8, "$pi"},
		{" D $$ad", 7, "$$ad"},
		{" W ^Ro", 6, "Ro"},
		{" WR", 3, "WR"},
		{" S %zx", 6, "%zx"},
		{"hello", 0, ""},
		{" S x= ", 6, ""},
		{"abc", 10, "abc"},
	}
	for _, tc := range tests {
		if got := extractPrefix(tc.text, tc.offset); got != tc.want {
			t.Errorf("extractPrefix(%q, %d): got %q, want %q", tc.text, tc.offset, got, tc.want)
		}
	}
}

func TestExtractWord(t *testing.T) {
	tests := []struct {
		text   string
		offset int
		want   string
	}{
		{" W $$add^Util(1)", 6, "$$add^Util"},
		{" W $$add^Util(1)", 11, "$$add^Util"},
		{" D ^Util", 5, "^Util"},
		{" S x=obj.Name", 10, "obj.Name"},
		{"##class(Demo.Person).New()", 14, "Demo.Person"},
		{" S x.", 4, "x"},
		{" W $piece(x)", 5, "$piece"},
		{"a b", 1, "a"},
		{"   ", 1, ""},
	}
	for _, tc := range tests {
		if got, _ := extractWord(tc.text, tc.offset); got != tc.want {
			t.Errorf("extractWord(%q, %d): got %q, want %q", tc.text, tc.offset, got, tc.want)
		}
	}
}

func TestURIs(t *testing.T) {
	path := filepath.FromSlash("/w/My Code/Util.mac")
	uri := pathToURI(path)
	if uri != "file:///w/My%20Code/Util.mac" {
		t.Errorf("pathToURI: got %q", uri)
	}
	if got := uriToPath(uri); got != path {
		t.Errorf("uriToPath: got %q, want %q", got, path)
	}
	if got := uriToPath("untitled:1"); got != "untitled:1" {
		t.Errorf("uriToPath(untitled:1): got %q", got)
	}
}

func TestBoolPtr(t *testing.T) {
	if p := boolPtr(true); p == nil || !*p {
		t.Error("boolPtr(true) should point at true")
	}
}

// ---------------------------------------------------------------------------
// Workspace features
// ---------------------------------------------------------------------------

const utilURI = "file:///w/Util.mac"

const utilSrc = "Util ; utilities\nadd(a,b) Q a+b\n#define Max 10\n"

const mainURI = "file:///w/Main.mac"

const mainSrc = `main ; entry
 S x=$$add^Util(1,2)
 W $piece(x,",",1),$H
 D helper
 Q
helper Q
 S y=$PEICE(x)
`

const classURI = "file:///w/Demo/Person.cls"

const classSrc = `Class Demo.Person Extends %Persistent
{

Property Name As %String;

Method Greet() As %String
{
	quit "hi"
}

}
`

// newTestWorker opens the sample documents in a workspace backed by a
// temporary index.
func newTestWorker(t *testing.T) *Worker {
	t.Helper()
	x, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	w := NewWorker(NewWorkspace(Options{Index: x}))
	t.Cleanup(func() {
		w.Stop()
		x.Close()
	})
	_, err = w.Do(func(ws *Workspace) interface{} {
		ws.Open(utilURI, utilSrc)
		ws.Open(mainURI, mainSrc)
		ws.Open(classURI, classSrc)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return w
}

// at runs fn against an open document at a line and byte column.
func at(t *testing.T, w *Worker, uri string, line, col int, fn func(ws *Workspace, doc *Document, offset int) interface{}) interface{} {
	t.Helper()
	result, err := w.Do(func(ws *Workspace) interface{} {
		doc := ws.Get(uri)
		if doc == nil {
			return nil
		}
		return fn(ws, doc, doc.Lines.Offset(line+1, col+1))
	})
	if err != nil {
		t.Fatalf("worker: %v", err)
	}
	return result
}

func TestDiagnostics(t *testing.T) {
	w := newTestWorker(t)
	result, _ := w.Do(func(ws *Workspace) interface{} {
		return diagnostics(ws.Get(mainURI))
	})
	diags := result.([]protocol.Diagnostic)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics %+v, want 1", len(diags), diags)
	}
	d := diags[0]
	if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityWarning {
		t.Errorf("severity: got %v, want warning", d.Severity)
	}
	if d.Range.Start.Line != 6 || d.Range.Start.Character != 5 || d.Range.End.Character != 11 {
		t.Errorf("range: got %+v, want 6:5-6:11", d.Range)
	}
	if !strings.Contains(d.Message, "did you mean $PIECE?") {
		t.Errorf("message: got %q, want a $PIECE suggestion", d.Message)
	}
	if d.Code == nil || d.Code.Value != string(syntax.UnknownName) {
		t.Errorf("code: got %+v, want UnknownName", d.Code)
	}
}

func TestSuggestName(t *testing.T) {
	tests := []struct {
		spelling string
		function bool
		want     string
	}{
		{"$PEICE", true, "PIECE"},
		{"$lenght", true, "LENGTH"},
		{"$HOROLG", false, "HOROLOG"},
		{"$QQQQQQQQ", true, ""},
		{"$", true, ""},
	}
	for _, tc := range tests {
		if got := suggestName(tc.spelling, tc.function); got != tc.want {
			t.Errorf("suggestName(%q): got %q, want %q", tc.spelling, got, tc.want)
		}
	}
}

func TestDocumentSymbols(t *testing.T) {
	w := newTestWorker(t)
	result, _ := w.Do(func(ws *Workspace) interface{} {
		return [][]protocol.DocumentSymbol{documentSymbols(ws.Get(mainURI)), documentSymbols(ws.Get(classURI))}
	})
	both := result.([][]protocol.DocumentSymbol)

	routine := both[0]
	if len(routine) != 2 || routine[0].Name != "main" || routine[1].Name != "helper" {
		t.Fatalf("routine symbols: got %+v, want main, helper", routine)
	}
	if routine[1].Kind != protocol.SymbolKindFunction || routine[1].Range.Start.Line != 5 {
		t.Errorf("helper: got kind %v line %d, want function line 5", routine[1].Kind, routine[1].Range.Start.Line)
	}

	class := both[1]
	if len(class) != 1 || class[0].Name != "Demo.Person" || class[0].Kind != protocol.SymbolKindClass {
		t.Fatalf("class symbols: got %+v", class)
	}
	var kids []string
	for _, c := range class[0].Children {
		kids = append(kids, c.Name)
	}
	if strings.Join(kids, ",") != "Name,Greet" {
		t.Errorf("class members: got %v, want [Name Greet]", kids)
	}
}

func TestHover(t *testing.T) {
	w := newTestWorker(t)
	tests := []struct {
		name      string
		uri       string
		line, col int
		want      string
	}{
		{"command", mainURI, 1, 1, "**SET** command"},
		{"function", mainURI, 2, 4, "**$PIECE** system function"},
		{"variable", mainURI, 2, 20, "**$HOROLOG** system variable"},
		{"extrinsic", mainURI, 1, 8, "**add** label `(a,b)`"},
		{"local label", mainURI, 3, 4, "**helper** label"},
		{"macro", utilURI, 2, 9, "**Max** macro"},
	}
	for _, tc := range tests {
		result := at(t, w, tc.uri, tc.line, tc.col, func(ws *Workspace, doc *Document, offset int) interface{} {
			return ws.hover(doc, offset)
		})
		hover, _ := result.(*protocol.Hover)
		if hover == nil {
			t.Errorf("%s: got no hover", tc.name)
			continue
		}
		mc := hover.Contents.(protocol.MarkupContent)
		if !strings.HasPrefix(mc.Value, tc.want) {
			t.Errorf("%s: got %q, want prefix %q", tc.name, mc.Value, tc.want)
		}
	}

	// Unknown names have no hover.
	result := at(t, w, mainURI, 0, 9, func(ws *Workspace, doc *Document, offset int) interface{} {
		return ws.hover(doc, offset)
	})
	if hover, ok := result.(*protocol.Hover); ok && hover != nil {
		t.Errorf("hover on a comment word: got %+v, want nil", hover)
	}
}

func TestDefinition(t *testing.T) {
	w := newTestWorker(t)
	tests := []struct {
		name      string
		line, col int
		uri       string
		defLine   protocol.UInteger
	}{
		{"extrinsic", 1, 7, utilURI, 1},
		{"routine part", 1, 12, utilURI, 1},
		{"local label", 3, 5, mainURI, 5},
	}
	for _, tc := range tests {
		result := at(t, w, mainURI, tc.line, tc.col, func(ws *Workspace, doc *Document, offset int) interface{} {
			return ws.definition(doc, offset)
		})
		locs, _ := result.([]protocol.Location)
		if len(locs) != 1 {
			t.Errorf("%s: got %d locations %+v, want 1", tc.name, len(locs), locs)
			continue
		}
		if string(locs[0].URI) != tc.uri || locs[0].Range.Start.Line != tc.defLine {
			t.Errorf("%s: got %s:%d, want %s:%d", tc.name, locs[0].URI, locs[0].Range.Start.Line, tc.uri, tc.defLine)
		}
	}
}

func TestDefinitionRoutineEntry(t *testing.T) {
	w := newTestWorker(t)
	result, _ := w.Do(func(ws *Workspace) interface{} {
		doc := ws.Open("file:///w/Other.mac", " D ^Util\n")
		return ws.definition(doc, 5)
	})
	locs := result.([]protocol.Location)
	if len(locs) != 1 || string(locs[0].URI) != utilURI || locs[0].Range.Start.Line != 0 {
		t.Errorf("^Util: got %+v, want top of %s", locs, utilURI)
	}
}

func TestCompletion(t *testing.T) {
	w := newTestWorker(t)
	tests := []struct {
		name  string
		text  string
		first string
		has   string
	}{
		{"command", " WR", "WRITE", "ZWRITE"},
		{"builtin", " W $pie", "$PIECE", "$PIECE"},
		{"extrinsic", " W $$ad", "$$add^Util", "$$add^Util"},
		{"symbol", " D hel", "helper^Main", "helper^Main"},
	}
	for _, tc := range tests {
		result, _ := w.Do(func(ws *Workspace) interface{} {
			doc := ws.Open("file:///w/Scratch.mac", tc.text)
			return ws.complete(doc, len(tc.text))
		})
		items := result.([]protocol.CompletionItem)
		if len(items) == 0 {
			t.Errorf("%s: got no items", tc.name)
			continue
		}
		if items[0].Label != tc.first {
			t.Errorf("%s: first item %q, want %q", tc.name, items[0].Label, tc.first)
		}
		found := false
		for _, it := range items {
			if it.Label == tc.has {
				found = true
			}
			if strings.HasPrefix(tc.text, " W $") && !strings.HasPrefix(it.Label, "$") {
				t.Errorf("%s: unexpected item %q", tc.name, it.Label)
			}
		}
		if !found {
			t.Errorf("%s: missing %q", tc.name, tc.has)
		}
	}
}

func TestWorkspaceClose(t *testing.T) {
	w := newTestWorker(t)
	result, _ := w.Do(func(ws *Workspace) interface{} {
		ws.Close(mainURI)
		return ws.Get(mainURI)
	})
	if doc, _ := result.(*Document); doc != nil {
		t.Error("document should be removed after close")
	}
}

func TestIndexSourcesKeepsOpenBuffers(t *testing.T) {
	dir := t.TempDir()
	util := filepath.Join(dir, "src", "Util.mac")
	other := filepath.Join(dir, "src", "Other.mac")
	if err := os.MkdirAll(filepath.Dir(util), 0755); err != nil {
		t.Fatal(err)
	}
	for path, src := range map[string]string{
		util:  "Util ; on disk\nondisk Q\n",
		other: "Other ; on disk\nextra Q\n",
	} {
		if err := os.WriteFile(path, []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}
	m, err := manifest.Default(dir)
	if err != nil {
		t.Fatal(err)
	}
	x, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	ws := NewWorkspace(Options{Index: x, Manifest: m})
	s := &LspServer{worker: NewWorker(ws), ws: ws}
	t.Cleanup(func() {
		s.worker.Stop()
		x.Close()
	})

	if _, err := s.worker.Do(func(ws *Workspace) interface{} {
		return ws.Open(pathToURI(util), "Util ; buffer\ninbuffer Q\n")
	}); err != nil {
		t.Fatal(err)
	}
	n, err := ws.IndexSources(context.Background(), s.storeSymbols)
	if err != nil || n != 2 {
		t.Fatalf("IndexSources: got %d, %v, want 2, nil", n, err)
	}

	tests := []struct {
		name string
		want int
	}{
		{"inbuffer", 1},
		{"ondisk", 0},
		{"extra", 1},
	}
	for _, tc := range tests {
		syms, err := x.Lookup(tc.name)
		if err != nil {
			t.Fatal(err)
		}
		if len(syms) != tc.want {
			t.Errorf("Lookup(%s): got %d symbols, want %d", tc.name, len(syms), tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Worker
// ---------------------------------------------------------------------------

func TestWorkerRecoversPanics(t *testing.T) {
	w := NewWorker(NewWorkspace(Options{}))
	defer w.Stop()
	_, err := w.Do(func(ws *Workspace) interface{} {
		panic("boom")
	})
	if err == nil || err.Error() != "boom" {
		t.Errorf("Do with panic: got %v, want boom", err)
	}
	v, err := w.Do(func(ws *Workspace) interface{} { return 42 })
	if err != nil || v.(int) != 42 {
		t.Errorf("Do after panic: got %v, %v", v, err)
	}
}

func TestWorkerStop(t *testing.T) {
	w := NewWorker(NewWorkspace(Options{}))
	w.Stop()
	w.Stop()
	if _, err := w.Do(func(ws *Workspace) interface{} { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("Do after Stop: got %v, want ErrStopped", err)
	}
}
