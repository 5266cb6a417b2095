package server

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/objectscript/index"
	"github.com/chazu/objectscript/syntax"
)

const maxCompletionItems = 100

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

var severities = map[syntax.Severity]protocol.DiagnosticSeverity{
	syntax.SeverityError:   protocol.DiagnosticSeverityError,
	syntax.SeverityWarning: protocol.DiagnosticSeverityWarning,
	syntax.SeverityInfo:    protocol.DiagnosticSeverityInformation,
	syntax.SeverityHint:    protocol.DiagnosticSeverityHint,
}

// diagnostics converts parse diagnostics into LSP form.
func diagnostics(doc *Document) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(doc.Diagnostics))
	source := lspName
	for _, d := range doc.Diagnostics {
		severity, ok := severities[d.Severity]
		if !ok {
			severity = protocol.DiagnosticSeverityError
		}
		msg := d.Message
		if d.Code == syntax.UnknownName {
			if s := suggestName(d.Span.Text(doc.Text), strings.HasPrefix(msg, "unknown function")); s != "" {
				msg += fmt.Sprintf("; did you mean $%s?", s)
			}
		}
		out = append(out, protocol.Diagnostic{
			Range:    rangeOf(doc.Text, doc.Lines, d.Span),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: string(d.Code)},
			Source:   &source,
			Message:  msg,
		})
	}
	return out
}

// suggestName returns the builtin closest to a misspelled $name, or "".
func suggestName(spelling string, function bool) string {
	spelling = strings.ToUpper(strings.TrimPrefix(spelling, "$"))
	if spelling == "" {
		return ""
	}
	names := syntax.SystemVariableNames()
	if function {
		names = syntax.SystemFunctionNames()
	}
	best, bestDist := "", 3
	for _, n := range names {
		if d := fuzzy.LevenshteinDistance(spelling, n); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// ---------------------------------------------------------------------------
// Document symbols
// ---------------------------------------------------------------------------

var symbolKinds = map[index.Kind]protocol.SymbolKind{
	index.KindLabel:        protocol.SymbolKindFunction,
	index.KindProcedure:    protocol.SymbolKindFunction,
	index.KindMacro:        protocol.SymbolKindConstant,
	index.KindClass:        protocol.SymbolKindClass,
	index.KindMethod:       protocol.SymbolKindMethod,
	index.KindClassMethod:  protocol.SymbolKindMethod,
	index.KindProperty:     protocol.SymbolKindProperty,
	index.KindParameter:    protocol.SymbolKindConstant,
	index.KindRelationship: protocol.SymbolKindField,
	index.KindForeignKey:   protocol.SymbolKindKey,
	index.KindQuery:        protocol.SymbolKindFunction,
	index.KindIndex:        protocol.SymbolKindKey,
	index.KindTrigger:      protocol.SymbolKindEvent,
	index.KindXData:        protocol.SymbolKindStruct,
	index.KindProjection:   protocol.SymbolKindInterface,
	index.KindStorage:      protocol.SymbolKindStruct,
}

// documentSymbols lists a document's symbols. Class members nest under
// their class.
func documentSymbols(doc *Document) []protocol.DocumentSymbol {
	out := []protocol.DocumentSymbol{}
	var class *protocol.DocumentSymbol
	for _, s := range doc.Symbols {
		r := rangeOf(doc.Text, doc.Lines, s.Span)
		ds := protocol.DocumentSymbol{
			Name:           s.Name,
			Kind:           symbolKinds[s.Kind],
			Range:          r,
			SelectionRange: r,
		}
		if s.Detail != "" {
			detail := s.Detail
			ds.Detail = &detail
		}
		switch {
		case s.Kind == index.KindClass:
			out = append(out, ds)
			class = &out[len(out)-1]
		case class != nil:
			class.Children = append(class.Children, ds)
		default:
			out = append(out, ds)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Hover
// ---------------------------------------------------------------------------

func (ws *Workspace) hover(doc *Document, offset int) *protocol.Hover {
	word, sp := extractWord(doc.Text, offset)
	if word == "" {
		return nil
	}

	var b strings.Builder
	if name, ok := commandAt(doc, offset); ok {
		fmt.Fprintf(&b, "**%s** command", name)
	} else if !ws.describe(&b, doc, word, sp) {
		return nil
	}

	r := rangeOf(doc.Text, doc.Lines, sp)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
		Range: &r,
	}
}

// describe writes hover text for a builtin or a defined symbol.
func (ws *Workspace) describe(b *strings.Builder, doc *Document, word string, sp syntax.Span) bool {
	if strings.HasPrefix(word, "$") && !strings.HasPrefix(word, "$$") {
		spelling := strings.SplitN(word[1:], ".", 2)[0]
		if sp.End < len(doc.Text) && doc.Text[sp.End] == '(' {
			name, ok := syntax.SystemFunction(spelling)
			if ok {
				fmt.Fprintf(b, "**$%s** system function", name)
			}
			return ok
		}
		name, ok := syntax.SystemVariable(spelling)
		if ok {
			fmt.Fprintf(b, "**$%s** system variable", name)
		}
		return ok
	}
	syms := ws.resolve(doc, word)
	if len(syms) == 0 {
		return false
	}
	writeSymbol(b, syms[0])
	return true
}

func writeSymbol(b *strings.Builder, s index.Symbol) {
	fmt.Fprintf(b, "**%s** %s", s.Name, s.Kind)
	if s.Detail != "" {
		fmt.Fprintf(b, " `%s`", s.Detail)
	}
	fmt.Fprintf(b, "\n\n%s:%d", s.File, s.Line)
}

// commandAt returns the command keyword under offset.
func commandAt(doc *Document, offset int) (string, bool) {
	if doc.Parsed == nil || doc.Parsed.Routine == nil {
		return "", false
	}
	toks := doc.Parsed.Routine.Tokens
	i := sort.Search(len(toks), func(i int) bool { return toks[i].Span.End > offset })
	var t syntax.Token
	switch {
	case i < len(toks) && toks[i].Span.Start <= offset:
		t = toks[i]
	case i > 0 && toks[i-1].Span.End == offset:
		t = toks[i-1]
	default:
		return "", false
	}
	if t.Kind != syntax.TokenKeyword || strings.HasPrefix(t.Text, "$") || strings.HasPrefix(t.Text, "#") {
		return "", false
	}
	return syntax.CommandName(t.Text)
}

// ---------------------------------------------------------------------------
// Definition
// ---------------------------------------------------------------------------

// resolve finds the definitions a reference names: label, label^routine,
// ^routine, $$label^routine, a class name or a macro.
func (ws *Workspace) resolve(doc *Document, word string) []index.Symbol {
	ref := strings.TrimPrefix(word, "$$")
	label, routine, remote := strings.Cut(ref, "^")
	if remote {
		switch {
		case routine == "":
			return nil
		case label == "":
			return ws.routineEntry(routine)
		}
		return ws.lookupIn(routine, label)
	}

	var out []index.Symbol
	for _, s := range doc.Symbols {
		if s.Name == label {
			out = append(out, s)
		}
	}
	if len(out) > 0 || ws.opts.Index == nil {
		return out
	}
	syms, err := ws.opts.Index.Lookup(label)
	if err != nil {
		log.Warningf("lookup %s: %v", label, err)
	}
	return syms
}

func (ws *Workspace) lookupIn(container, name string) []index.Symbol {
	if ws.opts.Index == nil {
		var out []index.Symbol
		for _, d := range ws.docs {
			for _, s := range d.Symbols {
				if s.Container == container && s.Name == name {
					out = append(out, s)
				}
			}
		}
		return out
	}
	syms, err := ws.opts.Index.LookupIn(container, name)
	if err != nil {
		log.Warningf("lookup %s^%s: %v", name, container, err)
	}
	return syms
}

// routineEntry points at the top of the file defining routine.
func (ws *Workspace) routineEntry(routine string) []index.Symbol {
	files := map[string]bool{}
	for _, d := range ws.docs {
		if index.RoutineName(d.Path) == routine && d.Parsed.Routine != nil {
			files[d.Path] = true
		}
	}
	if ws.opts.Index != nil {
		syms, err := ws.opts.Index.InContainer(routine)
		if err != nil {
			log.Warningf("lookup ^%s: %v", routine, err)
		}
		for _, s := range syms {
			files[s.File] = true
		}
	}
	var out []index.Symbol
	for f := range files {
		out = append(out, index.Symbol{Name: routine, Kind: index.KindLabel, File: f, Container: routine, Line: 1})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}

func (ws *Workspace) definition(doc *Document, offset int) []protocol.Location {
	word, _ := extractWord(doc.Text, offset)
	if word == "" {
		return nil
	}
	if isIncludeLine(doc.Text, offset) && ws.opts.Manifest != nil {
		if path, ok := ws.opts.Manifest.ResolveInclude(word); ok {
			return []protocol.Location{{URI: protocol.DocumentUri(pathToURI(path))}}
		}
		return nil
	}

	var out []protocol.Location
	for _, s := range ws.resolve(doc, word) {
		out = append(out, ws.location(s))
	}
	return out
}

func (ws *Workspace) location(s index.Symbol) protocol.Location {
	loc := protocol.Location{URI: protocol.DocumentUri(pathToURI(s.File))}
	if text, lines, ok := ws.textOf(s.File); ok {
		loc.Range = rangeOf(text, lines, s.Span)
		return loc
	}
	if s.Line > 0 {
		pos := protocol.Position{Line: protocol.UInteger(s.Line - 1)}
		loc.Range = protocol.Range{Start: pos, End: pos}
	}
	return loc
}

// isIncludeLine reports whether the line holding offset is an #include
// directive.
func isIncludeLine(text string, offset int) bool {
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	line := strings.TrimLeft(text[start:], " \t")
	if len(line) < len("#include") {
		return false
	}
	return strings.EqualFold(line[:len("#include")], "#include")
}

// ---------------------------------------------------------------------------
// Completion
// ---------------------------------------------------------------------------

type candidate struct {
	name   string // matched against the typed prefix, without sigils
	label  string
	detail string
	kind   protocol.CompletionItemKind
}

func (ws *Workspace) complete(doc *Document, offset int) []protocol.CompletionItem {
	prefix := extractPrefix(doc.Text, offset)
	if prefix == "" {
		return nil
	}

	var cands []candidate
	seen := map[string]bool{}
	add := func(c candidate) {
		if !seen[c.label] {
			seen[c.label] = true
			cands = append(cands, c)
		}
	}
	addSymbols := func(key, sigil string, labelsOnly bool) {
		for _, s := range ws.symbolsFor(doc, key) {
			if labelsOnly && s.Kind != index.KindLabel && s.Kind != index.KindProcedure {
				continue
			}
			label := sigil + s.Name
			if s.Container != "" && s.File != doc.Path && s.Kind != index.KindClass {
				if s.Kind == index.KindLabel || s.Kind == index.KindProcedure {
					label += "^" + s.Container
				}
			}
			add(candidate{name: s.Name, label: label, detail: string(s.Kind) + " " + s.Detail, kind: completionKind(s.Kind)})
		}
	}

	var key string
	switch {
	case strings.HasPrefix(prefix, "$$"):
		key = prefix[2:]
		addSymbols(key, "$$", true)
	case strings.HasPrefix(prefix, "$"):
		key = prefix[1:]
		for _, n := range syntax.SystemFunctionNames() {
			add(candidate{name: n, label: "$" + n, detail: "system function", kind: protocol.CompletionItemKindFunction})
		}
		for _, n := range syntax.SystemVariableNames() {
			add(candidate{name: n, label: "$" + n, detail: "system variable", kind: protocol.CompletionItemKindVariable})
		}
	default:
		key = prefix
		for _, n := range syntax.CommandNames() {
			add(candidate{name: n, label: n, detail: "command", kind: protocol.CompletionItemKindKeyword})
		}
		addSymbols(key, "", false)
	}
	return rankCandidates(key, cands)
}

// symbolsFor gathers document and indexed symbols sharing the first
// letter of key.
func (ws *Workspace) symbolsFor(doc *Document, key string) []index.Symbol {
	out := append([]index.Symbol(nil), doc.Symbols...)
	if ws.opts.Index != nil && key != "" {
		syms, err := ws.opts.Index.Search(key[:1])
		if err != nil {
			log.Warningf("search %s: %v", key, err)
		}
		out = append(out, syms...)
	}
	return out
}

// rankCandidates orders candidates by fuzzy match quality against key and
// drops those that do not match.
func rankCandidates(key string, cands []candidate) []protocol.CompletionItem {
	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.name
	}
	ranks := fuzzy.RankFindFold(key, names)
	sort.Stable(ranks)

	items := []protocol.CompletionItem{}
	for i, r := range ranks {
		if i == maxCompletionItems {
			break
		}
		c := cands[r.OriginalIndex]
		kind := c.kind
		detail := strings.TrimSpace(c.detail)
		label := c.label
		sortText := fmt.Sprintf("%04d", i)
		items = append(items, protocol.CompletionItem{
			Label:      label,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &label,
			SortText:   &sortText,
		})
	}
	return items
}

func completionKind(k index.Kind) protocol.CompletionItemKind {
	switch k {
	case index.KindClass:
		return protocol.CompletionItemKindClass
	case index.KindMacro, index.KindParameter:
		return protocol.CompletionItemKindConstant
	case index.KindProperty, index.KindRelationship:
		return protocol.CompletionItemKindProperty
	case index.KindMethod, index.KindClassMethod:
		return protocol.CompletionItemKindMethod
	}
	return protocol.CompletionItemKindFunction
}
