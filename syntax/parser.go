package syntax

import (
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent over the raw character stream
// ---------------------------------------------------------------------------

// Mode controls optional parser behavior.
type Mode uint

const (
	// NoHints suppresses advisory AmbiguousReference diagnostics.
	NoHints Mode = 1 << iota
)

// Parser parses routine source into an AST. It has no lexer pass of its own:
// whitespace is significant in places only the grammar knows about, so the
// parser reads characters directly and records tokens as it consumes them.
type Parser struct {
	src  string
	mode Mode
	pos  int

	// Whitespace policy. In strict mode no whitespace may separate tokens.
	// Otherwise spaces, tabs and block comments may, and inside brackets
	// (nest > 0) line breaks and line comments may as well.
	strict bool
	nest   int
	closer byte // operators starting with this byte end the expression

	braces int // open statement blocks
	conds  int // open #if directives

	// bail is set by the first error in a statement; parse functions unwind
	// and the statement loop resynchronizes at the next boundary.
	bail bool

	lastDo  *CommandStmt // argumentless DO on the current line
	lastEnd int          // end of the last non-trivia token

	tokens []Token
	diags  []Diagnostic
}

// NewParser creates a parser for src.
func NewParser(src string, mode Mode) *Parser {
	return &Parser{src: src, mode: mode}
}

// ParseFile parses a complete source unit.
func ParseFile(src string, mode Mode) *File {
	p := NewParser(src, mode)
	stmts := p.parseStatements()
	return p.file(Span{0, len(src)}, stmts)
}

// ParseRegion parses src[start:end] as a statement sequence. Offsets in the
// result are relative to the whole of src, so method bodies inside a class
// definition keep their true positions.
func ParseRegion(src string, start, end int, mode Mode) *File {
	p := NewParser(src[:end], mode)
	p.pos, p.lastEnd = start, start
	stmts := p.parseStatements()
	return p.file(Span{start, end}, stmts)
}

// ParseExpr parses src as one expression in normal mode.
func ParseExpr(src string) (*Expression, []Diagnostic) {
	e, f := parseExprUnit(src, 0, len(src), 0, 0)
	return e, f.Diagnostics
}

// ParseExprRegion parses src[start:end] as one expression that may span
// lines. Expression-bodied methods are parsed this way.
func ParseExprRegion(src string, start, end int, mode Mode) (*Expression, *File) {
	return parseExprUnit(src, start, end, mode, 1)
}

func parseExprUnit(src string, start, end int, mode Mode, nest int) (*Expression, *File) {
	p := NewParser(src[:end], mode)
	p.pos, p.lastEnd, p.nest = start, start, nest
	e := p.parseExpr()
	if !p.bail {
		q := p.skipAll(p.pos)
		if q < len(p.src) {
			p.errorAt(Span{q, q + 1}, UnexpectedToken, "unexpected %s after expression", p.describe(q))
		}
	}
	if p.bail && p.pos < len(p.src) {
		p.take(p.skipAll(p.pos), len(p.src), TokenText)
	}
	f := p.file(Span{start, end}, nil)
	if p.mode&NoHints == 0 {
		p.ambiguityHints(e)
		f.Diagnostics = p.sortedDiags()
	}
	return e, f
}

func (p *Parser) file(sp Span, stmts []Stmt) *File {
	p.trivia(len(p.src))
	f := &File{SpanVal: sp, Stmts: stmts}
	if p.mode&NoHints == 0 {
		p.ambiguityHints(f)
	}
	f.Tokens = fillGaps(p.tokens, sp, p.src)
	f.Diagnostics = p.sortedDiags()
	return f
}

func (p *Parser) sortedDiags() []Diagnostic {
	sort.SliceStable(p.diags, func(i, j int) bool { return p.diags[i].Span.Start < p.diags[j].Span.Start })
	return p.diags
}

// fillGaps covers any byte of sp not claimed by a token with a text token,
// so the token texts always concatenate to the source.
func fillGaps(toks []Token, sp Span, src string) []Token {
	out := make([]Token, 0, len(toks))
	at := sp.Start
	for _, t := range toks {
		if t.Span.Start < at {
			continue
		}
		if t.Span.Start > at {
			out = append(out, Token{Kind: TokenText, Span: Span{at, t.Span.Start}, Text: src[at:t.Span.Start]})
		}
		out = append(out, t)
		at = t.Span.End
	}
	if at < sp.End {
		out = append(out, Token{Kind: TokenText, Span: Span{at, sp.End}, Text: src[at:sp.End]})
	}
	return out
}

// ---------------------------------------------------------------------------
// Cursor primitives
// ---------------------------------------------------------------------------

// skip returns the offset of the next significant byte at or after pos under
// the active whitespace policy.
func (p *Parser) skip(pos int) int {
	if p.strict {
		return pos
	}
	for pos < len(p.src) {
		c := p.src[pos]
		switch {
		case isSpace(c):
			pos++
		case c == '/' && byteAt(p.src, pos+1) == '*':
			end, ok := scanBlockComment(p.src, pos)
			if !ok {
				return pos
			}
			pos = end
		case p.nest > 0 && isNewline(c):
			pos++
		case p.nest > 0 && lineCommentLen(p.src, pos) > 0:
			pos = scanLineEnd(p.src, pos)
		default:
			return pos
		}
	}
	return pos
}

// skipAll returns the offset after any whitespace, line breaks and comments.
func (p *Parser) skipAll(pos int) int {
	for pos < len(p.src) {
		c := p.src[pos]
		switch {
		case isSpace(c) || isNewline(c):
			pos++
		case lineCommentLen(p.src, pos) > 0:
			pos = scanLineEnd(p.src, pos)
		case c == '/' && byteAt(p.src, pos+1) == '*':
			end, ok := scanBlockComment(p.src, pos)
			if !ok {
				return pos
			}
			pos = end
		default:
			return pos
		}
	}
	return pos
}

func (p *Parser) next() int  { return p.skip(p.pos) }
func (p *Parser) peek() byte { return byteAt(p.src, p.next()) }
func (p *Parser) cur() byte  { return byteAt(p.src, p.pos) }

func (p *Parser) lookingAt(s string) bool {
	return strings.HasPrefix(p.src[p.next():], s)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// wordAt returns the alphanumeric word starting at pos.
func wordAt(src string, pos int) string {
	end := pos
	for end < len(src) && isAlnum(src[end]) {
		end++
	}
	return src[pos:end]
}

// take records trivia up to start and a token covering [start, end), then
// moves the cursor to end.
func (p *Parser) take(start, end int, kind TokenKind) Span {
	p.trivia(start)
	if end > start {
		p.tokens = append(p.tokens, Token{Kind: kind, Span: Span{start, end}, Text: p.src[start:end]})
		if !kind.Trivia() {
			p.lastEnd = end
		}
	}
	p.pos = end
	return Span{start, end}
}

// trivia records whitespace, line break and comment tokens up to end.
func (p *Parser) trivia(end int) {
	if end <= p.pos {
		return
	}
	l := &Lexer{input: p.src[:end], pos: p.pos}
	for l.pos < end {
		p.tokens = append(p.tokens, l.Next())
	}
	p.pos = end
}

// accept consumes s if it is the next significant text.
func (p *Parser) accept(s string, kind TokenKind) (Span, bool) {
	q := p.next()
	if !strings.HasPrefix(p.src[q:], s) {
		return Span{}, false
	}
	return p.take(q, q+len(s), kind), true
}

// acceptHere consumes s only if it starts exactly at the cursor.
func (p *Parser) acceptHere(s string, kind TokenKind) (Span, bool) {
	if !strings.HasPrefix(p.src[p.pos:], s) {
		return Span{}, false
	}
	return p.take(p.pos, p.pos+len(s), kind), true
}

// expect consumes s or reports it missing.
func (p *Parser) expect(s string, kind TokenKind) Span {
	if sp, ok := p.accept(s, kind); ok {
		return sp
	}
	p.errorExpected(fmt.Sprintf("%q", s))
	q := p.next()
	return Span{q, q}
}

// bracketed runs fn inside a bracketed sub-rule: whitespace is relaxed and
// may span lines until the rule returns.
func (p *Parser) bracketed(fn func()) {
	strict, closer := p.strict, p.closer
	p.strict, p.closer = false, 0
	p.nest++
	fn()
	p.nest--
	p.strict, p.closer = strict, closer
}

// immediate runs fn in whitespace-immediate mode.
func (p *Parser) immediate(fn func()) {
	strict, nest := p.strict, p.nest
	p.strict, p.nest = true, 0
	fn()
	p.strict, p.nest = strict, nest
}

type mark struct {
	pos, lastEnd, ntok, ndiag int
	bail                      bool
	lastDo                    *CommandStmt
}

func (p *Parser) mark() mark {
	return mark{p.pos, p.lastEnd, len(p.tokens), len(p.diags), p.bail, p.lastDo}
}

func (p *Parser) reset(m mark) {
	p.pos, p.lastEnd, p.bail, p.lastDo = m.pos, m.lastEnd, m.bail, m.lastDo
	p.tokens = p.tokens[:m.ntok]
	p.diags = p.diags[:m.ndiag]
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

// errorAt reports the first error of a statement and starts recovery.
func (p *Parser) errorAt(sp Span, code Code, format string, args ...interface{}) {
	if p.bail {
		return
	}
	p.diags = append(p.diags, Diagnostic{Span: sp, Severity: SeverityError, Code: code, Message: fmt.Sprintf(format, args...)})
	p.bail = true
}

// report adds a diagnostic without interrupting the parse.
func (p *Parser) report(sp Span, sev Severity, code Code, format string, args ...interface{}) {
	p.diags = append(p.diags, Diagnostic{Span: sp, Severity: sev, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) errorExpected(what string) {
	q := p.next()
	end := q + 1
	if end > len(p.src) {
		end = len(p.src)
	}
	p.errorAt(Span{q, end}, UnexpectedToken, "expected %s, found %s", what, p.describe(q))
}

// describe names the text at q for error messages.
func (p *Parser) describe(q int) string {
	if q >= len(p.src) {
		return "end of input"
	}
	if isNewline(p.src[q]) {
		return "end of line"
	}
	l := &Lexer{input: p.src, pos: q}
	return fmt.Sprintf("%q", l.Next().Text)
}

func (p *Parser) ambiguityHints(root Node) {
	Inspect(root, func(n Node) bool {
		if seg, ok := n.(*Segment); ok && seg.Ambiguous {
			p.report(seg.SpanVal, SeverityHint, AmbiguousReference,
				"%s(...) resolved as a method call; it may be a multidimensional property", seg.Name)
		}
		return true
	})
}

// ---------------------------------------------------------------------------
// Statement sequences and lines
// ---------------------------------------------------------------------------

// parseStatements parses statements until end of input, the closing brace
// of an open block, or a branch directive of an open #if.
func (p *Parser) parseStatements() []Stmt {
	var out []Stmt
	for {
		p.separators()
		if p.pos >= len(p.src) {
			return out
		}
		if p.cur() == '}' {
			if p.braces > 0 {
				return out
			}
			sp := p.take(p.pos, p.pos+1, TokenPunct)
			p.report(sp, SeverityError, UnbalancedBlock, "unmatched '}'")
			out = append(out, &BadStmt{SpanVal: sp})
			continue
		}
		if p.conds > 0 && p.atBranchDirective() {
			return out
		}
		out = append(out, p.parseLine()...)
	}
}

// separators consumes whitespace, line breaks and comments between lines.
func (p *Parser) separators() {
	for {
		q := p.skipAll(p.pos)
		p.trivia(q)
		if !strings.HasPrefix(p.src[p.pos:], "/*") {
			return
		}
		end, _ := scanBlockComment(p.src, p.pos)
		sp := p.take(p.pos, end, TokenError)
		p.report(sp, SeverityError, LexError, "unterminated block comment")
	}
}

// lineSpace consumes spaces, tabs and comments up to the end of the line.
func (p *Parser) lineSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case isSpace(c):
			p.trivia(scanSpaces(p.src, p.pos))
		case lineCommentLen(p.src, p.pos) > 0:
			p.trivia(scanLineEnd(p.src, p.pos))
		case c == '/' && byteAt(p.src, p.pos+1) == '*':
			end, ok := scanBlockComment(p.src, p.pos)
			if !ok {
				sp := p.take(p.pos, end, TokenError)
				p.report(sp, SeverityError, LexError, "unterminated block comment")
				continue
			}
			p.trivia(end)
		default:
			return
		}
	}
}

func (p *Parser) atLineEnd() bool {
	return p.pos >= len(p.src) || isNewline(p.src[p.pos]) || p.src[p.pos] == '}'
}

func atColumnZero(src string, pos int) bool {
	return pos == 0 || isNewline(src[pos-1])
}

// atLineStart reports whether only spaces and tabs precede pos on its line.
func atLineStart(src string, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		if isNewline(src[i]) {
			return true
		}
		if !isSpace(src[i]) {
			return false
		}
	}
	return true
}

// countDots counts a run of dots, which may be separated by spaces, and
// returns the offset after the run and any spaces following it.
func countDots(src string, pos int) (int, int) {
	n := 0
	for byteAt(src, pos) == '.' && !isDigit(byteAt(src, pos+1)) {
		n++
		pos = scanSpaces(src, pos+1)
	}
	return n, pos
}

// parseLine parses one line: an optional column-zero tag, then statements
// up to the line end.
func (p *Parser) parseLine() []Stmt {
	c := p.cur()
	if c == '.' && atLineStart(p.src, p.pos) {
		if n, _ := countDots(p.src, p.pos); n > 0 {
			return []Stmt{p.parseDotted()}
		}
	}
	var tag Stmt
	if atColumnZero(p.src, p.pos) && (isAlnum(c) || c == '%') {
		tag = p.parseTag()
		if p.bail {
			out := []Stmt{tag}
			if bad := p.recover(p.pos, true); bad != nil {
				out = append(out, bad)
			}
			return out
		}
	}
	stmts := p.lineBody(0)
	if tag != nil {
		stmts = append([]Stmt{tag}, stmts...)
	}
	return stmts
}

// lineBody parses the statements of the rest of a line at the given dot
// level. If an argumentless DO appeared, the following lines with deeper
// dots become its body.
func (p *Parser) lineBody(level int) []Stmt {
	saved := p.lastDo
	p.lastDo = nil
	stmts := p.parseRest()
	if do := p.lastDo; do != nil {
		if body := p.parseDottedBlock(level + 1); len(body) > 0 {
			end := body[len(body)-1].Span().End
			do.Body = body
			do.SpanVal.End = end
			stretch(stmts, do, end)
		}
	}
	p.lastDo = saved
	return stmts
}

// parseRest parses statements up to the end of the line or a closing brace.
func (p *Parser) parseRest() []Stmt {
	var out []Stmt
	for {
		p.lineSpace()
		if p.atLineEnd() {
			return out
		}
		start := p.pos
		s := p.parseStatement()
		if s != nil {
			out = append(out, s)
		}
		if !p.bail && p.pos == start {
			p.errorAt(Span{start, start + 1}, UnexpectedToken, "unexpected %s", p.describe(start))
		}
		if p.bail {
			if bad := p.recover(start, s != nil); bad != nil {
				out = append(out, bad)
			}
		}
	}
}

// recover skips to the next statement boundary after an error: the end of
// the line or a closing brace. Brace-balanced groups on the way are skipped
// whole so a failed block header does not leave its body behind.
func (p *Parser) recover(start int, partial bool) Stmt {
	p.bail = false
	q := p.pos
	for q < len(p.src) && !isNewline(p.src[q]) && p.src[q] != '}' {
		switch p.src[q] {
		case '"':
			if end, ok := scanString(p.src, q); ok {
				q = end
				continue
			}
		case '{':
			if end, ok := ScanBalanced(p.src, q, `"`); ok {
				q = end + 1
				continue
			}
		}
		q++
	}
	if q == p.pos {
		if partial {
			return nil
		}
		return &BadStmt{SpanVal: Span{start, p.pos}}
	}
	sp := p.take(p.pos, q, TokenText)
	if partial {
		return &BadStmt{SpanVal: sp}
	}
	return &BadStmt{SpanVal: Span{start, sp.End}}
}

// parseDottedBlock claims the following lines that carry at least level
// leading dots.
func (p *Parser) parseDottedBlock(level int) []Stmt {
	var body []Stmt
	for !p.bail {
		q := scanNewline(p.src, p.pos)
		if q == p.pos {
			break
		}
		q = scanSpaces(p.src, q)
		if n, _ := countDots(p.src, q); n < level {
			break
		}
		p.trivia(q)
		body = append(body, p.parseDotted())
	}
	return body
}

// parseDotted parses a line that starts with a run of dots.
func (p *Parser) parseDotted() Stmt {
	start := p.pos
	n := 0
	for p.cur() == '.' && !isDigit(byteAt(p.src, p.pos+1)) {
		p.take(p.pos, p.pos+1, TokenPunct)
		p.trivia(scanSpaces(p.src, p.pos))
		n++
	}
	d := &DottedStmt{Level: n}
	d.Body = p.lineBody(n)
	d.SpanVal = Span{start, p.lastEnd}
	return d
}

// stretch extends the spans of the old-style statements that enclose
// target, after target gained a dotted body.
func stretch(stmts []Stmt, target Stmt, end int) bool {
	for _, s := range stmts {
		if s == target {
			return true
		}
		var inner []Stmt
		switch n := s.(type) {
		case *IfStmt:
			inner = n.Body
		case *ForStmt:
			inner = n.Body
		case *CommandStmt:
			inner = n.Body
		case *DottedStmt:
			inner = n.Body
		default:
			continue
		}
		if stretch(inner, target, end) {
			setEnd(s, end)
			return true
		}
	}
	return false
}

func setEnd(s Stmt, end int) {
	switch n := s.(type) {
	case *IfStmt:
		n.SpanVal.End = end
	case *ForStmt:
		n.SpanVal.End = end
	case *CommandStmt:
		n.SpanVal.End = end
	case *DottedStmt:
		n.SpanVal.End = end
	}
}

// blockAhead reports whether a '{' follows, possibly after whitespace, line
// breaks and comments.
func (p *Parser) blockAhead() bool {
	return byteAt(p.src, p.skipAll(p.pos)) == '{'
}

// parseBlock parses a brace-delimited statement sequence. The opening brace
// may follow on a later line.
func (p *Parser) parseBlock() []Stmt {
	open := p.take(p.skipAll(p.pos), p.skipAll(p.pos)+1, TokenPunct)
	strict, nest, closer, conds := p.strict, p.nest, p.closer, p.conds
	p.strict, p.nest, p.closer, p.conds = false, 0, 0, 0
	p.braces++
	body := p.parseStatements()
	p.braces--
	p.strict, p.nest, p.closer, p.conds = strict, nest, closer, conds
	if p.cur() == '}' {
		p.take(p.pos, p.pos+1, TokenPunct)
	} else {
		p.report(open, SeverityError, UnbalancedBlock, "missing '}' for block")
	}
	return body
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseStatement() Stmt {
	q := p.pos
	c := p.src[q]
	switch {
	case c == '#' && hasPrefixFold(p.src[q:], "##sql("):
		return p.parseEmbedded()
	case c == '#':
		return p.parseDirective()
	case c == '&' && embeddedKeywordLen(p.src, q) > 0:
		return p.parseEmbedded()
	case strings.HasPrefix(p.src[q:], "$$$"):
		m := p.parseMacro()
		return &MacroStmt{SpanVal: m.SpanVal, Macro: m}
	case isAlpha(c):
		return p.parseCommand()
	}
	p.errorAt(Span{q, q + 1}, UnexpectedToken, "expected a command, found %s", p.describe(q))
	return nil
}

// parseTag parses a column-zero label with optional formal parameters. A
// parameterized tag followed by a brace block is a procedure.
func (p *Parser) parseTag() Stmt {
	start := p.pos
	end := scanTagName(p.src, start)
	p.take(start, end, TokenIdentifier)
	tag := &TagStmt{Name: p.src[start:end]}
	if p.cur() == '(' {
		tag.HasParams = true
		tag.Params = p.parseParams()
		if !p.bail {
			if proc := p.parseProcedure(start, tag); proc != nil {
				return proc
			}
		}
	}
	tag.SpanVal = Span{start, p.lastEnd}
	return tag
}

// parseParams parses a formal parameter list: (a, b=1, c...).
func (p *Parser) parseParams() []*Param {
	p.take(p.pos, p.pos+1, TokenPunct)
	var params []*Param
	p.bracketed(func() {
		if _, ok := p.accept(")", TokenPunct); ok {
			return
		}
		for !p.bail {
			q := p.next()
			end := scanName(p.src, q)
			if end == q {
				p.errorExpected("parameter name")
				return
			}
			p.take(q, end, TokenIdentifier)
			param := &Param{Name: p.src[q:end]}
			if _, ok := p.acceptHere("...", TokenPunct); ok {
				param.Name += "..."
			} else if _, ok := p.accept("=", TokenOperator); ok {
				param.Default = p.parseExpr()
			}
			param.SpanVal = Span{q, p.lastEnd}
			params = append(params, param)
			if _, ok := p.accept(",", TokenPunct); !ok {
				break
			}
		}
		if !p.bail {
			p.expect(")", TokenPunct)
		}
	})
	return params
}

var accessKeywords = map[string]bool{"public": true, "private": true, "methodimpl": true}

// parseProcedure parses the part of a procedure after its parameter list:
// [public vars] access { body }. It returns nil, consuming nothing, if no
// block follows.
func (p *Parser) parseProcedure(start int, tag *TagStmt) Stmt {
	m := p.mark()
	proc := &ProcedureStmt{Name: tag.Name, Params: tag.Params}
	if _, ok := p.accept("[", TokenPunct); ok {
		p.bracketed(func() {
			for !p.bail && p.peek() != ']' {
				q := p.next()
				end := scanName(p.src, q)
				if end == q {
					p.errorExpected("variable name")
					return
				}
				proc.PublicVars = append(proc.PublicVars, p.take(q, end, TokenIdentifier).Text(p.src))
				if _, ok := p.accept(",", TokenPunct); !ok {
					break
				}
			}
			if !p.bail {
				p.expect("]", TokenPunct)
			}
		})
	}
	if q := p.next(); !p.bail {
		if w := wordAt(p.src, q); accessKeywords[strings.ToLower(w)] {
			proc.Access = w
			p.take(q, q+len(w), TokenKeyword)
		}
	}
	if p.bail || !p.blockAhead() {
		p.reset(m)
		return nil
	}
	proc.Body = p.parseBlock()
	proc.SpanVal = Span{start, p.lastEnd}
	return proc
}

// parseEmbedded parses &sql(...), &sql<marker>(...)<reversed marker>,
// ##sql(...), &html<...>, &js<...> and &xml<...> as opaque fenced blocks.
func (p *Parser) parseEmbedded() Stmt {
	start := p.pos
	var lang Language
	var n int
	if p.cur() == '#' {
		lang, n = LangSQL, len("##sql")
	} else {
		lang, n = embeddedAt(p.src, start)
	}
	p.take(start, start+n, TokenKeyword)
	st := &EmbeddedStmt{Lang: lang}
	if lang == LangSQL && p.cur() != '(' {
		open, _ := scanSQLMarker(p.src, p.pos)
		st.Marker = p.src[p.pos:open]
		p.take(p.pos, open, TokenPunct)
	}
	open := p.pos
	closeAt, ok := ScanFenced(p.src, open, lang)
	p.take(open, open+1, TokenPunct)
	if !ok {
		end := scanLineEnd(p.src, p.pos)
		sp := p.take(p.pos, end, TokenError)
		p.errorAt(Span{start, sp.End}, LexError, "unterminated embedded %s block", lang)
		st.SpanVal = Span{start, sp.End}
		return st
	}
	st.Body = p.take(open+1, closeAt, TokenFenced)
	st.Text = st.Body.Text(p.src)
	p.take(closeAt, closeAt+1, TokenPunct)
	if st.Marker != "" {
		if _, ok := p.acceptHere(reverseMarker(st.Marker), TokenPunct); !ok {
			p.errorAt(Span{p.pos, p.pos}, LexError, "expected closing marker %q", reverseMarker(st.Marker))
		}
	}
	st.SpanVal = Span{start, p.lastEnd}
	return st
}
