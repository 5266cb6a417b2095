package syntax

import (
	"regexp"
	"strings"
)

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// parseExpr parses atom (operator operand)* under the active whitespace
// policy. All binary operators share one level and fold left to right.
func (p *Parser) parseExpr() *Expression {
	atom := p.parseUnary()
	e := &Expression{SpanVal: atom.Span(), Atom: atom}
	for !p.bail {
		q := p.next()
		op := matchOperator(p.src, q)
		if op == "" || (p.closer != 0 && op[0] == p.closer) {
			break
		}
		opSpan := p.take(q, q+len(op), TokenOperator)
		var right Expr
		if op == "?" || op == "'?" {
			right = p.parsePatternOperand()
		} else {
			right = p.parseUnary()
		}
		t := &Tail{SpanVal: Span{opSpan.Start, right.Span().End}, Op: op, Right: right}
		e.Tails = append(e.Tails, t)
		e.SpanVal.End = t.SpanVal.End
	}
	return e
}

func (p *Parser) parseUnary() Expr {
	q := p.next()
	switch c := byteAt(p.src, q); c {
	case '+', '-', '\'':
		op := p.take(q, q+1, TokenOperator)
		x := p.parseUnary()
		return &UnaryExpr{SpanVal: Span{op.Start, x.Span().End}, Op: string(c), X: x}
	case '@':
		return p.parseIndirection()
	}
	return p.parseAtom()
}

// parseAtom parses one operand. References that can own members continue
// into an oref chain when a '.' follows immediately.
func (p *Parser) parseAtom() Expr {
	q := p.next()
	c := byteAt(p.src, q)
	var x Expr
	switch {
	case c == '(':
		x = p.parseParen()
	case c == '"':
		return p.parseString()
	case isDigit(c) || (c == '.' && isDigit(byteAt(p.src, q+1))):
		end := scanNumber(p.src, q)
		sp := p.take(q, end, TokenLiteral)
		return &NumberLit{SpanVal: sp, Raw: sp.Text(p.src)}
	case c == '{' && isSQLFieldRef(p.src, q):
		return p.parseSQLFieldRef()
	case c == '{':
		x = p.parseJSONObject()
	case c == '[':
		return p.parseJSONArray()
	case c == '$':
		x = p.parseDollar()
	case c == '^':
		return p.parseGlobal()
	case hasPrefixFold(p.src[q:], "##class"):
		x = p.parseClassRef()
	case hasPrefixFold(p.src[q:], "##super"):
		return p.parseSuper()
	case c == '.' && byteAt(p.src, q+1) == '.':
		x = p.parseRelative()
	case isInstanceVar(p.src, q):
		x = p.parseInstanceVar()
	case isNameStart(c):
		x = p.parseLocal()
	default:
		end := q
		if q < len(p.src) && !isNewline(c) {
			end = q + 1
		}
		p.errorAt(Span{q, end}, UnexpectedToken, "expected an expression, found %s", p.describe(q))
		return &BadExpr{SpanVal: Span{q, q}}
	}
	if !p.bail && p.chainAhead() {
		return p.parseChain(x)
	}
	return x
}

func (p *Parser) parseParen() Expr {
	q := p.next()
	open := p.take(q, q+1, TokenPunct)
	var x *Expression
	p.bracketed(func() {
		x = p.parseExpr()
		if !p.bail {
			p.expect(")", TokenPunct)
		}
	})
	return &ParenExpr{SpanVal: Span{open.Start, p.lastEnd}, X: x}
}

func (p *Parser) parseString() Expr {
	q := p.next()
	end, ok := scanString(p.src, q)
	if !ok {
		sp := p.take(q, end, TokenError)
		p.errorAt(sp, LexError, "unterminated string literal")
		return &StringLit{SpanVal: sp, Raw: sp.Text(p.src)}
	}
	sp := p.take(q, end, TokenLiteral)
	return &StringLit{SpanVal: sp, Raw: sp.Text(p.src)}
}

// parseIndirection parses @name, @^global, @(expr), @$$$macro and the
// subscript form @x@(subs). The operand follows '@' with no whitespace.
func (p *Parser) parseIndirection() Expr {
	q := p.next()
	at := p.take(q, q+1, TokenOperator)
	ind := &Indirection{}
	p.immediate(func() {
		switch c := p.cur(); {
		case c == '(':
			ind.X = p.parseParen()
		case c == '^':
			ind.X = p.parseGlobal()
		case strings.HasPrefix(p.src[p.pos:], "$$$"):
			ind.X = p.parseMacro()
		case isInstanceVar(p.src, p.pos):
			ind.X = p.parseInstanceVar()
		case isNameStart(c):
			ind.X = p.parseLocal()
		default:
			p.errorExpected("indirection operand")
			ind.X = &BadExpr{SpanVal: Span{p.pos, p.pos}}
			return
		}
		if strings.HasPrefix(p.src[p.pos:], "@(") {
			p.take(p.pos, p.pos+1, TokenOperator)
			ind.Subscripts = p.parseSubscripts()
		}
	})
	ind.SpanVal = Span{at.Start, p.lastEnd}
	return ind
}

var patternRE = func() *regexp.Regexp {
	rep := `(?:\d*(?:\.\d*)?|\.)`
	str := `"[^"\r\n]*(?:""[^"\r\n]*)*"`
	code := `[aceulnpzACEULNPZ]+`
	elem := `(?:` + code + `|` + str + `)`
	alt := `\(` + rep + `?` + elem + `(?:,` + rep + `?` + elem + `)*\)`
	return regexp.MustCompile(`^(?:` + rep + `(?:` + code + `|` + str + `|` + alt + `)+)+`)
}()

// parsePatternOperand parses the right side of ? and '?: a pattern literal
// or an indirection.
func (p *Parser) parsePatternOperand() Expr {
	q := p.next()
	if byteAt(p.src, q) == '@' {
		return p.parseIndirection()
	}
	loc := patternRE.FindStringIndex(p.src[q:])
	if loc == nil || loc[1] == 0 {
		p.errorExpected("pattern")
		return &BadExpr{SpanVal: Span{q, q}}
	}
	sp := p.take(q, q+loc[1], TokenLiteral)
	return &PatternLit{SpanVal: sp, Raw: sp.Text(p.src)}
}

// ---------------------------------------------------------------------------
// Variables
// ---------------------------------------------------------------------------

func isInstanceVar(src string, pos int) bool {
	switch byteAt(src, pos) {
	case 'i', 'r', 'm':
		return byteAt(src, pos+1) == '%' && scanMember(src, pos+2) > pos+2
	}
	return false
}

// parseSubscripts parses (expr, ...) at the cursor.
func (p *Parser) parseSubscripts() []Expr {
	open := p.take(p.pos, p.pos+1, TokenPunct)
	var subs []Expr
	p.bracketed(func() {
		if sp, ok := p.accept(")", TokenPunct); ok {
			p.errorAt(Span{open.Start, sp.End}, UnexpectedToken, "empty subscript list")
			return
		}
		for !p.bail {
			subs = append(subs, p.parseExpr())
			if _, ok := p.accept(",", TokenPunct); !ok {
				break
			}
		}
		if !p.bail {
			p.expect(")", TokenPunct)
		}
	})
	return subs
}

func (p *Parser) parseLocal() *LocalVar {
	q := p.next()
	end := scanName(p.src, q)
	p.take(q, end, TokenIdentifier)
	v := &LocalVar{Name: p.src[q:end]}
	if p.cur() == '(' {
		v.Subscripts = p.parseSubscripts()
	}
	v.SpanVal = Span{q, p.lastEnd}
	return v
}

func (p *Parser) parseInstanceVar() Expr {
	q := p.next()
	end := scanMember(p.src, q+2)
	p.take(q, end, TokenIdentifier)
	v := &InstanceVar{Prefix: p.src[q : q+1], Name: p.src[q+2 : end]}
	if p.cur() == '(' {
		v.Subscripts = p.parseSubscripts()
	}
	v.SpanVal = Span{q, p.lastEnd}
	return v
}

// scanGlobalName matches [%A-Za-z][A-Za-z0-9]* with optional .part segments.
func scanGlobalName(src string, pos int) int {
	end := scanName(src, pos)
	if end == pos {
		return pos
	}
	for byteAt(src, end) == '.' && isAlnum(byteAt(src, end+1)) {
		end++
		for end < len(src) && isAlnum(src[end]) {
			end++
		}
	}
	return end
}

// parseGlobal parses ^name, ^||name, ^|env|name, the naked ^(subs) and the
// structured system variable ^$NAME.
func (p *Parser) parseGlobal() Expr {
	q := p.next()
	p.take(q, q+1, TokenPunct)
	if p.cur() == '$' {
		end := scanName(p.src, p.pos+1)
		if end == p.pos+1 {
			p.errorExpected("system variable name")
			return &BadExpr{SpanVal: Span{q, p.pos}}
		}
		p.take(p.pos, end, TokenIdentifier)
		v := &SSVN{Name: strings.ToUpper(p.src[q+2 : end])}
		if p.cur() == '(' {
			v.Subscripts = p.parseSubscripts()
		}
		v.SpanVal = Span{q, p.lastEnd}
		return v
	}
	g := &GlobalVar{}
	switch {
	case p.cur() == '(':
		g.Naked = true
	case strings.HasPrefix(p.src[p.pos:], "||"):
		p.take(p.pos, p.pos+2, TokenPunct)
		g.ProcessPrivate = true
	case p.cur() == '|':
		p.take(p.pos, p.pos+1, TokenPunct)
		p.bracketed(func() {
			g.Env = p.parseExpr()
			if !p.bail {
				p.expect("|", TokenPunct)
			}
		})
	case p.cur() == '[':
		p.take(p.pos, p.pos+1, TokenPunct)
		p.bracketed(func() {
			p.closer = ']'
			g.Env = p.parseExpr()
			if !p.bail {
				p.expect("]", TokenPunct)
			}
		})
	}
	if !g.Naked && !p.bail {
		end := scanGlobalName(p.src, p.pos)
		if end == p.pos {
			p.errorExpected("global name")
			g.SpanVal = Span{q, p.pos}
			return g
		}
		g.Name = p.take(p.pos, end, TokenIdentifier).Text(p.src)
	}
	if !p.bail && p.cur() == '(' {
		g.Subscripts = p.parseSubscripts()
	}
	g.SpanVal = Span{q, p.lastEnd}
	return g
}

// isSQLFieldRef reports whether the '{' at pos opens {name}, {*} or
// {name*M} rather than a JSON object.
func isSQLFieldRef(src string, pos int) bool {
	i := pos + 1
	if byteAt(src, i) == '*' {
		return byteAt(src, i+1) == '}'
	}
	start := i
	for i < len(src) && (isAlnum(src[i]) || src[i] == '%' || src[i] == '_') {
		i++
	}
	if i == start {
		return false
	}
	if byteAt(src, i) == '*' && strings.IndexByte("ONC", byteAt(src, i+1)) >= 0 {
		i += 2
	}
	return byteAt(src, i) == '}'
}

func (p *Parser) parseSQLFieldRef() Expr {
	q := p.next()
	end := q + strings.IndexByte(p.src[q:], '}') + 1
	sp := p.take(q, end, TokenIdentifier)
	inner := p.src[q+1 : end-1]
	ref := &SQLFieldRef{SpanVal: sp, Name: inner}
	if i := strings.IndexByte(inner, '*'); i > 0 {
		ref.Name, ref.Modifier = inner[:i], inner[i+1:]
	}
	return ref
}

// ---------------------------------------------------------------------------
// $ forms: builtins, extrinsics, macros
// ---------------------------------------------------------------------------

func (p *Parser) parseDollar() Expr {
	q := p.next()
	switch {
	case strings.HasPrefix(p.src[q:], "$$$"):
		return p.parseMacro()
	case strings.HasPrefix(p.src[q:], "$$"):
		return p.parseExtrinsic()
	}
	end := scanName(p.src, q+1)
	if end == q+1 {
		p.errorAt(Span{q, q + 1}, UnexpectedToken, "expected a builtin name after '$'")
		return &BadExpr{SpanVal: Span{q, q + 1}}
	}
	spelling := p.src[q+1 : end]
	if byteAt(p.src, end) == '.' && strings.EqualFold(spelling, "SYSTEM") {
		return p.parseSystemCall()
	}
	sp := p.take(q, end, TokenKeyword)
	if p.cur() == '(' {
		name, known := SystemFunction(spelling)
		if !known {
			name = strings.ToUpper(spelling)
			p.report(sp, SeverityWarning, UnknownName, "unknown function $%s", spelling)
		}
		fn := &SystemFunc{Name: name, Spelling: spelling, Known: known}
		fn.Args = p.parseFuncArgs(specialForms[name])
		fn.SpanVal = Span{q, p.lastEnd}
		return fn
	}
	name, known := SystemVariable(spelling)
	if !known {
		name = strings.ToUpper(spelling)
		p.report(sp, SeverityWarning, UnknownName, "unknown system variable $%s", spelling)
	}
	return &SystemVar{SpanVal: sp, Name: name, Spelling: spelling, Known: known}
}

// parseMacro parses $$$NAME with optional arguments.
func (p *Parser) parseMacro() *MacroRef {
	q := p.next()
	end := scanMember(p.src, q+3)
	if end == q+3 {
		p.errorAt(Span{q, q + 3}, UnexpectedToken, "expected a macro name after $$$")
		return &MacroRef{SpanVal: Span{q, q + 3}}
	}
	p.take(q, end, TokenIdentifier)
	m := &MacroRef{Name: p.src[q+3 : end]}
	if p.cur() == '(' {
		m.Call = true
		m.Args = p.parseCallArgs()
	}
	m.SpanVal = Span{q, p.lastEnd}
	return m
}

func (p *Parser) parseExtrinsic() Expr {
	q := p.next()
	p.take(q, q+2, TokenOperator)
	x := &Extrinsic{}
	p.immediate(func() {
		x.Ref = p.parseLineRef()
		if !p.bail && p.cur() == '(' {
			x.Call = true
			x.Args = p.parseCallArgs()
		}
	})
	x.SpanVal = Span{q, p.lastEnd}
	return x
}

// parseSystemCall parses $SYSTEM.Path.Method(args).
func (p *Parser) parseSystemCall() Expr {
	q := p.next()
	end := q + len("$SYSTEM")
	p.take(q, end, TokenKeyword)
	call := &SystemCall{}
	for p.cur() == '.' {
		p.take(p.pos, p.pos+1, TokenPunct)
		end := scanMember(p.src, p.pos)
		if end == p.pos {
			p.errorExpected("member name")
			return &BadExpr{SpanVal: Span{q, p.pos}}
		}
		call.Path = append(call.Path, p.take(p.pos, end, TokenIdentifier).Text(p.src))
	}
	if p.cur() != '(' {
		p.errorExpected("'(' after $SYSTEM method")
		return &BadExpr{SpanVal: Span{q, p.pos}}
	}
	call.Args = p.parseCallArgs()
	call.SpanVal = Span{q, p.lastEnd}
	return call
}

// parseLineRef parses label[+offset][^routine], +offset^routine, ^routine
// and @indirect. Its parts are adjacent with no whitespace.
func (p *Parser) parseLineRef() *LineRef {
	q := p.next()
	ref := &LineRef{}
	if byteAt(p.src, q) == '@' {
		ref.Indirect = p.parseIndirection()
		ref.SpanVal = ref.Indirect.Span()
		return ref
	}
	if end := scanMember(p.src, q); end > q {
		ref.Label = p.take(q, end, TokenIdentifier).Text(p.src)
	}
	at := q
	if ref.Label != "" {
		at = p.pos
	}
	if byteAt(p.src, at) == '+' {
		p.take(at, at+1, TokenOperator)
		p.immediate(func() { ref.Offset = p.parseUnary() })
		at = p.pos
	}
	if !p.bail && byteAt(p.src, at) == '^' {
		p.take(at, at+1, TokenPunct)
		if p.cur() == '@' {
			p.immediate(func() { ref.Indirect = p.parseIndirection() })
		} else {
			end := scanDottedName(p.src, p.pos)
			if end == p.pos {
				p.errorExpected("routine name")
				ref.SpanVal = Span{q, p.pos}
				return ref
			}
			ref.Routine = p.take(p.pos, end, TokenIdentifier).Text(p.src)
		}
	}
	if p.lastEnd <= q && !p.bail {
		p.errorExpected("label or routine")
	}
	ref.SpanVal = Span{q, p.lastEnd}
	return ref
}

// ---------------------------------------------------------------------------
// Argument lists
// ---------------------------------------------------------------------------

// parseCallArgs parses a parenthesized method-style argument list at the
// cursor. Arguments may be expressions, .byref, name... or omitted. An empty
// list yields a non-nil empty slice.
func (p *Parser) parseCallArgs() []Expr {
	p.take(p.pos, p.pos+1, TokenPunct)
	args := []Expr{}
	p.bracketed(func() {
		if _, ok := p.accept(")", TokenPunct); ok {
			return
		}
		for !p.bail {
			args = append(args, p.parseCallArg())
			if _, ok := p.accept(",", TokenPunct); !ok {
				break
			}
		}
		if !p.bail {
			p.expect(")", TokenPunct)
		}
	})
	return args
}

func (p *Parser) parseCallArg() Expr {
	q := p.next()
	c := byteAt(p.src, q)
	switch {
	case c == ',' || c == ')':
		return &OmittedArg{SpanVal: Span{q, q}}
	case c == '.' && (isNameStart(byteAt(p.src, q+1)) || byteAt(p.src, q+1) == '@'):
		dot := p.take(q, q+1, TokenPunct)
		var v Expr
		p.immediate(func() {
			if p.cur() == '@' {
				v = p.parseIndirection()
			} else {
				v = p.parseLocal()
			}
		})
		return &ByRefArg{SpanVal: Span{dot.Start, v.Span().End}, Var: v}
	case isNameStart(c):
		if end := scanName(p.src, q); strings.HasPrefix(p.src[end:], "...") {
			p.take(q, end, TokenIdentifier)
			p.take(end, end+3, TokenPunct)
			v := &LocalVar{SpanVal: Span{q, end}, Name: p.src[q:end]}
			return &VariadicArg{SpanVal: Span{q, end + 3}, Var: v}
		}
	}
	return p.parseExpr()
}

// parseFuncArgs parses the argument list of a builtin function, applying
// the argument shapes of functions with special forms.
func (p *Parser) parseFuncArgs(form specialForm) []Expr {
	p.take(p.pos, p.pos+1, TokenPunct)
	var args []Expr
	p.bracketed(func() {
		if _, ok := p.accept(")", TokenPunct); ok {
			return
		}
		for i := 0; !p.bail; i++ {
			args = append(args, p.parseFuncArg(form, i))
			if _, ok := p.accept(",", TokenPunct); !ok {
				break
			}
		}
		if !p.bail {
			p.expect(")", TokenPunct)
		}
	})
	return args
}

func (p *Parser) parseFuncArg(form specialForm, i int) Expr {
	q := p.next()
	c := byteAt(p.src, q)
	if c == ',' || c == ')' {
		return &OmittedArg{SpanVal: Span{q, q}}
	}
	switch form {
	case formPosition:
		if i > 0 && c == '*' {
			return p.parseEndRef()
		}
	case formCase:
		if i > 0 {
			return p.parseCaseArm(c == ':')
		}
	case formSelect:
		return p.parseCaseArm(false)
	case formMethodCall:
		if i >= 2 {
			return p.parseCallArg()
		}
	case formText:
		if i == 0 {
			if ref := p.tryLineRef(); ref != nil {
				return ref
			}
		}
	}
	return p.parseExpr()
}

// parseEndRef parses * or *-n as a string position.
func (p *Parser) parseEndRef() Expr {
	q := p.next()
	p.take(q, q+1, TokenOperator)
	ref := &EndRef{}
	if c := p.peek(); c == '-' || c == '+' {
		ref.Op = p.take(p.next(), p.next()+1, TokenOperator).Text(p.src)
		ref.Offset = p.parseExpr()
	}
	ref.SpanVal = Span{q, p.lastEnd}
	return ref
}

// parseCaseArm parses match:value, or :value for the $CASE default.
func (p *Parser) parseCaseArm(isDefault bool) Expr {
	q := p.next()
	arm := &CaseArm{}
	if !isDefault {
		arm.Match = p.parseExpr()
	}
	if !p.bail {
		p.expect(":", TokenPunct)
	}
	if !p.bail {
		arm.Value = p.parseExpr()
	}
	arm.SpanVal = Span{q, p.lastEnd}
	return arm
}

// tryLineRef parses a line reference for $TEXT, backing off if what
// follows is not a complete reference.
func (p *Parser) tryLineRef() *LineRef {
	c := p.peek()
	if !isAlnum(c) && c != '%' && c != '+' && c != '^' {
		return nil
	}
	m := p.mark()
	ref := p.parseLineRef()
	if c := p.peek(); !p.bail && (c == ')' || c == ',') {
		return ref
	}
	p.reset(m)
	return nil
}

// ---------------------------------------------------------------------------
// Object references
// ---------------------------------------------------------------------------

// parseClassRef parses ##class(Name) followed by .Method(args), .#PARAM or
// a (expr) cast.
func (p *Parser) parseClassRef() Expr {
	q := p.next()
	p.take(q, q+len("##class"), TokenKeyword)
	ref := &ClassRef{}
	if _, ok := p.acceptHere("(", TokenPunct); !ok {
		p.errorExpected("'(' after ##class")
		return &BadExpr{SpanVal: Span{q, p.pos}}
	}
	var end int
	if p.cur() == '"' {
		var ok bool
		if end, ok = scanString(p.src, p.pos); !ok {
			sp := p.take(p.pos, end, TokenError)
			p.errorAt(sp, LexError, "unterminated class name string")
			return &BadExpr{SpanVal: Span{q, sp.End}}
		}
	} else {
		end = scanDottedName(p.src, p.pos)
	}
	if end == p.pos {
		p.errorExpected("class name")
		return &BadExpr{SpanVal: Span{q, p.pos}}
	}
	ref.Class = strings.Trim(p.take(p.pos, end, TokenIdentifier).Text(p.src), `"`)
	if _, ok := p.acceptHere(")", TokenPunct); !ok {
		p.errorExpected("')' after class name")
		return &BadExpr{SpanVal: Span{q, p.pos}}
	}
	switch p.cur() {
	case '(':
		p.take(p.pos, p.pos+1, TokenPunct)
		p.bracketed(func() {
			ref.Cast = p.parseExpr()
			if !p.bail {
				p.expect(")", TokenPunct)
			}
		})
	case '.':
		dot := p.take(p.pos, p.pos+1, TokenPunct)
		seg := p.parseSegment(dot.Start)
		if !p.bail && seg.Kind == SegmentProperty {
			p.errorAt(seg.SpanVal, UnexpectedToken, "expected arguments after ##class(%s).%s", ref.Class, seg.Name)
		}
		if seg.Kind == SegmentMethod {
			seg.Ambiguous = false
		}
		ref.Member = seg
	default:
		p.errorExpected("'.' or '(' after ##class(...)")
	}
	ref.SpanVal = Span{q, p.lastEnd}
	return ref
}

func (p *Parser) parseSuper() Expr {
	q := p.next()
	p.take(q, q+len("##super"), TokenKeyword)
	if p.cur() != '(' {
		p.errorExpected("'(' after ##super")
		return &BadExpr{SpanVal: Span{q, p.pos}}
	}
	s := &SuperCall{Args: p.parseCallArgs()}
	s.SpanVal = Span{q, p.lastEnd}
	return s
}

// parseRelative parses ..member, ..member(args) and ..#PARAM.
func (p *Parser) parseRelative() Expr {
	q := p.next()
	p.take(q, q+2, TokenPunct)
	r := &RelativeRef{Member: p.parseSegment(q)}
	r.SpanVal = Span{q, p.lastEnd}
	return r
}
