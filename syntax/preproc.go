package syntax

import "strings"

// ---------------------------------------------------------------------------
// Preprocessor directives
// ---------------------------------------------------------------------------

// directiveWord returns the lower-cased directive name at pos ('#' excluded).
func directiveWord(src string, pos int) string {
	return strings.ToLower(wordAt(src, pos+1))
}

// atBranchDirective reports whether #elseif, #else or #endif starts at the
// cursor.
func (p *Parser) atBranchDirective() bool {
	if p.cur() != '#' {
		return false
	}
	switch directiveWord(p.src, p.pos) {
	case "elseif", "else", "endif":
		return true
	}
	return false
}

func (p *Parser) parseDirective() Stmt {
	start := p.pos
	word := directiveWord(p.src, start)
	end := start + 1 + len(word)
	switch word {
	case "define", "def1arg":
		return p.parseDefine(start, end, word)
	case "undef":
		p.take(start, end, TokenKeyword)
		d := &UndefDirective{Name: p.takeMacroName()}
		d.SpanVal = Span{start, p.lastEnd}
		return d
	case "if", "ifdef", "ifndef":
		return p.parseCondDirective(start, end, word)
	case "include", "import":
		p.take(start, end, TokenKeyword)
		d := &IncludeDirective{Import: word == "import"}
		for !p.bail {
			d.Names = append(d.Names, p.takeName("include name"))
			if _, ok := p.accept(",", TokenPunct); !ok {
				break
			}
		}
		d.SpanVal = Span{start, p.lastEnd}
		return d
	case "dim":
		return p.parseDim(start, end)
	case "elseif", "else", "endif":
		p.errorAt(Span{start, end}, UnbalancedBlock, "#%s without #if", word)
		return nil
	}
	p.errorAt(Span{start, end}, UnexpectedToken, "unknown directive #%s", word)
	return nil
}

func (p *Parser) takeMacroName() string {
	q := p.next()
	end := scanMember(p.src, q)
	if end == q {
		p.errorExpected("macro name")
		return ""
	}
	return p.take(q, end, TokenIdentifier).Text(p.src)
}

// parseDefine parses #define NAME[(args)] [value] and #def1arg. The value
// runs to the end of the line and continues onto the next line while a line
// ends with ##continue.
func (p *Parser) parseDefine(start, end int, word string) Stmt {
	p.take(start, end, TokenKeyword)
	d := &MacroDirective{Directive: word, Name: p.takeMacroName()}
	if p.bail {
		d.SpanVal = Span{start, p.lastEnd}
		return d
	}
	if p.cur() == '(' {
		d.HasParams = true
		p.take(p.pos, p.pos+1, TokenPunct)
		p.bracketed(func() {
			if _, ok := p.accept(")", TokenPunct); ok {
				return
			}
			for !p.bail {
				q := p.next()
				from := q
				if byteAt(p.src, q) == '%' {
					from++
				}
				e := scanMember(p.src, from)
				if e == from {
					p.errorExpected("macro argument")
					return
				}
				d.Params = append(d.Params, p.take(q, e, TokenIdentifier).Text(p.src))
				if _, ok := p.accept(",", TokenPunct); !ok {
					break
				}
			}
			if !p.bail {
				p.expect(")", TokenPunct)
			}
		})
	}
	for !p.bail {
		q := scanSpaces(p.src, p.pos)
		lineEnd := scanLineEnd(p.src, q)
		text := strings.TrimRight(p.src[q:lineEnd], " \t")
		if text == "" {
			break
		}
		line := &MacroLine{}
		if hasSuffixFold(text, "##continue") {
			line.Continued = true
			body := strings.TrimRight(text[:len(text)-len("##continue")], " \t")
			p.take(q, q+len(body), TokenText)
			kw := q + len(text) - len("##continue")
			p.take(kw, kw+len("##continue"), TokenKeyword)
			line.Text = body
		} else {
			p.take(q, q+len(text), TokenText)
			line.Text = text
		}
		line.SpanVal = Span{q, p.lastEnd}
		d.Lines = append(d.Lines, line)
		if !line.Continued {
			break
		}
		p.trivia(scanNewline(p.src, scanLineEnd(p.src, p.pos)))
	}
	d.SpanVal = Span{start, p.lastEnd}
	return d
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

// parseCondDirective parses #if/#ifdef/#ifndef through the matching #endif.
// Branch bodies are ordinary statement sequences.
func (p *Parser) parseCondDirective(start, end int, word string) Stmt {
	p.take(start, end, TokenKeyword)
	d := &CondDirective{Directive: word, Cond: p.parseExpr()}
	if p.bail {
		d.SpanVal = Span{start, p.lastEnd}
		return d
	}
	p.conds++
	d.Body = p.parseStatements()
	closed := false
	for !closed && p.atBranchDirective() {
		q := p.pos
		w := directiveWord(p.src, q)
		p.take(q, q+1+len(w), TokenKeyword)
		switch w {
		case "elseif":
			b := &ElseIfDirective{Cond: p.parseExpr()}
			if p.bail {
				p.conds--
				d.ElseIfs = append(d.ElseIfs, b)
				d.SpanVal = Span{start, p.lastEnd}
				return d
			}
			b.Body = p.parseStatements()
			b.SpanVal = Span{q, p.lastEnd}
			d.ElseIfs = append(d.ElseIfs, b)
		case "else":
			b := &ElseDirective{Body: p.parseStatements()}
			b.SpanVal = Span{q, p.lastEnd}
			d.Else = b
		case "endif":
			closed = true
		}
	}
	p.conds--
	if !closed {
		p.report(Span{start, end}, SeverityError, UnbalancedBlock, "missing #endif for #%s", word)
	}
	d.SpanVal = Span{start, p.lastEnd}
	return d
}

// parseDim parses #dim a,b [As Type] [= value].
func (p *Parser) parseDim(start, end int) Stmt {
	p.take(start, end, TokenKeyword)
	d := &DimDirective{}
	for !p.bail {
		q := p.next()
		e := scanName(p.src, q)
		if e == q {
			p.errorExpected("variable name")
			break
		}
		d.Names = append(d.Names, p.take(q, e, TokenIdentifier).Text(p.src))
		if _, ok := p.accept(",", TokenPunct); !ok {
			break
		}
	}
	if q := p.next(); !p.bail && strings.EqualFold(wordAt(p.src, q), "as") {
		p.take(q, q+2, TokenKeyword)
		d.Type = p.takeName("type name")
	}
	if !p.bail {
		if _, ok := p.accept("=", TokenOperator); ok {
			d.Value = p.parseExpr()
		}
	}
	d.SpanVal = Span{start, p.lastEnd}
	return d
}
