package syntax

import "strings"

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

// parseCommand parses keyword[:postcond] followed by the command boundary
// and, for argumentful commands, the argument list.
func (p *Parser) parseCommand() Stmt {
	start := p.pos
	word := wordAt(p.src, start)
	end := start + len(word)
	cands := lookupCommand(word)
	if len(cands) == 0 {
		p.errorAt(Span{start, end}, UnexpectedToken, "unknown command %q", word)
		return nil
	}
	p.take(start, end, TokenKeyword)

	var post *Expression
	if p.cur() == ':' {
		post = p.parsePostCond()
		if p.bail {
			return &CommandStmt{SpanVal: Span{start, p.lastEnd}, Command: cands[0].cmd, Keyword: word, PostCond: post}
		}
	}
	b := CommandBoundary(p.src, p.pos)
	spec, ok := resolveCommand(cands, b)
	if post != nil && !spec.postCond {
		p.errorAt(post.SpanVal, UnexpectedToken, "%s does not take a post-conditional", spec.name)
		return &CommandStmt{SpanVal: Span{start, p.lastEnd}, Command: spec.cmd, Keyword: word, PostCond: post}
	}

	switch spec.cmd {
	case CmdIf:
		return p.parseIf(start, word, b)
	case CmdFor:
		return p.parseFor(start, word, b)
	case CmdWhile:
		return p.parseWhile(start, b)
	case CmdTry:
		return p.parseTry(start)
	case CmdDo:
		if p.doBlockAhead(b) {
			return p.parseDoWhile(start, post)
		}
	case CmdCatch:
		p.errorAt(Span{start, end}, UnexpectedToken, "CATCH without TRY")
		return nil
	case CmdElseIf:
		p.errorAt(Span{start, end}, UnexpectedToken, "ELSEIF without a block IF")
		return nil
	case CmdElse:
		if p.blockAhead() {
			p.errorAt(Span{start, end}, UnexpectedToken, "ELSE block without a block IF")
			return nil
		}
	}

	cmd := &CommandStmt{Command: spec.cmd, Keyword: word, PostCond: post}
	switch {
	case p.bail:
	case b == BoundaryNone:
		p.errorAt(Span{start, p.pos}, UnexpectedToken, "expected a space after %s", word)
	case !ok && spec.form == formArgs:
		p.errorAt(Span{start, end}, UnexpectedToken, "%s requires arguments", spec.name)
	case !ok:
		p.errorAt(Span{start, end}, UnexpectedToken, "%s takes no arguments", spec.name)
	case b == BoundaryArgless:
		cmd.Argumentless = true
		switch spec.cmd {
		case CmdElse:
			cmd.Body = p.parseRest()
		case CmdDo:
			p.lastDo = cmd
		}
	default:
		p.trivia(p.pos + 1)
		cmd.Args = p.parseArgs(spec.cmd)
	}
	cmd.SpanVal = Span{start, p.lastEnd}
	return cmd
}

// parsePostCond parses :expr in whitespace-immediate mode, so the
// expression ends at the first whitespace.
func (p *Parser) parsePostCond() *Expression {
	p.take(p.pos, p.pos+1, TokenPunct)
	var e *Expression
	p.immediate(func() { e = p.parseExpr() })
	return e
}

// parseConds parses a comma-separated condition list.
func (p *Parser) parseConds() []*Expression {
	var conds []*Expression
	for !p.bail {
		conds = append(conds, p.parseExpr())
		if _, ok := p.accept(",", TokenPunct); !ok {
			break
		}
	}
	return conds
}

// keywordAhead returns the word after any whitespace, line breaks and
// comments, and its offset.
func (p *Parser) keywordAhead() (string, int) {
	q := p.skipAll(p.pos)
	return wordAt(p.src, q), q
}

// ---------------------------------------------------------------------------
// IF / ELSEIF / ELSE
// ---------------------------------------------------------------------------

func (p *Parser) parseIf(start int, word string, b Boundary) Stmt {
	st := &IfStmt{Keyword: word}
	switch b {
	case BoundaryArgs:
		p.trivia(p.pos + 1)
		st.Conds = p.parseConds()
		if p.bail {
			break
		}
		if p.blockAhead() {
			st.Block = true
			st.Body = p.parseBlock()
			p.parseElseClauses(st)
		} else {
			st.Body = p.parseRest()
		}
	case BoundaryArgless:
		st.Argumentless = true
		st.Body = p.parseRest()
	default:
		p.errorAt(Span{start, p.pos}, UnexpectedToken, "expected a space after %s", word)
	}
	st.SpanVal = Span{start, p.lastEnd}
	return st
}

// parseElseClauses parses the ELSEIF and ELSE blocks that follow a block
// IF, possibly on later lines.
func (p *Parser) parseElseClauses(st *IfStmt) {
	for !p.bail {
		word, q := p.keywordAhead()
		switch {
		case strings.EqualFold(word, "ELSEIF"):
			p.take(q, q+len(word), TokenKeyword)
			c := &ElseIfClause{}
			c.Conds = p.parseConds()
			if !p.bail && !p.blockAhead() {
				p.errorExpected("'{' after ELSEIF condition")
			}
			if !p.bail {
				c.Body = p.parseBlock()
			}
			c.SpanVal = Span{q, p.lastEnd}
			st.ElseIfs = append(st.ElseIfs, c)
		case strings.EqualFold(word, "ELSE") && byteAt(p.src, p.skipAll(q+len(word))) == '{':
			p.take(q, q+len(word), TokenKeyword)
			c := &ElseClause{Body: p.parseBlock()}
			c.SpanVal = Span{q, p.lastEnd}
			st.Else = c
			return
		default:
			return
		}
	}
}

// ---------------------------------------------------------------------------
// FOR / WHILE / DO-WHILE
// ---------------------------------------------------------------------------

func (p *Parser) parseFor(start int, word string, b Boundary) Stmt {
	st := &ForStmt{Keyword: word}
	switch {
	case b == BoundaryArgs && byteAt(p.src, p.pos+1) != '{':
		p.trivia(p.pos + 1)
		st.Param = p.parseForParam()
		if p.bail {
			break
		}
		if p.blockAhead() {
			st.Block = true
			st.Body = p.parseBlock()
		} else {
			st.Body = p.parseRest()
		}
	case p.blockAhead():
		st.Block = true
		st.Body = p.parseBlock()
	case b == BoundaryArgless:
		st.Body = p.parseRest()
	default:
		p.errorAt(Span{start, p.pos}, UnexpectedToken, "expected a space after %s", word)
	}
	st.SpanVal = Span{start, p.lastEnd}
	return st
}

// parseForParam parses var=start[:inc[:limit]],...
func (p *Parser) parseForParam() *ForParam {
	start := p.next()
	fp := &ForParam{Var: p.parseGlvn()}
	if !p.bail {
		p.expect("=", TokenOperator)
	}
	for !p.bail {
		r := &ForRange{Start: p.parseExpr()}
		if _, ok := p.accept(":", TokenPunct); ok && !p.bail {
			r.Increment = p.parseExpr()
			if _, ok := p.accept(":", TokenPunct); ok && !p.bail {
				r.Limit = p.parseExpr()
			}
		}
		r.SpanVal = Span{r.Start.SpanVal.Start, p.lastEnd}
		fp.Ranges = append(fp.Ranges, r)
		if _, ok := p.accept(",", TokenPunct); !ok {
			break
		}
	}
	fp.SpanVal = Span{start, p.lastEnd}
	return fp
}

func (p *Parser) parseWhile(start int, b Boundary) Stmt {
	st := &WhileStmt{}
	switch {
	case p.blockAhead():
	case b == BoundaryArgs:
		p.trivia(p.pos + 1)
		st.Conds = p.parseConds()
	default:
		p.errorAt(Span{start, p.pos}, UnexpectedToken, "expected a condition or '{' after WHILE")
	}
	if !p.bail && !p.blockAhead() {
		p.errorExpected("'{' after WHILE condition")
	}
	if !p.bail {
		st.Body = p.parseBlock()
	}
	st.SpanVal = Span{start, p.lastEnd}
	return st
}

// doBlockAhead reports whether the DO at the cursor opens a DO {...} WHILE
// block rather than taking arguments.
func (p *Parser) doBlockAhead(b Boundary) bool {
	switch b {
	case BoundaryNone:
		return p.cur() == '{'
	case BoundaryArgs:
		return byteAt(p.src, p.pos+1) == '{'
	}
	return p.blockAhead()
}

func (p *Parser) parseDoWhile(start int, post *Expression) Stmt {
	st := &DoWhileStmt{PostCond: post}
	st.Body = p.parseBlock()
	if word, q := p.keywordAhead(); !p.bail && strings.EqualFold(word, "WHILE") {
		p.take(q, q+len(word), TokenKeyword)
		st.Cond = p.parseConds()
	} else if !p.bail {
		p.errorAt(Span{q, q + len(word)}, UnexpectedToken, "expected WHILE after DO block")
	}
	st.SpanVal = Span{start, p.lastEnd}
	return st
}

// ---------------------------------------------------------------------------
// TRY / CATCH
// ---------------------------------------------------------------------------

func (p *Parser) parseTry(start int) Stmt {
	st := &TryStmt{}
	if !p.blockAhead() {
		p.errorExpected("'{' after TRY")
		st.SpanVal = Span{start, p.lastEnd}
		return st
	}
	st.Body = p.parseBlock()
	word, q := p.keywordAhead()
	if p.bail || !strings.EqualFold(word, "CATCH") {
		if !p.bail {
			p.errorAt(Span{q, q}, UnexpectedToken, "expected CATCH after TRY block")
		}
		st.SpanVal = Span{start, p.lastEnd}
		return st
	}
	p.take(q, q+len(word), TokenKeyword)
	c := &CatchClause{}
	switch {
	case p.blockAhead():
	case p.peek() == '(':
		p.take(p.next(), p.next()+1, TokenPunct)
		p.bracketed(func() {
			c.Var = p.parseGlvn()
			if !p.bail {
				p.expect(")", TokenPunct)
			}
		})
	default:
		c.Var = p.parseGlvn()
	}
	if !p.bail && !p.blockAhead() {
		p.errorExpected("'{' after CATCH")
	}
	if !p.bail {
		c.Body = p.parseBlock()
	}
	c.SpanVal = Span{q, p.lastEnd}
	st.Catch = c
	st.SpanVal = Span{start, p.lastEnd}
	return st
}
