package syntax

import "strings"

// ---------------------------------------------------------------------------
// Command arguments
// ---------------------------------------------------------------------------

// parseArgs parses the argument list of an argumentful command. The cursor
// is just past the single separating space.
func (p *Parser) parseArgs(cmd Command) []Node {
	switch cmd {
	case CmdSet:
		return p.commaList(p.parseSetArg)
	case CmdWrite:
		return p.commaList(p.parseWriteArg)
	case CmdDo:
		return p.commaList(p.parseDoArg)
	case CmdKill, CmdZKill:
		return p.commaList(p.parseKillArg)
	case CmdNew:
		return p.commaList(p.parseNewArg)
	case CmdLock:
		return p.commaList(p.parseLockArg)
	case CmdRead:
		return p.commaList(p.parseReadArg)
	case CmdOpen, CmdUse, CmdClose:
		return p.commaList(func() Node { return p.parseDeviceArg(cmd) })
	case CmdJob:
		return p.commaList(p.parseJobArg)
	case CmdGoto:
		return p.commaList(p.parseGotoArg)
	case CmdMerge:
		return p.commaList(p.parseMergeArg)
	case CmdView:
		return p.commaList(p.parseViewArg)
	case CmdXecute:
		return p.commaList(p.parseXecuteArg)
	case CmdBreak:
		return p.commaList(p.parseBreakArg)
	case CmdZBreak:
		return p.commaList(p.parseZBreakArg)
	case CmdThrow:
		return []Node{p.parseExpr()}
	case CmdTRollback:
		return p.commaList(p.parseTRollbackArg)
	}
	return p.commaList(func() Node { return p.parseExpr() })
}

// commaList parses item (',' item)*.
func (p *Parser) commaList(item func() Node) []Node {
	var out []Node
	for {
		if n := item(); n != nil {
			out = append(out, n)
		}
		if p.bail {
			return out
		}
		if _, ok := p.accept(",", TokenPunct); !ok {
			return out
		}
	}
}

// parenList parses '(' item (',' item)* ')' at the next significant byte.
func (p *Parser) parenList(item func() Expr) []Expr {
	p.take(p.next(), p.next()+1, TokenPunct)
	var out []Expr
	p.bracketed(func() {
		for !p.bail {
			out = append(out, item())
			if _, ok := p.accept(",", TokenPunct); !ok {
				break
			}
		}
		if !p.bail {
			p.expect(")", TokenPunct)
		}
	})
	return out
}

// parseGlvn parses a variable reference: local, global, instance variable,
// indirection, macro, or an object property.
func (p *Parser) parseGlvn() Expr {
	q := p.next()
	c := byteAt(p.src, q)
	var x Expr
	switch {
	case c == '^':
		return p.parseGlobal()
	case c == '@':
		return p.parseIndirection()
	case strings.HasPrefix(p.src[q:], "$$$"):
		return p.parseMacro()
	case c == '.' && byteAt(p.src, q+1) == '.':
		x = p.parseRelative()
	case isInstanceVar(p.src, q):
		x = p.parseInstanceVar()
	case isNameStart(c):
		x = p.parseLocal()
	default:
		p.errorExpected("variable name")
		return &BadExpr{SpanVal: Span{q, q}}
	}
	if !p.bail && p.chainAhead() {
		x = p.parseChain(x)
	}
	p.settleTarget(x)
	return x
}

// ---------------------------------------------------------------------------
// SET
// ---------------------------------------------------------------------------

func (p *Parser) parseSetArg() Node {
	start := p.next()
	arg := &SetArg{}
	if p.peek() == '(' {
		arg.Multi = true
		arg.Targets = p.parenList(p.parseSetTarget)
	} else {
		arg.Targets = []Expr{p.parseSetTarget()}
	}
	if !p.bail {
		p.expect("=", TokenOperator)
	}
	if !p.bail {
		arg.Value = p.parseExpr()
	}
	arg.SpanVal = Span{start, p.lastEnd}
	return arg
}

// parseSetTarget parses one assignment target.
func (p *Parser) parseSetTarget() Expr {
	q := p.next()
	var x Expr
	if byteAt(p.src, q) == '@' {
		x = p.parseIndirection()
	} else {
		x = p.parseAtom()
	}
	if p.bail {
		return x
	}
	switch x.(type) {
	case *LocalVar, *GlobalVar, *SSVN, *InstanceVar, *SystemVar, *SystemFunc,
		*SQLFieldRef, *Indirection, *MacroRef:
	case *OrefChain, *RelativeRef:
		p.settleTarget(x)
	default:
		p.errorAt(x.Span(), UnexpectedToken, "cannot assign to %s", x.Span().Text(p.src))
	}
	return x
}

// ---------------------------------------------------------------------------
// WRITE / READ
// ---------------------------------------------------------------------------

// parseFormat parses a run of ! and # format controls.
func (p *Parser) parseFormat() Node {
	q := p.next()
	end := q
	for end < len(p.src) && (p.src[end] == '!' || p.src[end] == '#') {
		end++
	}
	sp := p.take(q, end, TokenOperator)
	return &WriteFormat{SpanVal: sp, Raw: sp.Text(p.src)}
}

// parseMnemonic parses /name(args).
func (p *Parser) parseMnemonic() Node {
	q := p.next()
	end := scanMember(p.src, q+1)
	if end == q+1 {
		p.errorAt(Span{q, q + 1}, UnexpectedToken, "expected a mnemonic name after '/'")
		return nil
	}
	p.take(q, end, TokenIdentifier)
	m := &Mnemonic{Name: p.src[q+1 : end]}
	if p.cur() == '(' {
		m.Args = p.parseCallArgs()
	}
	m.SpanVal = Span{q, p.lastEnd}
	return m
}

func (p *Parser) parseWriteArg() Node {
	q := p.next()
	switch c := byteAt(p.src, q); c {
	case '!', '#':
		return p.parseFormat()
	case '?':
		p.take(q, q+1, TokenOperator)
		x := p.parseExpr()
		return &WriteTab{SpanVal: Span{q, p.lastEnd}, X: x}
	case '*':
		p.take(q, q+1, TokenOperator)
		x := p.parseExpr()
		return &WriteChar{SpanVal: Span{q, p.lastEnd}, X: x}
	case '/':
		return p.parseMnemonic()
	}
	return p.parseExpr()
}

func (p *Parser) parseReadArg() Node {
	q := p.next()
	switch c := byteAt(p.src, q); c {
	case '!', '#':
		return p.parseFormat()
	case '?':
		p.take(q, q+1, TokenOperator)
		x := p.parseExpr()
		return &WriteTab{SpanVal: Span{q, p.lastEnd}, X: x}
	case '/':
		return p.parseMnemonic()
	case '"':
		return p.parseString()
	}
	rv := &ReadVar{}
	if byteAt(p.src, q) == '*' {
		p.take(q, q+1, TokenOperator)
		rv.Single = true
	}
	rv.Var = p.parseGlvn()
	if !p.bail && !rv.Single && p.cur() == '#' {
		p.take(p.pos, p.pos+1, TokenOperator)
		p.immediate(func() { rv.Length = p.parseExpr() })
	}
	if !p.bail && p.cur() == ':' {
		rv.Timeout = p.parseTimeout()
	}
	rv.SpanVal = Span{q, p.lastEnd}
	return rv
}

// parseTimeout parses :expr at the cursor in whitespace-immediate mode.
func (p *Parser) parseTimeout() *Expression {
	return p.parsePostCond()
}

// ---------------------------------------------------------------------------
// DO / JOB / GOTO
// ---------------------------------------------------------------------------

// parseCallTarget parses a DO or JOB target: a line reference with optional
// arguments, or an object method call.
func (p *Parser) parseCallTarget() Expr {
	q := p.next()
	c := byteAt(p.src, q)
	var x Expr
	switch {
	case c == '#' || c == '(' || c == '$' || (c == '.' && byteAt(p.src, q+1) == '.'):
		x = p.parseAtom()
	case isInstanceVar(p.src, q):
		x = p.parseAtom()
	case isNameStart(c) && byteAt(p.src, scanName(p.src, q)) == '.':
		x = p.parseAtom()
	case c == '@' && p.indirectCallAhead(q):
		x = p.parseAtom()
	default:
		call := &RoutineCall{}
		p.immediate(func() {
			call.Ref = p.parseLineRef()
			if !p.bail && p.cur() == '(' {
				call.Call = true
				call.Args = p.parseCallArgs()
			}
		})
		call.SpanVal = Span{q, p.lastEnd}
		x = call
	}
	settleCall(x)
	return x
}

// indirectCallAhead reports whether @x at q is followed by a member access,
// as in DO @obj.Method().
func (p *Parser) indirectCallAhead(q int) bool {
	end := scanName(p.src, q+1)
	return end > q+1 && byteAt(p.src, end) == '.'
}

func (p *Parser) parseDoArg() Node {
	q := p.next()
	arg := &DoArg{Target: p.parseCallTarget()}
	if !p.bail && p.cur() == ':' {
		arg.PostCond = p.parsePostCond()
	}
	arg.SpanVal = Span{q, p.lastEnd}
	return arg
}

func (p *Parser) parseJobArg() Node {
	q := p.next()
	arg := &JobArg{Target: p.parseCallTarget()}
	if c := p.cur(); !p.bail && (c == '[' || c == '|') {
		closer := string(c)
		if c == '[' {
			closer = "]"
		}
		arg.LocationSep = string(c)
		p.take(p.pos, p.pos+1, TokenPunct)
		p.bracketed(func() {
			p.closer = closer[0]
			arg.Location = p.parseExpr()
			if !p.bail {
				p.expect(closer, TokenPunct)
			}
		})
	}
	if !p.bail && p.cur() == ':' {
		p.take(p.pos, p.pos+1, TokenPunct)
		if p.cur() == '(' {
			arg.HasParams = true
			p.take(p.pos, p.pos+1, TokenPunct)
			p.bracketed(func() {
				for !p.bail {
					if c := p.peek(); c == ':' || c == ')' {
						n := p.next()
						arg.Params = append(arg.Params, &OmittedArg{SpanVal: Span{n, n}})
					} else {
						arg.Params = append(arg.Params, p.parseExpr())
					}
					if _, ok := p.accept(":", TokenPunct); !ok {
						break
					}
				}
				if !p.bail {
					p.expect(")", TokenPunct)
				}
			})
		}
		if !p.bail && p.cur() == ':' {
			arg.Timeout = p.parseTimeout()
		}
	}
	arg.SpanVal = Span{q, p.lastEnd}
	return arg
}

func (p *Parser) parseGotoArg() Node {
	q := p.next()
	arg := &GotoArg{}
	p.immediate(func() { arg.Ref = p.parseLineRef() })
	if !p.bail && p.cur() == ':' {
		arg.PostCond = p.parsePostCond()
	}
	arg.SpanVal = Span{q, p.lastEnd}
	return arg
}

// ---------------------------------------------------------------------------
// KILL / NEW / MERGE / LOCK
// ---------------------------------------------------------------------------

func (p *Parser) parseVarList(item func() Expr) Node {
	q := p.next()
	vars := p.parenList(item)
	return &VarList{SpanVal: Span{q, p.lastEnd}, Vars: vars}
}

func (p *Parser) parseKillArg() Node {
	if p.peek() == '(' {
		return p.parseVarList(func() Expr { return p.parseLocal() })
	}
	return p.parseGlvn()
}

func (p *Parser) parseNewArg() Node {
	if p.peek() == '(' {
		return p.parseVarList(p.parseNewName)
	}
	return p.parseNewName()
}

// parseNewName parses a local name or one of the system variables NEW
// accepts.
func (p *Parser) parseNewName() Expr {
	q := p.next()
	if byteAt(p.src, q) == '$' {
		x := p.parseDollar()
		if v, ok := x.(*SystemVar); !p.bail && (!ok || !newableVariables[v.Name]) {
			p.errorAt(x.Span(), UnexpectedToken, "cannot NEW %s", x.Span().Text(p.src))
		}
		return x
	}
	if !isNameStart(byteAt(p.src, q)) {
		p.errorExpected("variable name")
		return &BadExpr{SpanVal: Span{q, q}}
	}
	end := scanName(p.src, q)
	sp := p.take(q, end, TokenIdentifier)
	return &LocalVar{SpanVal: sp, Name: sp.Text(p.src)}
}

func (p *Parser) parseMergeArg() Node {
	q := p.next()
	arg := &MergeArg{Target: p.parseGlvn()}
	if !p.bail {
		p.expect("=", TokenOperator)
	}
	if !p.bail {
		arg.Source = p.parseGlvn()
	}
	arg.SpanVal = Span{q, p.lastEnd}
	return arg
}

func (p *Parser) parseLockArg() Node {
	q := p.next()
	arg := &LockArg{}
	if c := byteAt(p.src, q); c == '+' || c == '-' {
		arg.Op = p.take(q, q+1, TokenOperator).Text(p.src)
	}
	if p.peek() == '(' {
		arg.Grouped = true
		p.take(p.next(), p.next()+1, TokenPunct)
		p.bracketed(func() {
			for !p.bail {
				arg.Targets = append(arg.Targets, p.parseLockTarget())
				if _, ok := p.accept(",", TokenPunct); !ok {
					break
				}
			}
			if !p.bail {
				p.expect(")", TokenPunct)
			}
		})
	} else {
		arg.Targets = []*LockTarget{p.parseLockTarget()}
	}
	if !p.bail && p.cur() == ':' {
		arg.Timeout = p.parseTimeout()
	}
	arg.SpanVal = Span{q, p.lastEnd}
	return arg
}

func (p *Parser) parseLockTarget() *LockTarget {
	q := p.next()
	t := &LockTarget{Var: p.parseGlvn()}
	_, t.Indirect = t.Var.(*Indirection)
	if !p.bail && strings.HasPrefix(p.src[p.pos:], `#"`) {
		end := p.pos + 2
		for end < len(p.src) && strings.IndexByte("SEIDseid", p.src[end]) >= 0 {
			end++
		}
		if byteAt(p.src, end) != '"' || end == p.pos+2 {
			p.errorAt(Span{p.pos, end}, UnexpectedToken, "invalid lock type")
		} else {
			p.take(p.pos, p.pos+1, TokenOperator)
			t.LockType = p.take(p.pos, end+1, TokenLiteral).Text(p.src)
		}
	}
	t.SpanVal = Span{q, p.lastEnd}
	return t
}

// ---------------------------------------------------------------------------
// OPEN / USE / CLOSE
// ---------------------------------------------------------------------------

func (p *Parser) parseDeviceArg(cmd Command) Node {
	q := p.next()
	arg := &DeviceArg{Device: p.parseExpr()}
	if p.bail || p.cur() != ':' {
		arg.SpanVal = Span{q, p.lastEnd}
		return arg
	}
	p.take(p.pos, p.pos+1, TokenPunct)
	if cmd == CmdClose {
		if p.cur() == '(' {
			p.take(p.pos, p.pos+1, TokenPunct)
			p.bracketed(func() {
				for !p.bail {
					arg.Options = append(arg.Options, p.parseCloseOption())
					if _, ok := p.accept(":", TokenPunct); !ok {
						break
					}
				}
				if !p.bail {
					p.expect(")", TokenPunct)
				}
			})
		} else {
			arg.Options = []*CloseOption{p.parseCloseOption()}
		}
		arg.SpanVal = Span{q, p.lastEnd}
		return arg
	}
	if p.cur() == '(' {
		arg.HasParams = true
		arg.Params = p.parseDeviceParams()
	} else if p.cur() != ':' {
		p.immediate(func() { arg.Params = []Node{p.parseDeviceParam()} })
		arg.HasParams = true
	}
	if !p.bail && p.cur() == ':' {
		p.take(p.pos, p.pos+1, TokenPunct)
		if cmd == CmdOpen {
			if p.cur() != ':' {
				p.immediate(func() { arg.Timeout = p.parseExpr() })
			}
			if !p.bail && p.cur() == ':' {
				p.take(p.pos, p.pos+1, TokenPunct)
				p.immediate(func() { arg.Mnemonic = p.parseExpr() })
			}
		} else {
			p.immediate(func() { arg.Mnemonic = p.parseExpr() })
		}
	}
	arg.SpanVal = Span{q, p.lastEnd}
	return arg
}

// parseDeviceParams parses (param:param,...) where each param is an
// expression or /KEYWORD[=value].
func (p *Parser) parseDeviceParams() []Node {
	p.take(p.pos, p.pos+1, TokenPunct)
	var out []Node
	p.bracketed(func() {
		for !p.bail {
			if c := p.peek(); c == ':' || c == ',' || c == ')' {
				n := p.next()
				out = append(out, &OmittedArg{SpanVal: Span{n, n}})
			} else {
				out = append(out, p.parseDeviceParam())
			}
			if _, ok := p.accept(":", TokenPunct); ok {
				continue
			}
			if _, ok := p.accept(",", TokenPunct); !ok {
				break
			}
		}
		if !p.bail {
			p.expect(")", TokenPunct)
		}
	})
	return out
}

func (p *Parser) parseDeviceParam() Node {
	q := p.next()
	if byteAt(p.src, q) != '/' {
		return p.parseExpr()
	}
	end := scanName(p.src, q+1)
	if end == q+1 {
		p.errorAt(Span{q, q + 1}, UnexpectedToken, "expected a keyword after '/'")
		return &BadExpr{SpanVal: Span{q, q + 1}}
	}
	p.take(q, end, TokenIdentifier)
	dp := &DeviceParam{Keyword: strings.ToUpper(p.src[q+1 : end])}
	if _, ok := p.accept("=", TokenOperator); ok {
		dp.Value = p.parseExpr()
	}
	dp.SpanVal = Span{q, p.lastEnd}
	return dp
}

// parseCloseOption parses "D", "K", "R":name or /REN[AME]=name.
func (p *Parser) parseCloseOption() *CloseOption {
	q := p.next()
	switch byteAt(p.src, q) {
	case '"':
		s := p.parseString()
		if strings.EqualFold(s.Span().Text(p.src), `"R"`) && p.cur() == ':' {
			p.take(p.pos, p.pos+1, TokenPunct)
			p.takeName("file name")
		}
	case '/':
		end := scanName(p.src, q+1)
		kw := strings.ToUpper(p.src[q+1 : end])
		if kw != "REN" && kw != "RENAME" {
			p.errorAt(Span{q, end}, UnexpectedToken, "unknown CLOSE option /%s", kw)
			break
		}
		p.take(q, end, TokenIdentifier)
		p.expect("=", TokenOperator)
		if !p.bail {
			p.takeName("file name")
		}
	default:
		p.errorExpected("CLOSE option")
	}
	sp := Span{q, p.lastEnd}
	return &CloseOption{SpanVal: sp, Raw: sp.Text(p.src)}
}

// takeName consumes a dotted name or string at the next significant byte.
func (p *Parser) takeName(what string) string {
	q := p.next()
	var end int
	if byteAt(p.src, q) == '"' {
		var ok bool
		if end, ok = scanString(p.src, q); !ok {
			sp := p.take(q, end, TokenError)
			p.errorAt(sp, LexError, "unterminated %s string", what)
			return ""
		}
	} else {
		end = scanDottedName(p.src, q)
	}
	if end == q {
		p.errorExpected(what)
		return ""
	}
	return p.take(q, end, TokenIdentifier).Text(p.src)
}

// ---------------------------------------------------------------------------
// VIEW / XECUTE / BREAK / ZBREAK / TROLLBACK
// ---------------------------------------------------------------------------

func (p *Parser) parseViewArg() Node {
	q := p.next()
	arg := &ViewArg{}
	for !p.bail {
		arg.Parts = append(arg.Parts, p.parseExpr())
		if _, ok := p.acceptHere(":", TokenPunct); !ok {
			break
		}
	}
	arg.SpanVal = Span{q, p.lastEnd}
	return arg
}

func (p *Parser) parseXecuteArg() Node {
	q := p.next()
	arg := &XecuteArg{}
	if p.peek() == '(' {
		m := p.mark()
		list := p.parenList(func() Expr { return p.parseExpr() })
		if !p.bail && len(list) > 1 && matchOperator(p.src, p.next()) == "" {
			for _, x := range list {
				arg.Code = append(arg.Code, x.(*Expression))
			}
		} else {
			p.reset(m)
		}
	}
	if arg.Code == nil {
		arg.Code = []*Expression{p.parseExpr()}
	}
	if !p.bail && p.cur() == ':' {
		arg.PostCond = p.parsePostCond()
	}
	arg.SpanVal = Span{q, p.lastEnd}
	return arg
}

func (p *Parser) parseBreakArg() Node {
	q := p.next()
	switch c := byteAt(p.src, q); {
	case c == '"':
		return p.parseString()
	case isDigit(c):
		sp := p.take(q, scanNumber(p.src, q), TokenLiteral)
		return &NumberLit{SpanVal: sp, Raw: sp.Text(p.src)}
	}
	p.errorExpected("string or number after BREAK")
	return nil
}

func (p *Parser) parseZBreakArg() Node {
	q := p.next()
	if byteAt(p.src, q) != '/' {
		p.errorExpected("'/' in ZBREAK argument")
		return nil
	}
	end := scanMember(p.src, q+1)
	if end == q+1 {
		p.errorAt(Span{q, q + 1}, UnexpectedToken, "expected a name after '/'")
		return nil
	}
	p.take(q, end, TokenIdentifier)
	arg := &ZBreakArg{ID: p.src[q+1 : end]}
	if p.cur() == ':' {
		p.take(p.pos, p.pos+1, TokenPunct)
		end := scanMember(p.src, p.pos)
		if end == p.pos {
			p.errorExpected("ZBREAK action")
		} else {
			arg.Action = p.take(p.pos, end, TokenIdentifier).Text(p.src)
		}
	}
	arg.SpanVal = Span{q, p.lastEnd}
	return arg
}

func (p *Parser) parseTRollbackArg() Node {
	q := p.next()
	if byteAt(p.src, q) != '1' || isDigit(byteAt(p.src, q+1)) {
		p.errorExpected("1 or no argument after TROLLBACK")
		return nil
	}
	sp := p.take(q, q+1, TokenLiteral)
	return &NumberLit{SpanVal: sp, Raw: "1"}
}
