package syntax

// ---------------------------------------------------------------------------
// Oref chains and member classification
// ---------------------------------------------------------------------------

// chainAhead reports whether a member access starts at the cursor: a '.'
// immediately followed by a member name, a quoted name or '#'.
func (p *Parser) chainAhead() bool {
	if p.cur() != '.' {
		return false
	}
	c := byteAt(p.src, p.pos+1)
	return c == '%' || isAlnum(c) || c == '"' || c == '#'
}

// parseChain parses the .member segments following base. A parameter
// segment ends the chain.
func (p *Parser) parseChain(base Expr) Expr {
	chain := &OrefChain{Base: base}
	for !p.bail && p.chainAhead() {
		dot := p.take(p.pos, p.pos+1, TokenPunct)
		seg := p.parseSegment(dot.Start)
		chain.Segments = append(chain.Segments, seg)
		if seg.Kind == SegmentParameter {
			break
		}
	}
	chain.SpanVal = Span{base.Span().Start, p.lastEnd}
	return chain
}

// parseSegment parses one member after its introducer: name, "quoted name",
// name(args) or #PARAM.
func (p *Parser) parseSegment(start int) *Segment {
	seg := &Segment{}
	if p.cur() == '#' {
		p.take(p.pos, p.pos+1, TokenPunct)
		end := scanMember(p.src, p.pos)
		if end == p.pos {
			p.errorExpected("parameter name")
		} else {
			seg.Name = p.take(p.pos, end, TokenIdentifier).Text(p.src)
		}
		seg.Kind = SegmentParameter
		seg.SpanVal = Span{start, p.lastEnd}
		return seg
	}
	var end int
	if p.cur() == '"' {
		var ok bool
		if end, ok = scanString(p.src, p.pos); !ok {
			sp := p.take(p.pos, end, TokenError)
			p.errorAt(sp, LexError, "unterminated member name")
			seg.SpanVal = Span{start, sp.End}
			return seg
		}
	} else {
		end = scanMember(p.src, p.pos)
	}
	if end == p.pos {
		p.errorExpected("member name")
		seg.SpanVal = Span{start, p.pos}
		return seg
	}
	seg.Name = p.take(p.pos, end, TokenIdentifier).Text(p.src)
	if p.cur() == '(' {
		seg.HasArgs = true
		seg.Args = p.parseCallArgs()
	}
	classify(seg)
	seg.SpanVal = Span{start, p.lastEnd}
	return seg
}

// classify resolves a segment from its own shape. Without parentheses it is
// a property. Empty parentheses, or any by-reference or variadic argument,
// make it a method. Otherwise name(args) could be a method call or a
// multidimensional property subscript; it resolves as a method and is
// marked ambiguous.
func classify(seg *Segment) {
	if seg.Kind == SegmentParameter {
		return
	}
	if !seg.HasArgs {
		seg.Kind = SegmentProperty
		return
	}
	seg.Kind = SegmentMethod
	if len(seg.Args) == 0 {
		return
	}
	for _, a := range seg.Args {
		switch a.(type) {
		case *ByRefArg, *VariadicArg:
			return
		}
	}
	seg.Ambiguous = true
}

// lastSegment returns the final member of a chain or relative reference.
func lastSegment(x Expr) *Segment {
	switch n := x.(type) {
	case *OrefChain:
		if len(n.Segments) > 0 {
			return n.Segments[len(n.Segments)-1]
		}
	case *RelativeRef:
		return n.Member
	}
	return nil
}

// settleTarget resolves the final member of an assignment target as a
// property. Arguments there are subscripts, so by-reference and variadic
// arguments and empty parentheses are errors.
func (p *Parser) settleTarget(x Expr) {
	seg := lastSegment(x)
	if seg == nil {
		return
	}
	switch {
	case seg.Kind == SegmentParameter:
		p.errorAt(seg.SpanVal, UnexpectedToken, "cannot assign to parameter #%s", seg.Name)
		return
	case seg.HasArgs && len(seg.Args) == 0:
		p.errorAt(seg.SpanVal, UnexpectedToken, "empty subscript list on property %s", seg.Name)
		return
	}
	for _, a := range seg.Args {
		switch a.(type) {
		case *ByRefArg, *VariadicArg, *OmittedArg:
			p.errorAt(a.Span(), UnexpectedToken, "invalid subscript in assignment to %s", seg.Name)
			return
		}
	}
	seg.Kind = SegmentProperty
	seg.Ambiguous = false
}

// settleCall resolves the final member of a DO or JOB target as a method.
func settleCall(x Expr) {
	if seg := lastSegment(x); seg != nil && seg.Kind != SegmentParameter {
		seg.Kind = SegmentMethod
		seg.Ambiguous = false
	}
}
