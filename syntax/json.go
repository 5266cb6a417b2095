package syntax

import "strings"

// ---------------------------------------------------------------------------
// JSON literals
// ---------------------------------------------------------------------------

// scanJSONString matches a JSON string with backslash escapes.
func scanJSONString(src string, pos int) (int, bool) {
	for i := pos + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '"':
			return i + 1, true
		case '\n', '\r':
			return i, false
		}
	}
	return len(src), false
}

// scanJSONNumber matches -?(0|[1-9][0-9]*)(.[0-9]+)?([eE][+-]?[0-9]+)?.
func scanJSONNumber(src string, pos int) int {
	i := pos
	if byteAt(src, i) == '-' {
		i++
	}
	switch c := byteAt(src, i); {
	case c == '0':
		i++
	case c >= '1' && c <= '9':
		for isDigit(byteAt(src, i)) {
			i++
		}
	default:
		return pos
	}
	if byteAt(src, i) == '.' && isDigit(byteAt(src, i+1)) {
		i++
		for isDigit(byteAt(src, i)) {
			i++
		}
	}
	if c := byteAt(src, i); c == 'e' || c == 'E' {
		j := i + 1
		if c := byteAt(src, j); c == '+' || c == '-' {
			j++
		}
		if isDigit(byteAt(src, j)) {
			for isDigit(byteAt(src, j)) {
				j++
			}
			i = j
		}
	}
	return i
}

var jsonKeywords = []string{"true", "false", "null"}

func (p *Parser) parseJSONObject() Expr {
	q := p.next()
	p.take(q, q+1, TokenPunct)
	obj := &JSONObject{}
	p.bracketed(func() {
		if _, ok := p.accept("}", TokenPunct); ok {
			return
		}
		for !p.bail {
			k := p.next()
			if byteAt(p.src, k) != '"' {
				p.errorExpected("JSON key string")
				return
			}
			end, ok := scanJSONString(p.src, k)
			if !ok {
				sp := p.take(k, end, TokenError)
				p.errorAt(sp, LexError, "unterminated JSON string")
				return
			}
			key := p.take(k, end, TokenLiteral).Text(p.src)
			p.expect(":", TokenPunct)
			if p.bail {
				return
			}
			v := p.parseJSONValue()
			obj.Pairs = append(obj.Pairs, &JSONPair{SpanVal: Span{k, p.lastEnd}, Key: key, Value: v})
			if _, ok := p.accept(",", TokenPunct); !ok {
				break
			}
		}
		if !p.bail {
			p.expect("}", TokenPunct)
		}
	})
	obj.SpanVal = Span{q, p.lastEnd}
	return obj
}

func (p *Parser) parseJSONArray() Expr {
	q := p.next()
	p.take(q, q+1, TokenPunct)
	arr := &JSONArray{}
	p.bracketed(func() {
		if _, ok := p.accept("]", TokenPunct); ok {
			return
		}
		for !p.bail {
			arr.Elems = append(arr.Elems, p.parseJSONValue())
			if _, ok := p.accept(",", TokenPunct); !ok {
				break
			}
		}
		if !p.bail {
			p.expect("]", TokenPunct)
		}
	})
	arr.SpanVal = Span{q, p.lastEnd}
	return arr
}

// parseJSONValue parses a JSON value, or an ObjectScript (expr) in value
// position.
func (p *Parser) parseJSONValue() Expr {
	q := p.next()
	switch c := byteAt(p.src, q); {
	case c == '(':
		return p.parseParen()
	case c == '{':
		return p.parseJSONObject()
	case c == '[':
		return p.parseJSONArray()
	case c == '"':
		end, ok := scanJSONString(p.src, q)
		if !ok {
			sp := p.take(q, end, TokenError)
			p.errorAt(sp, LexError, "unterminated JSON string")
			return &BadExpr{SpanVal: sp}
		}
		sp := p.take(q, end, TokenLiteral)
		return &JSONValue{SpanVal: sp, Raw: sp.Text(p.src)}
	case c == '-' || isDigit(c):
		if end := scanJSONNumber(p.src, q); end > q {
			sp := p.take(q, end, TokenLiteral)
			return &JSONValue{SpanVal: sp, Raw: sp.Text(p.src)}
		}
	default:
		for _, kw := range jsonKeywords {
			if strings.HasPrefix(p.src[q:], kw) && !isAlnum(byteAt(p.src, q+len(kw))) {
				sp := p.take(q, q+len(kw), TokenKeyword)
				return &JSONValue{SpanVal: sp, Raw: kw}
			}
		}
	}
	p.errorExpected("JSON value")
	return &BadExpr{SpanVal: Span{q, q}}
}
